package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/harrison/scout/internal/fileutil"
	"github.com/harrison/scout/internal/models"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ProjectConfigFile is the per-root configuration file name.
const ProjectConfigFile = ".scout.yaml"

// LimitsConfig holds the default result limits per operation
type LimitsConfig struct {
	// Find is the default result limit for find
	Find int `yaml:"find"`

	// Search is the default hit limit for search
	Search int `yaml:"search"`

	// List is the default result limit for list
	List int `yaml:"list"`

	// EstimateSample is the default sample size for estimate
	EstimateSample int `yaml:"estimate_sample"`
}

// HistoryConfig represents run history configuration
type HistoryConfig struct {
	// Enabled records every run in the history database
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database; empty means $SCOUT_HOME/history.db
	DBPath string `yaml:"db_path"`
}

// Config represents scout configuration options
type Config struct {
	// RespectIgnore skips entries matched by .gitignore and .ignore files
	RespectIgnore bool `yaml:"gitignore"`

	// IncludeHidden includes dot-prefixed files and directories
	IncludeHidden bool `yaml:"hidden"`

	// Excludes are literal path substrings to skip
	Excludes []string `yaml:"exclude"`

	// Format is the output format name (structured, compact, plain)
	Format string `yaml:"format"`

	// Stream emits results as they are found
	Stream bool `yaml:"stream"`

	// Strategy is the traversal strategy (ordered, parallel)
	Strategy string `yaml:"strategy"`

	// Workers is the traversal worker count (0 = strategy default)
	Workers int `yaml:"workers"`

	// MaxDepth is the directory depth ceiling
	MaxDepth int `yaml:"max_depth"`

	// Limits contains per-operation default limits
	Limits LimitsConfig `yaml:"limits"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir enables per-run log files when set
	LogDir string `yaml:"log_dir"`

	// History contains run history configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		RespectIgnore: true,
		IncludeHidden: false,
		Format:        string(models.FormatCompact),
		Stream:        false,
		Strategy:      string(models.StrategyOrdered),
		Workers:       0,
		MaxDepth:      fileutil.DefaultMaxDepth,
		Limits: LimitsConfig{
			Find:           100,
			Search:         50,
			List:           100,
			EstimateSample: 1000,
		},
		LogLevel: "warn",
		LogDir:   "",
		History: HistoryConfig{
			Enabled: false,
			DBPath:  "",
		},
	}
}

// yamlConfig mirrors Config with pointer fields so that values explicitly
// set to false or zero in a file still override earlier layers.
type yamlConfig struct {
	RespectIgnore *bool     `yaml:"gitignore"`
	IncludeHidden *bool     `yaml:"hidden"`
	Excludes      *[]string `yaml:"exclude"`
	Format        *string   `yaml:"format"`
	Stream        *bool     `yaml:"stream"`
	Strategy      *string   `yaml:"strategy"`
	Workers       *int      `yaml:"workers"`
	MaxDepth      *int      `yaml:"max_depth"`
	Limits        *struct {
		Find           *int `yaml:"find"`
		Search         *int `yaml:"search"`
		List           *int `yaml:"list"`
		EstimateSample *int `yaml:"estimate_sample"`
	} `yaml:"limits"`
	LogLevel *string `yaml:"log_level"`
	LogDir   *string `yaml:"log_dir"`
	History  *struct {
		Enabled *bool   `yaml:"enabled"`
		DBPath  *string `yaml:"db_path"`
	} `yaml:"history"`
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.MergeFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load builds the layered configuration: defaults, then the global file in
// home, then the project file in root. Either file may be absent.
func Load(home, root string) (*Config, error) {
	cfg := DefaultConfig()
	if home != "" {
		if err := cfg.MergeFile(filepath.Join(home, GlobalConfigFile)); err != nil {
			return nil, err
		}
	}
	if root != "" {
		if err := cfg.MergeFile(filepath.Join(root, ProjectConfigFile)); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// MergeFile applies every key present in the YAML file at path on top of c.
// A missing file is not an error.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var y yamlConfig
	if err := yaml.Unmarshal(data, &y); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setBool(&c.RespectIgnore, y.RespectIgnore)
	setBool(&c.IncludeHidden, y.IncludeHidden)
	if y.Excludes != nil {
		c.Excludes = append([]string(nil), *y.Excludes...)
	}
	setString(&c.Format, y.Format)
	setBool(&c.Stream, y.Stream)
	setString(&c.Strategy, y.Strategy)
	setInt(&c.Workers, y.Workers)
	setInt(&c.MaxDepth, y.MaxDepth)
	if y.Limits != nil {
		setInt(&c.Limits.Find, y.Limits.Find)
		setInt(&c.Limits.Search, y.Limits.Search)
		setInt(&c.Limits.List, y.Limits.List)
		setInt(&c.Limits.EstimateSample, y.Limits.EstimateSample)
	}
	setString(&c.LogLevel, y.LogLevel)
	setString(&c.LogDir, y.LogDir)
	if y.History != nil {
		setBool(&c.History.Enabled, y.History.Enabled)
		setString(&c.History.DBPath, y.History.DBPath)
	}
	return nil
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// Viper keys understood by MergeWithViper. Each maps to a SCOUT_* variable.
const (
	KeyGitignore   = "gitignore"
	KeyNoGitignore = "no_gitignore"
	KeyHidden      = "hidden"
	KeyExclude     = "exclude"
	KeyFormat      = "format"
	KeyStream      = "stream"
	KeyStrategy    = "strategy"
	KeyWorkers     = "workers"
	KeyMaxDepth    = "max_depth"
	KeyLogLevel    = "log_level"
	KeyLogDir      = "log_dir"
	KeyHistory     = "history"
)

// MergeWithViper applies values set through bound flags or SCOUT_*
// environment variables. Only keys that were explicitly set override the
// configuration, so file values survive when no flag or variable is given.
// An explicit --no-gitignore wins over --gitignore.
func (c *Config) MergeWithViper(v *viper.Viper) {
	if v.IsSet(KeyGitignore) {
		c.RespectIgnore = v.GetBool(KeyGitignore)
	}
	if v.IsSet(KeyNoGitignore) && v.GetBool(KeyNoGitignore) {
		c.RespectIgnore = false
	}
	if v.IsSet(KeyHidden) {
		c.IncludeHidden = v.GetBool(KeyHidden)
	}
	if v.IsSet(KeyExclude) {
		c.Excludes = fileutil.ParseList(v.GetString(KeyExclude))
	}
	if v.IsSet(KeyFormat) {
		c.Format = v.GetString(KeyFormat)
	}
	if v.IsSet(KeyStream) {
		c.Stream = v.GetBool(KeyStream)
	}
	if v.IsSet(KeyStrategy) {
		c.Strategy = v.GetString(KeyStrategy)
	}
	if v.IsSet(KeyWorkers) {
		c.Workers = v.GetInt(KeyWorkers)
	}
	if v.IsSet(KeyMaxDepth) {
		c.MaxDepth = v.GetInt(KeyMaxDepth)
	}
	if v.IsSet(KeyLogLevel) {
		c.LogLevel = v.GetString(KeyLogLevel)
	}
	if v.IsSet(KeyLogDir) {
		c.LogDir = v.GetString(KeyLogDir)
	}
	if v.IsSet(KeyHistory) {
		c.History.Enabled = v.GetBool(KeyHistory)
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if _, err := models.ParseFormat(c.Format); err != nil {
		return err
	}
	if _, err := models.ParseStrategy(c.Strategy); err != nil {
		return err
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0, got %d", c.MaxDepth)
	}

	limits := map[string]int{
		"limits.find":            c.Limits.Find,
		"limits.search":          c.Limits.Search,
		"limits.list":            c.Limits.List,
		"limits.estimate_sample": c.Limits.EstimateSample,
	}
	for name, value := range limits {
		if value < 0 {
			return fmt.Errorf("%s must be >= 0, got %d", name, value)
		}
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	return nil
}

// Traversal resolves the configuration into the value handed to the query
// engine. Validate should be called first; format and strategy errors are
// still reported here.
func (c *Config) Traversal(root string, limit int) (models.TraversalConfig, error) {
	format, err := models.ParseFormat(c.Format)
	if err != nil {
		return models.TraversalConfig{}, err
	}
	strategy, err := models.ParseStrategy(c.Strategy)
	if err != nil {
		return models.TraversalConfig{}, err
	}

	return models.TraversalConfig{
		Root:          root,
		RespectIgnore: c.RespectIgnore,
		IncludeHidden: c.IncludeHidden,
		Excludes:      append([]string(nil), c.Excludes...),
		Limit:         limit,
		Format:        format,
		Streaming:     c.Stream,
		Strategy:      strategy,
		Workers:       c.Workers,
		MaxDepth:      c.MaxDepth,
	}, nil
}
