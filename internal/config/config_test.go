package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/harrison/scout/internal/models"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.RespectIgnore)
	assert.False(t, cfg.IncludeHidden)
	assert.Equal(t, "compact", cfg.Format)
	assert.Equal(t, "ordered", cfg.Strategy)
	assert.Equal(t, 256, cfg.MaxDepth)
	assert.Equal(t, LimitsConfig{Find: 100, Search: 50, List: 100, EstimateSample: 1000}, cfg.Limits)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.History.Enabled)
	assert.NoError(t, cfg.Validate())
}

// TestLoadConfigValidFile tests loading a valid YAML config file
func TestLoadConfigValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `gitignore: false
hidden: true
exclude: [vendor, node_modules]
format: plain
stream: true
strategy: parallel
workers: 4
max_depth: 12
limits:
  search: 5
log_level: debug
log_dir: /tmp/scout-logs
history:
  enabled: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.False(t, cfg.RespectIgnore)
	assert.True(t, cfg.IncludeHidden)
	assert.Equal(t, []string{"vendor", "node_modules"}, cfg.Excludes)
	assert.Equal(t, "plain", cfg.Format)
	assert.True(t, cfg.Stream)
	assert.Equal(t, "parallel", cfg.Strategy)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 12, cfg.MaxDepth)
	assert.Equal(t, 5, cfg.Limits.Search)
	assert.Equal(t, 100, cfg.Limits.Find, "unset limits keep their defaults")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/scout-logs", cfg.LogDir)
	assert.True(t, cfg.History.Enabled)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "workers: [unterminated\n")

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadLayersProjectOverGlobal(t *testing.T) {
	home := t.TempDir()
	root := t.TempDir()
	writeFile(t, filepath.Join(home, GlobalConfigFile), "format: plain\nhidden: true\nworkers: 2\n")
	writeFile(t, filepath.Join(root, ProjectConfigFile), "format: structured\n")

	cfg, err := Load(home, root)
	require.NoError(t, err)

	assert.Equal(t, "structured", cfg.Format)
	assert.True(t, cfg.IncludeHidden)
	assert.Equal(t, 2, cfg.Workers)

	projectOnly, err := Load("", root)
	require.NoError(t, err)
	assert.Equal(t, "structured", projectOnly.Format)
	assert.False(t, projectOnly.IncludeHidden)
}

func TestMergeWithViperFlagsAndEnv(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool("hidden", false, "")
	flags.Bool("no-gitignore", false, "")
	flags.String("format", "compact", "")
	flags.String("exclude", "", "")
	require.NoError(t, flags.Parse([]string{"--hidden", "--no-gitignore", "--exclude", "vendor, ,dist"}))

	v := viper.New()
	v.SetEnvPrefix("SCOUT")
	v.AutomaticEnv()
	require.NoError(t, v.BindPFlag(KeyHidden, flags.Lookup("hidden")))
	require.NoError(t, v.BindPFlag(KeyNoGitignore, flags.Lookup("no-gitignore")))
	require.NoError(t, v.BindPFlag(KeyFormat, flags.Lookup("format")))
	require.NoError(t, v.BindPFlag(KeyExclude, flags.Lookup("exclude")))
	t.Setenv("SCOUT_WORKERS", "8")

	cfg := DefaultConfig()
	cfg.Format = "plain"
	cfg.MergeWithViper(v)

	assert.True(t, cfg.IncludeHidden)
	assert.False(t, cfg.RespectIgnore)
	assert.Equal(t, []string{"vendor", "dist"}, cfg.Excludes)
	assert.Equal(t, "plain", cfg.Format, "unchanged flag must not override the file value")
	assert.Equal(t, 8, cfg.Workers)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid default", func(*Config) {}, nil},
		{"alias format", func(c *Config) { c.Format = "json" }, nil},
		{"bad format", func(c *Config) { c.Format = "xml" }, models.ErrInvalidFormat},
		{"bad strategy", func(c *Config) { c.Strategy = "random" }, models.ErrInvalidStrategy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}

	for _, mutate := range []func(*Config){
		func(c *Config) { c.Workers = -1 },
		func(c *Config) { c.MaxDepth = -1 },
		func(c *Config) { c.Limits.Search = -5 },
		func(c *Config) { c.LogLevel = "verbose" },
	} {
		cfg := DefaultConfig()
		mutate(cfg)
		assert.Error(t, cfg.Validate())
	}
}

func TestTraversal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Format = "toon"
	cfg.Excludes = []string{"vendor"}

	tc, err := cfg.Traversal("/repo", 7)
	require.NoError(t, err)
	assert.Equal(t, models.TraversalConfig{
		Root:          "/repo",
		RespectIgnore: true,
		Excludes:      []string{"vendor"},
		Limit:         7,
		Format:        models.FormatCompact,
		Strategy:      models.StrategyOrdered,
		MaxDepth:      256,
	}, tc)

	cfg.Format = "xml"
	_, err = cfg.Traversal("/repo", 1)
	assert.ErrorIs(t, err, models.ErrInvalidFormat)
}
