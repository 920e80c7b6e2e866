package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/scout/internal/config"
	"github.com/harrison/scout/internal/display"
	"github.com/harrison/scout/internal/filelock"
	"github.com/harrison/scout/internal/fileutil"
	"github.com/harrison/scout/internal/history"
	"github.com/harrison/scout/internal/logger"
	"github.com/harrison/scout/internal/models"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// viperBindings maps config keys to the persistent flags that set them.
var viperBindings = map[string]string{
	config.KeyGitignore:   flagGitignore,
	config.KeyNoGitignore: flagNoGitignore,
	config.KeyHidden:      flagHidden,
	config.KeyExclude:     flagExclude,
	config.KeyFormat:      flagFormat,
	config.KeyStream:      flagStream,
	config.KeyStrategy:    flagStrategy,
	config.KeyWorkers:     flagWorkers,
	config.KeyMaxDepth:    flagMaxDepth,
	config.KeyLogLevel:    flagLogLevel,
	config.KeyLogDir:      flagLogDir,
	config.KeyHistory:     flagHistory,
}

// session is the resolved state shared by one command invocation: the
// query root, the merged configuration, and the loggers.
type session struct {
	root    string
	cfg     *config.Config
	log     logger.Logger
	fileLog *logger.FileLogger
	runID   string
	output  string

	stdout io.Writer
	stderr io.Writer
}

// newSession resolves configuration for cmd. Every configuration error is
// returned here, before any traversal or output happens.
func newSession(cmd *cobra.Command) (*session, error) {
	flags := cmd.Flags()

	if flags.Changed(flagGitignore) && flags.Changed(flagNoGitignore) {
		return nil, fmt.Errorf("cannot use both --gitignore and --no-gitignore")
	}

	root, err := resolveRoot(flags)
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(flags, root)
	if err != nil {
		return nil, err
	}

	v, err := newViper(flags)
	if err != nil {
		return nil, err
	}
	cfg.MergeWithViper(v)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	output, _ := flags.GetString(flagOutput)
	s := &session{
		root:   root,
		cfg:    cfg,
		output: output,
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
	}

	console := logger.NewConsoleLogger(s.stderr, cfg.LogLevel)
	if cfg.LogDir != "" {
		fl, err := logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to create file logger: %w", err)
		}
		s.fileLog = fl
		s.runID = fl.RunID()
		s.log = logger.NewMultiLogger(console, fl)
	} else {
		s.runID = uuid.New().String()
		s.log = console
	}

	return s, nil
}

// resolveRoot returns the absolute query root, defaulting to the working
// directory. A missing root or a non-directory is reported here, before any
// output file is touched.
func resolveRoot(flags *pflag.FlagSet) (string, error) {
	root, _ := flags.GetString(flagRoot)
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("failed to access root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", fileutil.ErrNotDirectory, abs)
	}
	return abs, nil
}

// loadConfig layers the global (or --config) file and the project file
// over the defaults.
func loadConfig(flags *pflag.FlagSet, root string) (*config.Config, error) {
	configPath, _ := flags.GetString(flagConfig)
	if configPath == "" {
		home, err := config.GetScoutHome()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve scout home: %w", err)
		}
		cfg, err := config.Load(home, root)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}

	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}
	if err := cfg.MergeFile(filepath.Join(root, config.ProjectConfigFile)); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newViper binds the persistent flags and SCOUT_* environment variables.
func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	for key, name := range viperBindings {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return v, nil
}

// limitFlag returns the --limit value when given, otherwise fallback.
func limitFlag(cmd *cobra.Command, name string, fallback int) (int, error) {
	if !cmd.Flags().Changed(name) {
		return fallback, nil
	}
	limit, err := cmd.Flags().GetInt(name)
	if err != nil {
		return 0, err
	}
	if limit < 0 {
		return 0, fmt.Errorf("--%s must be >= 0, got %d", name, limit)
	}
	return limit, nil
}

// sink is where one run writes its results.
type sink struct {
	w     io.Writer
	bw    *bufio.Writer
	file  *filelock.Output
	isTTY bool
}

func (s *session) openSink(streaming bool) (*sink, error) {
	if s.output != "" {
		out, err := filelock.Open(s.output, streaming)
		if err != nil {
			return nil, err
		}
		if out.Waited() {
			s.log.LogInfo(fmt.Sprintf("waited for another writer of %s", s.output))
		}
		return &sink{w: out, file: out}, nil
	}
	bw := bufio.NewWriter(s.stdout)
	return &sink{w: bw, bw: bw, isTTY: display.IsTerminal(s.stdout)}, nil
}

// Write implements io.Writer.
func (k *sink) Write(p []byte) (int, error) {
	return k.w.Write(p)
}

// Flush pushes buffered bytes to the destination.
func (k *sink) Flush() error {
	if k.file != nil {
		return k.file.Flush()
	}
	return k.bw.Flush()
}

func (k *sink) close() error {
	if k.file != nil {
		return k.file.Close()
	}
	return k.bw.Flush()
}

// abort discards pending file output. Stdout bytes already emitted in
// streaming mode stay emitted.
func (k *sink) abort() {
	if k.file != nil {
		_ = k.file.Abort()
		return
	}
	_ = k.bw.Flush()
}

// run wraps one operation with logging, output handling, truncation
// warnings, and optional history recording. body does the work and fills
// in the result counts on summary.
func (s *session) run(ctx context.Context, op, query string, streaming bool, body func(ctx context.Context, w io.Writer, summary *models.RunSummary) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.close()

	format, err := models.ParseFormat(s.cfg.Format)
	if err != nil {
		return err
	}
	summary := models.RunSummary{
		ID:        s.runID,
		Operation: op,
		Root:      s.root,
		Query:     query,
		Format:    format,
		StartedAt: time.Now(),
	}

	out, err := s.openSink(streaming)
	if err != nil {
		return err
	}

	s.log.LogRunStart(op, s.root)
	if err := body(ctx, out, &summary); err != nil {
		out.abort()
		s.log.LogDebug(fmt.Sprintf("%s failed: %v", op, err))
		return err
	}
	if err := out.close(); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	summary.Duration = time.Since(summary.StartedAt)
	s.log.LogRunComplete(summary)

	if summary.Truncated && out.isTTY {
		display.TruncationWarning(op, summary.Results).Display(s.stderr)
	}

	if s.cfg.History.Enabled {
		s.record(ctx, &summary)
	}
	return nil
}

// record stores summary in the history database. Failures are logged and
// never fail the run.
func (s *session) record(ctx context.Context, summary *models.RunSummary) {
	dbPath, err := config.GetHistoryDBPath(s.cfg)
	if err != nil {
		s.log.LogWarn(fmt.Sprintf("history disabled: %v", err))
		return
	}
	store, err := history.NewStore(dbPath)
	if err != nil {
		s.log.LogWarn(fmt.Sprintf("failed to open history database: %v", err))
		return
	}
	defer store.Close()

	if err := store.RecordRun(ctx, summary); err != nil {
		s.log.LogWarn(fmt.Sprintf("failed to record run: %v", err))
		return
	}
	s.log.LogDebug(fmt.Sprintf("recorded run %s in %s", summary.ID, dbPath))
}

func (s *session) close() {
	if s.fileLog != nil {
		_ = s.fileLog.Close()
	}
}
