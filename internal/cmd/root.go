package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// Persistent flag names shared by every query command
const (
	flagRoot        = "root"
	flagGitignore   = "gitignore"
	flagNoGitignore = "no-gitignore"
	flagHidden      = "hidden"
	flagExclude     = "exclude"
	flagFormat      = "format"
	flagStream      = "stream"
	flagStrategy    = "strategy"
	flagWorkers     = "workers"
	flagMaxDepth    = "max-depth"
	flagOutput      = "output"
	flagConfig      = "config"
	flagLogLevel    = "log-level"
	flagLogDir      = "log-dir"
	flagHistory     = "history"
)

// NewRootCommand creates and returns the root cobra command for scout
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scout",
		Short: "Fast file and content queries over a directory tree",
		Long: `Scout walks a directory tree and answers file queries: find files by
glob, search file contents for a literal string, list every file, or
estimate the size of a tree from a sample.

Results are emitted as structured (JSON), compact (header plus rows),
or plain text, either buffered or streamed as they are found. Ignore
files (.gitignore, .ignore) and hidden entries are honoured by default.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main prints the error once
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringP(flagRoot, "r", "", "Directory to query (default: working directory)")
	flags.Bool(flagGitignore, true, "Respect .gitignore and .ignore files")
	flags.Bool(flagNoGitignore, false, "Ignore .gitignore and .ignore files")
	flags.Bool(flagHidden, false, "Include hidden (dot-prefixed) files and directories")
	flags.String(flagExclude, "", "Comma-separated path substrings to exclude")
	flags.StringP(flagFormat, "f", "compact", "Output format: structured, compact, plain")
	flags.Bool(flagStream, false, "Emit results as they are found")
	flags.String(flagStrategy, "ordered", "Traversal strategy: ordered (deterministic with --workers 0 or 1) or parallel (faster, unordered output, ignore files not applied)")
	flags.Int(flagWorkers, 0, "Traversal workers (0 = strategy default)")
	flags.Int(flagMaxDepth, 256, "Maximum directory depth")
	flags.StringP(flagOutput, "o", "", "Write results to FILE instead of stdout")
	flags.String(flagConfig, "", "Path to config file (default: $SCOUT_HOME/config.yaml)")
	flags.String(flagLogLevel, "", "Log level: trace, debug, info, warn, error")
	flags.String(flagLogDir, "", "Directory for per-run log files")
	flags.Bool(flagHistory, false, "Record this run in the history database")

	// Add subcommands
	cmd.AddCommand(NewFindCommand())
	cmd.AddCommand(NewSearchCommand())
	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewEstimateCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
