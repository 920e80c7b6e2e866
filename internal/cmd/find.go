package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/harrison/scout/internal/display"
	"github.com/harrison/scout/internal/models"
	"github.com/harrison/scout/internal/pattern"
	"github.com/harrison/scout/internal/query"
	"github.com/spf13/cobra"
)

// NewFindCommand creates the find command
func NewFindCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find <pattern>",
		Short: "Find files whose path matches a glob",
		Long: `Find files under the root whose root-relative path matches a glob.

Glob syntax:
  *        any run of characters within one path segment
  **/      zero or more whole directories
  **       anything, including separators
  ?        exactly one character
  {a,b}    either alternative
  [abc]    one character from the set ([!abc] negates)

Examples:
  scout find '**/*.go'
  scout find 'src/*.{ts,tsx}' -l 20 --format plain`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, args[0])
		},
	}

	cmd.Flags().IntP("limit", "l", 100, "Maximum number of files to report")

	return cmd
}

func runFind(cmd *cobra.Command, glob string) error {
	if _, err := pattern.CompileGlob(glob); err != nil {
		return fmt.Errorf("%w: %v", query.ErrInvalidPattern, err)
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	limit, err := limitFlag(cmd, "limit", s.cfg.Limits.Find)
	if err != nil {
		return err
	}
	tc, err := s.cfg.Traversal(s.root, limit)
	if err != nil {
		return err
	}

	return s.run(cmd.Context(), models.OpFind, glob, tc.Streaming, func(ctx context.Context, w io.Writer, summary *models.RunSummary) error {
		emitter := display.NewEmitter(w, display.KindFile, tc.Format, tc.Streaming)
		stats, err := query.NewEngine(tc, s.log).Find(ctx, glob, emitter.File)
		if err != nil {
			return err
		}
		applyStats(summary, stats, emitter)
		return emitter.Close()
	})
}

// applyStats copies engine counters onto a run summary. Results counts the
// records the emitter accepted.
func applyStats(summary *models.RunSummary, stats *query.Stats, emitter *display.Emitter) {
	summary.Results = emitter.Count()
	summary.Visited = stats.Visited
	summary.Excluded = stats.Excluded
	summary.Unreadable = stats.Unreadable
	summary.Truncated = stats.Truncated
}
