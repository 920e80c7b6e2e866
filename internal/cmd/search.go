package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/harrison/scout/internal/display"
	"github.com/harrison/scout/internal/fileutil"
	"github.com/harrison/scout/internal/models"
	"github.com/harrison/scout/internal/query"
	"github.com/spf13/cobra"
)

// NewSearchCommand creates the search command
func NewSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search file contents for a literal string",
		Long: `Search every admitted file for lines containing the query as a
literal, case-sensitive substring. Each matching line is reported with
its 1-based line number and trimmed content.

Binary and non-UTF-8 files are skipped.

Examples:
  scout search TODO -e go,md
  scout search 'func main' --format structured --stream`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0])
		},
	}

	cmd.Flags().IntP("limit", "l", 50, "Maximum number of matching lines to report")
	cmd.Flags().StringP("ext", "e", "", "Comma-separated file extensions to search (e.g. go,rs)")

	return cmd
}

func runSearch(cmd *cobra.Command, text string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	limit, err := limitFlag(cmd, "limit", s.cfg.Limits.Search)
	if err != nil {
		return err
	}
	tc, err := s.cfg.Traversal(s.root, limit)
	if err != nil {
		return err
	}
	extFlag, _ := cmd.Flags().GetString("ext")
	exts := fileutil.ParseList(extFlag)

	return s.run(cmd.Context(), models.OpSearch, text, tc.Streaming, func(ctx context.Context, w io.Writer, summary *models.RunSummary) error {
		emitter := display.NewEmitter(w, display.KindHit, tc.Format, tc.Streaming)
		stats, err := query.NewEngine(tc, s.log).Search(ctx, text, exts, emitter.Hit)
		if err != nil {
			return err
		}
		applyStats(summary, stats, emitter)
		if stats.Unreadable > 0 {
			s.log.LogInfo(fmt.Sprintf("%d files could not be read", stats.Unreadable))
		}
		return emitter.Close()
	})
}
