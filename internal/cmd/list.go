package cmd

import (
	"context"
	"io"

	"github.com/harrison/scout/internal/display"
	"github.com/harrison/scout/internal/models"
	"github.com/harrison/scout/internal/query"
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every file under the root",
		Long: `List every regular file under the root, subject to the ignore,
hidden, and exclude settings. Equivalent to find '**'.`,
		Args: cobra.NoArgs,
		RunE: runList,
	}

	cmd.Flags().IntP("limit", "l", 100, "Maximum number of files to report")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	limit, err := limitFlag(cmd, "limit", s.cfg.Limits.List)
	if err != nil {
		return err
	}
	tc, err := s.cfg.Traversal(s.root, limit)
	if err != nil {
		return err
	}

	return s.run(cmd.Context(), models.OpList, "", tc.Streaming, func(ctx context.Context, w io.Writer, summary *models.RunSummary) error {
		emitter := display.NewEmitter(w, display.KindFile, tc.Format, tc.Streaming)
		stats, err := query.NewEngine(tc, s.log).List(ctx, emitter.File)
		if err != nil {
			return err
		}
		applyStats(summary, stats, emitter)
		return emitter.Close()
	})
}
