package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/harrison/scout/internal/display"
	"github.com/harrison/scout/internal/estimation"
	"github.com/harrison/scout/internal/models"
	"github.com/spf13/cobra"
)

// NewEstimateCommand creates the estimate command
func NewEstimateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate file count and total size of the tree",
		Long: `Count every file under the root and size a sample of them to
estimate the total size. Hidden files are included and ignore files are
not applied, so the estimate covers everything on disk.

The report also lists the five most common file extensions.`,
		Args: cobra.NoArgs,
		RunE: runEstimate,
	}

	cmd.Flags().Int("sample", 1000, "Number of files to size")

	return cmd
}

func runEstimate(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	sample, err := limitFlag(cmd, "sample", s.cfg.Limits.EstimateSample)
	if err != nil {
		return err
	}
	format, err := models.ParseFormat(s.cfg.Format)
	if err != nil {
		return err
	}

	return s.run(cmd.Context(), models.OpEstimate, "", false, func(ctx context.Context, w io.Writer, summary *models.RunSummary) error {
		est, err := estimation.NewEstimator(s.cfg.MaxDepth, s.log).Estimate(ctx, s.root, sample)
		if err != nil {
			return err
		}
		summary.Results = est.SampledFiles
		summary.Visited = est.TotalFiles
		s.log.LogDebug(fmt.Sprintf("estimated %s across %d files", display.HumanSize(est.EstimatedTotalSize), est.TotalFiles))
		return display.WriteEstimate(w, format, est)
	})
}
