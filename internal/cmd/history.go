package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/harrison/scout/internal/config"
	"github.com/harrison/scout/internal/display"
	"github.com/harrison/scout/internal/history"
	"github.com/harrison/scout/internal/models"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently recorded runs",
		Long: `Show runs recorded in the history database, newest first.

Runs are recorded when history is enabled with --history, SCOUT_HISTORY=1,
or history.enabled in a config file. The database lives at
$SCOUT_HOME/history.db unless history.db_path is set.

Examples:
  scout history -n 5
  scout history --this-root
  scout history --prune 720h`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}

	cmd.Flags().IntP("count", "n", 20, "Number of runs to show")
	cmd.Flags().Bool("this-root", false, "Only show runs against the current root")
	cmd.Flags().Duration("prune", 0, "Delete runs older than this duration before listing")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	count, err := limitFlag(cmd, "count", 20)
	if err != nil {
		return err
	}
	thisRoot, _ := cmd.Flags().GetBool("this-root")
	prune, _ := cmd.Flags().GetDuration("prune")
	if prune < 0 {
		return fmt.Errorf("--prune must not be negative, got %s", prune)
	}
	format, err := models.ParseFormat(s.cfg.Format)
	if err != nil {
		return err
	}

	dbPath, err := config.GetHistoryDBPath(s.cfg)
	if err != nil {
		return err
	}
	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()
	if version, err := store.GetLatestVersion(); err == nil {
		s.log.LogDebug(fmt.Sprintf("history database %s at schema version %d", dbPath, version))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if prune > 0 {
		deleted, err := store.DeleteOlderThan(ctx, time.Now().Add(-prune))
		if err != nil {
			return err
		}
		s.log.LogInfo(fmt.Sprintf("pruned %d runs older than %s", deleted, prune))
	}

	var runs []models.RunSummary
	if thisRoot {
		runs, err = store.RunsForRoot(ctx, s.root, count)
	} else {
		runs, err = store.RecentRuns(ctx, count)
	}
	if err != nil {
		return err
	}

	out, err := s.openSink(false)
	if err != nil {
		return err
	}
	if err := display.WriteRuns(out, format, runs); err != nil {
		out.abort()
		return err
	}
	return out.close()
}
