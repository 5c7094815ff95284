package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/singlefile/internal/config"
	"github.com/harrison/singlefile/internal/history"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded scan runs",
		Long: `History lists runs recorded in the history database, newest first.
Runs are recorded when history is enabled in the configuration or the
scan command is invoked with --history.`,
		RunE: runHistory,
	}

	cmd.Flags().String("db", "", "Path to the history database (default: from config)")
	cmd.Flags().Int("limit", 20, "Maximum number of runs to show (0 = all)")

	return cmd
}

// runHistory implements the history command logic
func runHistory(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		cfg, err := config.LoadConfigFromDir(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		dbPath = cfg.History.DBPath
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No recorded runs.")
		return nil
	}

	for _, run := range runs {
		fmt.Fprintf(out, "%s  %s\n", run.StartedAt.Format(time.RFC3339), run.ID)
		fmt.Fprintf(out, "    roots:     %s\n", strings.Join(run.Roots, ", "))
		fmt.Fprintf(out, "    formats:   %s\n", run.Formats)
		fmt.Fprintf(out, "    files:     %d (%d bytes)\n", run.TotalFiles, run.TotalSize)
		fmt.Fprintf(out, "    artifacts: %s\n", strings.Join(run.Artifacts, ", "))
	}
	return nil
}
