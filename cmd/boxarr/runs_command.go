package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"boxarr/internal/journal"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent reconciliation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openJournal()
			if err != nil {
				return fmt.Errorf("open run journal: %w", err)
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read run journal: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd, runs)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}
			fmt.Fprintln(out, renderRunsTable(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of runs to list")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit runs as JSON")
	return cmd
}

func renderRunsTable(runs []journal.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		duration := "-"
		if !run.FinishedAt.IsZero() {
			duration = run.FinishedAt.Sub(run.StartedAt).Round(100 * time.Millisecond).String()
		}
		detail := fmt.Sprintf("%d/%d", run.MatchedCount, run.UnmatchedCount)
		if run.Error != "" {
			detail = truncate(run.Error, 48)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%dW%02d", run.Year, run.Week),
			run.Trigger,
			run.Status,
			detail,
			fmt.Sprintf("%d", len(run.AddedTitles)),
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			duration,
		})
	}
	return renderTable(
		[]string{"Week", "Trigger", "Status", "Matched/Unmatched", "Added", "Started", "Duration"},
		rows,
		3, 4, 6,
	)
}

func truncate(value string, max int) string {
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	return value[:max-3] + "..."
}
