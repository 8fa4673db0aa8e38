package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"boxarr/internal/boxoffice"
	"boxarr/internal/history"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var year, week int
	var previous bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile a box-office week against the Radarr library",
		Long: "Reconcile a box-office week against the Radarr library.\n\n" +
			"Without flags the current chart week is reconciled, and the run is\n" +
			"rejected if that week already has a record. Passing --year and --week\n" +
			"(or --previous) re-reconciles an explicit week; re-runs are allowed\n" +
			"and idempotent.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (year == 0) != (week == 0) {
				return fmt.Errorf("--year and --week must be provided together")
			}
			if previous {
				if year != 0 || week != 0 {
					return fmt.Errorf("--previous cannot be combined with --year/--week")
				}
				year, week = boxoffice.PreviousWeek(boxoffice.WeekOf(boxoffice.MostRecentFriday(time.Now())))
			}

			sched, cleanup, err := ctx.newScheduler()
			if err != nil {
				return err
			}
			defer cleanup()

			var record *history.RunRecord
			if year == 0 && week == 0 {
				record, err = sched.TriggerNow(cmd.Context())
			} else {
				record, err = sched.Reconcile(cmd.Context(), year, week)
			}
			if err != nil && record == nil {
				return err
			}

			if jsonOut {
				if jsonErr := writeJSON(cmd, record); jsonErr != nil {
					return jsonErr
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Week %s: %d chart entries, %d matched, %d unmatched\n",
				record.WeekLabel(), record.TotalCount, record.MatchedCount, record.UnmatchedCount)
			if len(record.AddedTitles) > 0 {
				fmt.Fprintf(out, "Added to Radarr: %s\n", strings.Join(record.AddedTitles, ", "))
			}
			for _, skip := range record.Skips {
				fmt.Fprintf(out, "Skipped %q: %s\n", skip.Title, skip.Reason)
			}
			fmt.Fprintln(out, renderRunTable(record))
			if err != nil {
				fmt.Fprintf(out, "Warning: %v\n", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "ISO year of the week to reconcile")
	cmd.Flags().IntVar(&week, "week", 0, "ISO week number to reconcile")
	cmd.Flags().BoolVar(&previous, "previous", false, "Reconcile the week before the current chart week")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the run record as JSON")
	return cmd
}

func renderRunTable(record *history.RunRecord) string {
	type row struct {
		rank  int
		cells []string
	}
	rows := make([]row, 0, record.TotalCount)
	for _, item := range record.MatchedItems {
		rows = append(rows, row{rank: item.Rank, cells: []string{
			fmt.Sprintf("%d", item.Rank),
			item.Title,
			item.MovieTitle,
			item.Method,
			fmt.Sprintf("%.2f", item.Confidence),
			string(item.Status),
		}})
	}
	for _, item := range record.UnmatchedItems {
		rows = append(rows, row{rank: item.Rank, cells: []string{
			fmt.Sprintf("%d", item.Rank),
			item.Title,
			"-",
			"none",
			"0.00",
			item.Reason,
		}})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].rank < rows[j].rank })

	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, r.cells)
	}
	return renderTable(
		[]string{"Rank", "Chart Title", "Library Match", "Method", "Conf", "Status"},
		cells,
		0, 4,
	)
}
