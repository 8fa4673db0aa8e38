package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"boxarr/internal/journal"
)

type statusReport struct {
	ConfigPath    string       `json:"config_path"`
	DaemonRunning bool         `json:"daemon_running"`
	RadarrURL     string       `json:"radarr_url"`
	RadarrOK      bool         `json:"radarr_ok"`
	ScheduleOn    bool         `json:"schedule_enabled"`
	Weekday       time.Weekday `json:"weekday"`
	Hour          int          `json:"hour"`
	LastRun       *journal.Run `json:"last_run,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, Radarr, and last-run status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			report := statusReport{
				ConfigPath: ctx.configPath,
				RadarrURL:  cfg.Radarr.URL,
				ScheduleOn: cfg.Scheduler.Enabled,
				Weekday:    time.Weekday(cfg.Scheduler.Weekday),
				Hour:       cfg.Scheduler.Hour,
			}

			report.DaemonRunning = daemonLockHeld(filepath.Join(cfg.Data.Directory, "boxarrd.lock"))

			if library, libErr := ctx.library(); libErr == nil {
				report.RadarrOK = library.Ping(cmd.Context()) == nil
			}

			store, err := ctx.openJournal()
			if err != nil {
				return fmt.Errorf("open run journal: %w", err)
			}
			defer store.Close()
			runs, err := store.Recent(cmd.Context(), 1)
			if err != nil {
				return fmt.Errorf("read run journal: %w", err)
			}
			if len(runs) > 0 {
				report.LastRun = &runs[0]
			}

			if jsonOut {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, "Boxarr status")
			fmt.Fprintln(out, renderStatusLine("Config", statusInfo, report.ConfigPath, colorize))
			fmt.Fprintln(out, renderStatusLine("Daemon", boolKind(report.DaemonRunning), runningLabel(report.DaemonRunning), colorize))
			fmt.Fprintln(out, renderStatusLine("Radarr", boolKind(report.RadarrOK), fmt.Sprintf("%s (reachable: %s)", report.RadarrURL, yesNo(report.RadarrOK)), colorize))
			schedule := fmt.Sprintf("%s at %02d:00 (enabled: %s)", report.Weekday, report.Hour, yesNo(report.ScheduleOn))
			fmt.Fprintln(out, renderStatusLine("Schedule", statusInfo, schedule, colorize))
			if report.LastRun != nil {
				last := fmt.Sprintf("%dW%02d %s (%s, %d matched / %d unmatched)",
					report.LastRun.Year, report.LastRun.Week, report.LastRun.Status,
					report.LastRun.StartedAt.Local().Format("2006-01-02 15:04"),
					report.LastRun.MatchedCount, report.LastRun.UnmatchedCount)
				kind := statusOK
				if report.LastRun.Status == journal.StatusFailed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine("Last run", kind, last, colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Last run", statusWarn, "never", colorize))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit status as JSON")
	return cmd
}

// daemonLockHeld probes the daemon lock file without disturbing a running
// instance. A successful trial acquisition is released immediately.
func daemonLockHeld(path string) bool {
	probe := flock.New(path)
	ok, err := probe.TryLock()
	if err != nil {
		return false
	}
	if ok {
		_ = probe.Unlock()
		return false
	}
	return true
}

func boolKind(ok bool) statusKind {
	if ok {
		return statusOK
	}
	return statusWarn
}

func runningLabel(running bool) string {
	if running {
		return "running"
	}
	return "stopped"
}
