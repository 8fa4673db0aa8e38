package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"boxarr/internal/radarr"
)

func newUpgradeCommand(ctx *commandContext) *cobra.Command {
	var fromProfile, toProfile string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Move downloaded movies onto the upgrade quality profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(fromProfile) == "" {
				fromProfile = cfg.Radarr.QualityProfile
			}
			if strings.TrimSpace(toProfile) == "" {
				toProfile = cfg.Radarr.UpgradeProfile
			}
			if strings.TrimSpace(toProfile) == "" {
				return fmt.Errorf("no upgrade profile configured; set radarr.upgrade_profile or pass --to")
			}

			library, err := ctx.library()
			if err != nil {
				return err
			}

			results, errs := radarr.UpgradeProfiles(cmd.Context(), library, fromProfile, toProfile)

			if jsonOut {
				payload := struct {
					Upgraded []radarr.UpgradeResult `json:"upgraded"`
					Errors   []string               `json:"errors,omitempty"`
				}{Upgraded: results}
				for _, e := range errs {
					payload.Errors = append(payload.Errors, e.Error())
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 && len(errs) == 0 {
				fmt.Fprintf(out, "No downloaded movies on profile %q.\n", fromProfile)
				return nil
			}
			for _, result := range results {
				fmt.Fprintf(out, "Upgraded %q: %s -> %s\n", result.Title, result.From, result.To)
			}
			for _, e := range errs {
				fmt.Fprintf(out, "Error: %v\n", e)
			}
			fmt.Fprintf(out, "%d upgraded, %d failed\n", len(results), len(errs))
			return nil
		},
	}

	cmd.Flags().StringVar(&fromProfile, "from", "", "Source quality profile (default: radarr.quality_profile)")
	cmd.Flags().StringVar(&toProfile, "to", "", "Target quality profile (default: radarr.upgrade_profile)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit upgrade results as JSON")
	return cmd
}
