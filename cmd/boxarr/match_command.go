package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"boxarr/internal/match"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "match <title>",
		Short: "Match one chart title against the Radarr library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return fmt.Errorf("title must not be empty")
			}

			library, err := ctx.library()
			if err != nil {
				return err
			}
			movies, err := library.ListMovies(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch library snapshot: %w", err)
			}

			matcher := match.New(cfg.Matching.MinConfidence)
			result := matcher.MatchOne(title, movies)

			if jsonOut {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			if !result.Matched() {
				fmt.Fprintf(out, "No library match for %q (library size %d)\n", title, len(movies))
				return nil
			}
			fmt.Fprintf(out, "%q -> %q (%d)\n", title, result.Movie.Title, result.Movie.Year)
			fmt.Fprintf(out, "Method: %s  Confidence: %.2f  Status: %s\n",
				result.Method, result.Confidence, result.Movie.DisplayStatus())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the match result as JSON")
	return cmd
}
