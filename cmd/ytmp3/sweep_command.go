package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ytmp3/internal/audiostore"
)

func newSweepCommand(ctx *commandContext) *cobra.Command {
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove converted files older than the configured age",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			age := cfg.SweepMaxAge()
			if cmd.Flags().Changed("max-age") {
				age = maxAge
			}
			store, err := audiostore.New(cfg.Paths.DownloadsDir)
			if err != nil {
				return err
			}

			result := store.CleanStale(cmd.Context(), age, ctx.cliLogger())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Removed %d file(s) older than %s from %s\n", len(result.Removed), age, store.Dir())
			for _, path := range result.Removed {
				fmt.Fprintf(out, "  - %s\n", path)
			}
			if len(result.Errors) > 0 {
				for _, e := range result.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "  ! %s: %s\n", e.Path, e.Error)
				}
				return fmt.Errorf("%d file(s) could not be removed", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&maxAge, "max-age", time.Hour, "Override sweep.max_age (e.g. 30m)")
	return cmd
}
