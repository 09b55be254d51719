package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kallisto/internal/config"
	"kallisto/internal/transcripts"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show store location and mission counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *transcripts.Store) error {
				missions, err := store.Missions(cmd.Context())
				if err != nil {
					return fmt.Errorf("list missions: %w", err)
				}
				done := 0
				for _, mission := range missions {
					progress, err := store.MissionProgress(cmd.Context(), mission.ID)
					if err != nil {
						return fmt.Errorf("load progress: %w", err)
					}
					if progress.Done() {
						done++
					}
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Database: %s\n", cfg.DatabasePath())
				fmt.Fprintf(out, "API bind: %s\n", cfg.Paths.APIBind)
				fmt.Fprintf(out, "Lock TTL: %s\n", cfg.LockTTL())
				fmt.Fprintf(out, "Missions: %d (%d fully approved)\n", len(missions), done)
				return nil
			})
		},
	}
}
