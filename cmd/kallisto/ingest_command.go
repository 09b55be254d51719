package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"kallisto/internal/config"
	"kallisto/internal/ingest"
	"kallisto/internal/transcripts"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var name string
	var start string
	var wikiURL string

	cmd := &cobra.Command{
		Use:   "ingest <slug> <pages-dir>",
		Short: "Create a mission from a directory of numbered page scans",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *transcripts.Store) error {
				var launch time.Time
				if trimmed := strings.TrimSpace(start); trimmed != "" {
					parsed, err := time.Parse("2006-01-02", trimmed)
					if err != nil {
						return fmt.Errorf("invalid --start date %q: %w", trimmed, err)
					}
					launch = parsed
				}

				mission, err := ingest.IngestMission(cmd.Context(), store, ingest.Mission{
					Slug:    args[0],
					Name:    name,
					Start:   launch,
					WikiURL: wikiURL,
				})
				if err != nil {
					return err
				}
				count, err := ingest.IngestPages(cmd.Context(), store, mission.ID, args[1])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Ingested mission %s (%s) with %d pages\n", mission.Slug, mission.Name, count)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (derived from the slug when omitted)")
	cmd.Flags().StringVar(&start, "start", "", "Launch date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&wikiURL, "wiki", "", "Wiki article URL")
	return cmd
}
