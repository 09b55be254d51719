package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"kallisto/internal/api"
	"kallisto/internal/config"
	"kallisto/internal/transcripts"
)

func newMissionCommand(ctx *commandContext) *cobra.Command {
	missionCmd := &cobra.Command{
		Use:   "mission",
		Short: "Inspect missions and their cleaning progress",
	}

	missionCmd.AddCommand(newMissionListCommand(ctx))
	missionCmd.AddCommand(newMissionShowCommand(ctx))

	return missionCmd
}

func newMissionListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List missions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *transcripts.Store) error {
				svc := api.NewMissionService(store)
				missions, err := svc.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("list missions: %w", err)
				}
				out := cmd.OutOrStdout()
				if len(missions) == 0 {
					fmt.Fprintln(out, "No missions ingested yet")
					return nil
				}

				rows := make([][]string, 0, len(missions))
				for _, mission := range missions {
					rows = append(rows, []string{
						mission.Slug,
						mission.Name,
						mission.StartDate,
						strconv.Itoa(mission.Progress.Pages),
						strconv.Itoa(mission.Progress.Cleaned),
						strconv.Itoa(mission.Progress.Approved),
						yesNo(mission.Progress.Done),
					})
				}
				headers := []string{"SLUG", "NAME", "START", "PAGES", "CLEANED", "APPROVED", "DONE"}
				if isTerminal(out) {
					fmt.Fprintln(out, renderTable(headers, rows, 3, 4, 5))
				} else {
					for _, row := range rows {
						fmt.Fprintln(out, strings.Join(row, "\t"))
					}
				}
				return nil
			})
		},
	}
}

func newMissionShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <slug>",
		Short: "Show one mission's pages and lock state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *transcripts.Store) error {
				slug := args[0]
				mission, err := store.MissionBySlug(cmd.Context(), slug)
				if err != nil {
					return fmt.Errorf("load mission: %w", err)
				}
				if mission == nil {
					return fmt.Errorf("mission %q not found", slug)
				}
				progress, err := store.MissionProgress(cmd.Context(), mission.ID)
				if err != nil {
					return fmt.Errorf("load progress: %w", err)
				}
				pages, err := store.Pages(cmd.Context(), mission.ID)
				if err != nil {
					return fmt.Errorf("load pages: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%s)\n", mission.Name, mission.Slug)
				fmt.Fprintf(out, "Start: %s\n", mission.Start.UTC().Format("2006-01-02"))
				fmt.Fprintf(out, "Pages: %d  Cleaned: %d  Approved: %d  Done: %s\n",
					progress.Pages, progress.Cleaned, progress.Approved, yesNo(progress.Done()))
				if mission.WikiURL != "" {
					fmt.Fprintf(out, "Wiki: %s\n", mission.WikiURL)
				}

				rows := make([][]string, 0, len(pages))
				for _, page := range pages {
					lock := ""
					if page.LockedBy != "" && page.LockedUntil != nil {
						lock = page.LockedUntil.UTC().Format("2006-01-02 15:04:05")
					}
					rows = append(rows, []string{
						strconv.Itoa(page.Number),
						yesNo(page.Approved),
						lock,
					})
				}
				fmt.Fprintln(out, renderTable([]string{"PAGE", "APPROVED", "LOCKED UNTIL"}, rows, 0))
				return nil
			})
		},
	}
}
