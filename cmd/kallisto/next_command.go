package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"kallisto/internal/api"
	"kallisto/internal/config"
	"kallisto/internal/identity"
	"kallisto/internal/transcripts"
)

func newNextCommand(ctx *commandContext) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "next <slug>",
		Short: "Route a cleaner to their next page and lock it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *transcripts.Store) error {
				cleaner, err := identity.NewResolver(store).Resolve(cmd.Context(), user)
				if err != nil {
					return fmt.Errorf("resolve identity: %w", err)
				}

				svc := api.NewCleaningService(store)
				next, err := svc.Next(cmd.Context(), args[0], cleaner.ID, time.Now())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if next.Done {
					fmt.Fprintf(out, "No pages left for %s in %s\n", cleaner.Name, args[0])
					return nil
				}
				fmt.Fprintf(out, "Page %d locked for %s until %s\n", next.Page.Number, cleaner.Name, next.Page.LockExpires)
				fmt.Fprintln(out)
				fmt.Fprintln(out, next.Page.Text)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "Cleaner identity")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
