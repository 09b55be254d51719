package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"kallisto/internal/config"
	"kallisto/internal/export"
	"kallisto/internal/transcripts"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outPath string
	var dirPath string

	cmd := &cobra.Command{
		Use:   "export <slug>",
		Short: "Export a mission's transcript and metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *transcripts.Store) error {
				exporter, err := export.Load(cmd.Context(), store, args[0], cfg.Cleaning.TranscriptName)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if dir := strings.TrimSpace(dirPath); dir != "" {
					if err := exporter.WriteDir(dir); err != nil {
						return err
					}
					fmt.Fprintf(out, "Exported %s to %s\n", args[0], dir)
					return nil
				}

				target := strings.TrimSpace(outPath)
				if target == "" {
					target = exporter.ArchiveName()
				}
				file, err := os.Create(target)
				if err != nil {
					return fmt.Errorf("create archive: %w", err)
				}
				if err := exporter.WriteArchive(file); err != nil {
					_ = file.Close()
					return err
				}
				if err := file.Close(); err != nil {
					return fmt.Errorf("close archive: %w", err)
				}
				fmt.Fprintf(out, "Exported %s to %s\n", args[0], target)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Archive destination (defaults to <slug>.zip)")
	cmd.Flags().StringVar(&dirPath, "dir", "", "Write files to a directory instead of a zip")
	return cmd
}
