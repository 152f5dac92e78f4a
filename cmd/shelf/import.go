package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/shelflife/internal/importer"
	"github.com/MrJamesThe3rd/shelflife/internal/item"
)

func importCmd(opts *rootOptions) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Add items from a pantry list CSV",
		Long: `Import reads a pantry list exported from a spreadsheet or another app.
The delimiter, character set and column layout are detected from the file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			if user == "" {
				user = opts.cfg.Username
			}

			var report *importer.Report

			err = withItems(cmd.Context(), opts.cfg, func(svc *item.Service) error {
				var err error
				report, err = importer.NewService(svc, nil).Import(cmd.Context(), f, user)

				return err
			})
			if err != nil {
				return fmt.Errorf("failed to import %s: %w", args[0], err)
			}

			slog.Debug("import finished", "profile", report.Profile, "imported", len(report.Imported))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d items (%s layout)\n", len(report.Imported), report.Profile)

			for _, r := range report.Rejected {
				fmt.Fprintf(out, "line %d: %s\n", r.Line, r.Reason)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "save items as this user (default: SHELF_USER)")

	return cmd
}
