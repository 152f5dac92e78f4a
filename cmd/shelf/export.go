package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/shelflife/internal/expiry"
	"github.com/MrJamesThe3rd/shelflife/internal/export"
	"github.com/MrJamesThe3rd/shelflife/internal/item"
)

func exportCmd(opts *rootOptions) *cobra.Command {
	var (
		user   string
		within int
		digest bool
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write saved items as CSV or as a short digest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter item.ListFilter
			if user != "" {
				filter.Username = new(user)
			}

			if within >= 0 {
				filter.ExpiringBy = new(expiry.DateOf(time.Now()).AddDays(within))
			}

			var entries []export.Entry

			err := withItems(cmd.Context(), opts.cfg, func(svc *item.Service) error {
				var err error
				entries, err = export.NewService(svc).Export(cmd.Context(), filter)

				return err
			})
			if err != nil {
				return fmt.Errorf("failed to export items: %w", err)
			}

			var w io.Writer = cmd.OutOrStdout()

			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer func() {
					if closeErr := f.Close(); closeErr != nil {
						slog.Error("failed to close export file", "error", closeErr)
					}
				}()

				w = f
			}

			if digest {
				_, err = io.WriteString(w, export.Digest(entries))
				return err
			}

			return export.WriteCSV(w, entries)
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "only items saved by this user")
	cmd.Flags().IntVar(&within, "within", -1, "only items expiring within this many days (negative: all)")
	cmd.Flags().BoolVar(&digest, "digest", false, "print a one-line-per-item digest instead of CSV")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")

	return cmd
}
