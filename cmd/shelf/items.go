package main

import (
	"context"
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/shelflife/internal/config"
	"github.com/MrJamesThe3rd/shelflife/internal/database"
	"github.com/MrJamesThe3rd/shelflife/internal/expiry"
	"github.com/MrJamesThe3rd/shelflife/internal/freshness"
	"github.com/MrJamesThe3rd/shelflife/internal/item"
	itemStore "github.com/MrJamesThe3rd/shelflife/internal/item/store"
)

func itemsCmd(opts *rootOptions) *cobra.Command {
	var (
		user   string
		within int
	)

	cmd := &cobra.Command{
		Use:   "items",
		Short: "List saved items, soonest expiry first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			today := expiry.DateOf(time.Now())

			var filter item.ListFilter
			if user != "" {
				filter.Username = new(user)
			}

			if within >= 0 {
				filter.ExpiringBy = new(today.AddDays(within))
			}

			var items []*item.Item

			err := withItems(cmd.Context(), opts.cfg, func(svc *item.Service) error {
				var err error
				items, err = svc.List(cmd.Context(), filter)

				return err
			})
			if err != nil {
				return fmt.Errorf("failed to list items: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "EXPIRY\tFRESHNESS\tNAME\tBRAND\tUSER")

			for _, it := range items {
				badge := freshness.BadgeFor(freshness.Classify(it.Expiry, today))
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", it.Expiry, badge.Text, it.Name, it.Brand, it.Username)
			}

			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "only items saved by this user")
	cmd.Flags().IntVar(&within, "within", -1, "only items expiring within this many days (negative: all)")

	return cmd
}

// withItems opens the configured database, migrates the item table and hands
// an item service to fn. The database is closed when fn returns.
func withItems(ctx context.Context, cfg *config.Config, fn func(*item.Service) error) error {
	db, err := database.New(cfg.DB.Driver, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	store := itemStore.New(db, cfg.DB.Driver)
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	return fn(item.NewService(store))
}
