package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/shelflife/internal/expiry"
	"github.com/MrJamesThe3rd/shelflife/internal/freshness"
)

func classifyCmd() *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "classify DATE",
		Short: "Show how fresh an expiry date is",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := expiry.DateOf(time.Now())

			if asOf != "" {
				d, err := expiry.ParseISO(asOf)
				if err != nil {
					return fmt.Errorf("invalid --as-of: %w", err)
				}

				ref = d
			}

			text := strings.Join(args, " ")

			d, ok := expiry.Parse(text, ref.Year)
			if !ok {
				return fmt.Errorf("no expiry date found in %q", text)
			}

			tier := freshness.Classify(d, ref)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", d, tier.Name(), freshness.BadgeFor(tier).Text)

			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "reference day as YYYY-MM-DD (default: today)")

	return cmd
}
