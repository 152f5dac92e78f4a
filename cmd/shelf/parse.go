package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/shelflife/internal/encoding"
	"github.com/MrJamesThe3rd/shelflife/internal/expiry"
	"github.com/MrJamesThe3rd/shelflife/internal/freshness"
)

func parseCmd() *cobra.Command {
	var (
		file string
		year int
	)

	cmd := &cobra.Command{
		Use:   "parse [text...]",
		Short: "Read expiry dates from label text",
		Long: `Parse normalises free-form label text into a calendar date.

Text comes from the arguments, joined with spaces, or from --file where every
non-blank line is read separately. Files in Latin-1 or UTF-16 are decoded first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := parseInputs(args, file)
			if err != nil {
				return err
			}

			if year == 0 {
				year = time.Now().Year()
			}

			today := expiry.DateOf(time.Now())

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "INPUT\tDATE\tRULE\tFRESHNESS")

			for _, in := range inputs {
				d, rule, ok := expiry.ParseWithRule(in, year)
				if !ok {
					fmt.Fprintf(w, "%s\t-\t-\t-\n", in)
					continue
				}

				badge := freshness.BadgeFor(freshness.Classify(d, today))
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", in, d, rule, badge.Text)
			}

			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read label text from a file, one candidate per line")
	cmd.Flags().IntVar(&year, "year", 0, "reference year for dates without one (default: current year)")

	return cmd
}

func parseInputs(args []string, file string) ([]string, error) {
	if file == "" {
		if len(args) == 0 {
			return nil, fmt.Errorf("nothing to parse: pass text or --file")
		}

		return []string{strings.Join(args, " ")}, nil
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}

	text, err := encoding.DecodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", file, err)
	}

	var inputs []string

	for line := range strings.Lines(text) {
		if line = strings.TrimSpace(line); line != "" {
			inputs = append(inputs, line)
		}
	}

	return append(inputs, args...), nil
}
