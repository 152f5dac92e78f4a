package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/shelflife/internal/config"
	"github.com/MrJamesThe3rd/shelflife/internal/logging"
)

type rootOptions struct {
	logLevel  string
	logFormat string
	cfg       *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "shelf",
		Short: "Read expiry dates and inspect the pantry shelf",
		Long: `shelf reads expiry dates from label text, classifies how fresh they are,
and manages the items saved by the scanner.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			level, format := cfg.Log.Level, cfg.Log.Format
			if cmd.Flags().Changed("log-level") {
				level = opts.logLevel
			}

			if cmd.Flags().Changed("log-format") {
				format = opts.logFormat
			}

			if err := logging.Setup(level, format); err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}

			opts.cfg = cfg

			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format (text, json)")

	cmd.AddCommand(parseCmd())
	cmd.AddCommand(classifyCmd())
	cmd.AddCommand(itemsCmd(opts))
	cmd.AddCommand(importCmd(opts))
	cmd.AddCommand(exportCmd(opts))
	cmd.AddCommand(tokenCmd(opts))

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
