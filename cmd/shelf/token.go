package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/shelflife/internal/http/auth"
)

func tokenCmd(opts *rootOptions) *cobra.Command {
	var (
		user string
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.cfg.Auth.Secret == "" {
				return errors.New("AUTH_SECRET is not set")
			}

			token, err := auth.IssueToken(opts.cfg.Auth.Secret, user, ttl, time.Now())
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)

			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "username the token is issued to")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
