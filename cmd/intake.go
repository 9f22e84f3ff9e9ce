package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"auto_repost_instagram/internal/usecase"
)

func newIntakeCmd() *cobra.Command {
	var listPath string

	cmd := &cobra.Command{
		Use:   "intake [username...]",
		Short: "Register source accounts",
		Long:  "Registers the given usernames, or with no arguments drains the account list file (one username per line) and truncates it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			manager := usecase.NewAccountManager(a.accountRepo)

			if len(args) > 0 {
				created, err := manager.RegisterUsernames(cmd.Context(), args)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "registered %d new account(s)\n", created)
				return nil
			}

			path := listPath
			if path == "" {
				path = a.cfg.AccountListPath
			}
			created, err := manager.IngestAccountList(cmd.Context(), path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %d new account(s) from %s\n", created, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&listPath, "file", "", "account list file (default is intake.account_list)")
	return cmd
}
