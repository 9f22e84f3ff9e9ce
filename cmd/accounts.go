package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"auto_repost_instagram/internal/policy"
	"auto_repost_instagram/internal/usecase"
)

func newAccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Inspect and remove source accounts",
	}

	cmd.AddCommand(newAccountsListCmd())
	cmd.AddCommand(newAccountsDeleteCmd())
	return cmd
}

func newAccountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List source accounts with their cooldown state",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			accounts, err := usecase.NewAccountManager(a.accountRepo).ListAccounts(cmd.Context())
			if err != nil {
				return err
			}

			now := time.Now()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-30s %-6s %-8s %s\n", "USERNAME", "USED", "DUE", "LAST UPLOAD")
			for _, account := range accounts {
				last := "never"
				if account.LastUploadAt != nil {
					last = account.LastUploadAt.Format(time.RFC3339)
				}
				fmt.Fprintf(out, "%-30s %-6d %-8t %s\n",
					account.Username,
					len(account.UsedMediaIDs),
					policy.IsEligible(account, now, a.cfg.Cooldown),
					last,
				)
			}
			return nil
		},
	}
}

func newAccountsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a source account and its usage history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := usecase.NewAccountManager(a.accountRepo).DeleteAccount(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}
