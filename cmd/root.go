package main

import (
	"github.com/spf13/cobra"
)

var cfgFile string

// NewRootCmd returns the root command of the repost bot
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "repost",
		Short:         "Instagram re-post bot",
		Long:          "Re-posts the most popular unused media of registered source accounts, one account per cooldown window.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config/config.yaml or config.yaml)")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newIntakeCmd())
	rootCmd.AddCommand(newAccountsCmd())

	return rootCmd
}
