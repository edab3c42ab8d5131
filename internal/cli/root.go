package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ledgerbot",
	Short: "Telegram bot for orders, debts and payments of a small shop",
	Long: `ledgerbot keeps per-client debt for a small merchant.

Admins build orders from a product cart, delete orders, apply discounts and
edit clients. Clients confirm their orders and submit payments, which admins
approve or reject. An optional HTTP API and an xlsx export work on the same data.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (default: ./deploy, ., $HOME/.ledgerbot)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
