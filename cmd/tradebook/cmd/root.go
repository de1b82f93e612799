package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tradebook",
	Short: "Reconcile trading-venue exports into a canonical trade journal",
	Long: `Tradebook ingests per-fill transaction records from multiple trading
venues and reconciles them into closed round-trip trades with computed
P&L, fees, and percentage return.

It provides tools for:
  - Importing delimited exports (crypto perps, brokerage, forex)
  - Syncing transactions from a brokerage API connection
  - FIFO open/close matching with partial-fill aggregation
  - Expired-option resolution
  - An append-only SQLite journal with duplicate suppression

Complete documentation is available at https://github.com/rustyeddy/tradebook`,
}

var cfgPath string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (YAML or JSON)")
}
