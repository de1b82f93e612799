package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebook/journal"
)

var tradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "List reconciled trades from the journal",
	Long: `List closed trades stored in the journal, optionally filtered by
instrument and exit-time range, or export them as CSV.

Examples:
  tradebook trades --since 2026-01-01 --until 2026-07-01
  tradebook trades -i BTCUSDT --csv > btc.csv
  tradebook trades --summary`,
	RunE: runTrades,
}

var (
	tradesInstrument string
	tradesSince      string
	tradesUntil      string
	tradesCSV        bool
	tradesSummary    bool
	tradesDB         string
)

func init() {
	rootCmd.AddCommand(tradesCmd)

	tradesCmd.Flags().StringVarP(&tradesInstrument, "instrument", "i", "", "filter by instrument")
	tradesCmd.Flags().StringVar(&tradesSince, "since", "", "exit time on or after (YYYY-MM-DD)")
	tradesCmd.Flags().StringVar(&tradesUntil, "until", "", "exit time before (YYYY-MM-DD)")
	tradesCmd.Flags().BoolVar(&tradesCSV, "csv", false, "write CSV to stdout")
	tradesCmd.Flags().BoolVar(&tradesSummary, "summary", false, "per-instrument totals instead of rows")
	tradesCmd.Flags().StringVarP(&tradesDB, "db", "d", "", "journal DB path (overrides config)")
}

func runTrades(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dbPath := cfg.Store.Path
	if tradesDB != "" {
		dbPath = tradesDB
	}

	j, err := journal.NewSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	if tradesSummary {
		summaries, err := j.Summarize()
		if err != nil {
			return err
		}
		fmt.Printf("%-16s %8s %14s %12s\n", "INSTRUMENT", "TRADES", "NET P&L", "FEES")
		for _, s := range summaries {
			fmt.Printf("%-16s %8d %14.2f %12.2f\n", s.Instrument, s.Trades, s.NetPNL, s.Fees)
		}
		return nil
	}

	start := time.Time{}
	end := time.Now().UTC().Add(24 * time.Hour)
	if tradesSince != "" {
		if start, err = time.Parse("2006-01-02", tradesSince); err != nil {
			return fmt.Errorf("parse --since: %w", err)
		}
	}
	if tradesUntil != "" {
		if end, err = time.Parse("2006-01-02", tradesUntil); err != nil {
			return fmt.Errorf("parse --until: %w", err)
		}
	}

	trades, err := j.ListTrades(tradesInstrument, start, end)
	if err != nil {
		return err
	}

	if tradesCSV {
		return journal.WriteCSV(os.Stdout, trades)
	}

	fmt.Printf("%-16s %-6s %-6s %12s %12s %10s %12s %9s\n",
		"INSTRUMENT", "TYPE", "SIDE", "ENTRY", "EXIT", "QTY", "P&L", "RETURN")
	for _, t := range trades {
		fmt.Printf("%-16s %-6s %-6s %12s %12s %10s %12s %8s%%\n",
			t.Instrument, t.AssetType, t.Direction,
			t.EntryPrice.StringFixed(4), t.ExitPrice.StringFixed(4),
			t.Quantity.String(), t.PNL.StringFixed(2), t.PNLPercent.StringFixed(2))
	}
	fmt.Printf("\n%d trades\n", len(trades))
	return nil
}
