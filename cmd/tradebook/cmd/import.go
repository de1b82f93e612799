package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebook/config"
	"github.com/rustyeddy/tradebook/journal"
	"github.com/rustyeddy/tradebook/venues"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a venue export file into the trade journal",
	Long: `Import parses a delimited export for the declared venue, reconciles
it into closed trades, and appends them to the journal. The full
diagnostic log is printed so you can audit which rows were accepted,
merged, or dropped.

Supported venues:
  - bybit             perp exchange execution/closed-P&L exports
  - robinhood         realized-gains export (already closed positions)
  - robinhood-orders  raw order history (matched FIFO here)
  - metatrader        forex statement rows (server-local times)

Example:
  tradebook import -f statements/closed_pnl.csv -v bybit`,
	RunE: runImport,
}

var (
	importFile  string
	importVenue string
	importPaste bool
	importDB    string
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "path to the export file (required)")
	importCmd.Flags().StringVarP(&importVenue, "venue", "v", "", "venue identifier (required)")
	importCmd.Flags().BoolVar(&importPaste, "paste", false, "treat input as a pasted tab-separated block")
	importCmd.Flags().StringVarP(&importDB, "db", "d", "", "journal DB path (overrides config)")

	importCmd.MarkFlagRequired("file")
	importCmd.MarkFlagRequired("venue")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(importFile)
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}

	loc, err := cfg.Forex.Location()
	if err != nil {
		return err
	}
	sizes := make(map[string]decimal.Decimal, len(cfg.Forex.ContractSizes))
	for prefix, size := range cfg.Forex.ContractSizes {
		sizes[prefix] = decimal.NewFromFloat(size)
	}

	result, err := venues.Import(importVenue, string(data), venues.Options{
		Paste:         importPaste,
		Location:      loc,
		ContractSizes: sizes,
	})
	printLogs(result)
	if err != nil {
		if errors.Is(err, venues.ErrNoHeader) {
			return fmt.Errorf("import failed: %w (see log above)", err)
		}
		return fmt.Errorf("import failed: %w", err)
	}

	return appendToJournal(cfg, result)
}

func loadConfig() (*config.Config, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(cfgPath)
}

func printLogs(result *venues.Result) {
	if result == nil {
		return
	}
	for _, line := range result.Logs {
		fmt.Println(line)
	}
}

func appendToJournal(cfg *config.Config, result *venues.Result) error {
	dbPath := cfg.Store.Path
	if importDB != "" {
		dbPath = importDB
	}

	j, err := journal.NewSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	inserted, err := j.AppendTrades(result.Trades)
	if err != nil {
		return fmt.Errorf("append trades: %w", err)
	}

	fmt.Printf("\n%d trades reconciled, %d new, %d already in journal\n",
		len(result.Trades), inserted, len(result.Trades)-inserted)
	if len(result.Open) > 0 {
		fmt.Printf("%d positions still open:\n", len(result.Open))
		for _, pos := range result.Open {
			fmt.Printf("  %s %s qty %s @ %s\n", pos.Instrument, pos.Direction, pos.Remaining, pos.Price)
		}
	}
	return nil
}
