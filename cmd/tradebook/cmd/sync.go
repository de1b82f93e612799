package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebook/brokerapi"
	"github.com/rustyeddy/tradebook/venues"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch brokerage API transactions and reconcile them",
	Long: `Sync pulls transactions from the brokerage API for each configured
account, reconciles them into closed trades, and appends them to the
journal. Accounts are fetched in parallel; each account's batch owns
its own matcher state, so results are independent.

The API token is read from the environment variable named by
api.token_env in the config (a .env file is honored).

Example:
  tradebook sync --since 2026-01-01`,
	RunE: runSync,
}

var (
	syncSince    string
	syncAccounts []string
)

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVar(&syncSince, "since", "", "only fetch transactions on or after this date (YYYY-MM-DD)")
	syncCmd.Flags().StringSliceVar(&syncAccounts, "account", nil, "account IDs (overrides config)")
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// .env is optional; absence is not an error.
	_ = godotenv.Load()
	token := os.Getenv(cfg.API.TokenEnv)
	if token == "" {
		return fmt.Errorf("no API token: set %s", cfg.API.TokenEnv)
	}

	accounts := syncAccounts
	if len(accounts) == 0 {
		accounts = cfg.API.Accounts
	}
	if len(accounts) == 0 {
		return fmt.Errorf("no accounts configured: set api.accounts or pass --account")
	}

	var since time.Time
	if syncSince != "" {
		since, err = time.Parse("2006-01-02", syncSince)
		if err != nil {
			return fmt.Errorf("parse --since: %w", err)
		}
	}

	client := brokerapi.NewClient(cfg.API.BaseURL, token)
	ctx := context.Background()

	type outcome struct {
		account string
		result  *venues.Result
		err     error
	}
	results := make([]outcome, len(accounts))

	var wg sync.WaitGroup
	for i, account := range accounts {
		wg.Add(1)
		go func(i int, account string) {
			defer wg.Done()
			txs, err := client.ListTransactions(ctx, account, since)
			if err != nil {
				results[i] = outcome{account: account, err: err}
				return
			}
			results[i] = outcome{account: account, result: venues.ImportTransactions(txs, venues.Options{})}
		}(i, account)
	}
	wg.Wait()

	var failed error
	for _, r := range results {
		fmt.Printf("== account %s ==\n", r.account)
		if r.err != nil {
			if errors.Is(r.err, brokerapi.ErrReauthRequired) {
				fmt.Printf("connection needs to be re-authenticated: %v\n", r.err)
			} else {
				fmt.Printf("sync failed: %v\n", r.err)
			}
			failed = r.err
			continue
		}
		printLogs(r.result)
		if err := appendToJournal(cfg, r.result); err != nil {
			return err
		}
	}
	return failed
}
