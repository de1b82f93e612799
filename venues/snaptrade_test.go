package venues

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradebook/brokerapi"
	"github.com/rustyeddy/tradebook/recon"
)

func TestImportTransactionsRoundTrip(t *testing.T) {
	t.Parallel()

	txs := []brokerapi.Transaction{
		{
			ID: "tx1", Type: "BUY", TradeDate: "2026-01-05T14:30:00Z",
			Units: 10, Price: 100,
			Fees:       []brokerapi.FeeItem{{Type: "COMMISSION", Amount: 1}, {Type: "SEC", Amount: 0.5}},
			Instrument: brokerapi.Instrument{Symbol: "AAPL", AssetClass: "EQUITY"},
		},
		{
			ID: "tx2", Type: "DIVIDEND", TradeDate: "2026-01-20T00:00:00Z",
			Units: 0, Price: 0,
			Instrument: brokerapi.Instrument{Symbol: "AAPL", AssetClass: "EQUITY"},
		},
		{
			ID: "tx3", Type: "SELL", TradeDate: "2026-02-05T14:30:00Z",
			Units: -10, Price: 110,
			Instrument: brokerapi.Instrument{Symbol: "AAPL", AssetClass: "EQUITY"},
		},
	}

	result := ImportTransactions(txs, Options{Now: testNow})
	require.Len(t, result.Trades, 1)

	tr := result.Trades[0]
	assert.Equal(t, recon.Stock, tr.AssetType)
	assert.True(t, tr.Quantity.Equal(decimal.NewFromInt(10)))
	// (110-100)*10 minus the 1.50 in nested fee items.
	assert.True(t, tr.PNL.Equal(decimal.NewFromFloat(98.5)), "pnl %s", tr.PNL)

	joined := strings.Join(result.Logs, "\n")
	assert.Contains(t, joined, `type "DIVIDEND" is not a trade`)
}

func TestImportTransactionsOptionSymbol(t *testing.T) {
	t.Parallel()

	txs := []brokerapi.Transaction{
		{
			ID: "tx1", Type: "BUY_TO_OPEN", TradeDate: "2024-01-02T14:30:00Z",
			Units: 1, Price: 1.50,
			Instrument: brokerapi.Instrument{
				Symbol:     "AAPL",
				AssetClass: "OPTION",
				Option:     &brokerapi.OptionDetails{Strike: 150, Expiration: "2024-01-19", IsCall: true},
			},
		},
	}

	// The option expired before Now with no closing transaction: the
	// expiration resolver synthesizes the worthless close.
	result := ImportTransactions(txs, Options{Now: testNow})
	require.Len(t, result.Trades, 1)

	tr := result.Trades[0]
	assert.Equal(t, "AAPL240119C00150000", tr.Instrument)
	assert.Equal(t, recon.Option, tr.AssetType)
	assert.True(t, tr.ExitPrice.IsZero())
	assert.True(t, tr.PNLPercent.Equal(decimal.NewFromInt(-100)))
	// -(1.50 * 1 * 100)
	assert.True(t, tr.PNL.Equal(decimal.NewFromInt(-150)), "pnl %s", tr.PNL)
	assert.Empty(t, result.Open)
}

func TestImportTransactionsSkipsDefects(t *testing.T) {
	t.Parallel()

	txs := []brokerapi.Transaction{
		{ID: "a", Type: "BUY", TradeDate: "2026-01-05", Units: 0, Price: 10,
			Instrument: brokerapi.Instrument{Symbol: "AAPL"}},
		{ID: "b", Type: "BUY", TradeDate: "2026-01-05", Units: 1, Price: 10,
			Instrument: brokerapi.Instrument{Symbol: ""}},
	}
	result := ImportTransactions(txs, Options{Now: testNow})
	assert.Empty(t, result.Trades)

	joined := strings.Join(result.Logs, "\n")
	assert.Contains(t, joined, "no instrument symbol")
	assert.Contains(t, joined, "units 0")
}

func TestAssetClass(t *testing.T) {
	t.Parallel()

	assert.Equal(t, recon.Crypto, assetClass(brokerapi.Instrument{AssetClass: "CRYPTO"}))
	assert.Equal(t, recon.Forex, assetClass(brokerapi.Instrument{AssetClass: "FX"}))
	assert.Equal(t, recon.Stock, assetClass(brokerapi.Instrument{AssetClass: "EQUITY"}))
	assert.Equal(t, recon.Option, assetClass(brokerapi.Instrument{
		AssetClass: "EQUITY", Option: &brokerapi.OptionDetails{},
	}))
}
