package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradebook/recon"
)

func testTrade(id, instrument string, pnl float64) recon.Trade {
	return recon.Trade{
		ID:         id,
		Exchange:   "Bybit",
		Instrument: instrument,
		AssetType:  recon.Crypto,
		Direction:  recon.Long,
		EntryPrice: decimal.NewFromInt(100),
		ExitPrice:  decimal.NewFromInt(110),
		Quantity:   decimal.NewFromInt(2),
		EntryTime:  time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
		ExitTime:   time.Date(2026, 1, 6, 10, 0, 0, 0, time.UTC),
		Fees:       decimal.NewFromInt(1),
		PNL:        decimal.NewFromFloat(pnl),
		PNLPercent: decimal.NewFromInt(9),
		Multiplier: decimal.NewFromInt(1),
		Status:     recon.StatusClosed,
	}
}

func openStore(t *testing.T) *SQLite {
	t.Helper()
	j, err := NewSQLite(filepath.Join(t.TempDir(), "trades.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestAppendAndGet(t *testing.T) {
	t.Parallel()

	j := openStore(t)
	n, err := j.AppendTrades([]recon.Trade{testTrade("T1", "BTCUSDT", 19)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := j.GetTrade("T1")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", got.Instrument)
	assert.True(t, got.PNL.Equal(decimal.NewFromInt(19)))
	assert.Equal(t, recon.StatusClosed, got.Status)

	_, err = j.GetTrade("missing")
	assert.Error(t, err)
}

func TestAppendSuppressesDuplicates(t *testing.T) {
	t.Parallel()

	j := openStore(t)
	tr := testTrade("T1", "BTCUSDT", 19)
	n, err := j.AppendTrades([]recon.Trade{tr})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// Re-import of overlapping source data: same content, fresh ID.
	dup := tr
	dup.ID = "T2"
	n, err = j.AppendTrades([]recon.Trade{dup})
	require.NoError(t, err)
	assert.Equal(t, 0, n, "logically identical trade must be ignored")

	trades, err := j.ListTrades("", time.Time{}, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, trades, 1)
}

func TestListTradesFilters(t *testing.T) {
	t.Parallel()

	j := openStore(t)
	a := testTrade("T1", "BTCUSDT", 10)
	b := testTrade("T2", "ETHUSDT", 20)
	b.ExitTime = b.ExitTime.Add(48 * time.Hour)
	_, err := j.AppendTrades([]recon.Trade{a, b})
	require.NoError(t, err)

	got, err := j.ListTrades("ETHUSDT", time.Time{}, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "T2", got[0].ID)

	got, err = j.ListTrades("", time.Time{}, b.ExitTime)
	require.NoError(t, err)
	require.Len(t, got, 1, "range end is exclusive")
	assert.Equal(t, "T1", got[0].ID)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	j := openStore(t)
	a := testTrade("T1", "BTCUSDT", 10)
	b := testTrade("T2", "BTCUSDT", -4)
	b.EntryPrice = decimal.NewFromInt(105) // different content hash
	_, err := j.AppendTrades([]recon.Trade{a, b})
	require.NoError(t, err)

	summaries, err := j.Summarize()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "BTCUSDT", summaries[0].Instrument)
	assert.Equal(t, 2, summaries[0].Trades)
	assert.InDelta(t, 6, summaries[0].NetPNL, 1e-9)
}

func TestContentHashIgnoresID(t *testing.T) {
	t.Parallel()

	a := testTrade("T1", "BTCUSDT", 10)
	b := testTrade("T2", "BTCUSDT", 10)
	assert.Equal(t, ContentHash(a), ContentHash(b))

	c := testTrade("T3", "BTCUSDT", 11)
	assert.NotEqual(t, ContentHash(a), ContentHash(c))
}
