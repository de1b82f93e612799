package recon

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func at(minute int) time.Time {
	return time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC).Add(time.Duration(minute) * time.Minute)
}

func fill(instrument string, minute int, price, qty string, dir Direction, opening bool) Fill {
	return Fill{
		Instrument: instrument,
		Time:       at(minute),
		Price:      d(price),
		Quantity:   d(qty),
		Direction:  dir,
		Opening:    opening,
	}
}

func TestMatcherPartialCloses(t *testing.T) {
	t.Parallel()

	log := &Log{}
	m := NewMatcher(log)
	m.AddAll([]Fill{
		fill("AAPL", 0, "100", "10", Long, true),
		fill("AAPL", 5, "110", "4", Long, false),
		fill("AAPL", 9, "120", "6", Long, false),
	})

	trades := m.Trades()
	require.Len(t, trades, 2)

	assert.True(t, trades[0].Quantity.Equal(d("4")), "qty %s", trades[0].Quantity)
	assert.True(t, trades[0].PNL.Equal(d("40")), "pnl %s", trades[0].PNL)
	assert.True(t, trades[1].Quantity.Equal(d("6")), "qty %s", trades[1].Quantity)
	assert.True(t, trades[1].PNL.Equal(d("120")), "pnl %s", trades[1].PNL)

	assert.Empty(t, m.Residuals())
}

func TestMatcherConservation(t *testing.T) {
	t.Parallel()

	m := NewMatcher(&Log{})
	m.AddAll([]Fill{
		fill("ETHUSDT", 0, "2000", "3", Long, true),
		fill("ETHUSDT", 1, "2100", "2", Long, true),
		fill("ETHUSDT", 2, "2200", "4", Long, false),
		fill("ETHUSDT", 3, "2300", "10", Long, false), // over-closes by 9
	})

	var matched decimal.Decimal
	for _, tr := range m.Trades() {
		matched = matched.Add(tr.Quantity)
	}
	// min(total opened, total closed) = min(5, 14) = 5
	assert.True(t, matched.Equal(d("5")), "matched %s", matched)
	assert.Empty(t, m.Residuals())
}

func TestMatcherOrphanedClose(t *testing.T) {
	t.Parallel()

	log := &Log{}
	m := NewMatcher(log)
	m.Add(fill("TSLA", 0, "250", "5", Long, false))

	assert.Empty(t, m.Trades())
	require.Equal(t, 1, log.Len())
	assert.Contains(t, log.Lines()[0], "unmatched closing quantity 5")
	assert.Contains(t, log.Lines()[0], "TSLA")
}

func TestMatcherCrossesOldestFirst(t *testing.T) {
	t.Parallel()

	m := NewMatcher(&Log{})
	m.AddAll([]Fill{
		fill("BTCUSDT", 0, "50000", "1", Long, true),
		fill("BTCUSDT", 1, "51000", "1", Long, true),
		fill("BTCUSDT", 2, "52000", "1", Long, false),
	})

	trades := m.Trades()
	require.Len(t, trades, 1)
	// FIFO: the close matches the minute-0 open at 50000, not 51000.
	assert.True(t, trades[0].EntryPrice.Equal(d("50000")))

	open := m.Residuals()
	require.Len(t, open, 1)
	assert.True(t, open[0].Price.Equal(d("51000")))
	assert.True(t, open[0].Remaining.Equal(d("1")))
}

func TestMatcherFeesNeverDoubleCounted(t *testing.T) {
	t.Parallel()

	m := NewMatcher(&Log{})
	open := fill("AAPL", 0, "100", "10", Long, true)
	open.Fee = d("10") // whole opening fee
	m.Add(open)

	c1 := fill("AAPL", 1, "110", "4", Long, false)
	c1.Fee = d("2")
	m.Add(c1)
	c2 := fill("AAPL", 2, "110", "6", Long, false)
	c2.Fee = d("3")
	m.Add(c2)

	trades := m.Trades()
	require.Len(t, trades, 2)

	// Opening fee splits 4/10 and 6/10; each close contributes its own.
	assert.True(t, trades[0].Fees.Equal(d("6")), "fees %s", trades[0].Fees)
	assert.True(t, trades[1].Fees.Equal(d("9")), "fees %s", trades[1].Fees)

	total := trades[0].Fees.Add(trades[1].Fees)
	assert.True(t, total.Equal(d("15")))
}

func TestMatcherSortsByTimestamp(t *testing.T) {
	t.Parallel()

	m := NewMatcher(&Log{})
	// Close listed before its open; AddAll must time-sort.
	m.AddAll([]Fill{
		fill("AAPL", 5, "110", "1", Long, false),
		fill("AAPL", 0, "100", "1", Long, true),
	})

	require.Len(t, m.Trades(), 1)
	assert.True(t, m.Trades()[0].PNL.Equal(d("10")))
}

func TestMatcherIsolatedPerInstrument(t *testing.T) {
	t.Parallel()

	log := &Log{}
	m := NewMatcher(log)
	m.AddAll([]Fill{
		fill("AAPL", 0, "100", "1", Long, true),
		fill("MSFT", 1, "300", "1", Long, false), // orphan: different instrument
	})

	assert.Empty(t, m.Trades())
	require.Len(t, m.Residuals(), 1)
	assert.Equal(t, "AAPL", m.Residuals()[0].Instrument)
}

func TestReconcilePipeline(t *testing.T) {
	t.Parallel()

	log := &Log{}
	trades, open := Reconcile([]Fill{
		fill("AAPL", 0, "100", "10", Long, true),
		fill("AAPL", 0, "100", "4", Long, false),
		fill("AAPL", 0, "100", "6", Long, false),
		fill("MSFT", 1, "300", "2", Long, true),
	}, at(10), log)

	// The two same-minute partial closes aggregate into one trade.
	require.Len(t, trades, 1)
	assert.True(t, trades[0].Quantity.Equal(d("10")))
	require.Len(t, open, 1)
	assert.Equal(t, "MSFT", open[0].Instrument)
	assert.NotZero(t, log.Len())
}
