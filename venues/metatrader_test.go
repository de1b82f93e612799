package venues

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradebook/recon"
)

const mtHeader = "Ticket,Open Time,Type,Size,Item,Open Price,Close Time,Close Price,Commission,Swap,Profit"

func mtOptions(t *testing.T) Options {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Athens")
	require.NoError(t, err)
	return Options{Now: testNow, Location: loc}
}

func TestMetaTraderRow(t *testing.T) {
	t.Parallel()

	recs := records(t, mtHeader,
		"1001,2026.01.15 10:00:00,buy,0.50,EURUSD,1.0850,2026.01.15 14:00:00,1.0900,-2.00,-0.50,250.00")
	trades := parseMetaTrader(recs, mtOptions(t), &recon.Log{})
	require.Len(t, trades, 1)

	tr := trades[0]
	assert.Equal(t, recon.Forex, tr.AssetType)
	assert.Equal(t, recon.Long, tr.Direction)
	assert.Equal(t, "EURUSD", tr.Instrument)
	// Server civil time (EET, UTC+2) converted to an absolute instant.
	assert.Equal(t, time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC), tr.EntryTime)
	// Net of commission and swap: 250 - 2 - 0.50.
	assert.True(t, tr.PNL.Equal(decimal.NewFromFloat(247.5)), "pnl %s", tr.PNL)
	assert.True(t, tr.Fees.Equal(decimal.NewFromFloat(2.5)), "fees %s", tr.Fees)
	assert.True(t, tr.Multiplier.Equal(decimal.NewFromInt(1)))
}

func TestMetaTraderMetalsMultiplier(t *testing.T) {
	t.Parallel()

	recs := records(t, mtHeader,
		"1002,2026.01.15 10:00:00,sell,1.00,XAUUSD,2650.00,2026.01.16 10:00:00,2600.00,0,0,5000.00")
	trades := parseMetaTrader(recs, mtOptions(t), &recon.Log{})
	require.Len(t, trades, 1)

	tr := trades[0]
	assert.Equal(t, recon.Short, tr.Direction)
	assert.True(t, tr.Multiplier.Equal(decimal.NewFromInt(100)), "mult %s", tr.Multiplier)
	// 5000 / (2650 * 1 * 100) * 100
	want := decimal.NewFromFloat(5000).Div(decimal.NewFromFloat(265000)).Mul(decimal.NewFromInt(100))
	assert.True(t, tr.PNLPercent.Sub(want).Abs().LessThan(decimal.NewFromFloat(0.0001)),
		"pct %s want %s", tr.PNLPercent, want)
}

func TestMetaTraderContractSizeOverride(t *testing.T) {
	t.Parallel()

	opts := mtOptions(t)
	opts.ContractSizes = map[string]decimal.Decimal{"XAU": decimal.NewFromInt(50)}
	recs := records(t, mtHeader,
		"1003,2026.01.15 10:00:00,buy,1.00,XAUUSD,2650.00,2026.01.16 10:00:00,2700.00,0,0,2500.00")
	trades := parseMetaTrader(recs, opts, &recon.Log{})
	require.Len(t, trades, 1)
	assert.True(t, trades[0].Multiplier.Equal(decimal.NewFromInt(50)))
}

func TestMetaTraderSkipsBalanceRows(t *testing.T) {
	t.Parallel()

	log := &recon.Log{}
	recs := records(t, mtHeader,
		"1000,2026.01.10 09:00:00,balance,0,Deposit,0,,,0,0,10000.00",
		"1001,2026.01.15 10:00:00,buy,0.50,EURUSD,1.0850,2026.01.15 14:00:00,1.0900,0,0,250.00")
	trades := parseMetaTrader(recs, mtOptions(t), log)
	require.Len(t, trades, 1)
	assert.Contains(t, strings.Join(log.Lines(), "\n"), "not a trade")
}

func TestContractSizeDefaults(t *testing.T) {
	t.Parallel()

	assert.True(t, contractSize("XAUUSD", nil).Equal(decimal.NewFromInt(100)))
	assert.True(t, contractSize("XAGUSD", nil).Equal(decimal.NewFromInt(5000)))
	assert.True(t, contractSize("EURUSD", nil).Equal(decimal.NewFromInt(1)))
}
