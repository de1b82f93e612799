package venues

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebook/fields"
	"github.com/rustyeddy/tradebook/pkg/id"
	"github.com/rustyeddy/tradebook/recon"
)

// defaultContractSizes are per-lot multipliers by symbol prefix for the
// forex venue. Metals trade in ounces per lot; plain currency pairs
// report P&L directly per lot so they stay at 1.
var defaultContractSizes = map[string]decimal.Decimal{
	"XAU": decimal.NewFromInt(100),
	"XAG": decimal.NewFromInt(5000),
}

// parseMetaTrader converts forex-broker statement rows into trades
// directly: each row is a closed round trip with open and close legs on
// one line. Statement times are civil times in the broker's server
// timezone (opts.Location), converted here to absolute instants.
func parseMetaTrader(records []fields.Record, opts Options, log *recon.Log) []recon.Trade {
	var trades []recon.Trade
	skipped := 0
	for i, rec := range records {
		symbol := strings.ToUpper(strings.TrimSpace(fields.Resolve(rec, "Item", "Symbol", "Instrument")))
		if skippable(symbol) {
			log.Printf("row %d: skipped (no symbol)", i+1)
			skipped++
			continue
		}

		kind := fields.Normalize(fields.Resolve(rec, "Type"))
		var dir recon.Direction
		switch {
		case strings.Contains(kind, "buy"):
			dir = recon.Long
		case strings.Contains(kind, "sell"):
			dir = recon.Short
		default:
			// balance, credit, deposit rows
			log.Printf("row %d: skipped (type %q is not a trade)", i+1, kind)
			skipped++
			continue
		}

		lots := fields.ParseFlexibleMoney(fields.Resolve(rec, "Size", "Lots", "Volume")).Abs()
		entry := fields.ParseFlexibleMoney(fields.Resolve(rec, "Open Price", "Price"))
		exit := fields.ParseFlexibleMoney(fields.Resolve(rec, "Close Price"))
		if lots.IsZero() || !entry.IsPositive() {
			log.Printf("row %d: skipped (%s: size %s, open price %s)", i+1, symbol, lots, entry)
			skipped++
			continue
		}

		openT, okOpen := fields.ParseLocalDate(fields.Resolve(rec, "Open Time"), opts.Location)
		closeT, okClose := fields.ParseLocalDate(fields.Resolve(rec, "Close Time"), opts.Location)
		if !okOpen || !okClose {
			log.Printf("row %d: warning: unparseable time on %s, substituting now", i+1, symbol)
		}

		commission := fields.ParseFlexibleMoney(fields.Resolve(rec, "Commission"))
		swap := fields.ParseFlexibleMoney(fields.Resolve(rec, "Swap"))
		profit := fields.ParseFlexibleMoney(fields.Resolve(rec, "Profit"))

		// Commission and swap are reported signed (negative = cost);
		// the statement's profit column is gross of both.
		fees := commission.Neg().Add(swap.Neg())
		pnl := profit.Add(commission).Add(swap)

		m := contractSize(symbol, opts.ContractSizes)
		trades = append(trades, recon.Trade{
			ID:         id.New(),
			Exchange:   "MetaTrader",
			Instrument: symbol,
			AssetType:  recon.Forex,
			Direction:  dir,
			EntryPrice: entry,
			ExitPrice:  exit,
			Quantity:   lots,
			EntryTime:  openT,
			ExitTime:   closeT,
			Fees:       fees,
			PNL:        pnl,
			PNLPercent: recon.PercentReturn(pnl, entry.Mul(lots).Mul(m)),
			Multiplier: m,
			Status:     recon.StatusClosed,
		})
	}

	log.Printf("metatrader: %d trades parsed, %d rows skipped", len(trades), skipped)
	return trades
}

func contractSize(symbol string, overrides map[string]decimal.Decimal) decimal.Decimal {
	for prefix, size := range overrides {
		if strings.HasPrefix(symbol, strings.ToUpper(prefix)) {
			return size
		}
	}
	for prefix, size := range defaultContractSizes {
		if strings.HasPrefix(symbol, prefix) {
			return size
		}
	}
	return decimal.NewFromInt(1)
}
