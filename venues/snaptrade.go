package venues

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebook/brokerapi"
	"github.com/rustyeddy/tradebook/fields"
	"github.com/rustyeddy/tradebook/recon"
)

// ImportTransactions reconciles a structured list of brokerage API
// transaction objects. Transactions arrive already JSON-decoded; only
// trade actions become fills, everything else (dividends, transfers,
// interest) is skipped with a log line.
func ImportTransactions(txs []brokerapi.Transaction, opts Options) *Result {
	log := &recon.Log{}
	log.Printf("processing %d brokerage transactions", len(txs))

	var fills []recon.Fill
	skipped := 0
	for i, tx := range txs {
		action := fields.Normalize(tx.Type)
		dir, opening, isTrade := classifyAction(action)
		if !isTrade {
			log.Printf("transaction %d: skipped (type %q is not a trade)", i+1, tx.Type)
			skipped++
			continue
		}

		symbol := strings.TrimSpace(tx.Instrument.Symbol)
		if symbol == "" {
			log.Printf("transaction %d: skipped (no instrument symbol)", i+1)
			skipped++
			continue
		}

		qty := decimal.NewFromFloat(tx.Units).Abs()
		price := decimal.NewFromFloat(tx.Price)
		if qty.IsZero() || !price.IsPositive() {
			log.Printf("transaction %d: skipped (%s: units %s, price %s)", i+1, symbol, qty, price)
			skipped++
			continue
		}

		when, ok := fields.ParseFlexibleDate(tx.TradeDate)
		if !ok {
			log.Printf("transaction %d: warning: unparseable trade date %q, substituting now", i+1, tx.TradeDate)
		}

		var fee decimal.Decimal
		for _, item := range tx.Fees {
			fee = fee.Add(decimal.NewFromFloat(item.Amount).Abs())
		}

		asset := assetClass(tx.Instrument)
		fills = append(fills, recon.Fill{
			Exchange:   "SnapTrade",
			Instrument: apiSymbol(tx.Instrument),
			AssetType:  asset,
			Time:       when,
			Price:      price,
			Quantity:   qty,
			Direction:  dir,
			Fee:        fee,
			Opening:    opening,
			Multiplier: recon.MultiplierFor(asset),
		})
	}
	log.Printf("snaptrade: %d fills emitted, %d transactions skipped", len(fills), skipped)

	sort.SliceStable(fills, func(i, j int) bool { return fills[i].Time.Before(fills[j].Time) })
	trades, open := recon.Reconcile(fills, opts.now(), log)
	return &Result{Trades: trades, Open: open, Logs: log.Lines()}
}

func assetClass(in brokerapi.Instrument) recon.AssetType {
	if in.Option != nil {
		return recon.Option
	}
	switch fields.Normalize(in.AssetClass) {
	case "option", "options":
		return recon.Option
	case "crypto", "cryptocurrency":
		return recon.Crypto
	case "fx", "forex", "currency":
		return recon.Forex
	default:
		return recon.Stock
	}
}

// apiSymbol renders an instrument descriptor as an OCC-style symbol
// when option details are present, so expiration resolution can read
// the expiry back out of the instrument string.
func apiSymbol(in brokerapi.Instrument) string {
	if in.Option == nil {
		return in.Symbol
	}
	side := "P"
	if in.Option.IsCall {
		side = "C"
	}
	expiry, ok := fields.ParseFlexibleDate(in.Option.Expiration)
	if !ok {
		return in.Symbol
	}
	strike := int(in.Option.Strike*1000 + 0.5)
	return fmt.Sprintf("%s%s%s%08d", in.Symbol, expiry.Format("060102"), side, strike)
}
