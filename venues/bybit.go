package venues

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebook/fields"
	"github.com/rustyeddy/tradebook/recon"
)

// parseBybit converts perp-exchange execution rows into a fill stream.
// The same column mapping serves both raw fills and already-netted
// exports: a row is inferred to be a close when it carries a non-zero
// realized P&L figure, or when its side is opposite to the direction
// currently held for that contract (auto-netting). No mode flag needed.
func parseBybit(records []fields.Record, log *recon.Log) []recon.Fill {
	var fm fields.FieldMap
	if len(records) > 0 {
		fm = fields.DetectMapping(records[0].Keys)
		log.Printf("column mapping: %s", fm)
	}

	type row struct {
		symbol   string
		dir      recon.Direction
		when     time.Time
		price    decimal.Decimal
		qty      decimal.Decimal
		fee      decimal.Decimal
		realized decimal.Decimal
	}

	var rows []row
	skipped := 0
	for i, rec := range records {
		symbol := strings.TrimSpace(lookup(rec, fm.Symbol, "Contracts", "Symbol", "Market"))
		if skippable(symbol) {
			log.Printf("row %d: skipped (no contract symbol)", i+1)
			skipped++
			continue
		}

		side := fields.Normalize(lookup(rec, fm.Direction, "Side", "Direction", "Trade Type"))
		isBuy := strings.Contains(side, "buy") || strings.Contains(side, "long") || strings.Contains(side, "open")
		isSell := strings.Contains(side, "sell") || strings.Contains(side, "short") || strings.Contains(side, "close")
		if !isBuy && !isSell {
			log.Printf("row %d: skipped (side %q is not a trade action)", i+1, side)
			skipped++
			continue
		}

		price := fields.ParseFlexibleMoney(lookup(rec, fm.Price, "Filled Price", "Avg Fill Price", "Exit Price"))
		qty := fields.ParseFlexibleMoney(lookup(rec, fm.Quantity, "Qty", "Filled Qty", "Closed Size")).Abs()
		if qty.IsZero() || !price.IsPositive() {
			log.Printf("row %d: skipped (%s: qty %s, price %s)", i+1, symbol, qty, price)
			skipped++
			continue
		}

		when, ok := fields.ParseFlexibleDate(lookup(rec, fm.Time, "Filled Time", "Trade Time", "Timestamp"))
		if !ok {
			log.Printf("row %d: warning: unparseable time %q, substituting now", i+1, lookup(rec, fm.Time))
		}

		dir := recon.Long
		if isSell {
			dir = recon.Short
		}
		rows = append(rows, row{
			symbol:   symbol,
			dir:      dir,
			when:     when,
			price:    price,
			qty:      qty,
			fee:      fields.ParseFlexibleMoney(lookup(rec, fm.Fee, "Fee Paid", "Trading Fee")).Abs(),
			realized: fields.ParseFlexibleMoney(lookup(rec, fm.PNL, "Closed P&L", "Realized P&L")),
		})
	}

	// Exchange downloads commonly list newest first. The opposite-side
	// inference replays the position book, so classify in time order.
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].when.Before(rows[j].when) })

	// Net position per contract, tracked only to classify sides.
	type held struct {
		dir recon.Direction
		qty decimal.Decimal
	}
	book := make(map[string]*held)

	var fills []recon.Fill
	for _, r := range rows {
		pos := book[r.symbol]

		closing := !r.realized.IsZero()
		if !closing && pos != nil && pos.qty.IsPositive() && pos.dir != r.dir {
			closing = true
		}

		f := recon.Fill{
			Exchange:   "Bybit",
			Instrument: r.symbol,
			AssetType:  recon.Crypto,
			Time:       r.when,
			Price:      r.price,
			Quantity:   r.qty,
			Fee:        r.fee,
			Multiplier: decimal.NewFromInt(1),
		}
		if closing {
			// A close belongs to the held side, which is opposite
			// to the row's action.
			f.Direction = recon.Long
			if r.dir == recon.Long {
				f.Direction = recon.Short
			}
			f.Opening = false
			if pos != nil {
				pos.qty = decimal.Max(decimal.Zero, pos.qty.Sub(r.qty))
			}
		} else {
			f.Direction = r.dir
			f.Opening = true
			if pos == nil || pos.qty.IsZero() {
				book[r.symbol] = &held{dir: r.dir, qty: r.qty}
			} else {
				pos.qty = pos.qty.Add(r.qty)
			}
		}
		fills = append(fills, f)
	}

	log.Printf("bybit: %d fills emitted, %d rows skipped", len(fills), skipped)
	return fills
}

// lookup resolves a value through the detected mapping first, then the
// venue's hard-coded default candidates.
func lookup(rec fields.Record, mapped string, defaults ...string) string {
	if mapped != "" {
		if v := rec.Get(mapped); v != "" {
			return v
		}
	}
	return fields.Resolve(rec, defaults...)
}
