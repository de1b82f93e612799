package venues

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebook/fields"
	"github.com/rustyeddy/tradebook/pkg/id"
	"github.com/rustyeddy/tradebook/recon"
)

// parseRobinhoodGains converts a realized-gains export into trades
// directly: each row already describes one closed position, so no
// matching is needed. Summary and repeated-header rows are skipped.
func parseRobinhoodGains(records []fields.Record, log *recon.Log) []recon.Trade {
	var fm fields.FieldMap
	if len(records) > 0 {
		fm = fields.DetectMapping(records[0].Keys)
		log.Printf("column mapping: %s", fm)
	}

	var trades []recon.Trade
	skipped := 0
	for i, rec := range records {
		symbol := strings.TrimSpace(lookup(rec, fm.Symbol, "Symbol", "Instrument"))
		if skippable(symbol) {
			log.Printf("row %d: skipped (summary or header row)", i+1)
			skipped++
			continue
		}

		desc := fields.Resolve(rec, "Description", "Security Description", "Name")
		asset, optSide := classifyEquity(symbol, desc)
		m := recon.MultiplierFor(asset)

		qty := fields.ParseFlexibleMoney(lookup(rec, fm.Quantity, "Quantity", "Shares")).Abs()
		if qty.IsZero() {
			log.Printf("row %d: skipped (%s: zero quantity)", i+1, symbol)
			skipped++
			continue
		}

		basis := fields.ParseFlexibleMoney(fields.Resolve(rec, "Cost Basis", "Cost", "Total Cost"))
		proceeds := fields.ParseFlexibleMoney(fields.Resolve(rec, "Proceeds", "Sales Price", "Amount"))

		// Per-share price: prefer a directly reported per-share
		// column, else derive from basis. Option basis is quoted per
		// contract of 100 underlying units.
		entry := fields.ParseFlexibleMoney(lookup(rec, fm.Price, "Price", "Average Price"))
		if entry.IsZero() {
			entry = perShare(basis, qty, m)
		}
		exit := perShare(proceeds, qty, m)

		pnl := fields.ParseFlexibleMoney(lookup(rec, fm.PNL, "Gain/Loss", "Gain or Loss", "Realized Gain"))
		if pnl.IsZero() && !proceeds.IsZero() {
			pnl = proceeds.Sub(basis)
		}

		opened, okOpen := fields.ParseFlexibleDate(fields.Resolve(rec, "Opened Date", "Open Date", "Date Acquired"))
		closed, okClose := fields.ParseFlexibleDate(fields.Resolve(rec, "Closed Date", "Close Date", "Date Sold", "Date"))
		if !okClose {
			log.Printf("row %d: warning: unparseable closed date for %s, substituting now", i+1, symbol)
		}
		if !okOpen {
			// No opened field in this export: use the closed date
			// for both ends.
			opened = closed
		}

		dir := recon.Long
		if optSide == "put" {
			dir = recon.Short
		}

		trades = append(trades, recon.Trade{
			ID:         id.New(),
			Exchange:   "Robinhood",
			Instrument: symbol,
			AssetType:  asset,
			Direction:  dir,
			EntryPrice: entry,
			ExitPrice:  exit,
			Quantity:   qty,
			EntryTime:  opened,
			ExitTime:   closed,
			Fees:       decimal.Zero, // fees are embedded in reported gain
			PNL:        pnl,
			PNLPercent: recon.PercentReturn(pnl, entry.Mul(qty).Mul(m)),
			Multiplier: m,
			Status:     recon.StatusClosed,
		})
	}

	log.Printf("robinhood gains: %d trades parsed, %d rows skipped", len(trades), skipped)
	return trades
}

// parseRobinhoodOrders converts a raw order-history export into a fill
// stream: buy opens long, sell closes long, sell short opens short,
// buy to cover closes short.
func parseRobinhoodOrders(records []fields.Record, log *recon.Log) []recon.Fill {
	var fm fields.FieldMap
	if len(records) > 0 {
		fm = fields.DetectMapping(records[0].Keys)
		log.Printf("column mapping: %s", fm)
	}

	var fills []recon.Fill
	skipped := 0
	for i, rec := range records {
		symbol := strings.TrimSpace(lookup(rec, fm.Symbol, "Symbol", "Instrument"))
		if skippable(symbol) {
			log.Printf("row %d: skipped (no symbol)", i+1)
			skipped++
			continue
		}

		action := fields.Normalize(lookup(rec, fm.Direction, "Side", "Action", "Trans Code", "Type"))
		dir, opening, isTrade := classifyAction(action)
		if !isTrade {
			log.Printf("row %d: skipped (%s: %q is not a trade action)", i+1, symbol, action)
			skipped++
			continue
		}

		price := fields.ParseFlexibleMoney(lookup(rec, fm.Price, "Price", "Average Price", "Fill Price"))
		qty := fields.ParseFlexibleMoney(lookup(rec, fm.Quantity, "Quantity", "Shares", "Qty")).Abs()
		if qty.IsZero() || !price.IsPositive() {
			log.Printf("row %d: skipped (%s: qty %s, price %s)", i+1, symbol, qty, price)
			skipped++
			continue
		}

		when, ok := fields.ParseFlexibleDate(lookup(rec, fm.Time, "Date", "Activity Date", "Process Date"))
		if !ok {
			log.Printf("row %d: warning: unparseable date, substituting now", i+1)
		}

		asset, _ := classifyEquity(symbol, fields.Resolve(rec, "Description"))
		fills = append(fills, recon.Fill{
			Exchange:   "Robinhood",
			Instrument: symbol,
			AssetType:  asset,
			Time:       when,
			Price:      price,
			Quantity:   qty,
			Direction:  dir,
			Fee:        fields.ParseFlexibleMoney(lookup(rec, fm.Fee, "Fees", "Commission")).Abs(),
			Opening:    opening,
			Multiplier: recon.MultiplierFor(asset),
		})
	}

	log.Printf("robinhood orders: %d fills emitted, %d rows skipped", len(fills), skipped)
	return fills
}

// classifyAction maps an order action to (position side, opening).
// Normalized input: "buy", "sell", "sellshort", "buytocover", "btc",
// "sto", etc.
func classifyAction(action string) (dir recon.Direction, opening, isTrade bool) {
	switch {
	case action == "":
		return "", false, false
	case strings.Contains(action, "buytocover"), strings.Contains(action, "buytoclose"), action == "btc":
		return recon.Short, false, true
	case strings.Contains(action, "selltoopen"), strings.Contains(action, "sellshort"),
		strings.Contains(action, "shortsell"), action == "sto":
		return recon.Short, true, true
	case strings.Contains(action, "selltoclose"), action == "stc":
		return recon.Long, false, true
	case strings.Contains(action, "buytoopen"), action == "bto":
		return recon.Long, true, true
	case strings.Contains(action, "cover"):
		return recon.Short, false, true
	case strings.Contains(action, "short"):
		return recon.Short, true, true
	case strings.Contains(action, "buy"):
		return recon.Long, true, true
	case strings.Contains(action, "sell"):
		return recon.Long, false, true
	default:
		return "", false, false
	}
}

// classifyEquity detects the instrument class from the symbol encoding
// or description keywords: a trailing option-type letter in an
// OCC-style symbol, or the words "call"/"put".
func classifyEquity(symbol, desc string) (recon.AssetType, string) {
	lower := strings.ToLower(symbol + " " + desc)
	if _, ok := recon.OptionExpiry(symbol); ok {
		if strings.Contains(lower, "put") {
			return recon.Option, "put"
		}
		return recon.Option, "call"
	}
	if strings.Contains(lower, " call") || strings.HasSuffix(lower, "call") {
		return recon.Option, "call"
	}
	if strings.Contains(lower, " put") || strings.HasSuffix(lower, "put") {
		return recon.Option, "put"
	}
	return recon.Stock, ""
}

// perShare derives a per-unit price from a total amount: amount / qty,
// divided additionally by the contract multiplier for options since
// their totals are quoted per contract of 100 underlying units.
func perShare(total, qty, multiplier decimal.Decimal) decimal.Decimal {
	if qty.IsZero() {
		return decimal.Zero
	}
	p := total.Abs().Div(qty)
	if !multiplier.IsZero() && !multiplier.Equal(decimal.NewFromInt(1)) {
		p = p.Div(multiplier)
	}
	return p
}
