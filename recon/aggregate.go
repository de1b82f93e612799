package recon

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Aggregate merges trades that represent one logical exit: same
// instrument, same entry minute, same exit minute. This models a single
// order that filled across several partial executions. Singleton groups
// pass through untouched.
//
// Merged trades sum quantity, pnl, and fees; entry and exit prices
// become quantity-weighted averages; the percentage is recomputed from
// the aggregated margin base rather than averaged.
func Aggregate(trades []Trade, log *Log) []Trade {
	groups := make(map[string][]Trade)
	var order []string
	for _, t := range trades {
		key := fmt.Sprintf("%s|%d|%d",
			t.Instrument,
			t.EntryTime.Truncate(time.Minute).Unix(),
			t.ExitTime.Truncate(time.Minute).Unix())
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], t)
	}

	out := make([]Trade, 0, len(order))
	for _, key := range order {
		group := groups[key]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}
		merged := mergeGroup(group)
		log.Printf("merged %d partial fills of %s into one trade (qty %s)",
			len(group), merged.Instrument, merged.Quantity)
		out = append(out, merged)
	}
	return out
}

func mergeGroup(group []Trade) Trade {
	merged := group[0]
	merged.Notes = fmt.Sprintf("merged %d partial fills", len(group))

	var qty, pnl, fees, entryWeighted, exitWeighted, base decimal.Decimal
	for _, t := range group {
		qty = qty.Add(t.Quantity)
		pnl = pnl.Add(t.PNL)
		fees = fees.Add(t.Fees)
		entryWeighted = entryWeighted.Add(t.EntryPrice.Mul(t.Quantity))
		exitWeighted = exitWeighted.Add(t.ExitPrice.Mul(t.Quantity))
		base = base.Add(t.EntryPrice.Mul(t.Quantity).Mul(mult(t.Multiplier)))
		if t.EntryTime.Before(merged.EntryTime) {
			merged.EntryTime = t.EntryTime
		}
		if t.ExitTime.After(merged.ExitTime) {
			merged.ExitTime = t.ExitTime
		}
	}

	merged.Quantity = qty
	merged.PNL = pnl
	merged.Fees = fees
	if !qty.IsZero() {
		merged.EntryPrice = entryWeighted.Div(qty)
		merged.ExitPrice = exitWeighted.Div(qty)
	}
	merged.PNLPercent = PercentReturn(pnl, base)
	return merged
}
