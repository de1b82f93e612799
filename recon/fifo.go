package recon

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebook/pkg/id"
)

// Matcher pairs closing fills against the oldest unmatched opening
// fills, first-in-first-out, per instrument. State is owned by one
// Matcher instance and scoped to one import batch; concurrent batches
// each build their own Matcher, so no locking is needed here.
//
// The matcher requires fills for a given instrument to arrive in
// non-decreasing timestamp order; it does not re-sort its queues.
type Matcher struct {
	queues map[string][]*OpenPosition
	order  []string // instrument keys in first-seen order
	trades []Trade
	log    *Log
}

func NewMatcher(log *Log) *Matcher {
	return &Matcher{
		queues: make(map[string][]*OpenPosition),
		log:    log,
	}
}

// Add consumes one fill. Opening fills enqueue an OpenPosition; closing
// fills match against the queue front until exhausted. Closing quantity
// left over with an empty queue is an orphaned close: logged and
// discarded, because the opening leg typically falls outside the
// import window.
func (m *Matcher) Add(f Fill) {
	key := f.Instrument

	if f.Opening {
		if _, seen := m.queues[key]; !seen {
			m.order = append(m.order, key)
		}
		m.queues[key] = append(m.queues[key], &OpenPosition{
			ID:         id.New(),
			Exchange:   f.Exchange,
			Instrument: f.Instrument,
			AssetType:  f.AssetType,
			Time:       f.Time,
			Price:      f.Price,
			Remaining:  f.Quantity,
			Original:   f.Quantity,
			Direction:  f.Direction,
			Fees:       f.Fee,
			Multiplier: mult(f.Multiplier),
		})
		return
	}

	remaining := f.Quantity
	for remaining.IsPositive() && len(m.queues[key]) > 0 {
		open := m.queues[key][0]
		matched := decimal.Min(remaining, open.Remaining)

		m.trades = append(m.trades, computePNL(open, f, matched))

		remaining = remaining.Sub(matched)
		open.Remaining = open.Remaining.Sub(matched)
		if !open.Remaining.IsPositive() {
			m.queues[key] = m.queues[key][1:]
		}
	}

	if remaining.IsPositive() {
		m.log.Printf("warning: unmatched closing quantity %s for %s; opening leg not in this import", remaining, key)
	}
}

// AddAll sorts fills by timestamp ascending (stable, preserving adapter
// emit order for equal times) and feeds them through Add.
func (m *Matcher) AddAll(fills []Fill) {
	sorted := make([]Fill, len(fills))
	copy(sorted, fills)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})
	for _, f := range sorted {
		m.Add(f)
	}
}

// Trades returns the closed trades emitted so far, in match order.
func (m *Matcher) Trades() []Trade {
	return m.trades
}

// Residuals returns open positions still awaiting a close, grouped by
// instrument in first-seen order.
func (m *Matcher) Residuals() []*OpenPosition {
	var out []*OpenPosition
	for _, key := range m.order {
		out = append(out, m.queues[key]...)
	}
	return out
}
