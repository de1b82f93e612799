// Package recon reconciles directional fill streams into canonical
// closed round-trip trades: FIFO open/close matching per instrument,
// multi-asset P&L math, minute-bucket aggregation of partial fills,
// and worthless-expiration synthesis for lapsed option positions.
//
// One reconciliation pass is synchronous and deterministic, owns all
// of its matcher state, and performs no I/O. Callers may run passes
// for independent batches concurrently.
package recon

import "time"

// Reconcile runs the full pipeline over a time-ordered fill stream:
// FIFO matching, aggregation of same-minute partial fills, and
// expiration resolution for residual option positions. It returns the
// closed trades and the positions still open at batch end.
func Reconcile(fills []Fill, now time.Time, log *Log) ([]Trade, []*OpenPosition) {
	m := NewMatcher(log)
	m.AddAll(fills)

	trades := Aggregate(m.Trades(), log)

	expired, still := ResolveExpirations(m.Residuals(), now, log)
	trades = append(trades, expired...)

	log.Printf("reconciled %d fills into %d trades, %d positions still open",
		len(fills), len(trades), len(still))
	return trades, still
}
