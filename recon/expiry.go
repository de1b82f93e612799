package recon

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebook/pkg/id"
)

// OCC-style option symbol: root, YYMMDD expiry, C/P, strike in
// thousandths. "AAPL240119C00150000" and the space-padded variant both
// match.
var occSymbol = regexp.MustCompile(`^([A-Z.]{1,6})\s*(\d{6})([CP])(\d{8})$`)

// Spelled-out option symbol as some brokerage exports write it:
// "AAPL 1/19/2024 Call $150.00".
var verboseSymbol = regexp.MustCompile(`^\S+\s+(\d{1,2}/\d{1,2}/\d{4})\s+(?i:call|put)\b`)

// OptionExpiry extracts the expiration date embedded in an option
// symbol. The second return is false when the symbol carries no
// recognizable expiry encoding.
func OptionExpiry(symbol string) (time.Time, bool) {
	if m := occSymbol.FindStringSubmatch(symbol); m != nil {
		t, err := time.Parse("060102", m[2])
		if err == nil {
			return t, true
		}
	}
	if m := verboseSymbol.FindStringSubmatch(symbol); m != nil {
		t, err := time.Parse("1/2/2006", m[1])
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ResolveExpirations walks residual open positions and, for option
// positions whose expiration has strictly passed, synthesizes a
// worthless-expiration closing trade: exit price 0, the full premium
// plus fees lost, -100%. Positions not yet expired (or not options)
// are returned as still open.
//
// Expiry is compared against end-of-day UTC so a contract is only
// treated as expired once its expiration date has fully elapsed.
func ResolveExpirations(open []*OpenPosition, now time.Time, log *Log) (expired []Trade, still []*OpenPosition) {
	for _, pos := range open {
		if pos.AssetType != Option {
			still = append(still, pos)
			continue
		}
		exp, ok := OptionExpiry(pos.Instrument)
		if !ok {
			log.Printf("cannot read expiration from option symbol %q; leaving open", pos.Instrument)
			still = append(still, pos)
			continue
		}
		endOfDay := time.Date(exp.Year(), exp.Month(), exp.Day(), 23, 59, 59, 0, time.UTC)
		if !endOfDay.Before(now) {
			still = append(still, pos)
			continue
		}

		m := mult(pos.Multiplier)
		premium := pos.Price.Mul(pos.Remaining).Mul(m)
		// Partial closes already took their pro-rated share of the
		// opening fee; the expired leg gets only what is left.
		fees := feeShare(pos.Fees, pos.Remaining, pos.Original)
		expired = append(expired, Trade{
			ID:         id.New(),
			Exchange:   pos.Exchange,
			Instrument: pos.Instrument,
			AssetType:  Option,
			Direction:  pos.Direction,
			EntryPrice: pos.Price,
			ExitPrice:  decimal.Zero,
			Quantity:   pos.Remaining,
			EntryTime:  pos.Time,
			ExitTime:   endOfDay,
			Fees:       fees,
			PNL:        premium.Neg().Sub(fees),
			PNLPercent: hundred.Neg(),
			Multiplier: m,
			Status:     StatusClosed,
			Notes:      "expired worthless",
		})
		log.Printf("option %s expired %s: closed worthless, qty %s",
			pos.Instrument, exp.Format("2006-01-02"), pos.Remaining)
	}
	return expired, still
}
