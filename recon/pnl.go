package recon

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebook/pkg/id"
)

var hundred = decimal.NewFromInt(100)

// computePNL builds one closed Trade from a matched (open, close, qty)
// triple. Gross P&L is side * (exit - entry) * qty * multiplier; the
// stored PNL is net of the fee shares attributed to this match.
//
// Fee attribution: the opening fill's fee is pro-rated by
// qty/open.Original, the closing fill's fee by qty/close.Quantity, so
// two trades carved from the same open position never double count.
func computePNL(open *OpenPosition, close Fill, qty decimal.Decimal) Trade {
	m := mult(open.Multiplier)

	var gross decimal.Decimal
	if open.Direction == Short {
		gross = open.Price.Sub(close.Price).Mul(qty).Mul(m)
	} else {
		gross = close.Price.Sub(open.Price).Mul(qty).Mul(m)
	}

	fees := feeShare(open.Fees, qty, open.Original).
		Add(feeShare(close.Fee, qty, close.Quantity))
	pnl := gross.Sub(fees)

	return Trade{
		ID:         id.New(),
		Exchange:   firstNonEmpty(open.Exchange, close.Exchange),
		Instrument: open.Instrument,
		AssetType:  open.AssetType,
		Direction:  open.Direction,
		EntryPrice: open.Price,
		ExitPrice:  close.Price,
		Quantity:   qty,
		EntryTime:  open.Time,
		ExitTime:   close.Time,
		Fees:       fees,
		PNL:        pnl,
		PNLPercent: PercentReturn(pnl, open.Price.Mul(qty).Mul(m)),
		Multiplier: m,
		Status:     StatusClosed,
	}
}

// PercentReturn scales pnl against a margin base to a percentage,
// returning zero (not a division error) when the base is zero.
func PercentReturn(pnl, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return pnl.Div(base).Mul(hundred)
}

// feeShare pro-rates a total fee by qty/total. A zero total quantity
// attributes nothing.
func feeShare(fee, qty, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() || fee.IsZero() {
		return decimal.Zero
	}
	return fee.Mul(qty).Div(total)
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
