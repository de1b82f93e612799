package recon

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side a position was opened on.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// AssetType classifies the instrument of a trade.
type AssetType string

const (
	Stock  AssetType = "STOCK"
	Option AssetType = "OPTION"
	Crypto AssetType = "CRYPTO"
	Forex  AssetType = "FOREX"
)

// Fill is one directional execution: a buy or a sell at a price and
// quantity. Venue adapters produce fills; the matcher consumes them.
//
// Direction is the side of the position the fill belongs to, not the
// order action: a sell that closes a long carries Direction Long with
// Opening false.
type Fill struct {
	Exchange   string
	Instrument string
	AssetType  AssetType
	Time       time.Time
	Price      decimal.Decimal
	Quantity   decimal.Decimal // always positive
	Direction  Direction
	Fee        decimal.Decimal
	Opening    bool
	Multiplier decimal.Decimal // units per contract; zero means 1
}

// OpenPosition is an unmatched opening fill waiting in a FIFO queue for
// its closing counterpart. Remaining is decremented in place as partial
// closes consume it.
type OpenPosition struct {
	ID         string
	Exchange   string
	Instrument string
	AssetType  AssetType
	Time       time.Time
	Price      decimal.Decimal
	Remaining  decimal.Decimal
	Original   decimal.Decimal
	Direction  Direction
	Fees       decimal.Decimal // total fee paid on the opening fill
	Multiplier decimal.Decimal
}

// Trade is a closed round trip, the engine's only terminal output.
type Trade struct {
	ID         string
	Exchange   string
	Instrument string
	AssetType  AssetType
	Direction  Direction
	EntryPrice decimal.Decimal
	ExitPrice  decimal.Decimal
	Quantity   decimal.Decimal
	EntryTime  time.Time
	ExitTime   time.Time
	Fees       decimal.Decimal
	PNL        decimal.Decimal
	PNLPercent decimal.Decimal
	Multiplier decimal.Decimal
	Status     string // always StatusClosed once emitted
	Notes      string
}

const StatusClosed = "CLOSED"

var one = decimal.NewFromInt(1)

// mult normalizes a multiplier value: zero means 1.
func mult(m decimal.Decimal) decimal.Decimal {
	if m.IsZero() {
		return one
	}
	return m
}

// MultiplierFor returns the contract multiplier for an asset class:
// 100 for standard option contracts, 1 otherwise. Venue-specific lot
// sizes (metals) are supplied by the adapter, not derived here.
func MultiplierFor(asset AssetType) decimal.Decimal {
	if asset == Option {
		return decimal.NewFromInt(100)
	}
	return one
}
