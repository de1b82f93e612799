package journal

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/rustyeddy/tradebook/recon"
)

var csvHeader = []string{
	"trade_id", "exchange", "instrument", "asset_type", "direction",
	"entry_price", "exit_price", "quantity", "entry_time", "exit_time",
	"fees", "pnl", "pnl_percent", "status", "notes",
}

// WriteCSV renders trades in the store's export format, decimals
// written exactly as the engine computed them.
func WriteCSV(w io.Writer, trades []recon.Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range trades {
		err := cw.Write([]string{
			t.ID,
			t.Exchange,
			t.Instrument,
			string(t.AssetType),
			string(t.Direction),
			t.EntryPrice.String(),
			t.ExitPrice.String(),
			t.Quantity.String(),
			t.EntryTime.UTC().Format(time.RFC3339),
			t.ExitTime.UTC().Format(time.RFC3339),
			t.Fees.String(),
			t.PNL.String(),
			t.PNLPercent.StringFixed(4),
			t.Status,
			t.Notes,
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
