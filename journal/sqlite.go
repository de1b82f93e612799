// Package journal is the persistent trade store. Its contract to the
// reconciliation engine is "append, do not assume absence of
// duplicates": duplicate suppression happens here, by content hash.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebook/recon"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// AppendTrades inserts trades, silently skipping any whose content hash
// is already stored. It returns the number actually inserted.
func (j *SQLite) AppendTrades(trades []recon.Trade) (int, error) {
	tx, err := j.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO trades
		(trade_id, content_hash, exchange, instrument, asset_type, direction,
		 entry_price, exit_price, quantity, entry_time, exit_time,
		 fees, pnl, pnl_percent, multiplier, status, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, t := range trades {
		res, err := stmt.Exec(
			t.ID, ContentHash(t), t.Exchange, t.Instrument, string(t.AssetType), string(t.Direction),
			t.EntryPrice.InexactFloat64(), t.ExitPrice.InexactFloat64(), t.Quantity.InexactFloat64(),
			t.EntryTime.UTC(), t.ExitTime.UTC(),
			t.Fees.InexactFloat64(), t.PNL.InexactFloat64(), t.PNLPercent.InexactFloat64(),
			t.Multiplier.InexactFloat64(), t.Status, t.Notes,
		)
		if err != nil {
			return inserted, fmt.Errorf("insert trade %s: %w", t.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return inserted, err
	}
	return inserted, nil
}

const tradeColumns = `trade_id, exchange, instrument, asset_type, direction,
	entry_price, exit_price, quantity, entry_time, exit_time,
	fees, pnl, pnl_percent, multiplier, status, notes`

func scanTrade(scan func(...any) error) (recon.Trade, error) {
	var t recon.Trade
	var asset, dir string
	var entry, exit, qty, fees, pnl, pct, multiplier float64
	err := scan(
		&t.ID, &t.Exchange, &t.Instrument, &asset, &dir,
		&entry, &exit, &qty, &t.EntryTime, &t.ExitTime,
		&fees, &pnl, &pct, &multiplier, &t.Status, &t.Notes,
	)
	if err != nil {
		return recon.Trade{}, err
	}
	t.AssetType = recon.AssetType(asset)
	t.Direction = recon.Direction(dir)
	t.EntryPrice = decimal.NewFromFloat(entry)
	t.ExitPrice = decimal.NewFromFloat(exit)
	t.Quantity = decimal.NewFromFloat(qty)
	t.Fees = decimal.NewFromFloat(fees)
	t.PNL = decimal.NewFromFloat(pnl)
	t.PNLPercent = decimal.NewFromFloat(pct)
	t.Multiplier = decimal.NewFromFloat(multiplier)
	return t, nil
}

// GetTrade returns a single trade by ID.
func (j *SQLite) GetTrade(tradeID string) (recon.Trade, error) {
	row := j.db.QueryRow(`SELECT `+tradeColumns+` FROM trades WHERE trade_id = ?`, tradeID)
	t, err := scanTrade(row.Scan)
	if err == sql.ErrNoRows {
		return recon.Trade{}, fmt.Errorf("trade %q not found", tradeID)
	}
	return t, err
}

// ListTrades returns trades whose exit time is within [start, end),
// optionally filtered by instrument, ordered by exit time.
func (j *SQLite) ListTrades(instrument string, start, end time.Time) ([]recon.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE exit_time >= ? AND exit_time < ?`
	args := []any{start, end}
	if instrument != "" {
		query += ` AND instrument = ?`
		args = append(args, instrument)
	}
	query += ` ORDER BY exit_time ASC`

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []recon.Trade
	for rows.Next() {
		t, err := scanTrade(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// InstrumentSummary is per-instrument aggregate P&L from the store.
type InstrumentSummary struct {
	Instrument string
	Trades     int
	NetPNL     float64
	Fees       float64
}

// Summarize returns per-instrument totals over the whole store.
func (j *SQLite) Summarize() ([]InstrumentSummary, error) {
	rows, err := j.db.Query(`
		SELECT instrument, COUNT(*), SUM(pnl), SUM(fees)
		FROM trades
		GROUP BY instrument
		ORDER BY instrument ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InstrumentSummary
	for rows.Next() {
		var s InstrumentSummary
		if err := rows.Scan(&s.Instrument, &s.Trades, &s.NetPNL, &s.Fees); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
