// Package venues turns raw venue exports into canonical trades. Each
// adapter is a pure function over parsed records: it emits either
// finished trades (sources that already report realized P&L) or a
// directional fill stream handed to the recon matcher. Adapters never
// touch shared state beyond the batch's diagnostic log, so independent
// imports can run concurrently.
package venues

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebook/fields"
	"github.com/rustyeddy/tradebook/recon"
)

// Known venue identifiers. Dispatch is a direct switch on these; the
// input content is never sniffed.
const (
	VenueBybit           = "bybit"
	VenueRobinhood       = "robinhood"
	VenueRobinhoodOrders = "robinhood-orders"
	VenueMetaTrader      = "metatrader"
)

// ErrNoHeader reports that no plausible header row was found in the
// input. This is a structural failure: the whole batch is rejected.
var ErrNoHeader = errors.New("no header row found")

// ErrUnknownVenue reports an unrecognized venue identifier.
var ErrUnknownVenue = errors.New("unknown venue")

// Options carries per-import settings supplied by the caller.
type Options struct {
	// Paste enables the premerge pass for free-form pasted blocks,
	// reattaching values that wrapped onto their own line.
	Paste bool
	// Now anchors expiration checks; zero means time.Now().
	Now time.Time
	// Location is the civil timezone of sources that record local
	// times (the forex venue). Nil means UTC.
	Location *time.Location
	// ContractSizes overrides per-symbol-prefix contract multipliers
	// for the forex venue (e.g. XAU -> 100).
	ContractSizes map[string]decimal.Decimal
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now().UTC()
	}
	return o.Now
}

// Result is the output of one import batch. Logs is always populated,
// including on failure, so the operator can see which rows and columns
// were involved.
type Result struct {
	Trades []recon.Trade
	Open   []*recon.OpenPosition
	Logs   []string
}

// Import parses a delimited text blob for the declared venue and
// reconciles it into canonical trades. On structural failure the
// returned Result still carries the accumulated diagnostic log.
func Import(venue, text string, opts Options) (*Result, error) {
	log := &recon.Log{}

	records, err := readRecords(text, opts, log)
	if err != nil {
		return &Result{Logs: log.Lines()}, err
	}

	switch venue {
	case VenueBybit:
		fills := parseBybit(records, log)
		trades, open := recon.Reconcile(fills, opts.now(), log)
		return &Result{Trades: trades, Open: open, Logs: log.Lines()}, nil

	case VenueRobinhood:
		trades := parseRobinhoodGains(records, log)
		trades = recon.Aggregate(trades, log)
		log.Printf("import complete: %d trades", len(trades))
		return &Result{Trades: trades, Logs: log.Lines()}, nil

	case VenueRobinhoodOrders:
		fills := parseRobinhoodOrders(records, log)
		trades, open := recon.Reconcile(fills, opts.now(), log)
		return &Result{Trades: trades, Open: open, Logs: log.Lines()}, nil

	case VenueMetaTrader:
		trades := parseMetaTrader(records, opts, log)
		trades = recon.Aggregate(trades, log)
		log.Printf("import complete: %d trades", len(trades))
		return &Result{Trades: trades, Logs: log.Lines()}, nil

	default:
		return &Result{Logs: log.Lines()}, fmt.Errorf("%w: %q", ErrUnknownVenue, venue)
	}
}

// headerKeywords vote for a row being the header. A row with at least
// two hits wins.
var headerKeywords = []string{
	"symbol", "instrument", "ticker", "contracts", "date", "time", "price",
	"qty", "quantity", "size", "side", "type", "profit", "pnl", "proceeds",
	"basis", "fee", "commission",
}

// readRecords splits a text blob into header-mapped records. The header
// row is auto-detected by scanning the first 25 lines for a row with at
// least two keyword hits, which skips preamble and account metadata.
func readRecords(text string, opts Options, log *recon.Log) ([]fields.Record, error) {
	lines := splitLines(text)
	if opts.Paste {
		lines = premerge(lines, log)
	}

	headerIdx := -1
	limit := len(lines)
	if limit > 25 {
		limit = 25
	}
	for i := 0; i < limit; i++ {
		if isHeaderRow(lines[i]) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		log.Printf("error: no header row detected in first %d lines", limit)
		return nil, ErrNoHeader
	}
	log.Printf("header detected at line %d: %s", headerIdx+1, lines[headerIdx])

	delim := ','
	if strings.Contains(lines[headerIdx], "\t") {
		delim = '\t'
	}

	headers := splitRow(lines[headerIdx], delim)
	var records []fields.Record
	for _, line := range lines[headerIdx+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, fields.NewRecord(headers, splitRow(line, delim)))
	}
	log.Printf("parsed %d data rows", len(records))
	return records, nil
}

func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// splitRow parses one delimited line, tolerating quoting. Malformed
// quoting falls back to a plain split so a bad row degrades instead of
// aborting the batch.
func splitRow(line string, delim rune) []string {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = delim
	r.LazyQuotes = true
	cells, err := r.Read()
	if err != nil {
		cells = strings.Split(line, string(delim))
	}
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

func isHeaderRow(line string) bool {
	delim := ','
	if strings.Contains(line, "\t") {
		delim = '\t'
	}
	hits := 0
	for _, cell := range splitRow(line, delim) {
		n := fields.Normalize(cell)
		if n == "" {
			continue
		}
		for _, kw := range headerKeywords {
			if n == kw || strings.Contains(n, kw) {
				hits++
				break
			}
		}
	}
	return hits >= 2
}

// premerge reattaches values that wrapped onto their own line in a
// pasted block: a short, purely numeric line is treated as the
// continuation of the previous row.
func premerge(lines []string, log *recon.Log) []string {
	var out []string
	merged := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(out) > 0 && isNumericContinuation(trimmed) {
			out[len(out)-1] = out[len(out)-1] + "\t" + trimmed
			merged++
			continue
		}
		out = append(out, line)
	}
	if merged > 0 {
		log.Printf("premerge: reattached %d wrapped values", merged)
	}
	return out
}

func isNumericContinuation(s string) bool {
	if s == "" || len(s) > 16 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' || r == ',' || r == '-' || r == '+' || r == '$' || r == '(' || r == ')' || r == '%':
		default:
			return false
		}
	}
	return strings.ContainsAny(s, "0123456789")
}

// skippable reports summary and repeated-header rows in exports: blank
// symbol, a repeated header token, or a totals sentinel.
func skippable(symbol string) bool {
	n := fields.Normalize(symbol)
	return n == "" || n == "symbol" || n == "total" || n == "totals" || strings.HasPrefix(n, "grandtotal")
}
