package fields

import "strings"

// FieldMap is the canonical-field to actual-header mapping detected
// once per import. An empty entry means no header matched and the
// adapter must fall back to its venue-specific default candidates.
type FieldMap struct {
	Time      string
	Symbol    string
	Price     string
	Quantity  string
	PNL       string
	Fee       string
	Direction string
}

// synonyms maps each canonical field to the normalized header spellings
// seen across venue exports. Order matters: earlier entries win ties.
var synonyms = map[string][]string{
	"time":      {"time", "date", "datetime", "timestamp", "tradetime", "filledtime", "closetime", "transactiondate", "closeddate"},
	"symbol":    {"symbol", "instrument", "ticker", "contracts", "contract", "pair", "market", "item", "product"},
	"price":     {"price", "fillprice", "filledprice", "avgprice", "averageprice", "execprice", "tradeprice", "closeprice", "entryprice"},
	"quantity":  {"qty", "quantity", "size", "filled", "volume", "lots", "units", "shares", "amount"},
	"pnl":       {"pl", "pnl", "profit", "realizedprofit", "netprofit", "closedpnl", "closedpl", "realizedpl", "realizedpnl", "gainloss", "profitloss", "gain"},
	"fee":       {"fee", "fees", "commission", "tradingfee", "feespaid", "feepaid", "comm"},
	"direction": {"side", "direction", "action", "buysell", "transcode", "type"},
}

// DetectMapping builds a FieldMap from a header row by normalizing
// every header (lowercase, strip non-alphanumerics) and testing it
// against the synonym dictionary. Exact normalized equality is
// preferred over substring containment, and each header is assigned to
// at most one canonical field.
func DetectMapping(headers []string) FieldMap {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = Normalize(h)
	}

	assigned := make(map[int]bool)
	pick := func(field string, exact bool) string {
		for _, syn := range synonyms[field] {
			for i, n := range normalized {
				if assigned[i] || n == "" {
					continue
				}
				if exact && n == syn {
					assigned[i] = true
					return headers[i]
				}
				if !exact && strings.Contains(n, syn) {
					assigned[i] = true
					return headers[i]
				}
			}
		}
		return ""
	}

	var fm FieldMap
	dst := map[string]*string{
		"time":      &fm.Time,
		"symbol":    &fm.Symbol,
		"price":     &fm.Price,
		"quantity":  &fm.Quantity,
		"pnl":       &fm.PNL,
		"fee":       &fm.Fee,
		"direction": &fm.Direction,
	}
	order := []string{"time", "symbol", "price", "quantity", "pnl", "fee", "direction"}

	for _, field := range order {
		*dst[field] = pick(field, true)
	}
	for _, field := range order {
		if *dst[field] == "" {
			*dst[field] = pick(field, false)
		}
	}
	return fm
}

// Normalize lowercases a header and strips everything that is not a
// letter or digit, so "Closed P&L" and "closed_pnl" compare equal.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// String renders the mapping for the diagnostic log.
func (fm FieldMap) String() string {
	pairs := []struct{ name, header string }{
		{"time", fm.Time}, {"symbol", fm.Symbol}, {"price", fm.Price},
		{"qty", fm.Quantity}, {"pnl", fm.PNL}, {"fee", fm.Fee}, {"side", fm.Direction},
	}
	var parts []string
	for _, p := range pairs {
		h := p.header
		if h == "" {
			h = "-"
		}
		parts = append(parts, p.name+"="+h)
	}
	return strings.Join(parts, " ")
}
