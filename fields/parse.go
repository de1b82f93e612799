package fields

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayouts are tried in order for direct parsing. They cover ISO
// timestamps, US-style exports, and MetaTrader's dotted civil times.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 3:04:05 PM",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006",
	"2006.01.02 15:04:05",
	"2006.01.02 15:04",
	"Jan 2, 2006",
}

// ParseFlexibleDate parses a date of unknown format. It tries the known
// layouts, then an MM/DD/YYYY split-and-reconstruct, then retries after
// stripping trailing annotation text ("as of ..."). It never fails: on
// total failure it returns the current time with ok=false so the caller
// can log the substitution.
func ParseFlexibleDate(raw string) (t time.Time, ok bool) {
	return parseDateIn(raw, time.UTC)
}

// ParseLocalDate is ParseFlexibleDate for sources that record civil
// time in a documented timezone: the parsed wall-clock time is
// interpreted in loc (daylight saving handled by the location), giving
// an absolute instant.
func ParseLocalDate(raw string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	return parseDateIn(raw, loc)
}

func parseDateIn(raw string, loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(strings.Trim(raw, `"'`))
	if s != "" {
		if t, ok := tryLayouts(s, loc); ok {
			return t, true
		}
		// MM/DD/YYYY with stray padding or single digits.
		if parts := strings.Split(s, "/"); len(parts) == 3 {
			rebuilt := strings.TrimSpace(parts[0]) + "/" + strings.TrimSpace(parts[1]) + "/" + strings.TrimSpace(parts[2])
			if t, ok := tryLayouts(rebuilt, loc); ok {
				return t, true
			}
		}
		// Trailing annotations: "06/30/2024 as of 07/01/2024".
		if i := strings.Index(strings.ToLower(s), " as of"); i > 0 {
			if t, ok := tryLayouts(strings.TrimSpace(s[:i]), loc); ok {
				return t, true
			}
		}
	}
	return time.Now().UTC(), false
}

func tryLayouts(s string, loc *time.Location) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ParseFlexibleMoney parses a money or numeric string defensively:
// currency symbols, thousands separators, surrounding quotes, and
// percent signs are stripped; accounting-style parentheses negate.
// Empty, dash, or unparseable input yields zero, never an error. This
// is the single numeric-safety boundary every adapter shares.
func ParseFlexibleMoney(raw string) decimal.Decimal {
	s := strings.TrimSpace(strings.Trim(raw, `"'`))
	if s == "" || s == "-" || s == "--" {
		return decimal.Zero
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", "%", "", " ", "").Replace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if neg {
		return d.Neg()
	}
	return d
}
