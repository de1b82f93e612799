// Package fields resolves venue-specific column names to canonical
// fields and provides the shared defensive parsers for dates and money.
// Every adapter goes through this package so numeric-safety guards live
// in one tested place instead of being re-implemented per venue.
package fields

import "strings"

// Record is one raw row exactly as extracted from a delimited input or
// API response: an ordered mapping of venue-specific field name to
// string value. Key order is preserved for deterministic matching.
type Record struct {
	Keys   []string
	Values map[string]string
}

// NewRecord zips a header row and a cell row into a Record. Extra cells
// beyond the header length are dropped; missing cells read as empty.
func NewRecord(headers, cells []string) Record {
	r := Record{Values: make(map[string]string, len(headers))}
	for i, h := range headers {
		r.Keys = append(r.Keys, h)
		if i < len(cells) {
			r.Values[h] = cells[i]
		} else {
			r.Values[h] = ""
		}
	}
	return r
}

// Get returns the value for an exact key, or empty.
func (r Record) Get(key string) string {
	return r.Values[key]
}

// Resolve returns the value for the first candidate field name that
// matches a record key, trying exact match, then match after trimming
// whitespace, then case-insensitive match after trimming, in that
// order. Earlier candidates win over later ones at the same match
// quality. Returns empty string when nothing matches; callers must
// treat empty as "field absent", never as zero.
func Resolve(r Record, candidates ...string) string {
	for _, c := range candidates {
		if v, ok := r.Values[c]; ok {
			return v
		}
	}
	for _, c := range candidates {
		want := strings.TrimSpace(c)
		for _, k := range r.Keys {
			if strings.TrimSpace(k) == want {
				return r.Values[k]
			}
		}
	}
	for _, c := range candidates {
		want := strings.ToLower(strings.TrimSpace(c))
		for _, k := range r.Keys {
			if strings.ToLower(strings.TrimSpace(k)) == want {
				return r.Values[k]
			}
		}
	}
	return ""
}
