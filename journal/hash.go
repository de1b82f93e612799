package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/rustyeddy/tradebook/recon"
)

// ContentHash fingerprints a trade by what it reports, not by its
// generated ID: re-running an import over overlapping source data
// re-emits logically identical trades, and this hash is how the store
// suppresses them. The engine itself never deduplicates.
func ContentHash(t recon.Trade) string {
	parts := []string{
		t.Exchange,
		t.Instrument,
		string(t.Direction),
		t.EntryPrice.String(),
		t.ExitPrice.String(),
		t.Quantity.String(),
		t.EntryTime.UTC().Format(time.RFC3339),
		t.ExitTime.UTC().Format(time.RFC3339),
		t.PNL.String(),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
