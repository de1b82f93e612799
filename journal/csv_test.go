package journal

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradebook/recon"
)

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := WriteCSV(&buf, []recon.Trade{testTrade("T1", "BTCUSDT", 19)})
	require.NoError(t, err)

	r := csv.NewReader(&buf)
	header, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, csvHeader, header)

	row, err := r.Read()
	require.NoError(t, err)
	require.Len(t, row, len(csvHeader))
	assert.Equal(t, "T1", row[0])
	assert.Equal(t, "BTCUSDT", row[2])
	assert.Equal(t, "100", row[5])
	assert.Equal(t, "2026-01-05T10:00:00Z", row[8])
	assert.Equal(t, "19", row[11])
}

func TestWriteCSVEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	r := csv.NewReader(&buf)
	_, err := r.Read()
	require.NoError(t, err)
	_, err = r.Read()
	assert.Error(t, err, "only the header is written")
}
