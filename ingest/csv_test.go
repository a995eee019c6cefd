package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

const sampleCSV = `time,open,high,low,close,volume
1546984800,1.1000,1.1005,1.0995,1.1002,120
1546984860,1.1002,1.1010,1.1001,1.1008,95
`

func TestReadCSV(t *testing.T) {
	t.Parallel()

	bars, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, int64(1546984800), bars[0].Time)
	assert.InDelta(t, 1.1000, bars[0].Open, 1e-9)
	assert.InDelta(t, 1.1002, bars[0].Close, 1e-9)
	assert.Equal(t, uint32(120), bars[0].Volume)
	assert.Equal(t, int64(1546984860), bars[1].Time)
}

func TestReadCSVUTF16(t *testing.T) {
	t.Parallel()

	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	encoded, err := enc.Bytes([]byte(sampleCSV))
	require.NoError(t, err)

	bars, err := ReadCSV(strings.NewReader(string(encoded)))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.InDelta(t, 1.1008, bars[1].Close, 1e-9)
}

func TestReadCSVTimeFormats(t *testing.T) {
	t.Parallel()

	bars, err := ReadCSV(strings.NewReader(
		"2019-01-08T22:00:00Z,1.1,1.1,1.1,1.1,1\n" +
			"2019-01-08 22:01:00,1.2,1.2,1.2,1.2,1\n"))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, int64(1546984800), bars[0].Time)
	assert.Equal(t, int64(1546984860), bars[1].Time)
}

func TestReadCSVSortsAndValidates(t *testing.T) {
	t.Parallel()

	// out of order rows come back sorted
	bars, err := ReadCSV(strings.NewReader(
		"1546984860,1.2,1.2,1.2,1.2,1\n" +
			"1546984800,1.1,1.1,1.1,1.1,1\n"))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Less(t, bars[0].Time, bars[1].Time)

	_, err = ReadCSV(strings.NewReader("1546984800,1.1,1.1\n"))
	assert.Error(t, err, "too few columns")

	_, err = ReadCSV(strings.NewReader("1546984800,1.1,1.1,1.1,nope,1\n"))
	assert.Error(t, err)

	// bad time outside the header row
	_, err = ReadCSV(strings.NewReader(
		"1546984800,1.1,1.1,1.1,1.1,1\nwhenever,1.1,1.1,1.1,1.1,1\n"))
	assert.Error(t, err)
}
