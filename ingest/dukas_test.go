package ingest

import (
	"bytes"
	"context"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz/lzma"
)

func compressTicks(t *testing.T, recs []tickRecord) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := lzma.NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, binary.Write(w, binary.BigEndian, recs))
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestHourURL(t *testing.T) {
	t.Parallel()

	d := &Dukas{}
	hour := time.Date(2019, 1, 8, 13, 0, 0, 0, time.UTC)
	// months are zero-based in dukascopy paths
	assert.Equal(t,
		DefaultDukasURL+"/EURUSD/2019/00/08/13h_ticks.bi5",
		d.HourURL("eurusd", hour))
}

func TestFetchHour(t *testing.T) {
	t.Parallel()

	hour := time.Date(2019, 1, 8, 13, 0, 0, 0, time.UTC)
	payload := compressTicks(t, []tickRecord{
		{Ms: 500, Ask: 110010, Bid: 110000, AskVol: 1, BidVol: 1},
		{Ms: 61_000, Ask: 110030, Bid: 110020, AskVol: 1, BidVol: 1},
		{Ms: 62_000, Ask: 110050, Bid: 110040, AskVol: 1, BidVol: 1},
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/EURUSD/2019/00/08/13h_ticks.bi5", r.URL.Path)
		w.Write(payload)
	}))
	defer server.Close()

	d := &Dukas{BaseURL: server.URL}
	ticks, err := d.FetchHour(context.Background(), "EURUSD", hour)
	require.NoError(t, err)
	require.Len(t, ticks, 3)

	assert.Equal(t, hour.Add(500*time.Millisecond), ticks[0].Time)
	assert.InDelta(t, 1.10000, ticks[0].Bid, 1e-9)
	assert.InDelta(t, 1.10010, ticks[0].Ask, 1e-9)
	assert.InDelta(t, 1.10005, ticks[0].Mid(), 1e-9)

	bars := MinuteBars(ticks)
	require.Len(t, bars, 2)
	assert.Equal(t, hour.Unix(), bars[0].Time)
	assert.Equal(t, uint32(1), bars[0].Volume)
	assert.Equal(t, hour.Add(time.Minute).Unix(), bars[1].Time)
	assert.Equal(t, uint32(2), bars[1].Volume)
	assert.InDelta(t, 1.10025, bars[1].Open, 1e-9)
	assert.InDelta(t, 1.10045, bars[1].Close, 1e-9)
	assert.InDelta(t, 1.10045, bars[1].High, 1e-9)
	assert.InDelta(t, 1.10025, bars[1].Low, 1e-9)
}

func TestFetchHourMissing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	d := &Dukas{BaseURL: server.URL}
	ticks, err := d.FetchHour(context.Background(), "EURUSD", time.Date(2019, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, ticks, "weekend hours have no archive")
}

func TestMinuteBarsEmpty(t *testing.T) {
	t.Parallel()
	assert.Nil(t, MinuteBars(nil))
}
