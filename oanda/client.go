// Package oanda fetches historical candles from the OANDA v20 REST API.
package oanda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jpillora/backoff"

	"github.com/shine15/iridium/calendar"
	"github.com/shine15/iridium/market"
)

const (
	// PracticeURL is OANDA's practice/demo environment.
	PracticeURL = "https://api-fxpractice.oanda.com"
	// LiveURL is OANDA's live environment.
	LiveURL = "https://api-fxtrade.oanda.com"

	// maxCandles is the per-request candle cap imposed by the API.
	maxCandles = 5000

	defaultRetries = 4
)

// PriceComponent selects which candle prices to fetch.
type PriceComponent string

const (
	MidPrice PriceComponent = "M"
	BidPrice PriceComponent = "B"
	AskPrice PriceComponent = "A"
)

// Client is an OANDA API client. Transient failures (HTTP 429 and 5xx) are
// retried with exponential backoff.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	retries    int
}

// NewClient creates a client authenticated with the given API token.
func NewClient(token string, practice bool) *Client {
	baseURL := LiveURL
	if practice {
		baseURL = PracticeURL
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retries: defaultRetries,
	}
}

// granularity maps a data frequency onto OANDA's granularity labels.
func granularity(freq calendar.DataFrequency) (string, error) {
	if !freq.Valid() {
		return "", fmt.Errorf("oanda: %w: %d", calendar.ErrInvalidFrequency, int64(freq))
	}
	return freq.String(), nil
}

// CandlesRequest describes one candles query.
type CandlesRequest struct {
	Instrument string
	Frequency  calendar.DataFrequency
	Price      PriceComponent

	// Count is mutually exclusive with From/To and capped at 5000.
	Count int
	From  *time.Time
	To    *time.Time
}

type candleData struct {
	O string `json:"o"`
	H string `json:"h"`
	L string `json:"l"`
	C string `json:"c"`
}

type apiCandle struct {
	Complete bool       `json:"complete"`
	Volume   int        `json:"volume"`
	Time     string     `json:"time"`
	Mid      candleData `json:"mid,omitempty"`
	Bid      candleData `json:"bid,omitempty"`
	Ask      candleData `json:"ask,omitempty"`
}

type candlesResponse struct {
	Instrument  string      `json:"instrument"`
	Granularity string      `json:"granularity"`
	Candles     []apiCandle `json:"candles"`
}

// GetCandles fetches one page of completed candles.
func (c *Client) GetCandles(ctx context.Context, req CandlesRequest) ([]market.Bar, error) {
	if req.Instrument == "" {
		return nil, fmt.Errorf("oanda: instrument is required")
	}
	gran, err := granularity(req.Frequency)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	if req.Price == "" {
		req.Price = MidPrice
	}
	params.Set("price", string(req.Price))
	params.Set("granularity", gran)

	if req.Count > 0 {
		if req.Count > maxCandles {
			return nil, fmt.Errorf("oanda: count cannot exceed %d", maxCandles)
		}
		params.Set("count", strconv.Itoa(req.Count))
	} else {
		if req.From != nil {
			params.Set("from", req.From.UTC().Format(time.RFC3339))
		}
		if req.To != nil {
			params.Set("to", req.To.UTC().Format(time.RFC3339))
		}
	}

	apiURL := fmt.Sprintf("%s/v3/instruments/%s/candles?%s", c.baseURL, req.Instrument, params.Encode())
	body, err := c.get(ctx, apiURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var apiResp candlesResponse
	if err := json.NewDecoder(body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("oanda: decode response: %w", err)
	}
	return convertCandles(apiResp.Candles, req.Price)
}

// get issues the request, retrying rate limits and server errors.
func (c *Client) get(ctx context.Context, apiURL string) (io.ReadCloser, error) {
	b := &backoff.Backoff{
		Min:    500 * time.Millisecond,
		Max:    10 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(b.Duration()):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return nil, fmt.Errorf("oanda: create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusOK {
			return resp.Body, nil
		}
		msg, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("oanda: API error (status %d): %s", resp.StatusCode, msg)
		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
			return nil, lastErr
		}
	}
	return nil, fmt.Errorf("oanda: giving up after %d attempts: %w", c.retries+1, lastErr)
}

func convertCandles(candles []apiCandle, price PriceComponent) ([]market.Bar, error) {
	bars := make([]market.Bar, 0, len(candles))
	for _, ac := range candles {
		if !ac.Complete {
			continue
		}
		at, err := time.Parse(time.RFC3339, ac.Time)
		if err != nil {
			return nil, fmt.Errorf("oanda: parse time %s: %w", ac.Time, err)
		}

		data := ac.Mid
		switch price {
		case BidPrice:
			data = ac.Bid
		case AskPrice:
			data = ac.Ask
		}

		var bar market.Bar
		bar.Time = at.Unix()
		for _, f := range []struct {
			s   string
			dst *float64
		}{
			{data.O, &bar.Open},
			{data.H, &bar.High},
			{data.L, &bar.Low},
			{data.C, &bar.Close},
		} {
			v, err := strconv.ParseFloat(f.s, 64)
			if err != nil {
				return nil, fmt.Errorf("oanda: parse price %q: %w", f.s, err)
			}
			*f.dst = v
		}
		bar.Volume = uint32(ac.Volume)
		bars = append(bars, bar)
	}
	return bars, nil
}

// FetchRange pulls candles for [from, to) in API-sized pages and hands each
// page to sink. It returns the total number of bars written.
func (c *Client) FetchRange(ctx context.Context, instrument string, freq calendar.DataFrequency, from, to time.Time, sink func(bars []market.Bar) error) (int, error) {
	if !to.After(from) {
		return 0, fmt.Errorf("oanda: empty fetch range [%v, %v)", from, to)
	}
	page := time.Duration(maxCandles) * freq.Duration()

	total := 0
	for cursor := from; cursor.Before(to); {
		end := cursor.Add(page)
		if end.After(to) {
			end = to
		}
		bars, err := c.GetCandles(ctx, CandlesRequest{
			Instrument: instrument,
			Frequency:  freq,
			From:       &cursor,
			To:         &end,
		})
		if err != nil {
			return total, err
		}
		if len(bars) > 0 {
			if err := sink(bars); err != nil {
				return total, err
			}
			total += len(bars)
		}
		cursor = end
	}
	return total, nil
}
