package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sandevgo/tuskdash/internal/core"
	"github.com/sandevgo/tuskdash/pkg/log"
	"github.com/sandevgo/tuskdash/pkg/retry"
)

const maxResponseSize = 4 << 20

// Yahoo reads OHLCV candles from the Yahoo Finance v8 chart endpoint.
type Yahoo struct {
	client  *http.Client
	baseURL string
	retrier *retry.Retrier
}

func NewYahoo(baseURL string, retrier *retry.Retrier) *Yahoo {
	if retrier == nil {
		retrier = retry.NewDefaultRetrier()
	}
	return &Yahoo{
		client: &http.Client{
			Timeout: 20 * time.Second,
		},
		baseURL: baseURL,
		retrier: retrier,
	}
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol             string   `json:"symbol"`
		PreviousClose      *float64 `json:"previousClose"`
		ChartPreviousClose *float64 `json:"chartPreviousClose"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// Series fetches candles for symbol. Missing values come back as NaN.
// An unknown symbol or a day without trades yields an empty series, not an error.
func (y *Yahoo) Series(ctx context.Context, symbol, interval, rng string) (core.Series, error) {
	var body []byte
	err := y.retrier.Do(ctx, func() error {
		var err error
		body, err = y.fetch(ctx, symbol, interval, rng)
		return err
	})
	if err != nil {
		return core.Series{}, err
	}

	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return core.Series{}, fmt.Errorf("decode chart: %w", err)
	}
	if parsed.Chart.Error != nil {
		log.FromCtx(ctx).Debug().
			Str("symbol", symbol).
			Str("code", parsed.Chart.Error.Code).
			Msg("quote provider returned no data")
		return core.Series{Symbol: symbol}, nil
	}
	if len(parsed.Chart.Result) == 0 {
		return core.Series{Symbol: symbol}, nil
	}

	return toSeries(symbol, parsed.Chart.Result[0]), nil
}

func (y *Yahoo) fetch(ctx context.Context, symbol, interval, rng string) ([]byte, error) {
	q := url.Values{}
	q.Set("interval", interval)
	q.Set("range", rng)
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", y.baseURL, url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", core.DashUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := y.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, retry.Permanent(err)
		}
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// Yahoo answers unknown symbols with 404 and a chart.error body.
		return data, nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, retry.Permanent(fmt.Errorf("http %d: %s", resp.StatusCode, truncate(data, 200)))
	}
	return data, nil
}

func toSeries(symbol string, r chartResult) core.Series {
	s := core.Series{Symbol: symbol, PreviousClose: math.NaN()}
	if r.Meta.Symbol != "" {
		s.Symbol = r.Meta.Symbol
	}
	switch {
	case r.Meta.PreviousClose != nil:
		s.PreviousClose = *r.Meta.PreviousClose
	case r.Meta.ChartPreviousClose != nil:
		s.PreviousClose = *r.Meta.ChartPreviousClose
	}

	if len(r.Indicators.Quote) == 0 {
		return s
	}
	q := r.Indicators.Quote[0]

	s.Candles = make([]core.Candle, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		s.Candles = append(s.Candles, core.Candle{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   at(q.Open, i),
			High:   at(q.High, i),
			Low:    at(q.Low, i),
			Close:  at(q.Close, i),
			Volume: at(q.Volume, i),
		})
	}
	return s
}

func at(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return math.NaN()
	}
	return *values[i]
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
