package quote

import (
	"context"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sandevgo/tuskdash/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartBody = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "NQ=F", "previousClose": 99.5},
      "timestamp": [1700000000, 1700000060, 1700000120],
      "indicators": {"quote": [{
        "open":   [100.0, null, 101.0],
        "high":   [101.0, 102.0, 103.0],
        "low":    [99.0, 100.0, 100.5],
        "close":  [100.5, 101.5, 102.0],
        "volume": [10, 20, null]
      }]}
    }],
    "error": null
  }
}`

func fastRetrier() *retry.Retrier {
	return retry.NewRetrier(&retry.Config{
		MaxRetries:    2,
		BackoffFactor: 1,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
	})
}

func TestYahoo_Series(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, chartBody)
	}))
	defer srv.Close()

	y := NewYahoo(srv.URL, fastRetrier())
	s, err := y.Series(context.Background(), "NQ=F", "1m", "1d")
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/NQ=F", gotPath)
	assert.Contains(t, gotQuery, "interval=1m")
	assert.Contains(t, gotQuery, "range=1d")

	assert.Equal(t, "NQ=F", s.Symbol)
	assert.Equal(t, 99.5, s.PreviousClose)
	require.Len(t, s.Candles, 3)
	assert.Equal(t, 100.0, s.Candles[0].Open)
	assert.True(t, math.IsNaN(s.Candles[1].Open))
	assert.Equal(t, 102.0, s.Candles[2].Close)
	assert.True(t, math.IsNaN(s.Candles[2].Volume))
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), s.Candles[0].Time)
}

func TestYahoo_UnknownSymbolIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	}))
	defer srv.Close()

	s, err := NewYahoo(srv.URL, fastRetrier()).Series(context.Background(), "NOPE", "1m", "1d")
	require.NoError(t, err)
	assert.True(t, s.Empty())
}

func TestYahoo_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, chartBody)
	}))
	defer srv.Close()

	s, err := NewYahoo(srv.URL, fastRetrier()).Series(context.Background(), "NQ=F", "1m", "1d")
	require.NoError(t, err)
	assert.Len(t, s.Candles, 3)
	assert.EqualValues(t, 2, calls.Load())
}

func TestYahoo_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewYahoo(srv.URL, fastRetrier()).Series(context.Background(), "NQ=F", "1m", "1d")
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestYahoo_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	}))
	defer srv.Close()

	_, err := NewYahoo(srv.URL, fastRetrier()).Series(context.Background(), "NQ=F", "1m", "1d")
	assert.Error(t, err)
}
