package market

import (
	"context"
	"math"
	"strings"

	"github.com/sandevgo/tuskdash/internal/core"
	"github.com/sandevgo/tuskdash/pkg/log"
)

var movingAverageWindows = []int{5, 20, 60, 120}

type ChartRow struct {
	Time   string   `json:"time"`
	Open   float64  `json:"open"`
	High   float64  `json:"high"`
	Low    float64  `json:"low"`
	Close  float64  `json:"close"`
	Volume float64  `json:"volume"`
	MA5    *float64 `json:"ma5"`
	MA20   *float64 `json:"ma20"`
	MA60   *float64 `json:"ma60"`
	MA120  *float64 `json:"ma120"`
}

// ChartData returns OHLCV rows with close-price moving averages. Rows without
// an open or close are dropped; any failure yields an empty slice.
func ChartData(ctx context.Context, quotes core.QuoteProvider, symbol, interval, rng string) []ChartRow {
	series, err := quotes.Series(ctx, symbol, interval, rng)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("symbol", symbol).Msg("chart data fetch failed")
		return []ChartRow{}
	}
	if series.Empty() {
		return []ChartRow{}
	}
	return BuildChartRows(series, intraday(interval))
}

func BuildChartRows(series core.Series, intraday bool) []ChartRow {
	candles := make([]core.Candle, 0, len(series.Candles))
	for _, c := range series.Candles {
		if math.IsNaN(c.Open) || math.IsNaN(c.Close) {
			continue
		}
		candles = append(candles, c)
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	averages := make(map[int][]*float64, len(movingAverageWindows))
	for _, window := range movingAverageWindows {
		averages[window] = rollingMean(closes, window)
	}

	layout := "2006-01-02"
	if intraday {
		layout = "15:04"
	}

	rows := make([]ChartRow, 0, len(candles))
	for i, c := range candles {
		rows = append(rows, ChartRow{
			Time:   c.Time.Local().Format(layout),
			Open:   c.Open,
			High:   orDefault(c.High, math.Max(c.Open, c.Close)),
			Low:    orDefault(c.Low, math.Min(c.Open, c.Close)),
			Close:  c.Close,
			Volume: orDefault(c.Volume, 0),
			MA5:    averages[5][i],
			MA20:   averages[20][i],
			MA60:   averages[60][i],
			MA120:  averages[120][i],
		})
	}
	return rows
}

// rollingMean mirrors a trailing window mean: nil until window values are available.
func rollingMean(values []float64, window int) []*float64 {
	out := make([]*float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i+1 >= window {
			mean := sum / float64(window)
			out[i] = &mean
		}
	}
	return out
}

func intraday(interval string) bool {
	return strings.HasSuffix(interval, "m") || strings.HasSuffix(interval, "h")
}

func orDefault(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
