package market

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/sandevgo/tuskdash/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candles(closes ...float64) []core.Candle {
	base := time.Date(2026, 5, 4, 14, 0, 0, 0, time.Local)
	out := make([]core.Candle, len(closes))
	for i, c := range closes {
		out[i] = core.Candle{
			Time:   base.Add(time.Duration(i) * time.Minute),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 10,
		}
	}
	return out
}

func TestChartData_EmptyProviderResponse(t *testing.T) {
	rows := ChartData(context.Background(), &fakeQuotes{series: core.Series{}}, "NQ=F", "1m", "1d")
	require.NotNil(t, rows)
	assert.Empty(t, rows)

	data, err := json.Marshal(rows)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestChartData_ProviderError(t *testing.T) {
	rows := ChartData(context.Background(), &fakeQuotes{err: errors.New("boom")}, "NQ=F", "1m", "1d")
	require.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestBuildChartRows_DropsNaNOpenClose(t *testing.T) {
	cs := candles(1, 2, 3, 4, 5, 6)
	cs[1].Open = math.NaN()
	cs[3].Close = math.NaN()

	rows := BuildChartRows(core.Series{Candles: cs}, true)
	require.Len(t, rows, 4)

	closes := []float64{rows[0].Close, rows[1].Close, rows[2].Close, rows[3].Close}
	assert.Equal(t, []float64{1, 3, 5, 6}, closes)
	assert.Equal(t, "14:00", rows[0].Time)
}

func TestBuildChartRows_MovingAverages(t *testing.T) {
	rows := BuildChartRows(core.Series{Candles: candles(1, 2, 3, 4, 5, 6, 7)}, true)
	require.Len(t, rows, 7)

	for i := 0; i < 4; i++ {
		assert.Nil(t, rows[i].MA5, "row %d", i)
	}
	require.NotNil(t, rows[4].MA5)
	assert.InDelta(t, 3.0, *rows[4].MA5, 1e-9)
	require.NotNil(t, rows[6].MA5)
	assert.InDelta(t, 5.0, *rows[6].MA5, 1e-9)

	for _, r := range rows {
		assert.Nil(t, r.MA20)
		assert.Nil(t, r.MA60)
		assert.Nil(t, r.MA120)
	}

	// Null averages do not drop the row and encode as JSON null.
	data, err := json.Marshal(rows[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ma5":null`)
	assert.Contains(t, string(data), `"close":1`)
}

func TestBuildChartRows_MissingHighLowVolume(t *testing.T) {
	cs := candles(10)
	cs[0].High = math.NaN()
	cs[0].Low = math.NaN()
	cs[0].Volume = math.NaN()

	rows := BuildChartRows(core.Series{Candles: cs}, false)
	require.Len(t, rows, 1)
	assert.Equal(t, 10.0, rows[0].High)
	assert.Equal(t, 10.0, rows[0].Low)
	assert.Equal(t, 0.0, rows[0].Volume)
	assert.Equal(t, "2026-05-04", rows[0].Time)

	_, err := json.Marshal(rows)
	assert.NoError(t, err)
}

func TestChangePercent(t *testing.T) {
	tests := []struct {
		current, reference float64
		want               string
	}{
		{102, 100, "2.00"},
		{98, 100, "-2.00"},
		{100, 100, "0.00"},
		{101.005, 100, "1.01"},
		{21000, 20750.5, "1.20"},
	}
	for _, tt := range tests {
		got := ChangePercent(tt.current, tt.reference)
		assert.Equal(t, tt.want, got.StringFixed(2), "%v vs %v", tt.current, tt.reference)
	}
}

func TestBreached(t *testing.T) {
	tests := []struct {
		name      string
		current   float64
		threshold float64
		want      bool
	}{
		{"exactly at threshold", 101, 1, true},
		{"just under displays as threshold", 100.995, 1, false},
		{"downward at threshold", 99, 1, true},
		{"downward just under", 99.001, 1, false},
		{"far above", 105, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Breached(ChangePercent(tt.current, 100), tt.threshold))
		})
	}
}

func TestCoolingDown(t *testing.T) {
	now := time.Now()
	last := now.Add(-29 * time.Minute)
	old := now.Add(-31 * time.Minute)

	assert.False(t, CoolingDown(nil, now, 30*time.Minute))
	assert.True(t, CoolingDown(&last, now, 30*time.Minute))
	assert.False(t, CoolingDown(&old, now, 30*time.Minute))
}
