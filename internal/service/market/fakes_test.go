package market

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sandevgo/tuskdash/internal/config"
	"github.com/sandevgo/tuskdash/internal/core"
)

type fakeQuotes struct {
	series core.Series
	err    error
	calls  int
}

func (f *fakeQuotes) Series(context.Context, string, string, string) (core.Series, error) {
	f.calls++
	return f.series, f.err
}

type fakeRepo struct {
	mu       sync.Mutex
	samples  []core.PriceSample
	setting  *core.AlertSetting
	prunedAt []time.Time
	failAdd  bool
}

func (r *fakeRepo) AddPriceSample(_ context.Context, s core.PriceSample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAdd {
		return errors.New("database is locked")
	}
	s.ID = int64(len(r.samples) + 1)
	r.samples = append(r.samples, s)
	return nil
}

func (r *fakeRepo) RecentPriceSamples(_ context.Context, symbol string, limit int) ([]core.PriceSample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []core.PriceSample
	for i := len(r.samples) - 1; i >= 0 && len(out) < limit; i-- {
		if r.samples[i].Symbol == symbol {
			out = append([]core.PriceSample{r.samples[i]}, out...)
		}
	}
	return out, nil
}

func (r *fakeRepo) sampleCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

func (r *fakeRepo) DeletePriceSamplesBefore(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prunedAt = append(r.prunedAt, before)
	kept := r.samples[:0]
	var n int64
	for _, s := range r.samples {
		if s.CreatedAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, s)
	}
	r.samples = kept
	return n, nil
}

func (r *fakeRepo) GetOrCreateSetting(_ context.Context, defaults core.AlertSetting) (core.AlertSetting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.setting == nil {
		s := defaults
		s.ID = 1
		r.setting = &s
	}
	return *r.setting, nil
}

func (r *fakeRepo) UpdateSetting(_ context.Context, s core.AlertSetting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setting.ThresholdPercent = s.ThresholdPercent
	r.setting.Active = s.Active
	return nil
}

func (r *fakeRepo) MarkAlerted(_ context.Context, _ int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setting.LastAlertAt = &at
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	alerts []core.Alert
	err    error
}

func (n *fakeNotifier) Notify(_ context.Context, a core.Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.alerts = append(n.alerts, a)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alerts)
}

func testMarketConfig() *config.MarketConfig {
	return &config.MarketConfig{
		Symbol:           "NQ=F",
		Interval:         "1m",
		PollInterval:     time.Minute,
		Reference:        config.ReferenceOpen,
		AlertCooldown:    30 * time.Minute,
		PriceRetention:   24 * time.Hour,
		DefaultThreshold: 1.0,
	}
}

func seriesOf(open, close float64) core.Series {
	return core.Series{
		Symbol:        "NQ=F",
		PreviousClose: 95,
		Candles: []core.Candle{
			{Time: time.Unix(1700000000, 0), Open: open, High: close, Low: open, Close: close},
		},
	}
}
