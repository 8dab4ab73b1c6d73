package market

import (
	"context"
	"errors"
	"math"

	"github.com/sandevgo/tuskdash/internal/core"
)

const DefaultHistoryLimit = 60

var ErrInvalidThreshold = errors.New("threshold must be a positive number")

func (w *Watcher) GetSetting(ctx context.Context) (core.AlertSetting, error) {
	return w.repo.GetOrCreateSetting(ctx, w.defaultSetting())
}

// UpdateSetting changes threshold and activity; the cooldown marker is kept.
func (w *Watcher) UpdateSetting(ctx context.Context, threshold float64, active bool) (core.AlertSetting, error) {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold <= 0 {
		return core.AlertSetting{}, ErrInvalidThreshold
	}

	setting, err := w.GetSetting(ctx)
	if err != nil {
		return core.AlertSetting{}, err
	}

	setting.ThresholdPercent = threshold
	setting.Active = active
	if err := w.repo.UpdateSetting(ctx, setting); err != nil {
		return core.AlertSetting{}, err
	}
	return setting, nil
}

type HistoryPoint struct {
	Time  string  `json:"time"`
	Price float64 `json:"price"`
}

// History returns up to limit stored samples, oldest first, stamped "15:04" in local time.
func (w *Watcher) History(ctx context.Context, limit int) ([]HistoryPoint, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	samples, err := w.repo.RecentPriceSamples(ctx, w.cfg.Symbol, limit)
	if err != nil {
		return nil, err
	}

	points := make([]HistoryPoint, 0, len(samples))
	for _, s := range samples {
		points = append(points, HistoryPoint{
			Time:  s.CreatedAt.Local().Format("15:04"),
			Price: s.Price,
		})
	}
	return points, nil
}
