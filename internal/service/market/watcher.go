package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/tuskdash/internal/config"
	"github.com/sandevgo/tuskdash/internal/core"
	"github.com/sandevgo/tuskdash/pkg/log"
)

const (
	fetchRange = "1d"

	DefaultPollInterval = time.Minute
)

type Outcome string

const (
	OutcomeNoData         Outcome = "no_data"
	OutcomeInactive       Outcome = "inactive"
	OutcomeNoReference    Outcome = "no_reference"
	OutcomeBelowThreshold Outcome = "below_threshold"
	OutcomeCoolingDown    Outcome = "cooling_down"
	OutcomeNotifyFailed   Outcome = "notify_failed"
	OutcomeAlerted        Outcome = "alerted"
	OutcomeFailed         Outcome = "failed"
)

// Watcher polls one symbol, keeps a rolling price history and alerts on
// threshold breaches. Settings updates race with the watcher under last write
// wins; running more than one Watcher per store breaks the cooldown guarantee.
type Watcher struct {
	cfg      *config.MarketConfig
	quotes   core.QuoteProvider
	repo     core.MarketRepository
	notifier core.Notifier
	now      func() time.Time
	done     chan struct{}
}

func NewWatcher(
	cfg *config.MarketConfig,
	quotes core.QuoteProvider,
	repo core.MarketRepository,
	notifier core.Notifier,
) *Watcher {
	return &Watcher{
		cfg:      cfg,
		quotes:   quotes,
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Start runs a cycle immediately and then on every poll tick until ctx ends.
func (w *Watcher) Start(ctx context.Context) error {
	defer close(w.done)

	ctx = log.WithComponent(ctx, "market_watcher")
	logger := log.FromCtx(ctx)

	poll := w.cfg.PollInterval
	if poll <= 0 {
		logger.Warn().Dur("poll", poll).Dur("fallback", DefaultPollInterval).Msg("invalid poll interval")
		poll = DefaultPollInterval
	}

	logger.Info().
		Str("symbol", w.cfg.Symbol).
		Dur("poll", poll).
		Str("reference", w.cfg.Reference).
		Msg("starting market watcher")

	w.tick(ctx)

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down market watcher")
			return nil
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Watcher) Shutdown(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Watcher) tick(ctx context.Context) {
	outcome, err := w.RunCycle(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.FromCtx(ctx).Error().Err(err).Str("outcome", string(outcome)).Msg("market cycle failed")
		return
	}
	log.FromCtx(ctx).Debug().Str("outcome", string(outcome)).Msg("market cycle done")
}

// RunCycle performs one fetch, persist, evaluate and alert pass.
func (w *Watcher) RunCycle(ctx context.Context) (Outcome, error) {
	logger := log.FromCtx(ctx)
	now := w.now()

	series, err := w.quotes.Series(ctx, w.cfg.Symbol, w.cfg.Interval, fetchRange)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("fetch quote: %w", err)
	}

	price, ok := LatestClose(series)
	if !ok {
		return OutcomeNoData, nil
	}

	if err := w.repo.AddPriceSample(ctx, core.PriceSample{
		Symbol:    w.cfg.Symbol,
		Price:     price,
		CreatedAt: now,
	}); err != nil {
		return OutcomeFailed, err
	}

	if n, err := w.repo.DeletePriceSamplesBefore(ctx, now.Add(-w.cfg.PriceRetention)); err != nil {
		logger.Warn().Err(err).Msg("failed to prune price samples")
	} else if n > 0 {
		logger.Debug().Int64("deleted", n).Msg("pruned price samples")
	}

	setting, err := w.repo.GetOrCreateSetting(ctx, w.defaultSetting())
	if err != nil {
		return OutcomeFailed, err
	}
	if !setting.Active {
		return OutcomeInactive, nil
	}

	reference, ok := ReferencePrice(w.cfg.Reference, series)
	if !ok {
		return OutcomeNoReference, nil
	}

	change := ChangePercent(price, reference)
	if !Breached(change, setting.ThresholdPercent) {
		return OutcomeBelowThreshold, nil
	}
	if CoolingDown(setting.LastAlertAt, now, w.cfg.AlertCooldown) {
		return OutcomeCoolingDown, nil
	}

	alert := core.Alert{
		Symbol:        w.cfg.Symbol,
		Direction:     direction(change),
		Price:         price,
		Reference:     reference,
		ChangePercent: change.StringFixed(2),
		Threshold:     setting.ThresholdPercent,
		At:            now,
	}
	if err := w.notifier.Notify(ctx, alert); err != nil {
		// LastAlertAt stays untouched so the next breach retries.
		return OutcomeNotifyFailed, fmt.Errorf("notify: %w", err)
	}

	if err := w.repo.MarkAlerted(ctx, setting.ID, now); err != nil {
		return OutcomeAlerted, err
	}

	logger.Info().
		Str("symbol", alert.Symbol).
		Str("direction", string(alert.Direction)).
		Str("change", alert.ChangePercent).
		Float64("price", alert.Price).
		Msg("price alert sent")

	return OutcomeAlerted, nil
}

func (w *Watcher) defaultSetting() core.AlertSetting {
	return core.AlertSetting{
		Symbol:           w.cfg.Symbol,
		ThresholdPercent: w.cfg.DefaultThreshold,
		Active:           true,
	}
}
