package memory

import (
	"context"
	"time"

	"github.com/sandevgo/tuskdash/internal/core"
	"github.com/sandevgo/tuskdash/pkg/log"
)

const DefaultRetentionInterval = time.Hour

// RetentionWorker prunes turns and fragments older than their retention windows.
// A zero window keeps rows forever.
type RetentionWorker struct {
	turns             core.TurnRepository
	knowledge         core.KnowledgeRepository
	turnRetention     time.Duration
	fragmentRetention time.Duration
	interval          time.Duration
	now               func() time.Time
	done              chan struct{}
}

func NewRetentionWorker(
	turns core.TurnRepository,
	knowledge core.KnowledgeRepository,
	turnRetention, fragmentRetention, interval time.Duration,
) *RetentionWorker {
	if interval <= 0 {
		interval = DefaultRetentionInterval
	}
	return &RetentionWorker{
		turns:             turns,
		knowledge:         knowledge,
		turnRetention:     turnRetention,
		fragmentRetention: fragmentRetention,
		interval:          interval,
		now:               time.Now,
		done:              make(chan struct{}),
	}
}

func (w *RetentionWorker) Start(ctx context.Context) error {
	defer close(w.done)

	logger := log.FromCtx(ctx).With().Str("component", "retention_worker").Logger()
	if w.turnRetention <= 0 && w.fragmentRetention <= 0 {
		logger.Info().Msg("retention disabled, worker idle")
		<-ctx.Done()
		return nil
	}
	logger.Info().
		Dur("turns", w.turnRetention).
		Dur("fragments", w.fragmentRetention).
		Msg("starting retention worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down retention worker")
			return nil
		case <-ticker.C:
			w.Prune(logger.WithContext(ctx))
		}
	}
}

// Shutdown waits for the loop to observe cancellation.
func (w *RetentionWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Prune runs one retention pass. Failures are logged and left for the next tick.
func (w *RetentionWorker) Prune(ctx context.Context) {
	logger := log.FromCtx(ctx)
	now := w.now()

	if w.turnRetention > 0 {
		n, err := w.turns.DeleteTurnsBefore(ctx, now.Add(-w.turnRetention))
		if err != nil {
			logger.Error().Err(err).Msg("failed to prune turns")
		} else if n > 0 {
			logger.Info().Int64("deleted", n).Msg("pruned old turns")
		}
	}

	if w.fragmentRetention > 0 {
		n, err := w.knowledge.DeleteFragmentsBefore(ctx, now.Add(-w.fragmentRetention))
		if err != nil {
			logger.Error().Err(err).Msg("failed to prune fragments")
		} else if n > 0 {
			logger.Info().Int64("deleted", n).Msg("pruned old fragments")
		}
	}
}
