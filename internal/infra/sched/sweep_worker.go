package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"trading-signal-subscription/internal/infra/metrics"
	red "trading-signal-subscription/internal/infra/redis"
	"trading-signal-subscription/internal/usecase"
)

const sweepLockKey = "lock:subscription_sweep"

// SweepWorker periodically expires overdue subscriptions via the use case.
// A redis lock keeps the sweep to one replica per tick; the sweep itself is
// idempotent, so a lost lock only costs duplicate (zero-row) work.
type SweepWorker struct {
	interval time.Duration
	lockTTL  time.Duration
	subUC    usecase.SubscriptionUseCase
	locker   red.Locker
	log      *zerolog.Logger
}

func NewSweepWorker(interval, lockTTL time.Duration, subUC usecase.SubscriptionUseCase, locker red.Locker, logger *zerolog.Logger) *SweepWorker {
	l := logger.With().Str("component", "SweepWorker").Logger()
	return &SweepWorker{
		interval: interval,
		lockTTL:  lockTTL,
		subUC:    subUC,
		locker:   locker,
		log:      &l,
	}
}

func (w *SweepWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting sweep worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping sweep worker")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *SweepWorker) sweep(ctx context.Context) {
	if w.locker != nil {
		token, err := w.locker.TryLock(ctx, sweepLockKey, w.lockTTL)
		if err != nil {
			if err == red.ErrLockHeld {
				w.log.Debug().Msg("sweep already running elsewhere")
			} else {
				w.log.Error().Err(err).Msg("sweep lock error")
			}
			return
		}
		defer func() {
			if err := w.locker.Unlock(ctx, sweepLockKey, token); err != nil {
				w.log.Warn().Err(err).Msg("sweep unlock failed")
			}
		}()
	}

	n, err := w.subUC.SweepExpired(ctx, time.Now())
	if err != nil {
		w.log.Error().Err(err).Msg("sweep error")
		return
	}
	if n > 0 {
		metrics.IncSubscriptionsExpired(n)
		w.log.Info().Int("count", n).Msg("overdue subscriptions expired")
	}
}
