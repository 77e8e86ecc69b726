package sched

import (
	"context"
	"time"

	"case-portal/internal/domain/ports/repository"
	"case-portal/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// FlowSweeper periodically drops wizard sessions nobody touched for maxIdle.
type FlowSweeper struct {
	interval time.Duration
	maxIdle  time.Duration
	flows    repository.IdleFlowSweeper
	log      *zerolog.Logger
	now      func() time.Time
}

func NewFlowSweeper(interval, maxIdle time.Duration, flows repository.IdleFlowSweeper, logger *zerolog.Logger) *FlowSweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	l := logger.With().Str("component", "FlowSweeper").Logger()
	return &FlowSweeper{
		interval: interval,
		maxIdle:  maxIdle,
		flows:    flows,
		log:      &l,
		now:      time.Now,
	}
}

func (w *FlowSweeper) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Dur("max_idle", w.maxIdle).Msg("Starting flow sweeper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping flow sweeper")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *FlowSweeper) sweep(ctx context.Context) int {
	n, err := w.flows.DeleteIdle(ctx, w.now().Add(-w.maxIdle))
	if err != nil {
		w.log.Error().Err(err).Msg("flow sweep failed")
		return 0
	}
	if n > 0 {
		metrics.IncSessionsSwept(n)
		w.log.Info().Int("count", n).Msg("idle flows removed")
	}
	return n
}
