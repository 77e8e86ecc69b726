package sched

import (
	"context"
	"time"

	"case-portal/internal/usecase"

	"github.com/rs/zerolog"
)

// StatsRefresher keeps the cases-by-status gauge current between admin requests.
type StatsRefresher struct {
	interval time.Duration
	caseUC   usecase.CaseUseCase
	log      *zerolog.Logger
}

func NewStatsRefresher(interval time.Duration, caseUC usecase.CaseUseCase, logger *zerolog.Logger) *StatsRefresher {
	if interval <= 0 {
		interval = time.Minute
	}
	l := logger.With().Str("component", "StatsRefresher").Logger()
	return &StatsRefresher{interval: interval, caseUC: caseUC, log: &l}
}

func (w *StatsRefresher) Run(ctx context.Context) error {
	w.refresh(ctx)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *StatsRefresher) refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := w.caseUC.Stats(ctx); err != nil && ctx.Err() == nil {
		w.log.Warn().Err(err).Msg("refresh case stats")
	}
}
