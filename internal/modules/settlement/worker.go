package settlement

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Worker periodically releases due escrow holds. Multiple instances may run
// at once; the per-hold conditional update keeps each release at-most-once.
type Worker struct {
	svc      *Service
	interval time.Duration
	logger   zerolog.Logger
}

func NewWorker(svc *Service, interval time.Duration, logger zerolog.Logger) *Worker {
	return &Worker{
		svc:      svc,
		interval: interval,
		logger:   logger.With().Str("component", "escrow_worker").Logger(),
	}
}

// Run sweeps until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info().Dur("interval", w.interval).Msg("escrow release worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("escrow release worker stopped")
			return
		case <-ticker.C:
			released, err := w.svc.ReleaseDue(ctx)
			if err != nil {
				w.logger.Error().Err(err).Msg("release sweep failed")
				continue
			}
			if released > 0 {
				w.logger.Info().Int("released", released).Msg("release sweep completed")
			}
		}
	}
}
