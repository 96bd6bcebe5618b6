// Package sweep drives the periodic full pass over all records. Events can be
// lost or arrive before GitHub has settled; the sweep heals whatever they
// missed.
package sweep

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ptalsvc/internal/domain/ptal"
)

type Sweeper struct {
	svc      ptal.Service
	interval time.Duration
	log      *zap.Logger
}

func NewSweeper(svc ptal.Service, interval time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{
		svc:      svc,
		interval: interval,
		log:      log,
	}
}

// Run sweeps once immediately, then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	start := time.Now()
	s.svc.Sweep(ctx)
	s.log.Info("sweep finished", zap.Duration("took", time.Since(start)))
}
