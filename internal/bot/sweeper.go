package bot

import (
	"context"
	"time"

	"github.com/coder/quartz"
	"go.uber.org/zap"
)

// Sweeper is anything holding expirable conversation state.
type Sweeper interface {
	Sweep() int
}

// SweepWorker periodically drops abandoned pending steps.
type SweepWorker struct {
	store    Sweeper
	clock    quartz.Clock
	interval time.Duration
	logger   *zap.Logger
}

func NewSweepWorker(store Sweeper, clock quartz.Clock, interval time.Duration, logger *zap.Logger) *SweepWorker {
	return &SweepWorker{
		store:    store,
		clock:    clock,
		interval: interval,
		logger:   logger.Named("sweeper"),
	}
}

// Run ticks until ctx is cancelled.
func (w *SweepWorker) Run(ctx context.Context) error {
	ticker := w.clock.NewTicker(w.interval, "sweeper")
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick()
		case <-ctx.Done():
			return nil
		}
	}
}

func (w *SweepWorker) tick() {
	if n := w.store.Sweep(); n > 0 {
		w.logger.Info("expired pending steps", zap.Int("count", n))
	}
}
