package flight

import (
	"context"
	"time"
	"tixgo/pkg/logger"
)

type cacheCleaner interface {
	CleanExpiredCache(ctx context.Context) (CleanupResult, error)
}

// Janitor sweeps expired cache rows on a fixed interval.
type Janitor struct {
	cleaner  cacheCleaner
	interval time.Duration
	logger   logger.Logger
}

func NewJanitor(cleaner cacheCleaner, interval time.Duration, log logger.Logger) *Janitor {
	return &Janitor{
		cleaner:  cleaner,
		interval: interval,
		logger:   log,
	}
}

// Run sweeps once immediately, then every interval until ctx is done.
func (j *Janitor) Run(ctx context.Context) {
	if j.interval <= 0 {
		j.logger.Warn("cache janitor disabled", logger.Field{Key: "interval", Value: j.interval})
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			j.logger.Info("cache janitor stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	if _, err := j.cleaner.CleanExpiredCache(ctx); err != nil {
		j.logger.Error("cache janitor sweep failed", logger.Field{Key: "err", Value: err})
	}
}
