package service

import (
	"context"
	"fmt"
	"github.com/langowen/currency-archive/internal/entities"
	"github.com/langowen/currency-archive/internal/metrics"
	"log/slog"
	"time"
)

// Throttler paces the upstream calls of one backfill.
// fetched is the number of days already fetched, total the size of the backfill.
type Throttler interface {
	BeforeNextFetch(ctx context.Context, fetched, total int) error
}

// NoDelay never pauses.
type NoDelay struct{}

func (NoDelay) BeforeNextFetch(context.Context, int, int) error { return nil }

// FixedDelay pauses before every fetch after the first Free ones,
// but only for backfills longer than Free days.
type FixedDelay struct {
	Delay   time.Duration
	Free    int
	metrics *metrics.Metrics
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewFixedDelay(delay time.Duration, free int, m *metrics.Metrics) *FixedDelay {
	return &FixedDelay{
		Delay:   delay,
		Free:    free,
		metrics: m,
		sleep:   sleepContext,
	}
}

func (t *FixedDelay) BeforeNextFetch(ctx context.Context, fetched, total int) error {
	if total <= t.Free || fetched < t.Free || t.Delay <= 0 {
		return nil
	}

	slog.Debug("pausing before next upstream fetch", "delay", t.Delay, "fetched", fetched, "total", total)
	t.metrics.ThrottlePause()

	if err := t.sleep(ctx, t.Delay); err != nil {
		return fmt.Errorf("%w after %d of %d days: %w", entities.ErrInterruptedWait, fetched, total, err)
	}

	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
