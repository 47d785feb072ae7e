package fetcher

import (
	"context"
	"github.com/langowen/currency-archive/internal/api_service/adapter/storage/redis"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"log/slog"
	"sync"
	"time"
)

type Options struct {
	Schedule   string
	Period     string
	RunOnStart bool
	// Timeout bounds a single warm-up run. Zero means no limit.
	Timeout time.Duration
}

// Fetcher keeps the archive warm by asking the rate service for a period on a cron schedule,
// which makes the service backfill any day it does not have yet.
type Fetcher struct {
	service RatesService
	events  EventSource
	opts    Options
	cron    *cron.Cron
}

func NewFetcher(service RatesService, events EventSource, opts Options) *Fetcher {
	return &Fetcher{
		service: service,
		events:  events,
		opts:    opts,
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// StartFetcher blocks until ctx is done and every job it started has returned.
func (f *Fetcher) StartFetcher(ctx context.Context) error {
	const op = "fetcher.StartFetcher"

	_, err := f.cron.AddFunc(f.opts.Schedule, func() {
		if _, err := f.RunNow(ctx); err != nil {
			slog.Error("Scheduled warm-up failed", "op", op, "error", err)
		}
	})
	if err != nil {
		return errors.Wrap(err, op)
	}

	f.cron.Start()
	slog.Info("Scheduler started", "schedule", f.opts.Schedule, "period", f.opts.Period)

	var wg sync.WaitGroup

	if f.opts.RunOnStart {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.RunNow(ctx); err != nil {
				slog.Error("Start-up warm-up failed", "op", op, "error", err)
			}
		}()
	}

	if f.events != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.listen(ctx)
		}()
	}

	<-ctx.Done()

	stopped := f.cron.Stop()
	<-stopped.Done()
	wg.Wait()
	slog.Info("Scheduler stopped")

	return nil
}

// RunNow warms the configured period once and returns the number of records it covers.
func (f *Fetcher) RunNow(ctx context.Context) (int, error) {
	const op = "fetcher.RunNow"

	if f.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
		defer cancel()
	}

	start := time.Now()

	rates, err := f.service.GetForPeriod(ctx, f.opts.Period, "")
	if err != nil {
		return 0, errors.Wrap(err, op)
	}

	slog.Info("Archive warmed", "period", f.opts.Period, "records", len(rates), "took", time.Since(start))

	return len(rates), nil
}

func (f *Fetcher) listen(ctx context.Context) {
	const op = "fetcher.listen"

	err := f.events.ListenBackfilled(ctx, func(event redis.BackfillEvent) {
		slog.Info("Days backfilled", "from", event.From, "to", event.To, "days", event.Days)
	})
	if err != nil {
		slog.Error("Backfill listener stopped", "op", op, "error", err)
	}
}
