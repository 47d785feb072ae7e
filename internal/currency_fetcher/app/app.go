package fetcherApp

import (
	"context"
	"github.com/langowen/currency-archive/deploy/config"
	"github.com/langowen/currency-archive/internal/api_service/adapter/storage/redis"
	apiApp "github.com/langowen/currency-archive/internal/api_service/app"
	"github.com/langowen/currency-archive/internal/currency_fetcher/fetcher"
	"log/slog"
)

type FetcherApp struct {
	cfg  *config.Config
	core *apiApp.ApiApp
}

func NewFetcherApp(cfg *config.Config) *FetcherApp {
	return &FetcherApp{
		cfg:  cfg,
		core: apiApp.NewApiApp(cfg),
	}
}

// Start runs the warmer until ctx is done.
func (f *FetcherApp) Start(ctx context.Context) error {
	ratesService, rdStorage := f.core.Build(ctx)
	defer f.core.Close()

	warmer := f.initFetcher(ratesService, rdStorage)

	slog.Info("starting fetcher")
	if err := warmer.StartFetcher(ctx); err != nil {
		slog.Error("Failed to fetcher", "error", err)
		return err
	}

	return nil
}

func (f *FetcherApp) initFetcher(ratesService fetcher.RatesService, rdStorage *redis.Storage) *fetcher.Fetcher {
	var events fetcher.EventSource
	if rdStorage != nil {
		events = rdStorage
	}

	return fetcher.NewFetcher(ratesService, events, fetcher.Options{
		Schedule:   f.cfg.Warmer.Schedule,
		Period:     f.cfg.Warmer.Period,
		RunOnStart: f.cfg.Warmer.RunOnStart,
		Timeout:    f.cfg.Warmer.Timeout,
	})
}
