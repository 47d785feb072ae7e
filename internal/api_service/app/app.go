package apiApp

import (
	"context"
	"github.com/langowen/currency-archive/deploy/config"
	"github.com/langowen/currency-archive/internal/api_service/adapter/storage/memory"
	"github.com/langowen/currency-archive/internal/api_service/adapter/storage/postgres"
	"github.com/langowen/currency-archive/internal/api_service/adapter/storage/redis"
	"github.com/langowen/currency-archive/internal/api_service/ports/http/public"
	"github.com/langowen/currency-archive/internal/api_service/service"
	"github.com/langowen/currency-archive/internal/currency_fetcher/adapter/api_client/privat"
	"github.com/langowen/currency-archive/internal/lib/logger"
	"github.com/langowen/currency-archive/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	redisPack "github.com/redis/go-redis/v9"
	"log"
	"log/slog"
	"os"
)

type ApiApp struct {
	cfg      *config.Config
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	closers  []func()
}

func NewApiApp(cfg *config.Config) *ApiApp {
	return &ApiApp{cfg: cfg}
}

func (a *ApiApp) Start(ctx context.Context) <-chan struct{} {
	ratesService, _ := a.Build(ctx)

	serverDone := a.StartServer(ctx, ratesService)
	slog.Info("server started", "port", a.cfg.HTTPServer.Port)

	return serverDone
}

// Build initialises logging, metrics, storage and the rate service.
// The returned redis storage is nil when REDIS_ENABLED is false.
func (a *ApiApp) Build(ctx context.Context) (*service.Service, *redis.Storage) {
	a.initLogger()
	slog.Info("Logger initialized")

	slog.With("config", a.cfg).Info("starting application")

	a.initMetrics()

	storage := a.initDatabase(ctx)
	slog.Info("Storage initialized", "driver", a.cfg.Storage.Driver)

	rdStorage := a.initRedis(ctx)

	fetcher := a.initFetcher(rdStorage)
	slog.Info("Upstream client initialized", "url", a.cfg.Upstream.URL)

	ratesService := a.initService(storage, fetcher, rdStorage)
	slog.Info("Service initialized", "currencies", []string(a.cfg.SupportedCurrencies()))

	return ratesService, rdStorage
}

// Close releases the storage connections opened by Build.
func (a *ApiApp) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *ApiApp) Metrics() *metrics.Metrics {
	return a.metrics
}

func (a *ApiApp) initLogger() {
	l, err := logger.New(os.Stdout, a.cfg.Logger.Level, a.cfg.Logger.Format)
	if err != nil {
		log.Fatalln("Failed to initialize logger", "error", err)
	}
	slog.SetDefault(l)
}

func (a *ApiApp) initMetrics() {
	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = metrics.New(a.registry)
}

func (a *ApiApp) initDatabase(ctx context.Context) service.Storage {
	if a.cfg.Storage.Driver == "memory" {
		return memory.NewStorage()
	}

	pgStorage, err := postgres.InitStorage(ctx, a.cfg.DSN(), postgres.PoolOptions{
		MaxConns: a.cfg.Storage.MaxConns,
		MinConns: a.cfg.Storage.MinConns,
		Timeout:  a.cfg.Storage.Timeout,
	})
	if err != nil {
		log.Fatalln("Failed to initialize PostgresSQL storage", "error", err)
	}
	a.closers = append(a.closers, pgStorage.Close)

	return pgStorage
}

func (a *ApiApp) initRedis(ctx context.Context) *redis.Storage {
	if !a.cfg.Redis.Enabled {
		slog.Info("Redis disabled")
		return nil
	}

	options := &redisPack.Options{
		Addr:     a.cfg.Redis.Host,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	}

	rdStorage, err := redis.InitStorage(ctx, options)
	if err != nil {
		log.Fatalln("Failed to initialize Redis storage", "error", err)
	}
	a.closers = append(a.closers, func() { _ = rdStorage.Close() })
	slog.Info("Redis client initialized", "addr", a.cfg.Redis.Host)

	return rdStorage
}

func (a *ApiApp) initFetcher(rdStorage *redis.Storage) service.DayFetcher {
	client := privat.NewClient(privat.Options{
		URL:       a.cfg.Upstream.URL,
		Timeout:   a.cfg.Upstream.Timeout,
		Attempts:  a.cfg.Upstream.Attempts,
		RetryWait: a.cfg.Upstream.RetryWait,
	}, a.cfg.SupportedCurrencies(), a.metrics)

	if rdStorage == nil {
		return client
	}

	return redis.NewDayCache(rdStorage, client, a.cfg.Redis.DayTTL, a.cfg.Redis.EmptyDayTTL, a.metrics)
}

func (a *ApiApp) initService(storage service.Storage, fetcher service.DayFetcher, rdStorage *redis.Storage) *service.Service {
	loc, err := a.cfg.Location()
	if err != nil {
		log.Fatalln("Failed to load timezone", "error", err)
	}

	opts := []service.Option{
		service.WithThrottler(service.NewFixedDelay(a.cfg.Throttle.Delay, a.cfg.Throttle.FreeFetches, a.metrics)),
		service.WithClock(service.NewClock(loc)),
		service.WithMetrics(a.metrics),
	}
	if rdStorage != nil {
		opts = append(opts, service.WithNotifier(rdStorage))
	}

	ratesService, err := service.NewService(storage, fetcher, a.cfg.SupportedCurrencies(), opts...)
	if err != nil {
		log.Fatalln("Failed to initialize service rate", "error", err)
	}

	return ratesService
}

func (a *ApiApp) StartServer(ctx context.Context, ratesService *service.Service) <-chan struct{} {
	router := public.NewRouter(ratesService, a.metrics, a.registry)

	return public.StartServer(ctx, router, a.cfg.HTTPServer)
}
