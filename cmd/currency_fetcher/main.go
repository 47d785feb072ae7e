package main

import (
	"context"
	"github.com/langowen/currency-archive/deploy/config"
	fetcherApp "github.com/langowen/currency-archive/internal/currency_fetcher/app"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	cfg := config.NewConfig()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := fetcherApp.NewFetcherApp(cfg)
	if err := app.Start(ctx); err != nil {
		slog.Error("fetcher stopped with error", "error", err)
		os.Exit(1)
	}

	slog.Info("fetcher stopped")
}
