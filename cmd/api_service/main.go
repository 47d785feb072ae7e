package main

import (
	"context"
	"github.com/langowen/currency-archive/deploy/config"
	apiApp "github.com/langowen/currency-archive/internal/api_service/app"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	cfg := config.NewConfig()

	ctx, cancel := context.WithCancel(context.Background())

	app := apiApp.NewApiApp(cfg)
	serverDone := app.Start(ctx)

	done := make(chan os.Signal, 1)

	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-done
	slog.Info("Gracefully shutting down")

	cancel()
	slog.Info("stopping server")

	<-serverDone
	app.Close()
	slog.Info("server stopped")
}
