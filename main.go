package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Paddock-Club/trackmaster/app"
	"github.com/Paddock-Club/trackmaster/config"
	"github.com/Paddock-Club/trackmaster/internal/observability"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.Environment)

	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		logger.Info("Shutdown signal received")
		cancel()
	}()

	if err := application.Run(ctx); err != nil {
		logger.Error("Application stopped with error", slog.Any("error", err))
	}

	application.Close()
}
