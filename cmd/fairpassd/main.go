package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/roshannn-07/fairpass/internal/config"
	httpinfra "github.com/roshannn-07/fairpass/internal/infra/http"
	"github.com/roshannn-07/fairpass/internal/infra/logging"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed to load .env: %v", err)
	}
	cfg := config.FromEnv()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := httpinfra.NewServer(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to init server", zap.Error(err))
	}
	defer func() { _ = srv.Close() }()

	logger.Info("fairpassd starting", zap.String("ledger", cfg.LedgerMode))
	if err := srv.Run(ctx); err != nil {
		logger.Error("server exited", zap.Error(err))
		return
	}
	logger.Info("fairpassd stopped")
}
