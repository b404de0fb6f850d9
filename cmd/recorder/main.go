package main

import (
	"context"
	"os/signal"
	"syscall"

	"btcprice-service/internal/bootstrap"
	"btcprice-service/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	log := logx.L()
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	run, cleanup, err := bootstrap.InitRecorderApp(ctx)
	if err != nil {
		log.Fatal("init recorder", zap.Error(err))
	}
	defer cleanup()
	if err := run(ctx); err != nil {
		log.Error("recorder exited", zap.Error(err))
	}
}
