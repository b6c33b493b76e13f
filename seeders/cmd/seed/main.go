package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"semapa/internal/cli"
	"semapa/pkg/config"
	applogger "semapa/pkg/logger"
)

func main() {
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli.App{Config: cfg, Logger: logger}
	defer app.Close()

	if err := cli.NewRootCmd(app).ExecuteContext(ctx); err != nil {
		logger.Error("Comando falhou", zap.Error(err))
		app.Close()
		os.Exit(1)
	}
}
