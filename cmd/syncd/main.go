package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmynk/duoledger/internal/config"
	"github.com/mmynk/duoledger/internal/syncserver"
	"github.com/mmynk/duoledger/pkg/logging"
)

func main() {
	config.LoadDotEnv()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := logging.Setup(cfg.LogLevel); err != nil {
		slog.Error("Failed to set up logging", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := syncserver.Run(ctx, syncserver.Options{
		Addr:    cfg.ServerAddr,
		DataDir: cfg.ServerDataDir,
		Token:   cfg.ServerToken,
	})
	if err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
