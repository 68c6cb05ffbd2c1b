package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"caylak-bot/internal/bot"
	"caylak-bot/internal/config"
	"caylak-bot/internal/modules/audit"
	"caylak-bot/internal/relay"
	"caylak-bot/internal/storage"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := config.BuildLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("storage init failed", zap.Error(err))
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	auditLogger := audit.NewLogger(store, logger)

	botSvc, err := bot.New(cfg, logger, store, auditLogger)
	if err != nil {
		logger.Fatal("bot init failed", zap.Error(err))
	}

	if err := botSvc.Start(); err != nil {
		logger.Fatal("bot start failed", zap.Error(err))
	}
	logger.Info("bot started")

	relaySrv := relay.NewServer(cfg.Relay, botSvc, logger)
	go func() {
		if err := relaySrv.Start(); err != nil {
			logger.Error("relay server error", zap.Error(err))
		}
	}()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@daily", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := store.CleanupModerationLogs(ctx, cfg.RetentionDays); err != nil {
			logger.Warn("retention cleanup failed", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("cron setup failed", zap.Error(err))
	}
	scheduler.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown requested")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scheduler.Stop()
	_ = relaySrv.Shutdown(ctx)
	botSvc.Close(ctx)
}
