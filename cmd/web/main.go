package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/anurag9179/smartcashbook.client/internal/backend"
	"github.com/anurag9179/smartcashbook.client/internal/config"
	"github.com/anurag9179/smartcashbook.client/internal/observability"
	"github.com/anurag9179/smartcashbook.client/internal/session"
	"github.com/anurag9179/smartcashbook.client/internal/storage"
	"github.com/anurag9179/smartcashbook.client/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tokens, closeStore, err := newTokenStore(cfg, logger)
	if err != nil {
		logger.Fatal("failed to init token store", zap.Error(err))
	}
	defer closeStore()

	client := backend.New(cfg.Backend)

	store, err := session.New(ctx, cfg.Auth, client, tokens, logger)
	if err != nil {
		logger.Fatal("failed to init session store", zap.Error(err))
	}
	defer store.Close()

	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		ReadTimeout: cfg.App.RequestTimeout(),
	})
	web.RegisterMiddlewares(app, logger)
	web.RegisterRoutes(app, web.RouteConfig{
		Handlers: web.NewHandlers(store, logger, cfg.App.Name, cfg.App.Version),
		Guard:    web.NewGuard(store, logger),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func newTokenStore(cfg *config.Config, logger *zap.Logger) (storage.TokenStore, func(), error) {
	switch cfg.Storage.Backend {
	case "redis":
		rs := storage.NewRedisStore(cfg.Redis, cfg.Storage.RedisKey, logger)
		return rs, func() { _ = rs.Close() }, nil
	default:
		fs, err := storage.NewFileStore(cfg.Storage.FilePath, cfg.Storage.SealKey)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
