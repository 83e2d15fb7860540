package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/talent-gateway/internal/api/http"
	"github.com/spec-kit/talent-gateway/internal/api/http/handlers"
	"github.com/spec-kit/talent-gateway/internal/auth"
	"github.com/spec-kit/talent-gateway/internal/config"
	"github.com/spec-kit/talent-gateway/internal/events"
	"github.com/spec-kit/talent-gateway/internal/guard"
	"github.com/spec-kit/talent-gateway/internal/observability"
	"github.com/spec-kit/talent-gateway/internal/proxy"
	"github.com/spec-kit/talent-gateway/internal/service"
	"github.com/spec-kit/talent-gateway/internal/upstream"
	"github.com/spec-kit/talent-gateway/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()
	eventBus := events.NewInMemoryDispatcher()

	auditService := service.NewAuditService(eventBus, logger)
	worker.StartAuditWorker(auditService)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	validator := upstream.NewCredentialValidator(cfg.Upstream.AuthURL, cfg.Upstream.Timeout(), logger)
	authService := service.NewAuthService(validator, tokenManager, eventBus)
	sessionMiddleware := auth.NewSessionMiddleware(tokenManager, eventBus)

	dispatcher := proxy.NewDispatcher(cfg.Upstream.BaseURL, cfg.Upstream.Timeout(), logger, metrics, eventBus)
	proxyHandler := handlers.NewProxyHandler(dispatcher)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Upstream.BaseURL),
		Auth:    handlers.NewAuthHandler(authService),
		Proxy:   proxyHandler,
		Pages:   handlers.NewPagesHandler(guard.DefaultTable(), proxyHandler),
		Session: sessionMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.ShutdownWithTimeout(10 * time.Second)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
