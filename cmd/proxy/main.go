package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DanielPopoola/banza-wallet-proxy/internal/api"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/application"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/application/services"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/config"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/consent"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/domain"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/infrastructure/mailer"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/infrastructure/metakeep"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/interfaces/rest/handlers"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/interfaces/rest/middleware"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/metrics"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/notify"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting wallet proxy",
		"port", cfg.Server.Port,
		"env", cfg.Primary.Env,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	m := metrics.New()

	var journal application.DeliveryJournal = notify.NopJournal{}
	if cfg.Database.Enabled() {
		db, err := postgres.Connect(ctx, &cfg.Database, logger)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		journal = postgres.NewDeliveryJournal(db)
	} else {
		logger.Info("no database configured, delivery journal disabled")
	}

	if cfg.Mailer.FromEmail == "" {
		logger.Warn("mailer source address is not set, transfer emails will fail")
	}

	registry := consent.NewRegistry()
	walletClient := metakeep.NewClient(cfg.MetaKeep)
	smtpMailer := mailer.NewSMTPMailer(cfg.Mailer)
	notifier := notify.NewNotifier(cfg.Mailer, smtpMailer, journal, logger, notify.WithMetrics(m))

	tokenService := services.NewTokenService(
		walletClient,
		registry,
		notifier,
		domain.NewBCN(cfg.Assets.BCNAddress),
		logger,
	)
	usdcService := services.NewUSDCService(
		walletClient,
		notifier,
		domain.NewUSDC(cfg.Assets.USDCAddress),
		services.AuthorizationDomain{
			Name:    cfg.Assets.USDCName,
			Version: cfg.Assets.USDCVersion,
			ChainID: cfg.Assets.ChainID,
			TTL:     cfg.Assets.AuthorizationTTL,
		},
		logger,
	)

	h := handlers.NewHandlers(tokenService, usdcService, registry, logger)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	if err := api.RegisterDocsRoutes(mux); err != nil {
		logger.Error("failed to load api documentation", "error", err)
		os.Exit(1)
	}
	mux.Handle("GET /metrics", m.Handler())

	limiter := middleware.NewRateLimiter(cfg.RateLimit, m, logger)
	knownPaths := append([]string{"/docs/openapi.json"}, handlers.Paths...)

	handler := middleware.Timeout(cfg.Server.RequestTimeout)(mux)
	handler = limiter.Handler(handler)
	handler = middleware.CORS(cfg.CORS.AllowedOrigins)(handler)
	handler = middleware.Metrics(m, knownPaths)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	reporter := worker.NewPendingReporter(registry, m.PendingTokens, cfg.Worker.Interval, logger)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go reporter.Start(workerCtx)
	go limiter.StartCleanup(workerCtx, 10*time.Minute)

	go func() {
		logger.Info("server starting", "addr", server.Addr, "allowed_origins", cfg.CORS.AllowedOrigins)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	if pending := registry.Len(); pending > 0 {
		logger.Warn("exiting with unconfirmed consent tokens, they are lost", "pending", pending)
	}

	logger.Info("server exited")
}
