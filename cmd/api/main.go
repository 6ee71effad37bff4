package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/eyira/storefront/api/controllers"
	"github.com/eyira/storefront/api/routes"
	"github.com/eyira/storefront/internal/checkout"
	"github.com/eyira/storefront/internal/fulfillment"
	"github.com/eyira/storefront/internal/sessions"
	stripewebhook "github.com/eyira/storefront/internal/webhooks/stripe"
	"github.com/eyira/storefront/pkg/config"
	"github.com/eyira/storefront/pkg/db"
	"github.com/eyira/storefront/pkg/email"
	"github.com/eyira/storefront/pkg/instance"
	"github.com/eyira/storefront/pkg/logger"
	"github.com/eyira/storefront/pkg/metrics"
	"github.com/eyira/storefront/pkg/migrate"
	"github.com/eyira/storefront/pkg/redis"
	"github.com/eyira/storefront/pkg/stripe"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storefrontMetrics := metrics.NewStorefront(registry)

	stripeClient, err := stripe.NewClient(ctx, cfg.Stripe, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	mailer, err := email.NewResendMailer(cfg.Resend)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap resend", err)
		os.Exit(1)
	}

	readiness := map[string]controllers.Pinger{}
	store, cleanup, err := processedSessionStore(ctx, cfg, logg, readiness)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap processed session store", err)
		os.Exit(1)
	}
	defer cleanup()

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Builder:  checkout.NewBuilder(cfg.Storefront),
		Provider: stripeClient,
		Metrics:  storefrontMetrics,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create checkout service", err)
		os.Exit(1)
	}

	dispatcher, err := fulfillment.NewDispatcher(fulfillment.DispatcherParams{
		Store:      store,
		Mailer:     mailer,
		Storefront: cfg.Storefront,
		Metrics:    storefrontMetrics,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create fulfillment dispatcher", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Dispatcher: dispatcher,
		Metrics:    storefrontMetrics,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create webhook service", err)
		os.Exit(1)
	}

	sessionService, err := sessions.NewService(sessions.ServiceParams{
		Provider: stripeClient,
		Metrics:  storefrontMetrics,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create session lookup service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"addr":        addr,
		"instance":    instance.GetID(),
		"stripe_env":  stripeClient.Environment(),
		"idempotency": cfg.Idempotency.Kind(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			Checkout:        checkoutService,
			Sessions:        sessionService,
			WebhookService:  webhookService,
			WebhookVerifier: stripeClient,
			ReadinessChecks: readiness,
			MetricsGatherer: registry,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "graceful shutdown failed", err)
		}
	}
}

// processedSessionStore selects the fulfillment idempotency backend and
// registers its connection with the readiness probe.
func processedSessionStore(ctx context.Context, cfg *config.Config, logg *logger.Logger, readiness map[string]controllers.Pinger) (fulfillment.ProcessedSessionStore, func(), error) {
	switch cfg.Idempotency.Kind() {
	case config.IdempotencyBackendRedis:
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, nil, err
		}
		readiness["redis"] = redisClient
		store, err := fulfillment.NewRedisStore(redisClient, cfg.Idempotency.TTL)
		if err != nil {
			_ = redisClient.Close()
			return nil, nil, err
		}
		return store, func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}, nil

	case config.IdempotencyBackendPostgres:
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, nil, err
		}
		if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
			_ = dbClient.Close()
			return nil, nil, err
		}
		readiness["database"] = dbClient
		store, err := fulfillment.NewPostgresStore(dbClient.DB())
		if err != nil {
			_ = dbClient.Close()
			return nil, nil, err
		}
		return store, func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing database", err)
			}
		}, nil

	default:
		logg.Warn(ctx, "using in-memory processed session store; duplicates are only suppressed within this instance")
		return fulfillment.NewMemoryStore(), func() {}, nil
	}
}
