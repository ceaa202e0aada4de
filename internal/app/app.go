// Package app assembles the service graph shared by the server and the
// one-shot expiry check.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/smarthousehold/inventory-service/internal/api/handler"
	"github.com/smarthousehold/inventory-service/internal/config"
	"github.com/smarthousehold/inventory-service/internal/db"
	"github.com/smarthousehold/inventory-service/internal/domain"
	"github.com/smarthousehold/inventory-service/internal/expiry"
	"github.com/smarthousehold/inventory-service/internal/metrics"
	"github.com/smarthousehold/inventory-service/internal/provider"
	"github.com/smarthousehold/inventory-service/internal/ratelimiter"
	"github.com/smarthousehold/inventory-service/internal/repository"
	"github.com/smarthousehold/inventory-service/internal/runlock"
	"github.com/smarthousehold/inventory-service/internal/service"
	"github.com/smarthousehold/inventory-service/internal/worker"
)

// runLockPrefix namespaces the daily lock key in Redis.
const runLockPrefix = "inventory:expiry-check:"

type App struct {
	Pool     *pgxpool.Pool
	Redis    *redis.Client
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Provider provider.Provider

	Inventory *service.InventoryService
	Tokens    *service.TokenService
	Analytics *service.AnalyticsService
	Expiry    *service.ExpiryService
}

// New connects to Postgres (and Redis when configured), applies migrations,
// and builds every service.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	a.Pool = pool

	if err := db.Migrate(cfg.MigrationsPath, cfg.DatabaseURL); err != nil {
		a.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations applied")

	var lock runlock.Locker = runlock.NopLocker{}
	if cfg.RedisAddr != "" {
		rdb, err := db.ConnectRedis(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.Redis = rdb
		lock = runlock.NewRedisLocker(rdb, runLockPrefix, cfg.RunLockTTL)
	} else {
		logger.Warn("REDIS_ADDR not set, expiry check runs without a cross-replica lock")
	}

	prov, err := provider.New(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init push provider: %w", err)
	}
	a.Provider = prov

	a.Registry = prometheus.NewRegistry()
	a.Metrics = metrics.New(a.Registry)

	items := repository.NewPgItemRepository(pool)
	tokens := repository.NewPgTokenRepository(pool)

	onSent, onFailed := a.Metrics.DispatchHooks(prov.Name())
	dispatcher := worker.NewDispatcher(
		prov,
		ratelimiter.New(cfg.PushRateLimit),
		cfg.DispatchTimeout,
		logger.Named("dispatcher"),
		worker.MetricHooks{OnSent: onSent, OnFailed: onFailed},
	)

	a.Inventory = service.NewInventoryService(items, cfg.Location, logger)
	a.Tokens = service.NewTokenService(tokens, logger)
	a.Analytics = service.NewAnalyticsService(a.Inventory)
	a.Expiry = service.NewExpiryService(items, tokens, dispatcher, lock, service.ExpiryConfig{
		Location:     cfg.Location,
		Window:       expiry.Window{HorizonDays: cfg.HorizonDays, NotifyDays: cfg.NotifyDays},
		MaxBodyItems: cfg.MaxBodyItems,
		OnFinished: func(r *domain.RunReport) {
			a.Metrics.ObserveRun(string(r.Outcome), r.Candidates, r.StartedAt.Add(r.Duration))
		},
	}, logger.Named("expiry"))

	logger.Info("push provider ready", zap.String("provider", prov.Name()))
	return a, nil
}

// HealthChecks returns the dependency probes for /health.
func (a *App) HealthChecks() map[string]handler.HealthCheck {
	checks := map[string]handler.HealthCheck{
		"postgres": a.Pool.Ping,
	}
	if a.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.Redis.Ping(ctx).Err() }
	}
	return checks
}

func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}
