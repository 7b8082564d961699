package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"

	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/kv"
	"github.com/utafrali/storefront/internal/kv/file"
	"github.com/utafrali/storefront/internal/kv/memory"
	kvpostgres "github.com/utafrali/storefront/internal/kv/postgres"
	kvredis "github.com/utafrali/storefront/internal/kv/redis"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
)

// storage is the key/value backend selected by KV_BACKEND, guarded by a
// circuit breaker and traced.
type storage struct {
	name    string
	raw     kv.Store
	store   *kv.Breaker
	ping    health.Checker
	closeFn func() error
}

// openStorage connects to the configured backend. The postgres backend is
// migrated before use.
func openStorage(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, logger *slog.Logger) (*storage, error) {
	s := &storage{
		name:    cfg.KVBackend,
		ping:    func(context.Context) error { return nil },
		closeFn: func() error { return nil },
	}

	switch cfg.KVBackend {
	case config.BackendRedis:
		rdb, err := database.NewRedisClient(ctx, cfg.Redis(), logger)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		store := kvredis.NewStore(rdb, cfg.StateTTL())
		s.raw = store
		s.ping = store.Ping
		s.closeFn = rdb.Close

	case config.BackendPostgres:
		pgCfg := cfg.Postgres()
		pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := database.RunMigrations(ctx, pool, kvpostgres.Migrations(), logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate kv schema: %w", err)
		}
		if reg != nil {
			if err := database.RegisterPoolMetrics(reg, pool, config.ServiceName); err != nil {
				logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
			}
		}
		s.raw = kvpostgres.NewStore(pool, database.NewQueryTracer(cfg.SlowQueryThreshold, logger))
		s.ping = pool.Ping
		s.closeFn = func() error {
			pool.Close()
			return nil
		}

	case config.BackendFile:
		store, err := file.Open(cfg.KVFilePath)
		if err != nil {
			return nil, fmt.Errorf("open kv file: %w", err)
		}
		s.raw = store
		logger.Info("using file kv backend", slog.String("path", cfg.KVFilePath))

	default:
		s.raw = memory.New()
		logger.Warn("using in-memory kv backend, shopping state is lost on restart")
	}

	s.store = kv.NewBreaker(kv.NewTraced(s.raw, s.name), cfg.Breaker(), logger)
	return s, nil
}

// check reports the backend down while the breaker is open, without
// probing it.
func (s *storage) check(ctx context.Context) error {
	if s.store.State() == gobreaker.StateOpen {
		return fmt.Errorf("kv %s: circuit breaker open", s.name)
	}
	return s.ping(ctx)
}

func (s *storage) Close() error {
	return s.closeFn()
}
