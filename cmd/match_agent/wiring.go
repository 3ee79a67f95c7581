package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/founder-match/internal/cachestore"
	"github.com/jonathan/founder-match/internal/config"
	"github.com/jonathan/founder-match/internal/db"
	"github.com/jonathan/founder-match/internal/llm"
	"github.com/jonathan/founder-match/internal/logging"
	"github.com/jonathan/founder-match/internal/ranking"
	"github.com/jonathan/founder-match/internal/recommend"
)

// components holds the collaborators built from configuration for one command.
type components struct {
	db      *db.DB
	cache   recommend.CacheStore
	service *recommend.Service
	closers []func() error
}

// Close releases resources in reverse order of acquisition.
func (c *components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			logging.Warn().Err(err).Msg("failed to release resource")
		}
	}
}

// buildComponents connects to the database and wires the recommendation
// service. With offline set, or without an API key, no oracle is created and
// every generation uses the fallback ranker.
func buildComponents(ctx context.Context, cfg *config.Config, offline bool) (*components, error) {
	if cfg.Database.URL == "" {
		return nil, errors.New("database URL is required (set DATABASE_URL or database.url)")
	}

	database, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	c := &components{db: database}
	c.closers = append(c.closers, func() error {
		database.Close()
		return nil
	})

	cache, closeCache, err := openCache(cfg.Cache, database)
	if err != nil {
		c.Close()
		return nil, err
	}
	if closeCache != nil {
		c.closers = append(c.closers, closeCache)
	}
	c.cache = cache

	oracle, closeOracle, err := newOracle(ctx, cfg.Oracle, offline)
	if err != nil {
		c.Close()
		return nil, err
	}
	if closeOracle != nil {
		c.closers = append(c.closers, closeOracle)
	}

	c.service = recommend.NewService(recommend.Deps{
		Cache:    cache,
		Pool:     database,
		Profiles: database,
		Oracle:   oracle,
	}, serviceSettings(cfg))

	logging.Info().
		Str("cache_backend", cfg.Cache.Backend).
		Bool("oracle", oracle != nil).
		Msg("recommendation service ready")

	return c, nil
}

// openCache returns the configured cache store and, for stores that hold
// resources of their own, a function that releases them.
func openCache(cfg config.CacheConfig, database *db.DB) (recommend.CacheStore, func() error, error) {
	// Rows older than two windows can never be served again.
	retention := 2 * cfg.FreshnessWindow

	switch cfg.Backend {
	case config.CacheBackendBadger:
		store, err := cachestore.OpenBadger(cfg.BadgerPath, cachestore.WithRetention(retention))
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.CacheBackendMemory:
		return cachestore.NewMemoryStore(cachestore.WithRetention(retention)), nil, nil
	case config.CacheBackendPostgres, "":
		if database == nil {
			return nil, nil, errors.New("postgres cache backend requires a database")
		}
		return database, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// newOracle builds the scoring oracle. It returns a nil Oracle, not a typed
// nil, when no oracle should be used.
func newOracle(ctx context.Context, cfg config.OracleConfig, offline bool) (ranking.Oracle, func() error, error) {
	if offline || cfg.APIKey == "" {
		return nil, nil, nil
	}

	tier, err := llm.ParseTier(cfg.Tier)
	if err != nil {
		return nil, nil, err
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create scoring client: %w", err)
	}

	if cfg.Breaker.Enabled {
		client = llm.NewBreakerClient(client, llm.BreakerSettings{
			MinRequests:  cfg.Breaker.MinRequests,
			FailureRatio: cfg.Breaker.FailureRatio,
			Interval:     cfg.Breaker.Interval,
			OpenTimeout:  cfg.Breaker.OpenTimeout,
		})
	}

	return ranking.NewLLMOracle(client, tier, cfg.Timeout), client.Close, nil
}

// serviceSettings maps configuration onto orchestrator settings.
func serviceSettings(cfg *config.Config) recommend.Settings {
	return recommend.Settings{
		K:                   cfg.Recommend.K,
		FreshnessWindow:     cfg.Cache.FreshnessWindow,
		MaxPoolSize:         cfg.Recommend.MaxPoolSize,
		PercentageTolerance: cfg.Recommend.PercentageTolerance,
		EnrichConcurrency:   cfg.Recommend.EnrichConcurrency,
		Fallback: ranking.FallbackRanker{
			Start: cfg.Recommend.FallbackStart,
			Step:  cfg.Recommend.FallbackStep,
			Floor: cfg.Recommend.FallbackFloor,
		},
	}
}
