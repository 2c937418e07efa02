package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"meal-planner/internal/clipper"
	"meal-planner/internal/config"
	"meal-planner/internal/database"
	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
)

// Setup opens the database and the optional page cache and wires an App
// from cfg. The returned function releases both.
func Setup(ctx context.Context, cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*App, func(), error) {
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	closers := []func() error{db.Close}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("cleanup failed", zap.Error(err))
			}
		}
	}

	opts := []clipper.Option{
		clipper.WithTimeout(cfg.HTTPTimeout),
		clipper.WithUserAgent(cfg.HTTPUserAgent),
		clipper.WithLogger(logger.Named("clipper")),
	}
	if cfg.RedisAddr != "" {
		cache, err := clipper.NewRedisPageCache(ctx, cfg.RedisAddr, cfg.PageCacheTTL)
		if err != nil {
			logger.Warn("page cache disabled", zap.String("redis_addr", cfg.RedisAddr), zap.Error(err))
		} else {
			closers = append(closers, cache.Close)
			opts = append(opts, clipper.WithCache(cache))
			logger.Info("page cache enabled", zap.String("redis_addr", cfg.RedisAddr), zap.Duration("ttl", cfg.PageCacheTTL))
		}
	}

	a := NewApp(
		clipper.New(opts...),
		recipe.NewRepository(db.SQL),
		planner.NewPlanRepository(db.SQL),
		metrics.NewCollectors(reg),
		logger,
		cfg.DatabasePath,
		cfg.DefaultMealCount,
	)
	return a, cleanup, nil
}
