// cmd/worker-manager/catalog.go
package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"resource-workers/internal/catalog"
	"resource-workers/internal/common/config"
	"resource-workers/internal/common/database"
	"resource-workers/internal/common/logger"
)

// buildSource connects only the backing services the configured catalog
// source needs. The returned func releases them.
func buildSource(ctx context.Context, cfg *config.Config, log logger.Logger, zapLog *zap.Logger) (catalog.Source, func(), error) {
	var closers []func() error
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				zapLog.Warn("error closing catalog backend", zap.Error(err))
			}
		}
	}

	var source catalog.Source
	switch cfg.Catalog.Source {
	case config.CatalogSourceFile:
		source = catalog.NewFileSource(cfg.Catalog.Path)

	case config.CatalogSourcePostgres:
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, pg.Close)
		zapLog.Info("PostgreSQL connected successfully")

		pgSource, err := catalog.NewPostgresSource(pg.GetDB(), cfg.Catalog.PostgresTable)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		source = pgSource

	case config.CatalogSourceElasticsearch:
		var es *database.ElasticsearchClient
		err := retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, es.Close)
		zapLog.Info("Elasticsearch connected successfully")

		source = catalog.NewElasticsearchSource(es.Client, cfg.Catalog.ElasticsearchIndex, cfg.Catalog.MaxResources)

	default:
		return nil, closeAll, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}

	if !cfg.Catalog.CacheEnabled {
		return source, closeAll, nil
	}

	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err == nil {
		err = retryWithBackoff(func() error {
			return rdb.Ping(ctx)
		}, 5, time.Second, zapLog, "Redis connection")
	}
	if err != nil {
		// the cache is optional; the origin still serves every load
		zapLog.Warn("catalog cache disabled, redis unavailable", zap.Error(err))
		if rdb != nil {
			_ = rdb.Close()
		}
		return source, closeAll, nil
	}
	closers = append(closers, rdb.Close)
	zapLog.Info("Redis connected successfully")

	return catalog.NewCachedSource(source, rdb.GetClient(), cfg.Catalog.CacheKey, cfg.Catalog.GetCacheTTL(), log), closeAll, nil
}
