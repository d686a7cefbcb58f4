package catalog

import (
	"context"
	stderrors "errors"
	"time"

	"resource-workers/internal/common/logger"
	"resource-workers/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

// CachedSource keeps the raw guide document in Redis in front of a slower
// origin (Postgres or Elasticsearch). Cache failures never fail a fetch.
type CachedSource struct {
	origin Source
	client *redis.Client
	key    string
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedSource(origin Source, client *redis.Client, key string, ttl time.Duration, log logger.Logger) *CachedSource {
	return &CachedSource{
		origin: origin,
		client: client,
		key:    key,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "catalog-cache", "key": key}),
	}
}

func (s *CachedSource) Name() string {
	return s.origin.Name()
}

func (s *CachedSource) Fetch(ctx context.Context) ([]byte, error) {
	cached, err := s.client.Get(ctx, s.key).Bytes()
	switch {
	case err == nil && len(cached) > 0:
		metrics.CatalogCacheLookups.WithLabelValues("hit").Inc()
		s.logger.Debug("catalog cache hit", map[string]interface{}{"bytes": len(cached)})
		return cached, nil
	case err == nil, stderrors.Is(err, redis.Nil):
		metrics.CatalogCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CatalogCacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("catalog cache read failed", map[string]interface{}{"error": err.Error()})
	}

	data, err := s.origin.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		s.logger.Warn("catalog cache write failed", map[string]interface{}{"error": err.Error()})
	}
	return data, nil
}

// Invalidate drops the cached document so the next fetch goes to the origin.
func (s *CachedSource) Invalidate(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
