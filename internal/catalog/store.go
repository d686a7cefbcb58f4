package catalog

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"time"

	"resource-workers/internal/common/errors"
	"resource-workers/internal/common/logger"
	"resource-workers/internal/common/metrics"
)

// ErrNotLoaded is returned by Store.Catalog before the first Refresh.
var ErrNotLoaded = stderrors.New("catalog not loaded")

type StoreOptions struct {
	MaxResources int
	LoadTimeout  time.Duration
}

// Store owns the active catalog snapshot. Readers get the snapshot through an
// atomic pointer and never see a partially built catalog.
type Store struct {
	source  Source
	opts    StoreOptions
	logger  logger.Logger
	current atomic.Pointer[Catalog]
}

func NewStore(source Source, opts StoreOptions, log logger.Logger) *Store {
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = 10 * time.Second
	}
	return &Store{
		source: source,
		opts:   opts,
		logger: log.WithFields(map[string]interface{}{"component": "catalog-store", "source": source.Name()}),
	}
}

// Load fetches and parses the guide. It never fails: any fetch or parse
// error yields the fallback catalog.
func (s *Store) Load(ctx context.Context) *Catalog {
	cat, err := s.load(ctx)
	if err != nil {
		metrics.CatalogLoads.WithLabelValues(s.source.Name(), "fallback").Inc()
		s.logger.Error("catalog load failed, using fallback catalog", map[string]interface{}{
			"error":     err.Error(),
			"errorCode": string(errors.CodeOf(err)),
		})
		return Fallback()
	}

	metrics.CatalogLoads.WithLabelValues(s.source.Name(), "loaded").Inc()
	for _, r := range cat.Rejected {
		s.logger.Warn("resource dropped from catalog", map[string]interface{}{
			"index":  r.Index,
			"id":     r.ID,
			"reason": r.Reason,
		})
	}
	s.logger.Info("catalog loaded", map[string]interface{}{
		"version":   cat.Version,
		"resources": len(cat.Resources),
		"rejected":  len(cat.Rejected),
	})
	return cat
}

func (s *Store) load(ctx context.Context) (*Catalog, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.LoadTimeout)
	defer cancel()

	data, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	cat, err := Parse(data, ParseOptions{Source: s.source.Name(), MaxResources: s.opts.MaxResources})
	if err != nil {
		if inv, ok := s.source.(interface{ Invalidate(context.Context) error }); ok {
			_ = inv.Invalidate(ctx)
		}
		return nil, err
	}
	return cat, nil
}

// Refresh loads the guide and installs it. A fallback result replaces the
// active snapshot only when no real catalog has been installed yet.
func (s *Store) Refresh(ctx context.Context) *Catalog {
	next := s.Load(ctx)
	prev := s.current.Load()
	if next.Fallback && prev != nil && !prev.Fallback {
		s.logger.Warn("keeping previous catalog after failed reload", map[string]interface{}{
			"version":  prev.Version,
			"loadedAt": prev.LoadedAt,
		})
		return prev
	}

	s.current.Store(next)
	metrics.CatalogResources.Set(float64(len(next.Resources)))
	return next
}

// Set installs a snapshot directly.
func (s *Store) Set(cat *Catalog) {
	s.current.Store(cat)
	metrics.CatalogResources.Set(float64(len(cat.Resources)))
}

// Catalog returns the active snapshot.
func (s *Store) Catalog() (*Catalog, error) {
	cat := s.current.Load()
	if cat == nil {
		return nil, ErrNotLoaded
	}
	return cat, nil
}

// Ready reports whether a snapshot has been installed.
func (s *Store) Ready() bool {
	return s.current.Load() != nil
}

// Run refreshes the snapshot every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}
