// internal/catalog/store_test.go
package catalog

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"resource-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// switchableSource returns whatever document or error it currently holds.
type switchableSource struct {
	mu  sync.Mutex
	doc []byte
	err error
}

func (s *switchableSource) Name() string { return "switchable" }

func (s *switchableSource) Fetch(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc, s.err
}

func (s *switchableSource) set(doc []byte, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc, s.err = doc, err
}

// invalidatingSource records Invalidate calls.
type invalidatingSource struct {
	StaticSource
	invalidated int
}

func (s *invalidatingSource) Invalidate(ctx context.Context) error {
	s.invalidated++
	return nil
}

// ==========================
// Load
// ==========================

func TestStore_LoadFallsBack(t *testing.T) {
	tests := []struct {
		name   string
		source Source
	}{
		{"missing document", &StaticSource{}},
		{"malformed document", &StaticSource{Document: []byte(`{"resources": "nope"}`)}},
		{"fetch error", &switchableSource{err: stderrors.New("boom")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(tt.source, StoreOptions{}, logger.NewTestLogger(t))
			cat := store.Load(context.Background())
			require.NotNil(t, cat)
			assert.True(t, cat.Fallback)
			assert.Empty(t, cat.Resources)
		})
	}
}

func TestStore_LoadInvalidatesCacheOnParseFailure(t *testing.T) {
	src := &invalidatingSource{StaticSource: StaticSource{Document: []byte(`not json`)}}
	store := NewStore(src, StoreOptions{}, logger.NewTestLogger(t))

	cat := store.Load(context.Background())
	assert.True(t, cat.Fallback)
	assert.Equal(t, 1, src.invalidated)
}

func TestStore_LoadHonoursMaxResources(t *testing.T) {
	store := NewStore(&StaticSource{Document: []byte(sampleGuide)}, StoreOptions{MaxResources: 1}, logger.NewTestLogger(t))

	cat := store.Load(context.Background())
	assert.False(t, cat.Fallback)
	assert.Len(t, cat.Resources, 1)
	assert.Equal(t, "static", cat.Source)
}

// ==========================
// Refresh and Snapshot
// ==========================

func TestStore_CatalogBeforeLoad(t *testing.T) {
	store := NewStore(&StaticSource{}, StoreOptions{}, logger.NewNoOpLogger())

	assert.False(t, store.Ready())
	_, err := store.Catalog()
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestStore_RefreshKeepsLastGoodCatalog(t *testing.T) {
	src := &switchableSource{}
	store := NewStore(src, StoreOptions{}, logger.NewTestLogger(t))

	// nothing loaded yet: the fallback is installed
	src.set(nil, stderrors.New("down"))
	first := store.Refresh(context.Background())
	assert.True(t, first.Fallback)
	assert.True(t, store.Ready())

	src.set([]byte(sampleGuide), nil)
	good := store.Refresh(context.Background())
	assert.False(t, good.Fallback)
	assert.Equal(t, "2.3", good.Version)

	src.set(nil, stderrors.New("down again"))
	kept := store.Refresh(context.Background())
	assert.Same(t, good, kept)

	current, err := store.Catalog()
	require.NoError(t, err)
	assert.Same(t, good, current)
}

func TestStore_Set(t *testing.T) {
	store := NewStore(&StaticSource{}, StoreOptions{}, logger.NewNoOpLogger())
	cat := New([]Resource{{BasicInfo: BasicInfo{ID: "x"}}}, nil)

	store.Set(cat)

	current, err := store.Catalog()
	require.NoError(t, err)
	assert.Same(t, cat, current)
}

func TestStore_RunReloadsUntilCancelled(t *testing.T) {
	src := &switchableSource{doc: []byte(`{"version": "a", "resources": []}`)}
	store := NewStore(src, StoreOptions{}, logger.NewNoOpLogger())
	store.Refresh(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	src.set([]byte(`{"version": "b", "resources": []}`), nil)
	assert.Eventually(t, func() bool {
		cat, err := store.Catalog()
		return err == nil && cat.Version == "b"
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestStore_RunWithoutInterval(t *testing.T) {
	store := NewStore(&StaticSource{}, StoreOptions{}, logger.NewNoOpLogger())
	// returns immediately
	store.Run(context.Background(), 0)
}

func TestStore_ConcurrentReaders(t *testing.T) {
	src := &switchableSource{doc: []byte(sampleGuide)}
	store := NewStore(src, StoreOptions{}, logger.NewNoOpLogger())
	store.Refresh(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				cat, err := store.Catalog()
				if assert.NoError(t, err) {
					assert.NotEmpty(t, cat.Version)
				}
			}
		}()
	}
	for i := 0; i < 5; i++ {
		store.Refresh(context.Background())
	}
	wg.Wait()
}
