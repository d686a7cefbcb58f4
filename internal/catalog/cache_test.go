// internal/catalog/cache_test.go
package catalog

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"resource-workers/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource counts origin fetches.
type countingSource struct {
	doc   []byte
	err   error
	calls int
}

func (s *countingSource) Name() string { return "counting" }

func (s *countingSource) Fetch(ctx context.Context) ([]byte, error) {
	s.calls++
	return s.doc, s.err
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

// ==========================
// Cache Behaviour
// ==========================

func TestCachedSource_MissThenHit(t *testing.T) {
	mr, client := setupRedis(t)
	origin := &countingSource{doc: []byte(sampleGuide)}
	src := NewCachedSource(origin, client, "catalog:resource_guide", 5*time.Minute, logger.NewTestLogger(t))

	assert.Equal(t, "counting", src.Name())

	first, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, origin.calls)
	assert.True(t, mr.Exists("catalog:resource_guide"))
	assert.Equal(t, 5*time.Minute, mr.TTL("catalog:resource_guide"))

	second, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, origin.calls, "second fetch served from cache")
	assert.Equal(t, first, second)
}

func TestCachedSource_ExpiryAndInvalidate(t *testing.T) {
	mr, client := setupRedis(t)
	origin := &countingSource{doc: []byte(sampleGuide)}
	src := NewCachedSource(origin, client, "guide", time.Minute, logger.NewTestLogger(t))

	_, err := src.Fetch(context.Background())
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, err = src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, origin.calls)

	require.NoError(t, src.Invalidate(context.Background()))
	assert.False(t, mr.Exists("guide"))

	_, err = src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, origin.calls)
}

func TestCachedSource_RedisDownFallsThrough(t *testing.T) {
	mr, client := setupRedis(t)
	mr.Close()

	origin := &countingSource{doc: []byte(sampleGuide)}
	src := NewCachedSource(origin, client, "guide", time.Minute, logger.NewTestLogger(t))

	data, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte(sampleGuide), data)
	assert.Equal(t, 1, origin.calls)
}

func TestCachedSource_OriginErrorNotCached(t *testing.T) {
	mr, client := setupRedis(t)
	origin := &countingSource{err: stderrors.New("db down")}
	src := NewCachedSource(origin, client, "guide", time.Minute, logger.NewTestLogger(t))

	_, err := src.Fetch(context.Background())
	assert.Error(t, err)
	assert.False(t, mr.Exists("guide"))
}

func TestCachedSource_CommandSequence(t *testing.T) {
	client, mock := redismock.NewClientMock()
	origin := &countingSource{doc: []byte(`{"resources": []}`)}
	src := NewCachedSource(origin, client, "guide", 30*time.Second, logger.NewNoOpLogger())

	mock.ExpectGet("guide").RedisNil()
	mock.ExpectSet("guide", []byte(`{"resources": []}`), 30*time.Second).SetErr(stderrors.New("READONLY"))

	data, err := src.Fetch(context.Background())
	require.NoError(t, err, "write failure does not fail the fetch")
	assert.Equal(t, `{"resources": []}`, string(data))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedSource_ServesCachedBytes(t *testing.T) {
	client, mock := redismock.NewClientMock()
	origin := &countingSource{}
	src := NewCachedSource(origin, client, "guide", time.Minute, logger.NewNoOpLogger())

	mock.ExpectGet("guide").SetVal(`{"resources": [], "version": "cached"}`)

	data, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(data), "cached")
	assert.Equal(t, 0, origin.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
