// internal/common/camunda/client_test.go
package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"resource-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *Client {
	return &Client{config: &ClientConfig{
		ConnectionTimeout: time.Second,
		RetryConfig: &RetryConfig{
			MaxRetries: 2,
			BaseDelay:  time.Millisecond,
			MaxDelay:   4 * time.Millisecond,
		},
	}}
}

func TestExecuteWithRetry(t *testing.T) {
	t.Run("retries transient errors until success", func(t *testing.T) {
		calls := 0
		err := testClient().ExecuteWithRetry(context.Background(), func(context.Context) error {
			calls++
			if calls < 3 {
				return stderrors.New("rpc error: code = Unavailable")
			}
			return nil
		}, "topology")

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := testClient().ExecuteWithRetry(context.Background(), func(context.Context) error {
			calls++
			return stderrors.New("connection refused")
		}, "topology")

		require.Error(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, errors.ErrCodeExternalService, errors.CodeOf(err))
	})

	t.Run("does not retry permanent errors", func(t *testing.T) {
		calls := 0
		err := testClient().ExecuteWithRetry(context.Background(), func(context.Context) error {
			calls++
			return stderrors.New("permission denied")
		}, "topology")

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("timeouts map to timeout errors", func(t *testing.T) {
		err := testClient().ExecuteWithRetry(context.Background(), func(context.Context) error {
			return stderrors.New("context deadline exceeded")
		}, "topology")

		assert.Equal(t, errors.ErrCodeTimeout, errors.CodeOf(err))
	})

	t.Run("stops when context is cancelled", func(t *testing.T) {
		c := testClient()
		c.config.RetryConfig.BaseDelay = time.Second
		c.config.RetryConfig.MaxDelay = time.Second

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		err := c.ExecuteWithRetry(ctx, func(context.Context) error {
			return stderrors.New("unavailable")
		}, "topology")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestBackoff(t *testing.T) {
	retry := &RetryConfig{BaseDelay: time.Second, MaxDelay: 5 * time.Second}
	assert.Equal(t, time.Second, backoff(retry, 0))
	assert.Equal(t, 2*time.Second, backoff(retry, 1))
	assert.Equal(t, 4*time.Second, backoff(retry, 2))
	assert.Equal(t, 5*time.Second, backoff(retry, 3))
}

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(stderrors.New("Connection Reset by peer")))
	assert.True(t, isRetryableZeebeError(stderrors.New("broken pipe")))
	assert.False(t, isRetryableZeebeError(stderrors.New("NOT_FOUND: no such process")))
}
