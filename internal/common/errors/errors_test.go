// internal/common/errors/errors_test.go
package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Constructors and Codes
// ==========================

func TestConstructors(t *testing.T) {
	cause := stderrors.New("connection refused")

	tests := []struct {
		name      string
		err       *StandardError
		code      ErrorCode
		retryable bool
	}{
		{"matching unavailable", NewMatchingUnavailableError("catalog not loaded"), ErrCodeMatchingUnavailable, true},
		{"invalid request", NewInvalidMatchRequestError("age: must be >= 0"), ErrCodeInvalidMatchRequest, false},
		{"catalog load", NewCatalogLoadFailedError("file", cause), ErrCodeCatalogLoadFailed, true},
		{"catalog validation", NewCatalogValidationFailedError("no resources"), ErrCodeCatalogValidationFailed, false},
		{"catalog not found", NewCatalogNotFoundError("postgres", "table: x"), ErrCodeCatalogNotFound, false},
		{"db connection", NewDatabaseConnectionFailedError(cause), ErrCodeDatabaseConnectionFailed, true},
		{"query failed", NewQueryExecutionFailedError("load_catalog", cause), ErrCodeQueryExecutionFailed, true},
		{"query timeout", NewQueryTimeoutError("load_catalog"), ErrCodeQueryTimeout, true},
		{"es connection", NewElasticsearchConnectionFailedError(cause), ErrCodeElasticsearchConnectionFailed, true},
		{"search failed", NewSearchQueryFailedError("load_catalog", cause), ErrCodeSearchQueryFailed, true},
		{"search timeout", NewSearchTimeoutError("load_catalog"), ErrCodeSearchTimeout, true},
		{"index missing", NewIndexNotFoundError("community_resources"), ErrCodeIndexNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.retryable, tt.err.Retryable)
			assert.NotEmpty(t, tt.err.Message)
			assert.False(t, tt.err.Timestamp.IsZero())
			assert.Contains(t, tt.err.Error(), string(tt.code))
		})
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("refresh: %w", NewMatchingUnavailableError("x"))

	assert.Equal(t, ErrCodeMatchingUnavailable, CodeOf(wrapped))
	assert.True(t, IsMatchingUnavailable(wrapped))
	assert.False(t, IsInvalidRequest(wrapped))
	assert.True(t, IsInvalidRequest(NewInvalidMatchRequestError("bad")))
	assert.Equal(t, ErrorCode(""), CodeOf(stderrors.New("plain")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestWithMetadata(t *testing.T) {
	err := NewInvalidMatchRequestError("bad").WithMetadata("field", "age").WithMetadata("value", -1)
	assert.Equal(t, "age", err.Metadata["field"])
	assert.Equal(t, -1, err.Metadata["value"])
}

// ==========================
// BPMN Conversion
// ==========================

func TestConvertToBPMNError(t *testing.T) {
	t.Run("retryable error keeps retries", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewMatchingUnavailableError("down"))
		assert.Equal(t, "MATCHING_UNAVAILABLE", bpmn.Code)
		assert.Equal(t, 3, bpmn.Retries)

		vars := bpmn.ToErrorVariables()
		assert.Equal(t, "MATCHING_UNAVAILABLE", vars["errorCode"])
		assert.Equal(t, "MATCHING_UNAVAILABLE", vars["originalErrorCode"])
		assert.Equal(t, true, vars["retryable"])
		assert.Contains(t, vars, "timestamp")
	})

	t.Run("business error has no retries", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewInvalidMatchRequestError("bad"))
		assert.Equal(t, "INVALID_MATCH_REQUEST", bpmn.Code)
		assert.Equal(t, 0, bpmn.Retries)
	})

	t.Run("non retryable overrides code retries", func(t *testing.T) {
		stdErr := NewQueryTimeoutError("q")
		stdErr.Retryable = false
		assert.Equal(t, 0, ConvertToBPMNError(stdErr).Retries)
	})

	t.Run("unmapped code passes through", func(t *testing.T) {
		bpmn := ConvertToBPMNError(&StandardError{Code: ErrCodeInternal, Message: "x"})
		assert.Equal(t, "INTERNAL_ERROR", bpmn.Code)
	})
}

func TestRetryCounts(t *testing.T) {
	assert.Equal(t, 3, GetRetryCount(ErrCodeCatalogLoadFailed))
	assert.Equal(t, 2, GetRetryCount(ErrCodeSearchTimeout))
	assert.Equal(t, 1, GetRetryCount(ErrCodeCacheUnavailable))
	assert.Equal(t, 0, GetRetryCount(ErrCodeInvalidMatchRequest))
	assert.True(t, IsRetryableErrorCode(ErrCodeQueryTimeout))
	assert.False(t, IsRetryableErrorCode(ErrCodeCatalogValidationFailed))
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeMatchingUnavailable:           "MATCHING",
		ErrCodeCatalogNotFound:               "CATALOG",
		ErrCodeQueryTimeout:                  "DATABASE",
		ErrCodeDatabaseConnectionFailed:      "DATABASE",
		ErrCodeElasticsearchConnectionFailed: "SEARCH",
		ErrCodeIndexNotFound:                 "SEARCH",
		ErrCodeCacheUnavailable:              "CACHE",
		ErrCodeInvalidMatchRequest:           "VALIDATION",
		ErrCodeInternal:                      "OTHER",
	}
	for code, category := range tests {
		assert.Equal(t, category, GetErrorCategory(code), string(code))
	}
}

func TestNormalize(t *testing.T) {
	original := NewCatalogNotFoundError("file", "missing")
	assert.Same(t, original, Normalize(fmt.Errorf("wrap: %w", original)))

	plain := Normalize(stderrors.New("kaboom"))
	require.NotNil(t, plain)
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "kaboom", plain.Details)
	assert.False(t, plain.Retryable)
}
