package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.class.String())
		})
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrKeyNotFound))
	assert.True(t, IsNotFound(ErrBucketNotFound))
	assert.True(t, IsNotFound(fmt.Errorf("backend read: %w", ErrKeyNotFound)))
	assert.False(t, IsNotFound(ErrStorageUnavailable))
	assert.False(t, IsNotFound(nil))
}

func TestIsNotFound_NeverTransient(t *testing.T) {
	// Not-found is a definitive answer - retrying it cannot help.
	assert.False(t, IsTransient(ErrKeyNotFound))
	assert.False(t, IsTransient(fmt.Errorf("kv get: %w", ErrKeyNotFound)))
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection timeout", ErrConnectionTimeout, true},
		{"connection lost", ErrConnectionLost, true},
		{"storage unavailable", ErrStorageUnavailable, true},
		{"context deadline", context.DeadlineExceeded, true},
		{"wrapped transient", WrapTransient(stderrors.New("boom"), "store", "Save", "backend write"), true},
		{"wrapped invalid", WrapInvalid(ErrInvalidID, "store", "Save", "precondition"), false},
		{"message pattern timeout", stderrors.New("operation timeout exceeded"), true},
		{"message pattern unavailable", stderrors.New("service unavailable"), true},
		{"plain error", stderrors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTransient(tt.err))
		})
	}
}

func TestIsInvalid(t *testing.T) {
	assert.True(t, IsInvalid(ErrInvalidID))
	assert.True(t, IsInvalid(ErrInvalidConfig))
	assert.True(t, IsInvalid(ErrMissingBackend))
	assert.True(t, IsInvalid(WrapInvalid(stderrors.New("negative id"), "store", "Save", "validate id")))
	assert.False(t, IsInvalid(ErrConnectionLost))
	assert.False(t, IsInvalid(nil))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(ErrDataCorrupted))
	assert.True(t, IsFatal(ErrClosed))
	assert.True(t, IsFatal(WrapFatal(stderrors.New("bad state"), "store", "Read", "decode")))
	assert.False(t, IsFatal(ErrConnectionLost))
	assert.False(t, IsFatal(nil))
}

func TestWrap_Format(t *testing.T) {
	base := stderrors.New("disk full")
	err := Wrap(base, "filestore", "Write", "replace payload")
	require.Error(t, err)
	assert.Equal(t, "filestore.Write: replace payload failed: disk full", err.Error())
	assert.True(t, stderrors.Is(err, base))
}

func TestWrap_NilPassthrough(t *testing.T) {
	assert.NoError(t, Wrap(nil, "c", "m", "a"))
	assert.NoError(t, WrapTransient(nil, "c", "m", "a"))
	assert.NoError(t, WrapInvalid(nil, "c", "m", "a"))
	assert.NoError(t, WrapFatal(nil, "c", "m", "a"))
}

func TestClassifiedError_Unwrap(t *testing.T) {
	base := ErrStorageUnavailable
	err := WrapTransient(base, "kvstore", "Read", "kv get")

	var ce *ClassifiedError
	require.True(t, stderrors.As(err, &ce))
	assert.Equal(t, ErrorTransient, ce.Class)
	assert.Equal(t, "kvstore", ce.Component)
	assert.Equal(t, "Read", ce.Operation)
	assert.True(t, stderrors.Is(err, base))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ErrorInvalid, Classify(ErrInvalidID))
	assert.Equal(t, ErrorFatal, Classify(ErrDataCorrupted))
	assert.Equal(t, ErrorTransient, Classify(ErrConnectionLost))
	// Unknown errors default to transient to allow retry
	assert.Equal(t, ErrorTransient, Classify(stderrors.New("mystery")))
}

func TestRetryConfig_ShouldRetry(t *testing.T) {
	cfg := DefaultRetryConfig()

	assert.True(t, cfg.ShouldRetry(ErrConnectionLost, 0))
	assert.False(t, cfg.ShouldRetry(ErrConnectionLost, cfg.MaxRetries))
	assert.False(t, cfg.ShouldRetry(ErrInvalidID, 0))
	assert.False(t, cfg.ShouldRetry(nil, 0))
}

func TestRetryConfig_ShouldRetry_SpecificErrors(t *testing.T) {
	cfg := DefaultRetryConfig()
	cfg.RetryableErrors = []error{ErrConnectionTimeout}

	assert.True(t, cfg.ShouldRetry(ErrConnectionTimeout, 0))
	// Transient but not in the allow list
	assert.False(t, cfg.ShouldRetry(ErrConnectionLost, 0))
}

func TestRetryConfig_ToRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	rc := cfg.ToRetryConfig()

	assert.Equal(t, cfg.MaxRetries+1, rc.MaxAttempts)
	assert.Equal(t, cfg.InitialDelay, rc.InitialDelay)
	assert.Equal(t, cfg.MaxDelay, rc.MaxDelay)
	assert.True(t, rc.AddJitter)
}
