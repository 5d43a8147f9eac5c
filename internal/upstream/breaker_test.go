package upstream

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewBreaker_Defaults(t *testing.T) {
	t.Parallel()

	b := NewBreaker(BreakerConfig{Timeout: time.Second})

	assert.Equal(t, "upstream", b.Name())
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_TripsOnServerErrors(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		states []int
	)
	core, logs := observer.New(zapcore.InfoLevel)

	b := NewBreaker(
		BreakerConfig{Name: "yelp", Threshold: 3, Timeout: time.Minute},
		WithBreakerLogger(zap.New(core)),
		WithBreakerStateCallback(func(name string, state int) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, "yelp", name)
			states = append(states, state)
		}),
	)

	serverErr := &ResponseError{StatusCode: http.StatusBadGateway}
	for range 3 {
		_, err := b.Execute(func() (interface{}, error) { return nil, serverErr })
		assert.Same(t, serverErr, err)
	}

	assert.Equal(t, gobreaker.StateOpen, b.State())

	called := false
	_, err := b.Execute(func() (interface{}, error) {
		called = true
		return nil, nil
	})

	assert.False(t, called)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	var upErr *Error
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusServiceUnavailable, upErr.StatusCode)

	mu.Lock()
	assert.Equal(t, []int{int(gobreaker.StateOpen)}, states)
	mu.Unlock()
	assert.Equal(t, 1, logs.FilterMessage("circuit breaker state change").Len())
}

func TestBreaker_IgnoresClientErrors(t *testing.T) {
	t.Parallel()

	b := NewBreaker(BreakerConfig{Threshold: 2, Timeout: time.Minute})

	for range 5 {
		_, err := b.Execute(func() (interface{}, error) {
			return nil, &ResponseError{StatusCode: http.StatusNotFound}
		})
		require.Error(t, err)
	}

	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestIsBreakerSuccess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: true},
		{name: "client error", err: &ResponseError{StatusCode: http.StatusBadRequest}, want: true},
		{name: "server error", err: &ResponseError{StatusCode: http.StatusServiceUnavailable}, want: false},
		{name: "too large", err: newError(http.StatusBadGateway, "x", ErrResponseTooLarge), want: true},
		{name: "invalid body", err: newError(http.StatusInternalServerError, "x", ErrInvalidResponse), want: true},
		{name: "canceled", err: context.Canceled, want: true},
		{name: "transport", err: errors.New("connection refused"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, isBreakerSuccess(tt.err))
		})
	}
}

func TestSafeIntToUint32(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint32(0), safeIntToUint32(-1))
	assert.Equal(t, uint32(7), safeIntToUint32(7))
}
