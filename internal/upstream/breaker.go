package upstream

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerStateFunc is called when the breaker changes state.
// state is 0=closed, 1=half-open, 2=open.
type BreakerStateFunc func(name string, state int)

// BreakerConfig configures the upstream circuit breaker.
type BreakerConfig struct {
	Name      string
	Threshold int
	Timeout   time.Duration
}

// Breaker wraps gobreaker.CircuitBreaker. Only transport failures and 5xx
// responses count as failures.
type Breaker struct {
	cb            *gobreaker.CircuitBreaker
	logger        *zap.Logger
	stateCallback BreakerStateFunc
}

// BreakerOption configures a Breaker.
type BreakerOption func(*Breaker)

// WithBreakerLogger sets the logger for state transitions.
func WithBreakerLogger(logger *zap.Logger) BreakerOption {
	return func(b *Breaker) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithBreakerStateCallback sets a callback for state transitions.
func WithBreakerStateCallback(fn BreakerStateFunc) BreakerOption {
	return func(b *Breaker) {
		b.stateCallback = fn
	}
}

// NewBreaker creates a circuit breaker that trips once at least Threshold
// calls were made and half or more of them failed.
func NewBreaker(cfg BreakerConfig, opts ...BreakerOption) *Breaker {
	b := &Breaker{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}

	if cfg.Name == "" {
		cfg.Name = "upstream"
	}
	threshold := safeIntToUint32(cfg.Threshold)
	if threshold == 0 {
		threshold = 1
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    cfg.Timeout,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= threshold && failureRatio >= 0.5
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			b.logger.Info("circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if b.stateCallback != nil {
				b.stateCallback(name, int(to))
			}
		},
	}

	b.cb = gobreaker.NewCircuitBreaker(settings)
	return b
}

// Execute runs fn under the breaker. Rejected calls return a 503 *Error
// wrapping ErrCircuitOpen.
func (b *Breaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, newError(http.StatusServiceUnavailable, ErrCircuitOpen.Error(), ErrCircuitOpen)
	}
	return result, err
}

// State returns the current state of the breaker.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Name returns the breaker name.
func (b *Breaker) Name() string {
	return b.cb.Name()
}

// isBreakerSuccess counts only transport failures and 5xx responses as
// breaker failures. A call cancelled by its caller is not counted.
func isBreakerSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode < 500
	}
	return errors.Is(err, ErrResponseTooLarge) || errors.Is(err, ErrInvalidResponse)
}

func safeIntToUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	if n > int(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(n) //nolint:gosec // bounds checked above
}
