package health

import (
	"github.com/sony/gobreaker"
)

// BreakerStater reports a circuit breaker state.
type BreakerStater interface {
	State() gobreaker.State
}

// BreakerCheck reports the upstream breaker: closed is healthy, half-open is
// degraded, open is unhealthy. A nil breaker is always healthy.
func BreakerCheck(b BreakerStater) CheckFunc {
	return func() Check {
		if b == nil {
			return Check{Status: StatusHealthy, Message: "circuit breaker disabled"}
		}

		switch state := b.State(); state {
		case gobreaker.StateClosed:
			return Check{Status: StatusHealthy, Message: "circuit breaker " + state.String()}
		case gobreaker.StateHalfOpen:
			return Check{Status: StatusDegraded, Message: "circuit breaker " + state.String()}
		default:
			return Check{Status: StatusUnhealthy, Message: "circuit breaker " + state.String()}
		}
	}
}
