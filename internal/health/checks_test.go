package health

import (
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

type fixedState gobreaker.State

func (s fixedState) State() gobreaker.State {
	return gobreaker.State(s)
}

func TestBreakerCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		breaker     BreakerStater
		wantStatus  Status
		wantMessage string
	}{
		{
			name:        "disabled",
			wantStatus:  StatusHealthy,
			wantMessage: "circuit breaker disabled",
		},
		{
			name:        "closed",
			breaker:     fixedState(gobreaker.StateClosed),
			wantStatus:  StatusHealthy,
			wantMessage: "circuit breaker closed",
		},
		{
			name:        "half-open",
			breaker:     fixedState(gobreaker.StateHalfOpen),
			wantStatus:  StatusDegraded,
			wantMessage: "circuit breaker half-open",
		},
		{
			name:        "open",
			breaker:     fixedState(gobreaker.StateOpen),
			wantStatus:  StatusUnhealthy,
			wantMessage: "circuit breaker open",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			check := BreakerCheck(tt.breaker)()

			assert.Equal(t, tt.wantStatus, check.Status)
			assert.Equal(t, tt.wantMessage, check.Message)
		})
	}
}
