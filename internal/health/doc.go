// Package health provides health, readiness, and liveness endpoints.
//
// Readiness aggregates registered checks; any unhealthy check turns the
// response into a 503:
//
//	checker := health.NewChecker(version)
//	checker.RegisterCheck("upstream", health.BreakerCheck(breaker))
//	checker.Register(engine)
package health
