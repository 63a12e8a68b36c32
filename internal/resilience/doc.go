// Package resilience provides the circuit breaker, rate limiting, backoff and
// retry helpers shared by the Bot API sender, the polling receiver and the
// sticker delivery loop.
// Uses sony/gobreaker for circuit breaking and golang.org/x/time/rate for rate limiting.
package resilience
