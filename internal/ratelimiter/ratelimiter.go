// Package ratelimiter wraps a token bucket used to gate the accept loop:
// sustained connection rate is capped while short bursts are still admitted.
package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter is a token bucket over golang.org/x/time/rate. Safe for
// concurrent use.
type RateLimiter struct {
	limiter *rate.Limiter
}

// New creates a limiter admitting requestsPerSecond sustained with the given
// burst capacity. A zero rate means unlimited.
func New(requestsPerSecond, burst uint) *RateLimiter {
	if requestsPerSecond == 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), int(burst)),
	}
}

// Allow consumes a token if one is available. The accept loop uses this fast
// path and drops the connection on false rather than queueing it.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// Wait blocks until a token is available or ctx is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// Tokens reports the tokens currently in the bucket, for diagnostics.
func (r *RateLimiter) Tokens() float64 {
	return r.limiter.Tokens()
}
