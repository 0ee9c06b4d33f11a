// Package ratelimit wraps golang.org/x/time/rate for the REST callers
// that poll an exchange or indexer endpoint on a fixed interval.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter bounds outbound request rate to one external endpoint.
type Limiter struct {
	limiter *rate.Limiter
}

// New builds a Limiter allowing requestsPerSecond sustained, with burst
// headroom for the first requestsPerSecond*2 requests in a cold start.
func New(requestsPerSecond float64) *Limiter {
	burst := int(requestsPerSecond * 2)
	if burst < 1 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Wait blocks until a token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
