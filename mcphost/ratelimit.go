package mcphost

import (
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimiter limits MCP tool calls with a token bucket.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a rate limiter with the specified burst and refill rate.
// For example, NewRateLimiter(10, 1.0) allows 10 burst calls and refills 1 token/second.
func NewRateLimiter(burst int, refillRate float64) *RateLimiter {
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(refillRate), burst)}
}

// Allow returns true if a request is allowed, consuming one token.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// CheckRateLimit returns an error if the limit for toolName is exceeded.
func (r *RateLimiter) CheckRateLimit(toolName string) error {
	if !r.Allow() {
		return fmt.Errorf("rate limit exceeded for tool %q, please wait before retrying", toolName)
	}
	return nil
}
