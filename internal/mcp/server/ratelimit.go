package server

import (
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter bounds tool calls per minute with a token bucket whose
// burst equals the per-minute limit.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows callsPerMinute calls; 0 or less means unlimited.
func NewRateLimiter(callsPerMinute int) *RateLimiter {
	if callsPerMinute <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(callsPerMinute)), callsPerMinute),
	}
}

// Allow reports whether a call may proceed now.
func (rl *RateLimiter) Allow() bool {
	return rl.limiter.Allow()
}
