package http

import (
	"time"

	"github.com/benbjohnson/clock"
)

// rateLimiter is a fixed-window counter owned by one connection's read loop.
type rateLimiter struct {
	clock       clock.Clock
	limit       int
	window      time.Duration
	counter     int
	windowStart time.Time
}

func newRateLimiter(clk clock.Clock, limit int, window time.Duration) *rateLimiter {
	if limit <= 0 {
		return &rateLimiter{limit: 0}
	}
	return &rateLimiter{
		clock:       clk,
		limit:       limit,
		window:      window,
		windowStart: clk.Now(),
	}
}

func (r *rateLimiter) allow() bool {
	if r == nil || r.limit <= 0 {
		return true
	}
	if now := r.clock.Now(); now.Sub(r.windowStart) >= r.window {
		r.windowStart = now
		r.counter = 0
	}
	r.counter++
	return r.counter <= r.limit
}
