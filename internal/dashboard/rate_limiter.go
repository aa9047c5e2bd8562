package dashboard

import (
	"sync"
	"time"
)

// RateLimiter is a fixed-window per-key request limiter.
type RateLimiter struct {
	max    int
	window time.Duration
	mu     sync.Mutex
	counts map[string]*windowCount
}

type windowCount struct {
	start time.Time
	n     int
}

// NewRateLimiter allows max requests per key within each window.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		max:    max,
		window: window,
		counts: make(map[string]*windowCount),
	}
}

// Allow reports whether another request for key fits in the current
// window, counting it if so.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	wc, ok := rl.counts[key]
	if !ok || now.Sub(wc.start) >= rl.window {
		rl.counts[key] = &windowCount{start: now, n: 1}
		return true
	}
	if wc.n >= rl.max {
		return false
	}
	wc.n++
	return true
}
