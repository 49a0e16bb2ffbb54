package ratelimiter

import (
	"sync"
	"time"
)

type Config struct {
	RequestsPerTimeFrame int
	TimeFrame            time.Duration
	Enabled              bool
}

// FixedWindowLimiter counts requests per client IP and resets all counters
// every window. Coarse, but enough to keep the public booking and contact
// endpoints from being hammered.
type FixedWindowLimiter struct {
	mu      sync.RWMutex
	clients map[string]int
	limit   int
	window  time.Duration
}

func NewFixedWindowLimiter(limit int, window time.Duration) *FixedWindowLimiter {
	rl := &FixedWindowLimiter{
		clients: make(map[string]int),
		limit:   limit,
		window:  window,
	}
	go rl.reset()
	return rl
}

func (rl *FixedWindowLimiter) reset() {
	ticker := time.NewTicker(rl.window)
	for range ticker.C {
		rl.mu.Lock()
		rl.clients = make(map[string]int)
		rl.mu.Unlock()
	}
}

// Allow reports whether the client may proceed; when it may not, the second
// return value is how long until the window resets.
func (rl *FixedWindowLimiter) Allow(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.clients[ip] >= rl.limit {
		return false, rl.window
	}
	rl.clients[ip]++
	return true, 0
}
