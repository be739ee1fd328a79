package httpapi

import (
	"sync"
	"time"
)

// RateLimiter implements per-IP rate limiting with a sliding window.
type RateLimiter struct {
	requests          map[string][]int64
	maxRequestsPerMin int
	mu                sync.Mutex
	stopCleanup       chan struct{}
	stopOnce          sync.Once
}

// NewRateLimiter creates a rate limiter allowing the given number of
// requests per minute per IP.
func NewRateLimiter(maxRequestsPerMinute int) *RateLimiter {
	rl := &RateLimiter{
		requests:          make(map[string][]int64),
		maxRequestsPerMin: maxRequestsPerMinute,
		stopCleanup:       make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow reports whether a request from the given IP is within limits and
// records it if so.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now().UnixMilli()
	cutoff := now - 60_000

	valid := rl.requests[ip][:0]
	for _, ts := range rl.requests[ip] {
		if ts > cutoff {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.maxRequestsPerMin {
		rl.requests[ip] = valid
		return false
	}

	rl.requests[ip] = append(valid, now)
	return true
}

// Stop halts the background cleanup.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// cleanupLoop drops IPs with no recent requests so the map does not grow
// without bound.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().UnixMilli() - 60_000
			rl.mu.Lock()
			for ip, timestamps := range rl.requests {
				stale := true
				for _, ts := range timestamps {
					if ts > cutoff {
						stale = false
						break
					}
				}
				if stale {
					delete(rl.requests, ip)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCleanup:
			return
		}
	}
}
