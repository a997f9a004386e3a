package http

import (
	"sync"
	"time"
)

const (
	maxMutationsPerMinute = 60
	cleanupInterval       = 5 * time.Minute
	staleClientCutoff     = 10 * time.Minute
)

// rateLimiter bounds mutating requests per client IP over a sliding
// one-minute window.
type rateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	done     chan struct{}
	stopOnce sync.Once
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		requests: make(map[string][]time.Time),
		done:     make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-time.Minute)

	recent := rl.requests[clientIP][:0]
	for _, t := range rl.requests[clientIP] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	if len(recent) >= maxMutationsPerMinute {
		rl.requests[clientIP] = recent
		return false
	}
	rl.requests[clientIP] = append(recent, now)
	return true
}

// cleanupLoop drops clients that have been quiet long enough that
// their window can never matter again.
func (rl *rateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-staleClientCutoff)
			rl.mu.Lock()
			for ip, times := range rl.requests {
				if len(times) == 0 || times[len(times)-1].Before(cutoff) {
					delete(rl.requests, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}
