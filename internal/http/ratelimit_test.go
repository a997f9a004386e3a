package http

import "testing"

func TestRateLimiterBoundsPerClient(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < maxMutationsPerMinute; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d within the window must pass", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Fatalf("request over the window must be denied")
	}
	if !rl.allow("10.0.0.2") {
		t.Fatalf("a different client has its own window")
	}
}

func TestRateLimiterStopIsIdempotent(t *testing.T) {
	rl := newRateLimiter()
	rl.stop()
	rl.stop()
}
