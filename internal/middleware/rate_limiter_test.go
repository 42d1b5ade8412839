package middleware

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsUpToMax(t *testing.T) {
	rl := NewRateLimiter(3, 1, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("user-a") {
			t.Fatalf("Expected request %d allowed", i+1)
		}
	}
	if rl.Allow("user-a") {
		t.Error("Expected request beyond max rejected")
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, 1, time.Minute)

	if !rl.Allow("user-a") {
		t.Fatal("Expected first request allowed")
	}
	if rl.Allow("user-a") {
		t.Error("Expected user-a exhausted")
	}
	if !rl.Allow("user-b") {
		t.Error("Expected user-b unaffected by user-a")
	}
}

func TestRateLimiterRefills(t *testing.T) {
	rl := NewRateLimiter(2, 1, 10*time.Millisecond)

	rl.Allow("user-a")
	rl.Allow("user-a")
	if rl.Allow("user-a") {
		t.Fatal("Expected bucket drained")
	}

	time.Sleep(25 * time.Millisecond)
	if !rl.Allow("user-a") {
		t.Error("Expected token after refill period")
	}
}

func TestRateLimiterRefillCapped(t *testing.T) {
	rl := NewRateLimiter(2, 10, 5*time.Millisecond)

	rl.Allow("user-a")
	time.Sleep(30 * time.Millisecond)

	// Refill never exceeds the bucket size.
	if got := rl.Remaining("user-a"); got > 2 {
		t.Errorf("Expected at most 2 tokens after refill, got %d", got)
	}
}
