package auth

import (
	"testing"
)

func TestLoginLimiterLocksAfterMaxAttempts(t *testing.T) {
	limiter := NewLoginLimiter()
	ip := "203.0.113.7"

	if retry := limiter.CheckLock(ip); retry != 0 {
		t.Fatalf("fresh ip should not be locked, got %s", retry)
	}

	for i := 0; i < maxLoginAttempts-1; i++ {
		if remaining := limiter.RecordFailure(ip); remaining != maxLoginAttempts-1-i {
			t.Fatalf("attempt %d: unexpected remaining %d", i, remaining)
		}
		if retry := limiter.CheckLock(ip); retry != 0 {
			t.Fatalf("attempt %d: locked too early", i)
		}
	}

	if remaining := limiter.RecordFailure(ip); remaining != 0 {
		t.Fatalf("unexpected remaining after final failure: %d", remaining)
	}
	if retry := limiter.CheckLock(ip); retry <= 0 {
		t.Fatal("expected lock after max attempts")
	}
}

func TestLoginLimiterResetClearsState(t *testing.T) {
	limiter := NewLoginLimiter()
	ip := "203.0.113.7"

	for i := 0; i < maxLoginAttempts; i++ {
		limiter.RecordFailure(ip)
	}
	limiter.Reset(ip)

	if retry := limiter.CheckLock(ip); retry != 0 {
		t.Fatalf("reset ip should not be locked, got %s", retry)
	}
	if remaining := limiter.RecordFailure(ip); remaining != maxLoginAttempts-1 {
		t.Fatalf("unexpected remaining after reset: %d", remaining)
	}
}

func TestLoginLimiterTracksIPsIndependently(t *testing.T) {
	limiter := NewLoginLimiter()

	for i := 0; i < maxLoginAttempts; i++ {
		limiter.RecordFailure("203.0.113.7")
	}

	if retry := limiter.CheckLock("198.51.100.1"); retry != 0 {
		t.Fatal("unrelated ip must not be locked")
	}
}
