package rate

import (
	"testing"
	"time"
)

func TestLimiter(t *testing.T) {
	interval := 50 * time.Millisecond
	l := NewLimiter(1, interval, time.Minute)
	defer l.Close()

	if !l.Allow("user:1") {
		t.Fatal("expected first request to pass")
	}
	if l.Allow("user:1") {
		t.Fatal("expected second request within the interval to be throttled")
	}
	if !l.Allow("user:2") {
		t.Fatal("expected another caller to have its own bucket")
	}

	time.Sleep(interval + 10*time.Millisecond)
	if !l.Allow("user:1") {
		t.Fatal("expected request after the interval to pass")
	}
}

func TestLimiterWithBurst(t *testing.T) {
	burst := 5
	l := NewLimiter(burst, time.Hour, time.Minute)
	defer l.Close()

	for i := 0; i < burst; i++ {
		if !l.Allow("addr:127.0.0.1") {
			t.Fatalf("iteration %d: expected request inside the burst to pass", i)
		}
	}
	if l.Allow("addr:127.0.0.1") {
		t.Fatal("expected request past the burst to be throttled")
	}
}

func TestLimiterForgetsIdleCallers(t *testing.T) {
	l := NewLimiter(1, time.Second, time.Minute)
	defer l.Close()

	l.Allow("user:idle")
	l.Allow("user:busy")

	l.mu.Lock()
	l.callers["user:idle"].lastSeen = time.Now().Add(-2 * time.Minute)
	l.mu.Unlock()

	l.forget(time.Now())

	if got := l.size(); got != 1 {
		t.Fatalf("expected 1 caller left, got %d", got)
	}
	if !l.Allow("user:idle") {
		t.Fatal("expected forgotten caller to start with a fresh bucket")
	}
}
