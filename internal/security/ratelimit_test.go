package security

import (
	"testing"
	"time"
)

// fakeClock lets tests move time forward deterministically.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeClock() *fakeClock { return &fakeClock{t: time.Unix(1_700_000_000, 0)} }

func TestRateLimiterWindow(t *testing.T) {
	clock := newFakeClock()
	rl := NewRateLimiter(3, time.Minute)
	rl.now = clock.now

	for i := 0; i < 3; i++ {
		ok, remaining := rl.Allow("1.2.3.4")
		if !ok {
			t.Fatalf("request %d refused", i)
		}
		if remaining != 2-i {
			t.Fatalf("request %d remaining=%d", i, remaining)
		}
	}
	if ok, _ := rl.Allow("1.2.3.4"); ok {
		t.Fatalf("fourth request should be refused")
	}
	// another identifier has its own window
	if ok, _ := rl.Allow("5.6.7.8"); !ok {
		t.Fatalf("other identifier should be allowed")
	}

	clock.advance(61 * time.Second)
	if ok, _ := rl.Allow("1.2.3.4"); !ok {
		t.Fatalf("window should have expired")
	}
}

func TestRateLimiterResetAfter(t *testing.T) {
	clock := newFakeClock()
	rl := NewRateLimiter(1, time.Minute)
	rl.now = clock.now

	if d := rl.ResetAfter("x"); d != 0 {
		t.Fatalf("empty identifier reset=%s", d)
	}
	rl.Allow("x")
	clock.advance(20 * time.Second)
	if d := rl.ResetAfter("x"); d != 40*time.Second {
		t.Fatalf("reset=%s want 40s", d)
	}
	clock.advance(2 * time.Minute)
	if d := rl.ResetAfter("x"); d != 0 {
		t.Fatalf("expired reset=%s", d)
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	clock := newFakeClock()
	rl := NewRateLimiter(5, time.Minute)
	rl.now = clock.now

	rl.Allow("a")
	rl.Allow("b")
	clock.advance(2 * time.Minute)
	rl.Allow("c")
	rl.Cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.requests["a"]; ok {
		t.Fatalf("a should have been dropped")
	}
	if _, ok := rl.requests["c"]; !ok {
		t.Fatalf("c should survive cleanup")
	}
}
