package security

import (
	"strings"
	"testing"
	"time"
)

func TestGenerationLimiterQuota(t *testing.T) {
	clock := newFakeClock()
	gl := NewGenerationLimiter(2, time.Hour)
	gl.now = clock.now

	ok, remaining, _ := gl.CanGenerate("user")
	if !ok || remaining != 2 {
		t.Fatalf("ok=%t remaining=%d", ok, remaining)
	}
	gl.Record("user")
	ok, remaining, _ = gl.CanGenerate("user")
	if !ok || remaining != 1 {
		t.Fatalf("ok=%t remaining=%d", ok, remaining)
	}
	gl.Record("user")
	ok, _, msg := gl.CanGenerate("user")
	if ok {
		t.Fatalf("quota should be exhausted")
	}
	if !strings.Contains(msg, "try again in") {
		t.Fatalf("msg=%q", msg)
	}
}

func TestGenerationLimiterWindowExpiry(t *testing.T) {
	clock := newFakeClock()
	gl := NewGenerationLimiter(1, time.Hour)
	gl.now = clock.now

	gl.Record("user")
	if ok, _, _ := gl.CanGenerate("user"); ok {
		t.Fatalf("expected refusal inside the window")
	}
	clock.advance(61 * time.Minute)
	if ok, remaining, _ := gl.CanGenerate("user"); !ok || remaining != 1 {
		t.Fatalf("ok=%t remaining=%d after expiry", ok, remaining)
	}
}

func TestGenerationLimiterRetryMinutes(t *testing.T) {
	clock := newFakeClock()
	gl := NewGenerationLimiter(1, time.Hour)
	gl.now = clock.now

	gl.Record("user")
	clock.advance(30 * time.Minute)
	_, _, msg := gl.CanGenerate("user")
	if !strings.Contains(msg, "31 minutes") {
		t.Fatalf("msg=%q", msg)
	}
}
