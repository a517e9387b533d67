package security

import (
	"fmt"
	"sync"
	"time"
)

// GenerationLimiter caps the number of generations per identifier within
// a rolling window, independently of the request rate limiter.
type GenerationLimiter struct {
	maxGenerations int
	window         time.Duration

	mu          sync.Mutex
	generations map[string][]time.Time
	now         func() time.Time
}

// NewGenerationLimiter allows maxGenerations per window per identifier.
func NewGenerationLimiter(maxGenerations int, window time.Duration) *GenerationLimiter {
	return &GenerationLimiter{
		maxGenerations: maxGenerations,
		window:         window,
		generations:    make(map[string][]time.Time),
		now:            time.Now,
	}
}

// CanGenerate reports whether the identifier has quota left; when refused
// the message tells the caller when to retry.
func (gl *GenerationLimiter) CanGenerate(identifier string) (bool, int, string) {
	now := gl.now()
	cutoff := now.Add(-gl.window)

	gl.mu.Lock()
	defer gl.mu.Unlock()

	kept := gl.generations[identifier][:0]
	for _, t := range gl.generations[identifier] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	gl.generations[identifier] = kept

	if len(kept) >= gl.maxGenerations {
		resetIn := kept[0].Add(gl.window).Sub(now)
		mins := int(resetIn.Minutes()) + 1
		msg := fmt.Sprintf("generation limit reached (%d per window), try again in %d minutes",
			gl.maxGenerations, mins)
		return false, 0, msg
	}
	return true, gl.maxGenerations - len(kept), ""
}

// Record registers one generation for the identifier.
func (gl *GenerationLimiter) Record(identifier string) {
	gl.mu.Lock()
	gl.generations[identifier] = append(gl.generations[identifier], gl.now())
	gl.mu.Unlock()
}
