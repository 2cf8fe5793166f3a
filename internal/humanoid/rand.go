package humanoid

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is the single source of randomness threaded through path generation.
// *rand.Rand satisfies it, which lets tests pass a seeded generator.
type Rand interface {
	Float64() float64
}

// lockedRand serializes access to a *rand.Rand, which is not safe for
// concurrent use. The wanderer and directed callers share one instance.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRand returns a concurrency-safe Rand seeded with seed.
func NewRand(seed int64) Rand {
	return &lockedRand{rng: rand.New(rand.NewSource(seed))}
}

// newTimeSeededRand mirrors the default used when no source is injected.
func newTimeSeededRand() Rand {
	return NewRand(time.Now().UnixNano())
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// syncRand wraps a caller-supplied Rand so it can be shared across goroutines.
type syncRand struct {
	mu  sync.Mutex
	src Rand
}

func (r *syncRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Float64()
}

// shareable returns a Rand safe for concurrent use.
func shareable(r Rand) Rand {
	switch r.(type) {
	case *lockedRand, *syncRand:
		return r
	}
	return &syncRand{src: r}
}
