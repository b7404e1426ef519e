package rate

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Limiter interface {
	Allow(key string, limit int, window time.Duration) (bool, time.Duration)
}

// pruneEvery bounds how often idle buckets are swept from the map.
const pruneEvery = time.Minute

// MemoryLimiter keeps one token bucket per key. A bucket holds limit tokens
// and refills one token every window/limit. Buckets that have refilled
// completely are dropped, since a fresh bucket behaves the same.
type MemoryLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	now        func() time.Time
	lastPruned time.Time
}

type bucket struct {
	lim    *rate.Limiter
	limit  int
	window time.Duration
}

func NewMemory() *MemoryLimiter {
	return &MemoryLimiter{buckets: make(map[string]*bucket), now: time.Now}
}

func (m *MemoryLimiter) Allow(key string, limit int, window time.Duration) (bool, time.Duration) {
	if limit <= 0 || window <= 0 {
		return true, 0
	}

	now := m.now()
	m.mu.Lock()
	if now.Sub(m.lastPruned) >= pruneEvery {
		m.prune(now)
	}
	b, ok := m.buckets[key]
	if !ok || b.limit != limit || b.window != window {
		b = &bucket{
			lim:    rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit),
			limit:  limit,
			window: window,
		}
		m.buckets[key] = b
	}
	m.mu.Unlock()

	r := b.lim.ReserveN(now, 1)
	if !r.OK() {
		return false, window
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// prune must be called with mu held.
func (m *MemoryLimiter) prune(now time.Time) {
	for key, b := range m.buckets {
		if b.lim.TokensAt(now) >= float64(b.limit) {
			delete(m.buckets, key)
		}
	}
	m.lastPruned = now
}
