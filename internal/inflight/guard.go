// Package inflight keeps at most one mutation in flight per key.
package inflight

import (
	"context"
	"sync"
	"time"
)

// Guard admits one holder per key until it is released or its ttl lapses.
// The ttl bounds how long a crashed holder can block the key.
type Guard interface {
	Acquire(ctx context.Context, key string) (release func(), ok bool, err error)
}

// MemoryGuard is a process-local Guard
type MemoryGuard struct {
	mu    sync.Mutex
	ttl   time.Duration
	held  map[string]holder
	seq   uint64
	clock func() time.Time
}

type holder struct {
	token   uint64
	expires time.Time
}

func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	return &MemoryGuard{
		ttl:   ttl,
		held:  make(map[string]holder),
		clock: time.Now,
	}
}

func (g *MemoryGuard) Acquire(_ context.Context, key string) (func(), bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock()
	if h, ok := g.held[key]; ok && now.Before(h.expires) {
		return nil, false, nil
	}

	g.seq++
	token := g.seq
	g.held[key] = holder{token: token, expires: now.Add(g.ttl)}

	var once sync.Once
	release := func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			// a lapsed holder must not release a newer one
			if h, ok := g.held[key]; ok && h.token == token {
				delete(g.held, key)
			}
		})
	}
	return release, true, nil
}
