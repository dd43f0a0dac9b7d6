// Package guard prevents duplicate in-flight submissions of the same
// user-initiated action, e.g. a double-clicked choice button.
package guard

import (
	"sync"
	"time"
)

// DefaultTTL is the admission window after which a mark self-expires, so a
// lost completion signal never locks an action out permanently.
const DefaultTTL = 5 * time.Second

// Guard tracks in-flight action identities. Marks expire lazily on the next
// TryBegin for the same identity, so no background sweeper is needed.
type Guard struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	inflight map[string]time.Time
}

// Option configures a Guard.
type Option func(*Guard)

// WithTTL overrides the admission window.
func WithTTL(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.ttl = d
		}
	}
}

// WithClock injects the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		if now != nil {
			g.now = now
		}
	}
}

// New creates a guard with the default admission window.
func New(opts ...Option) *Guard {
	g := &Guard{
		ttl:      DefaultTTL,
		now:      time.Now,
		inflight: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// TryBegin marks actionID in flight and returns true, or returns false when
// the action is already in flight and its mark has not expired.
func (g *Guard) TryBegin(actionID string) bool {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	if issued, ok := g.inflight[actionID]; ok && now.Sub(issued) < g.ttl {
		return false
	}
	g.inflight[actionID] = now
	return true
}

// End clears the in-flight mark for actionID.
func (g *Guard) End(actionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, actionID)
}

// Pending returns the number of unexpired in-flight marks.
func (g *Guard) Pending() int {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	n := 0
	for id, issued := range g.inflight {
		if now.Sub(issued) < g.ttl {
			n++
		} else {
			delete(g.inflight, id)
		}
	}
	return n
}
