// Package dedup suppresses recent duplicate inbound messages.
//
// The window models "recent echo" suppression rather than full history
// dedup: a bounded number of recent entries is kept, and only entries inside
// the recency threshold can reject a new message. Anything older is treated
// as novel even when content-identical.
package dedup

import (
	"strings"
	"sync"
	"time"

	"github.com/wiralabs/chatlink/internal/wire"
)

const (
	// DefaultCapacity bounds how many entries the window retains.
	DefaultCapacity = 10
	// DefaultThreshold is the recency horizon for duplicate classification.
	DefaultThreshold = time.Second
)

type entry struct {
	content    string
	kind       wire.Kind
	receivedAt time.Time
}

// Window is a bounded recent-history buffer classifying inbound messages as
// duplicate or novel.
type Window struct {
	mu        sync.Mutex
	capacity  int
	threshold time.Duration
	now       func() time.Time
	exempt    map[wire.Kind]struct{}
	entries   []entry // most recent first
}

// Option configures a Window.
type Option func(*Window)

// WithCapacity overrides the entry cap.
func WithCapacity(n int) Option {
	return func(w *Window) {
		if n > 0 {
			w.capacity = n
		}
	}
}

// WithThreshold overrides the recency horizon.
func WithThreshold(d time.Duration) Option {
	return func(w *Window) {
		if d > 0 {
			w.threshold = d
		}
	}
}

// WithClock injects the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(w *Window) {
		if now != nil {
			w.now = now
		}
	}
}

// NewWindow creates a dedup window. Choice prompts and campaign cards are
// exempt: the server legitimately resends them, so they always pass.
func NewWindow(opts ...Option) *Window {
	w := &Window{
		capacity:  DefaultCapacity,
		threshold: DefaultThreshold,
		now:       time.Now,
		exempt: map[wire.Kind]struct{}{
			wire.KindChoice:   {},
			wire.KindCampaign: {},
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Admit reports whether a message should be delivered. Accepted non-exempt
// messages are recorded at the front of the window; the oldest entries are
// evicted once the window exceeds its capacity.
func (w *Window) Admit(content string, kind wire.Kind) bool {
	if _, ok := w.exempt[kind]; ok {
		return true
	}

	trimmed := strings.TrimSpace(content)
	now := w.now()

	w.mu.Lock()
	defer w.mu.Unlock()

	for _, e := range w.entries {
		if e.kind == kind && e.content == trimmed && now.Sub(e.receivedAt) < w.threshold {
			return false
		}
	}

	w.entries = append([]entry{{content: trimmed, kind: kind, receivedAt: now}}, w.entries...)
	if len(w.entries) > w.capacity {
		w.entries = w.entries[:w.capacity]
	}
	return true
}

// Len returns the number of retained entries.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}
