// Package client orchestrates the chat channel: supervised link in, dedup
// filter, normalized messages out to a Renderer, guarded submissions back.
package client

import (
	"context"
	"log/slog"
	"time"

	"github.com/wiralabs/chatlink/internal/dedup"
	"github.com/wiralabs/chatlink/internal/guard"
	"github.com/wiralabs/chatlink/internal/link"
	"github.com/wiralabs/chatlink/internal/wire"
)

// Renderer consumes the normalized message stream. Implementations own all
// presentation concerns; the manager only guarantees ordering, dedup and the
// transcript-reset contract.
type Renderer interface {
	// Render displays one admitted message.
	Render(msg wire.InboundMessage)
	// ClearTranscript drops all displayed history. Called before Render
	// when a message carries the reset flag.
	ClearTranscript()
	// ConnectionLost reports terminal link failure. This is the only
	// non-recoverable, user-visible condition.
	ConnectionLost(err error)
}

// Config tunes the channel manager. Zero values get package defaults.
type Config struct {
	Endpoint       string
	MaxAttempts    int
	RetryDelay     time.Duration
	DedupThreshold time.Duration
	DedupCapacity  int
	GuardTTL       time.Duration
	Logger         *slog.Logger

	// Now and After inject time sources for deterministic tests.
	Now   func() time.Time
	After func(time.Duration) <-chan time.Time
}

// Manager runs the channel. All inbound processing happens on one goroutine
// in transport delivery order; dedup and renderer state are confined to it.
type Manager struct {
	sup      *link.Supervisor
	window   *dedup.Window
	guard    *guard.Guard
	renderer Renderer
	logger   *slog.Logger
	now      func() time.Time
	done     chan struct{}
}

// NewManager wires a manager over transport. The transport is injectable so
// tests can run the whole pipeline without a socket.
func NewManager(cfg Config, transport link.Transport, renderer Renderer) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = link.DefaultRetryDelay
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	sup := link.NewSupervisor(transport, link.SupervisorConfig{
		Endpoint:    cfg.Endpoint,
		MaxAttempts: cfg.MaxAttempts,
		Backoff:     link.FixedBackoff{Interval: cfg.RetryDelay},
		Logger:      cfg.Logger,
		After:       cfg.After,
	})

	windowOpts := []dedup.Option{dedup.WithClock(cfg.Now)}
	if cfg.DedupThreshold > 0 {
		windowOpts = append(windowOpts, dedup.WithThreshold(cfg.DedupThreshold))
	}
	if cfg.DedupCapacity > 0 {
		windowOpts = append(windowOpts, dedup.WithCapacity(cfg.DedupCapacity))
	}

	guardOpts := []guard.Option{guard.WithClock(cfg.Now)}
	if cfg.GuardTTL > 0 {
		guardOpts = append(guardOpts, guard.WithTTL(cfg.GuardTTL))
	}

	return &Manager{
		sup:      sup,
		window:   dedup.NewWindow(windowOpts...),
		guard:    guard.New(guardOpts...),
		renderer: renderer,
		logger:   cfg.Logger,
		now:      cfg.Now,
		done:     make(chan struct{}),
	}
}

// Start connects the link and begins dispatching events.
func (m *Manager) Start(ctx context.Context) {
	m.sup.Start(ctx)
	go m.run()
}

// Done is closed when the manager has fully stopped.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Close shuts the link down with the normal close code and waits for the
// dispatch loop to drain.
func (m *Manager) Close() {
	m.sup.Close()
	<-m.done
}

func (m *Manager) run() {
	defer close(m.done)

	for ev := range m.sup.Events() {
		switch ev.Type {
		case link.EventOpen:
			m.logger.Info("channel open")
		case link.EventMessage:
			m.dispatch(ev.Data)
		case link.EventError:
			m.logger.Warn("transport error", "error", ev.Err)
		case link.EventRetrying:
			m.logger.Info("channel reconnecting", "attempt", ev.Attempt)
		case link.EventClosed:
			m.logger.Info("channel closed", "code", int(ev.Code), "reason", ev.Reason)
		case link.EventFailed:
			m.renderer.ConnectionLost(ev.Err)
		}
	}
}

func (m *Manager) dispatch(raw []byte) {
	msg := wire.Parse(raw)

	if !m.window.Admit(msg.Content, msg.Kind) {
		m.logger.Debug("duplicate delivery suppressed", "kind", string(msg.Kind))
		return
	}

	if msg.ResetTranscript {
		m.renderer.ClearTranscript()
	}
	m.renderer.Render(msg)
}

// SendText submits free-form user text over the link.
func (m *Manager) SendText(ctx context.Context, text string) error {
	data, err := wire.EncodeText(text)
	if err != nil {
		return err
	}
	return m.sup.Send(ctx, data)
}

// ActivateChoice submits a choice button activation. Rapid repeated
// activations of the same value are admission-checked: a rejected duplicate
// is a silent no-op, not an error. A failed send releases the mark so the
// user can retry immediately.
func (m *Manager) ActivateChoice(ctx context.Context, value, label string) error {
	if !m.guard.TryBegin(value) {
		m.logger.Debug("duplicate submission suppressed", "value", value)
		return nil
	}

	data, err := wire.EncodeChoice(value, label, m.now())
	if err != nil {
		m.guard.End(value)
		return err
	}
	if err := m.sup.Send(ctx, data); err != nil {
		m.guard.End(value)
		return err
	}
	return nil
}

// State exposes the link state machine position, for status displays.
func (m *Manager) State() link.State {
	return m.sup.State()
}
