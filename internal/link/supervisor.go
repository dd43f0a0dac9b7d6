package link

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	// DefaultMaxAttempts is the reconnect attempt cap before terminal failure.
	DefaultMaxAttempts = 5
	// DefaultRetryDelay is the fixed wait between reconnect attempts.
	DefaultRetryDelay = 3 * time.Second
)

// SupervisorConfig tunes the reconnect policy.
type SupervisorConfig struct {
	Endpoint    string
	MaxAttempts int
	Backoff     Backoff
	Logger      *slog.Logger

	// After schedules the backoff timer; tests inject a manual clock here.
	After func(time.Duration) <-chan time.Time
}

// Supervisor wraps a Transport with bounded-retry reconnection.
//
// Abnormal closes and dial failures increment a shared attempt counter; while
// the counter stays below MaxAttempts a reconnect is scheduled after the
// backoff delay. Reaching the cap is terminal and reported as EventFailed,
// never swallowed. A normal closure (code 1000) is never retried, and the
// counter resets to zero every time the link reaches open.
type Supervisor struct {
	transport Transport
	cfg       SupervisorConfig

	events chan Event
	done   chan struct{}

	mu       sync.Mutex
	state    State
	attempts int
	cancel   context.CancelFunc
}

// NewSupervisor creates a supervisor over transport. Zero config fields get
// the package defaults.
func NewSupervisor(transport Transport, cfg SupervisorConfig) *Supervisor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Backoff == nil {
		cfg.Backoff = FixedBackoff{Interval: DefaultRetryDelay}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.After == nil {
		cfg.After = time.After
	}
	return &Supervisor{
		transport: transport,
		cfg:       cfg,
		events:    make(chan Event, 32),
		done:      make(chan struct{}),
		state:     StateIdle,
	}
}

// Events returns the supervised event stream. It is closed when supervision
// ends, after the final EventClosed or EventFailed.
func (s *Supervisor) Events() <-chan Event {
	return s.events
}

// Done is closed when supervision has fully stopped.
func (s *Supervisor) Done() <-chan struct{} {
	return s.done
}

// State reports the supervisor state machine position.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Attempts reports the current reconnect attempt count.
func (s *Supervisor) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// Send forwards data over the live connection.
func (s *Supervisor) Send(ctx context.Context, data []byte) error {
	return s.transport.Send(ctx, data)
}

// Start begins supervision in a background goroutine.
func (s *Supervisor) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	go s.run(runCtx)
}

// Close requests orderly shutdown: any pending reconnect timer is canceled
// and a live connection is closed with the normal close code.
func (s *Supervisor) Close() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	<-s.done
}

func (s *Supervisor) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.events)

	for {
		s.setState(StateConnecting)
		if err := s.transport.Connect(ctx, s.cfg.Endpoint); err != nil {
			if ctx.Err() != nil {
				s.setState(StateClosed)
				return
			}
			s.cfg.Logger.Warn("connect failed", "endpoint", s.cfg.Endpoint, "error", err)
			if !s.scheduleRetry(ctx, err) {
				return
			}
			continue
		}
		if !s.pump(ctx) {
			return
		}
	}
}

// pump forwards transport events until the connection ends. It returns true
// when a reconnect should follow.
func (s *Supervisor) pump(ctx context.Context) bool {
	for {
		select {
		case ev := <-s.transport.Events():
			switch ev.Type {
			case EventOpen:
				s.mu.Lock()
				s.attempts = 0
				s.state = StateOpen
				s.mu.Unlock()
				s.events <- ev
			case EventMessage, EventError:
				s.events <- ev
			case EventClosed:
				s.events <- ev
				if ev.Code == websocket.StatusNormalClosure {
					s.setState(StateClosed)
					return false
				}
				s.cfg.Logger.Warn("link dropped", "code", int(ev.Code), "reason", ev.Reason)
				return s.scheduleRetry(ctx, ev.Err)
			default:
				s.events <- ev
			}
		case <-ctx.Done():
			s.setState(StateClosing)
			_ = s.transport.Close(websocket.StatusNormalClosure, "client shutdown")
			s.drainUntilClosed()
			s.setState(StateClosed)
			s.events <- Event{Type: EventClosed, Code: websocket.StatusNormalClosure, Reason: "client shutdown"}
			return false
		}
	}
}

// drainUntilClosed consumes transport events after an explicit close so the
// read loop can finish releasing the socket.
func (s *Supervisor) drainUntilClosed() {
	for ev := range s.transport.Events() {
		if ev.Type == EventClosed {
			return
		}
	}
}

// scheduleRetry applies the backoff policy after a failure. It returns true
// when a reconnect should proceed and false on terminal failure or shutdown.
func (s *Supervisor) scheduleRetry(ctx context.Context, cause error) bool {
	s.mu.Lock()
	s.attempts++
	attempt := s.attempts
	s.mu.Unlock()

	if attempt >= s.cfg.MaxAttempts {
		s.setState(StateFailed)
		err := ErrRetriesExhausted
		if cause != nil {
			err = fmt.Errorf("%w: last error: %v", ErrRetriesExhausted, cause)
		}
		s.cfg.Logger.Error("reconnect attempts exhausted", "attempts", attempt, "error", cause)
		s.events <- Event{Type: EventFailed, Err: err, Attempt: attempt}
		return false
	}

	s.setState(StateBackoff)
	delay := s.cfg.Backoff.Delay(attempt)
	s.cfg.Logger.Info("scheduling reconnect", "attempt", attempt, "max_attempts", s.cfg.MaxAttempts, "delay", delay)
	s.events <- Event{Type: EventRetrying, Attempt: attempt}

	select {
	case <-s.cfg.After(delay):
		return true
	case <-ctx.Done():
		s.setState(StateClosed)
		s.events <- Event{Type: EventClosed, Code: websocket.StatusNormalClosure, Reason: "client shutdown"}
		return false
	}
}

func (s *Supervisor) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}
