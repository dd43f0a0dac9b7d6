package link

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// WSTransport implements Transport over a websocket connection.
// It holds at most one live connection; Connect replaces the handle rather
// than mutating it, and every exit path releases the underlying socket.
type WSTransport struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	state  State
	events chan Event
	logger *slog.Logger

	readCancel context.CancelFunc
}

// NewWSTransport creates a websocket transport. The events channel is
// buffered so the read loop is not blocked by a briefly slow consumer, but
// consumers must drain it until EventClosed.
func NewWSTransport(logger *slog.Logger) *WSTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSTransport{
		state:  StateIdle,
		events: make(chan Event, 32),
		logger: logger,
	}
}

// Events returns the lifecycle event stream.
func (t *WSTransport) Events() <-chan Event {
	return t.events
}

// State reports the current connection state.
func (t *WSTransport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Connect performs one dial attempt against endpoint. On success the state
// is open, EventOpen is emitted and a read loop feeds EventMessage frames
// until the connection closes.
func (t *WSTransport) Connect(ctx context.Context, endpoint string) error {
	t.mu.Lock()
	if t.state == StateConnecting || t.state == StateOpen {
		t.mu.Unlock()
		return fmt.Errorf("link: connect while %s", t.state)
	}
	t.state = StateConnecting
	t.mu.Unlock()

	conn, _, err := websocket.Dial(ctx, endpoint, nil)
	if err != nil {
		t.mu.Lock()
		t.state = StateClosed
		t.mu.Unlock()
		return fmt.Errorf("link: dial %s: %w", endpoint, err)
	}

	readCtx, cancel := context.WithCancel(context.Background())

	t.mu.Lock()
	t.conn = conn
	t.state = StateOpen
	t.readCancel = cancel
	t.mu.Unlock()

	t.events <- Event{Type: EventOpen}
	go t.readLoop(readCtx, conn)
	return nil
}

func (t *WSTransport) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			code := websocket.CloseStatus(err)
			if code == -1 {
				// Not a close frame: dropped TCP, canceled context, etc.
				code = websocket.StatusAbnormalClosure
			}
			t.mu.Lock()
			if t.conn == conn {
				t.conn = nil
				t.state = StateClosed
			}
			t.mu.Unlock()
			_ = conn.CloseNow()
			t.logger.Debug("link closed", "code", int(code), "error", err)
			t.events <- Event{Type: EventClosed, Code: code, Reason: err.Error(), Err: err}
			return
		}
		t.events <- Event{Type: EventMessage, Data: data}
	}
}

// Send writes one text frame. It fails immediately when the link is not open.
func (t *WSTransport) Send(ctx context.Context, data []byte) error {
	t.mu.Lock()
	conn := t.conn
	open := t.state == StateOpen
	t.mu.Unlock()

	if !open || conn == nil {
		return ErrNotConnected
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("link: send: %w", err)
	}
	return nil
}

// Close requests an orderly shutdown with the given close code. The read
// loop observes the closure and emits the final EventClosed.
func (t *WSTransport) Close(code websocket.StatusCode, reason string) error {
	t.mu.Lock()
	conn := t.conn
	cancel := t.readCancel
	if conn == nil {
		t.state = StateClosed
		t.mu.Unlock()
		return nil
	}
	t.state = StateClosing
	t.mu.Unlock()

	err := conn.Close(code, reason)
	if cancel != nil {
		cancel()
	}
	if err != nil {
		return fmt.Errorf("link: close: %w", err)
	}
	return nil
}
