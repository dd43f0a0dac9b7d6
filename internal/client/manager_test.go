package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/wiralabs/chatlink/internal/link"
	"github.com/wiralabs/chatlink/internal/wire"
)

// fakeTransport feeds scripted frames through the full pipeline.
type fakeTransport struct {
	mu     sync.Mutex
	events chan link.Event
	open   bool
	sent   [][]byte
	dialOK bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{events: make(chan link.Event, 64), dialOK: true}
}

func (f *fakeTransport) Connect(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.dialOK {
		return errors.New("refused")
	}
	f.open = true
	f.events <- link.Event{Type: link.EventOpen}
	return nil
}

func (f *fakeTransport) Send(_ context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return link.ErrNotConnected
	}
	f.sent = append(f.sent, data)
	return nil
}

func (f *fakeTransport) Close(code websocket.StatusCode, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return nil
	}
	f.open = false
	f.events <- link.Event{Type: link.EventClosed, Code: code, Reason: reason}
	return nil
}

func (f *fakeTransport) Events() <-chan link.Event { return f.events }

func (f *fakeTransport) deliver(raw string) {
	f.events <- link.Event{Type: link.EventMessage, Data: []byte(raw)}
}

func (f *fakeTransport) sentFrames() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.sent))
	copy(out, f.sent)
	return out
}

// recordingRenderer captures pipeline output.
type recordingRenderer struct {
	mu       sync.Mutex
	rendered []wire.InboundMessage
	clears   int
	lost     []error
	signal   chan struct{}
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{signal: make(chan struct{}, 64)}
}

func (r *recordingRenderer) Render(msg wire.InboundMessage) {
	r.mu.Lock()
	r.rendered = append(r.rendered, msg)
	r.mu.Unlock()
	r.signal <- struct{}{}
}

func (r *recordingRenderer) ClearTranscript() {
	r.mu.Lock()
	r.clears++
	r.mu.Unlock()
}

func (r *recordingRenderer) ConnectionLost(err error) {
	r.mu.Lock()
	r.lost = append(r.lost, err)
	r.mu.Unlock()
	r.signal <- struct{}{}
}

func (r *recordingRenderer) waitSignal(t *testing.T) {
	t.Helper()
	select {
	case <-r.signal:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for renderer activity")
	}
}

func (r *recordingRenderer) snapshot() ([]wire.InboundMessage, int, []error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := make([]wire.InboundMessage, len(r.rendered))
	copy(msgs, r.rendered)
	return msgs, r.clears, r.lost
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func startManager(t *testing.T) (*Manager, *fakeTransport, *recordingRenderer, *testClock) {
	t.Helper()
	ft := newFakeTransport()
	r := newRecordingRenderer()
	clock := newTestClock()
	m := NewManager(Config{
		Endpoint: "ws://test/ws",
		Now:      clock.now,
	}, ft, r)
	m.Start(context.Background())
	t.Cleanup(m.Close)
	return m, ft, r, clock
}

func TestManager_RedeliveredErrorRenderedOnce(t *testing.T) {
	_, ft, r, clock := startManager(t)

	frame := `{"type":"error","reset":true,"content":"X"}`
	ft.deliver(frame)
	r.waitSignal(t)

	clock.advance(500 * time.Millisecond)
	ft.deliver(frame)

	// Deliver a distinct message so we know the duplicate was processed.
	clock.advance(time.Millisecond)
	ft.deliver(`{"content":"after"}`)
	r.waitSignal(t)

	msgs, clears, _ := r.snapshot()
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 rendered messages, got %d", len(msgs))
	}
	if msgs[0].Kind != wire.KindError || msgs[0].Content != "X" {
		t.Errorf("Expected error message X first, got %+v", msgs[0])
	}
	if clears != 1 {
		t.Errorf("Expected exactly one transcript clear, got %d", clears)
	}
}

func TestManager_ChoicePromptResendsRendered(t *testing.T) {
	_, ft, r, _ := startManager(t)

	frame := `{"type":"buttons","content":"pick","buttons":[{"label":"A","value":"1"}]}`
	ft.deliver(frame)
	r.waitSignal(t)
	ft.deliver(frame)
	r.waitSignal(t)

	msgs, _, _ := r.snapshot()
	if len(msgs) != 2 {
		t.Errorf("Choice prompts are exempt from dedup; expected 2 renders, got %d", len(msgs))
	}
}

func TestManager_DuplicateChoiceActivationSendsOnce(t *testing.T) {
	m, ft, r, _ := startManager(t)

	// Make sure the link is open before submitting.
	ft.deliver(`{"content":"ready"}`)
	r.waitSignal(t)

	if err := m.ActivateChoice(context.Background(), "2", "Tabung Warisan"); err != nil {
		t.Fatalf("First activation failed: %v", err)
	}
	// Double-click: same identity before the admission window elapses.
	if err := m.ActivateChoice(context.Background(), "2", "Tabung Warisan"); err != nil {
		t.Fatalf("Duplicate activation must be a silent no-op, got %v", err)
	}

	if got := len(ft.sentFrames()); got != 1 {
		t.Errorf("Expected exactly one frame on the wire, got %d", got)
	}
}

func TestManager_GuardReleasedOnSendFailure(t *testing.T) {
	ft := newFakeTransport()
	ft.dialOK = false
	r := newRecordingRenderer()
	clock := newTestClock()
	m := NewManager(Config{
		Endpoint:    "ws://test/ws",
		MaxAttempts: 1,
		Now:         clock.now,
	}, ft, r)
	m.Start(context.Background())
	defer m.Close()

	// Link never opens, so the send fails and the mark must be released.
	if err := m.ActivateChoice(context.Background(), "2", "label"); !errors.Is(err, link.ErrNotConnected) {
		t.Fatalf("Expected ErrNotConnected, got %v", err)
	}

	ft.mu.Lock()
	ft.open = true
	ft.mu.Unlock()
	if err := m.ActivateChoice(context.Background(), "2", "label"); err != nil {
		t.Errorf("Retry after send failure must be admitted, got %v", err)
	}
}

func TestManager_TerminalFailureSurfacedToRenderer(t *testing.T) {
	ft := newFakeTransport()
	ft.dialOK = false
	r := newRecordingRenderer()
	m := NewManager(Config{
		Endpoint:    "ws://test/ws",
		MaxAttempts: 1,
	}, ft, r)
	m.Start(context.Background())
	defer m.Close()

	r.waitSignal(t)
	_, _, lost := r.snapshot()
	if len(lost) != 1 || !errors.Is(lost[0], link.ErrRetriesExhausted) {
		t.Errorf("Expected one terminal failure notification, got %v", lost)
	}
}

func TestManager_SendTextShape(t *testing.T) {
	m, ft, r, _ := startManager(t)

	ft.deliver(`{"content":"ready"}`)
	r.waitSignal(t)

	if err := m.SendText(context.Background(), "hello"); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}
	frames := ft.sentFrames()
	if len(frames) != 1 || string(frames[0]) != `{"text":"hello"}` {
		t.Errorf("Unexpected outbound frames: %v", frames)
	}
}
