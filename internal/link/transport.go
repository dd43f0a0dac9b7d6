// Package link owns the persistent connection to the chat server: a single
// live transport plus the supervisor that recovers it from abnormal closes.
package link

import (
	"context"
	"errors"

	"github.com/coder/websocket"
)

var (
	// ErrNotConnected is returned by Send when the link is not open.
	ErrNotConnected = errors.New("link: not connected")

	// ErrRetriesExhausted is the terminal failure after the reconnect
	// attempt cap is reached.
	ErrRetriesExhausted = errors.New("link: reconnect attempts exhausted")
)

// EventType identifies a lifecycle event on the link.
type EventType int

const (
	// EventOpen fires when a connection reaches the open state.
	EventOpen EventType = iota
	// EventMessage carries one raw inbound frame.
	EventMessage
	// EventError carries a transport-level error that did not close the link.
	EventError
	// EventClosed fires when the connection is gone, with the close code.
	EventClosed
	// EventRetrying is emitted by the supervisor before a scheduled reconnect.
	EventRetrying
	// EventFailed is the supervisor's terminal state: no more reconnects.
	EventFailed
)

// Event is one lifecycle or data event observed on the link. Fields are
// populated per type: Data for EventMessage, Err for EventError/EventFailed,
// Code and Reason for EventClosed, Attempt for EventRetrying.
type Event struct {
	Type    EventType
	Data    []byte
	Err     error
	Code    websocket.StatusCode
	Reason  string
	Attempt int
}

// Transport is one physical connection at a time. Connect replaces any prior
// connection; Send fails with ErrNotConnected unless the link is open.
// Lifecycle and data events are delivered in order on Events.
type Transport interface {
	Connect(ctx context.Context, endpoint string) error
	Send(ctx context.Context, data []byte) error
	Close(code websocket.StatusCode, reason string) error
	Events() <-chan Event
}

// State describes the connection lifecycle.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosing
	StateClosed
	StateBackoff
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	case StateBackoff:
		return "backoff"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
