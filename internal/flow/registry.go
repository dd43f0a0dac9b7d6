package flow

import (
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/wiralabs/chatlink/internal/domain"
)

// Registry tracks active conversations and their connections so idle ones
// can be expired and shutdown can close everything cleanly.
type Registry struct {
	mu     sync.RWMutex
	active map[string]*liveConversation
}

type liveConversation struct {
	conn  *websocket.Conn
	state *domain.ConversationState
}

// NewRegistry creates an empty conversation registry.
func NewRegistry() *Registry {
	return &Registry{active: make(map[string]*liveConversation)}
}

// Register adds a conversation. An existing connection under the same ID is
// replaced and closed.
func (r *Registry) Register(state *domain.ConversationState, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.active[state.ID]; ok && existing.conn != conn {
		_ = existing.conn.Close(websocket.StatusNormalClosure, "conversation replaced")
	}
	r.active[state.ID] = &liveConversation{conn: conn, state: state}
	slog.Info("Conversation registered", "conversation_id", state.ID)
}

// Unregister removes a conversation if conn still owns it.
func (r *Registry) Unregister(convID string, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.active[convID]; ok && current.conn == conn {
		delete(r.active, convID)
		slog.Info("Conversation unregistered", "conversation_id", convID)
	}
}

// Touch records visitor activity for idle expiry.
func (r *Registry) Touch(convID string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.active[convID]; ok {
		c.state.Touch()
	}
}

// Count returns the number of live conversations.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.active)
}

// CloseIdle closes conversations inactive beyond ttl and returns how many
// were expired. The close uses the normal code so well-behaved clients do
// not try to reconnect to a dead conversation.
func (r *Registry) CloseIdle(now time.Time, ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	expired := 0
	for id, c := range r.active {
		if c.state.IdleSince(now, ttl) {
			_ = c.conn.Close(websocket.StatusNormalClosure, "conversation expired")
			delete(r.active, id)
			expired++
			slog.Info("Idle conversation expired", "conversation_id", id)
		}
	}
	return expired
}

// CloseAll terminates every live conversation.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, c := range r.active {
		_ = c.conn.Close(websocket.StatusNormalClosure, "server shutting down")
		delete(r.active, id)
	}
}
