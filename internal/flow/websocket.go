package flow

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/wiralabs/chatlink/internal/domain"
	"github.com/wiralabs/chatlink/internal/store"
)

// WebSocketHandler serves the chat endpoint: one conversation per connection.
type WebSocketHandler struct {
	engine        *Engine
	registry      *Registry
	repo          store.Repository
	allowedOrigin string
	isDev         bool
	logger        *slog.Logger
}

// NewWebSocketHandler creates the chat websocket handler.
func NewWebSocketHandler(engine *Engine, registry *Registry, repo store.Repository, allowedOrigin string, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{
		engine:        engine,
		registry:      registry,
		repo:          repo,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
		logger:        slog.Default(),
	}
}

// clientFrame mirrors the shapes the chat client puts on the wire: free text
// as {"text"} and button activations as {"type":"choice","value","label"}.
type clientFrame struct {
	Text  string `json:"text"`
	Type  string `json:"type"`
	Value string `json:"value"`
	Label string `json:"label"`
}

// ServeHTTP upgrades the connection and walks the conversation flow.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Error("Failed to accept WebSocket", "error", err, "ip", r.RemoteAddr)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "conversation ended"); closeErr != nil {
			h.logger.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	state := domain.NewConversationState(uuid.NewString())
	h.registry.Register(state, ws)
	defer h.registry.Unregister(state.ID, ws)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	h.logger.Info("Conversation started", "conversation_id", state.ID, "ip", r.RemoteAddr)

	if err := h.sendReplies(ctx, ws, h.engine.Greet(state)); err != nil {
		h.logger.Warn("Failed to send greeting", "error", err, "conversation_id", state.ID)
		return
	}

	h.readLoop(ctx, ws, state)
	h.logger.Info("Conversation ended", "conversation_id", state.ID)
}

func (h *WebSocketHandler) readLoop(ctx context.Context, ws *websocket.Conn, state *domain.ConversationState) {
	for {
		_, raw, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				h.logger.Debug("WebSocket closed by client", "conversation_id", state.ID)
			} else {
				h.logger.Warn("WebSocket read error", "error", err, "conversation_id", state.ID)
			}
			return
		}

		input := decodeInput(raw)
		h.registry.Touch(state.ID)

		replies, lead := h.engine.Handle(state, input)
		if lead != nil {
			h.saveLead(ctx, lead)
		}

		if err := h.sendReplies(ctx, ws, replies); err != nil {
			h.logger.Warn("Failed to send replies", "error", err, "conversation_id", state.ID)
			return
		}
	}
}

// decodeInput extracts the visitor's answer from a frame. Unparseable frames
// fall back to the raw text, mirroring the client-side normalizer contract.
func decodeInput(raw []byte) string {
	var frame clientFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return string(raw)
	}
	if frame.Type == "choice" && frame.Value != "" {
		return frame.Value
	}
	if frame.Text != "" {
		return frame.Text
	}
	return string(raw)
}

func (h *WebSocketHandler) saveLead(ctx context.Context, lead *domain.Lead) {
	saveCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.repo.SaveLead(saveCtx, lead); err != nil {
		h.logger.Error("Failed to save lead", "error", err, "conversation_id", lead.ConversationID, "campaign", lead.Campaign)
		return
	}
	h.logger.Info("Lead captured", "lead_id", lead.ID, "campaign", lead.Campaign, "conversation_id", lead.ConversationID)
}

// sendReplies serializes engine replies into wire frames, preceded by a
// typing indicator so the client can show activity.
func (h *WebSocketHandler) sendReplies(ctx context.Context, ws *websocket.Conn, replies []Reply) error {
	if len(replies) == 0 {
		return nil
	}
	if err := h.writeJSON(ctx, ws, map[string]any{"type": "typing", "is_typing": true}); err != nil {
		return err
	}
	for _, reply := range replies {
		if err := h.writeJSON(ctx, ws, replyFrame(reply)); err != nil {
			return err
		}
	}
	return nil
}

// replyFrame builds the outbound payload for one reply. Button frames carry
// the text under content, message and text alike: deployed clients disagree
// on which field they read.
func replyFrame(reply Reply) map[string]any {
	frame := map[string]any{
		"type":      reply.Kind,
		"content":   reply.Content,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	switch reply.Kind {
	case "buttons":
		btns := make([]map[string]string, 0, len(reply.Buttons))
		for _, b := range reply.Buttons {
			btns = append(btns, map[string]string{"label": b.Label, "value": b.Value})
		}
		frame["buttons"] = btns
		frame["message"] = reply.Content
		frame["text"] = reply.Content
	case "question":
		frame["input_type"] = reply.Input
	}
	return frame
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" || origin == h.allowedOrigin {
		return true
	}
	h.logger.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *WebSocketHandler) writeJSON(ctx context.Context, ws *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return ws.Write(ctx, websocket.MessageText, data)
}
