// Package api exposes the dev server's HTTP endpoints.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/wiralabs/chatlink/internal/store"
)

// Handler serves lead inspection endpoints.
type Handler struct {
	repo store.Repository
}

// NewHandler creates the API handler.
func NewHandler(repo store.Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes mounts the API endpoints on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/leads", h.listLeads)
	r.Get("/api/leads/count", h.countLeads)
}

func (h *Handler) listLeads(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	leads, err := h.repo.ListLeads(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to list leads", "error", err)
		http.Error(w, "failed to list leads", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"leads": leads})
}

func (h *Handler) countLeads(w http.ResponseWriter, r *http.Request) {
	n, err := h.repo.CountLeads(r.Context())
	if err != nil {
		slog.Error("Failed to count leads", "error", err)
		http.Error(w, "failed to count leads", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"count": n})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("Failed to encode response", "error", err)
	}
}
