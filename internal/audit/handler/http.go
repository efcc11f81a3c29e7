// Package handler exposes a member's own audit trail over HTTP.
package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	auditrepo "greenmarket/backend/internal/audit/repository"
	"greenmarket/backend/internal/security"
	"greenmarket/backend/internal/server/middleware"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// AuditHandler serves GET /members/me/audit-logs.
type AuditHandler struct {
	repo auditrepo.Repository
}

// NewAuditHandler returns a handler backed by repo.
func NewAuditHandler(repo auditrepo.Repository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

// Register mounts the audit route on mux behind the auth middleware.
func (h *AuditHandler) Register(mux *http.ServeMux, tokens *security.TokenProvider) {
	mux.Handle("GET /members/me/audit-logs", middleware.RequireAuth(tokens, http.HandlerFunc(h.list)))
}

type auditLogResponse struct {
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IP        string    `json:"ip"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *AuditHandler) list(w http.ResponseWriter, r *http.Request) {
	memberID, _ := middleware.GetMemberID(r.Context())
	limit := parseQueryInt(r, "limit", defaultLimit)
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	offset := parseQueryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	entries, err := h.repo.ListByMember(r.Context(), memberID, int32(limit), int32(offset))
	if err != nil {
		log.Printf("http: %s %s: %v", r.Method, r.URL.Path, err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
		return
	}

	out := make([]auditLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditLogResponse{
			Action:    e.Action,
			Resource:  e.Resource,
			IP:        e.IP,
			Metadata:  e.Metadata,
			CreatedAt: e.CreatedAt,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"logs": out})
}

func parseQueryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
