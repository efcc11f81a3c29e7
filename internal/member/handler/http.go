// Package handler exposes member self-service over HTTP. All routes read the
// acting member from the request context put there by the auth middleware.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"greenmarket/backend/internal/member/service"
	"greenmarket/backend/internal/security"
	"greenmarket/backend/internal/server/middleware"
)

// MemberHandler serves the /members/me endpoints.
type MemberHandler struct {
	svc *service.MemberService
}

// NewMemberHandler returns a handler backed by svc.
func NewMemberHandler(svc *service.MemberService) *MemberHandler {
	return &MemberHandler{svc: svc}
}

// Register mounts the member routes on mux, each behind the auth middleware.
func (h *MemberHandler) Register(mux *http.ServeMux, tokens *security.TokenProvider) {
	protect := func(fn func(http.ResponseWriter, *http.Request) error) http.Handler {
		return middleware.RequireAuth(tokens, withError(fn))
	}
	mux.Handle("GET /members/me", protect(h.getInfo))
	mux.Handle("DELETE /members/me", protect(h.deleteMember))
	mux.Handle("PATCH /members/me/password", protect(h.changePassword))
	mux.Handle("GET /members/me/auto-login", protect(h.getAutoLogin))
}

func withError(h func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			log.Printf("http: %s %s: %v", r.Method, r.URL.Path, err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

type memberInfoResponse struct {
	Email    string `json:"email"`
	Kind     string `json:"kind"`
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Birth    string `json:"birth,omitempty"`
	Provider string `json:"provider,omitempty"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type autoLoginResponse struct {
	AutoLogin bool `json:"auto_login"`
}

func (h *MemberHandler) getInfo(w http.ResponseWriter, r *http.Request) error {
	memberID, _ := middleware.GetMemberID(r.Context())
	info, err := h.svc.GetMemberInfo(r.Context(), memberID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMemberNotFound),
			errors.Is(err, service.ErrGeneralMemberNotFound),
			errors.Is(err, service.ErrProfileNotFound):
			writeError(w, http.StatusNotFound, "member not found")
		default:
			return err
		}
		return nil
	}
	return writeJSON(w, http.StatusOK, memberInfoResponse{
		Email:    info.Email,
		Kind:     string(info.Kind),
		Name:     info.Name,
		Phone:    info.Phone,
		Birth:    info.Birth,
		Provider: string(info.Provider),
	})
}

func (h *MemberHandler) deleteMember(w http.ResponseWriter, r *http.Request) error {
	memberID, _ := middleware.GetMemberID(r.Context())
	if err := h.svc.DeleteMember(r.Context(), memberID); err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			writeError(w, http.StatusNotFound, "member not found")
			return nil
		}
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *MemberHandler) changePassword(w http.ResponseWriter, r *http.Request) error {
	memberID, _ := middleware.GetMemberID(r.Context())
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return nil
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "current_password and new_password are required")
		return nil
	}
	err := h.svc.ChangePassword(r.Context(), memberID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGeneralMemberNotFound):
			writeError(w, http.StatusNotFound, "member not found")
		case errors.Is(err, service.ErrPasswordMismatch):
			writeError(w, http.StatusUnauthorized, "current password does not match")
		default:
			return err
		}
		return nil
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *MemberHandler) getAutoLogin(w http.ResponseWriter, r *http.Request) error {
	memberID, _ := middleware.GetMemberID(r.Context())
	autoLogin, err := h.svc.GetAutoLoginInfo(r.Context(), memberID)
	if err != nil {
		if errors.Is(err, service.ErrGeneralMemberNotFound) {
			writeError(w, http.StatusNotFound, "member not found")
			return nil
		}
		return err
	}
	return writeJSON(w, http.StatusOK, autoLoginResponse{AutoLogin: autoLogin})
}
