// Package handler exposes the auth service over HTTP. Handlers decode JSON,
// call the service, and map its sentinel errors to status codes; no business
// rules live here.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"greenmarket/backend/internal/auth/service"
	memberdomain "greenmarket/backend/internal/member/domain"
)

// AuthHandler serves the auth endpoints.
type AuthHandler struct {
	svc *service.AuthService
}

// NewAuthHandler returns a handler backed by svc.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register mounts the auth routes on mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/signup", withError(h.signUp))
	mux.HandleFunc("POST /auth/signin", withError(h.signInGeneral))
	mux.HandleFunc("POST /auth/social", withError(h.signInSocial))
	mux.HandleFunc("POST /auth/agreement", withError(h.agreement))
	mux.HandleFunc("POST /auth/reissue", withError(h.reissue))
	mux.HandleFunc("POST /auth/password", withError(h.findPassword))
	mux.HandleFunc("GET /auth/token/status", withError(h.tokenStatus))
}

// withError converts handler errors into a JSON 500; expected failures are
// written by the handler itself before returning nil.
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

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Birth    string `json:"birth"`
}

type signInRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	AutoLogin bool   `json:"auto_login"`
}

type socialSignInRequest struct {
	Email    string `json:"email"`
	Provider string `json:"provider"`
}

type agreementRequest struct {
	Email        string `json:"email"`
	PersonalInfo bool   `json:"personal_info"`
	ThirdParty   bool   `json:"third_party"`
}

type reissueRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type findPasswordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type socialSignInResponse struct {
	AccessToken     string `json:"access_token,omitempty"`
	RefreshToken    string `json:"refresh_token,omitempty"`
	ConsentRequired bool   `json:"consent_required"`
}

type tokenStatusResponse struct {
	IsValid bool `json:"is_valid"`
}

func (h *AuthHandler) signUp(w http.ResponseWriter, r *http.Request) error {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return nil
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return nil
	}
	err := h.svc.SignUp(r.Context(), req.Email, req.Password, req.Name, req.Phone, req.Birth)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			writeError(w, http.StatusConflict, "email already registered")
			return nil
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return nil
	}
	w.WriteHeader(http.StatusCreated)
	return nil
}

func (h *AuthHandler) signInGeneral(w http.ResponseWriter, r *http.Request) error {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return nil
	}
	pair, err := h.svc.SignInGeneral(r.Context(), req.Email, req.Password, req.AutoLogin)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMemberNotFound), errors.Is(err, service.ErrGeneralMemberNotFound):
			writeError(w, http.StatusNotFound, "member not found")
		case errors.Is(err, service.ErrLoginFailure):
			writeError(w, http.StatusUnauthorized, "login failure")
		default:
			return err
		}
		return nil
	}
	return writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *AuthHandler) signInSocial(w http.ResponseWriter, r *http.Request) error {
	var req socialSignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return nil
	}
	if req.Email == "" || req.Provider == "" {
		writeError(w, http.StatusBadRequest, "email and provider are required")
		return nil
	}
	res, err := h.svc.SignInSocial(r.Context(), req.Email, memberdomain.Provider(req.Provider))
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			writeError(w, http.StatusConflict, "email already bound to a password account")
			return nil
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return nil
	}
	resp := socialSignInResponse{ConsentRequired: res.ConsentRequired}
	if res.Tokens != nil {
		resp.AccessToken = res.Tokens.AccessToken
		resp.RefreshToken = res.Tokens.RefreshToken
	}
	return writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) agreement(w http.ResponseWriter, r *http.Request) error {
	var req agreementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return nil
	}
	res, err := h.svc.AgreementInSignUp(r.Context(), req.Email, req.PersonalInfo, req.ThirdParty)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			writeError(w, http.StatusNotFound, "member not found")
			return nil
		}
		return err
	}
	var resp tokenPairResponse
	if res.Tokens != nil {
		resp.AccessToken = res.Tokens.AccessToken
		resp.RefreshToken = res.Tokens.RefreshToken
	}
	return writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) reissue(w http.ResponseWriter, r *http.Request) error {
	var req reissueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return nil
	}
	pair, err := h.svc.Reissue(r.Context(), req.AccessToken, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAccessToken):
			writeError(w, http.StatusUnauthorized, "invalid access token")
		case errors.Is(err, service.ErrRefreshTokenNotFound):
			writeError(w, http.StatusNotFound, "refresh token not found")
		case errors.Is(err, service.ErrRefreshTokenOwnerMismatch):
			writeError(w, http.StatusUnauthorized, "refresh token owner mismatch")
		default:
			return err
		}
		return nil
	}
	return writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *AuthHandler) findPassword(w http.ResponseWriter, r *http.Request) error {
	var req findPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return nil
	}
	err := h.svc.FindPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMemberNotFound), errors.Is(err, service.ErrGeneralMemberNotFound):
			writeError(w, http.StatusNotFound, "member not found")
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return nil
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *AuthHandler) tokenStatus(w http.ResponseWriter, r *http.Request) error {
	valid := h.svc.TokenStatus(r.Header.Get("Authorization"))
	return writeJSON(w, http.StatusOK, tokenStatusResponse{IsValid: valid})
}
