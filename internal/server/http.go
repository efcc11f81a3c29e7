// Package server assembles the HTTP mux from the handler packages.
package server

import (
	"net/http"

	audithandler "greenmarket/backend/internal/audit/handler"
	auditrepo "greenmarket/backend/internal/audit/repository"
	authhandler "greenmarket/backend/internal/auth/handler"
	authservice "greenmarket/backend/internal/auth/service"
	healthhandler "greenmarket/backend/internal/health/handler"
	memberhandler "greenmarket/backend/internal/member/handler"
	memberservice "greenmarket/backend/internal/member/service"
	"greenmarket/backend/internal/security"
)

// Deps holds the services and collaborators the HTTP routes need.
type Deps struct {
	// Auth serves the /auth routes. Required.
	Auth *authservice.AuthService
	// Member serves the /members/me routes. Required.
	Member *memberservice.MemberService
	// Tokens validates bearer tokens for the protected routes. Required.
	Tokens *security.TokenProvider
	// AuditRepo serves GET /members/me/audit-logs. Optional; the route is
	// skipped when nil.
	AuditRepo auditrepo.Repository
	// HealthDB is pinged by /healthz. Optional.
	HealthDB healthhandler.Pinger
	// HealthRedis is pinged by /healthz. Optional.
	HealthRedis healthhandler.Pinger
}

// NewMux builds the route table:
//   - POST /auth/signup, /auth/signin, /auth/social, /auth/agreement,
//     /auth/reissue, /auth/password; GET /auth/token/status
//   - GET/DELETE /members/me, PATCH /members/me/password,
//     GET /members/me/auto-login, GET /members/me/audit-logs
//     (bearer token required)
//   - GET /healthz
func NewMux(deps Deps) *http.ServeMux {
	mux := http.NewServeMux()
	authhandler.NewAuthHandler(deps.Auth).Register(mux)
	memberhandler.NewMemberHandler(deps.Member).Register(mux, deps.Tokens)
	if deps.AuditRepo != nil {
		audithandler.NewAuditHandler(deps.AuditRepo).Register(mux, deps.Tokens)
	}
	healthhandler.NewServer(deps.HealthDB, deps.HealthRedis).Register(mux)
	return mux
}
