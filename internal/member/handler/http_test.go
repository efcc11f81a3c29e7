package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"greenmarket/backend/internal/auth/tokenstore"
	"greenmarket/backend/internal/member/domain"
	"greenmarket/backend/internal/member/service"
	"greenmarket/backend/internal/security"
)

type memRegistry struct {
	members     map[string]*domain.Member
	credentials map[string]*domain.Credential
	profiles    map[string]*domain.Profile
}

func newMemRegistry() *memRegistry {
	return &memRegistry{
		members:     make(map[string]*domain.Member),
		credentials: make(map[string]*domain.Credential),
		profiles:    make(map[string]*domain.Profile),
	}
}

func (r *memRegistry) GetMemberByID(_ context.Context, id string) (*domain.Member, error) {
	return r.members[id], nil
}

func (r *memRegistry) GetCredential(_ context.Context, memberID string) (*domain.Credential, error) {
	return r.credentials[memberID], nil
}

func (r *memRegistry) GetProfile(_ context.Context, memberID string) (*domain.Profile, error) {
	return r.profiles[memberID], nil
}

func (r *memRegistry) UpdatePasswordHash(_ context.Context, memberID, passwordHash string) error {
	r.credentials[memberID].PasswordHash = passwordHash
	return nil
}

func (r *memRegistry) DeleteMember(_ context.Context, memberID string) error {
	member := r.members[memberID]
	if member != nil {
		delete(r.members, memberID)
	}
	delete(r.credentials, memberID)
	delete(r.profiles, memberID)
	return nil
}

type fixture struct {
	mux      *http.ServeMux
	registry *memRegistry
	tokens   *security.TokenProvider
	hasher   *security.Hasher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("test token provider: %v", err)
	}
	registry := newMemRegistry()
	hasher := security.NewHasher(4)
	svc := service.NewMemberService(registry, tokenstore.NewMemoryStore(), hasher, nil)
	mux := http.NewServeMux()
	NewMemberHandler(svc).Register(mux, tokens)
	return &fixture{mux: mux, registry: registry, tokens: tokens, hasher: hasher}
}

func (f *fixture) addGeneral(t *testing.T, id, email, password string) {
	t.Helper()
	hash, err := f.hasher.Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	now := time.Now().UTC()
	f.registry.members[id] = &domain.Member{ID: id, Email: email, Role: domain.RoleUser, CreatedAt: now}
	f.registry.credentials[id] = &domain.Credential{
		MemberID: id, Kind: domain.CredentialGeneral, PasswordHash: hash, AutoLogin: true, CreatedAt: now,
	}
	f.registry.profiles[id] = &domain.Profile{MemberID: id, Name: "Jin", Phone: "010-0000-0000", Birth: "1990-01-01"}
}

func (f *fixture) addSocial(t *testing.T, id, email string, provider domain.Provider) {
	t.Helper()
	now := time.Now().UTC()
	f.registry.members[id] = &domain.Member{ID: id, Email: email, Role: domain.RoleUser, CreatedAt: now}
	f.registry.credentials[id] = &domain.Credential{
		MemberID: id, Kind: domain.CredentialSocial, Provider: provider, CreatedAt: now,
	}
}

func (f *fixture) do(t *testing.T, method, path, memberID, email string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if memberID != "" {
		token, _, err := f.tokens.IssueAccess(memberID, email)
		if err != nil {
			t.Fatalf("issue access token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func TestGetInfoEndpoint_General(t *testing.T) {
	f := newFixture(t)
	f.addGeneral(t, "m1", "a@b.com", "hunter2hunter2")

	rec := f.do(t, http.MethodGet, "/members/me", "m1", "a@b.com", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	var resp memberInfoResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Email != "a@b.com" || resp.Kind != "general" || resp.Name != "Jin" {
		t.Fatalf("unexpected info: %+v", resp)
	}
	if resp.Provider != "" {
		t.Fatal("general member must not expose a provider")
	}
}

func TestGetInfoEndpoint_Social(t *testing.T) {
	f := newFixture(t)
	f.addSocial(t, "m2", "s@b.com", domain.ProviderKakao)

	rec := f.do(t, http.MethodGet, "/members/me", "m2", "s@b.com", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	var resp memberInfoResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Kind != "social" || resp.Provider != "kakao" {
		t.Fatalf("unexpected info: %+v", resp)
	}
	if resp.Name != "" || resp.Phone != "" {
		t.Fatal("social member has no profile fields")
	}
}

func TestGetInfoEndpoint_Unauthorized(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/members/me", "", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestGetInfoEndpoint_DeletedMember(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/members/me", "ghost", "ghost@b.com", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestChangePasswordEndpoint(t *testing.T) {
	f := newFixture(t)
	f.addGeneral(t, "m1", "a@b.com", "hunter2hunter2")

	rec := f.do(t, http.MethodPatch, "/members/me/password", "m1", "a@b.com", map[string]string{
		"current_password": "hunter2hunter2",
		"new_password":     "correct-horse-1",
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusNoContent, rec.Body)
	}
	if !f.hasher.Matches("correct-horse-1", f.registry.credentials["m1"].PasswordHash) {
		t.Fatal("stored hash was not updated to the new password")
	}

	rec = f.do(t, http.MethodPatch, "/members/me/password", "m1", "a@b.com", map[string]string{
		"current_password": "wrong-password",
		"new_password":     "whatever-else-1",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("mismatch status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestChangePasswordEndpoint_SocialMember(t *testing.T) {
	f := newFixture(t)
	f.addSocial(t, "m2", "s@b.com", domain.ProviderGoogle)

	rec := f.do(t, http.MethodPatch, "/members/me/password", "m2", "s@b.com", map[string]string{
		"current_password": "anything",
		"new_password":     "anything-else",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestAutoLoginEndpoint(t *testing.T) {
	f := newFixture(t)
	f.addGeneral(t, "m1", "a@b.com", "hunter2hunter2")

	rec := f.do(t, http.MethodGet, "/members/me/auto-login", "m1", "a@b.com", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	var resp autoLoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.AutoLogin {
		t.Fatal("auto_login = false, want true")
	}
}

func TestDeleteMemberEndpoint(t *testing.T) {
	f := newFixture(t)
	f.addGeneral(t, "m1", "a@b.com", "hunter2hunter2")

	rec := f.do(t, http.MethodDelete, "/members/me", "m1", "a@b.com", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusNoContent, rec.Body)
	}
	if f.registry.members["m1"] != nil {
		t.Fatal("member row still present after withdrawal")
	}

	rec = f.do(t, http.MethodDelete, "/members/me", "m1", "a@b.com", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
