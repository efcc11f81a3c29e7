package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"greenmarket/backend/internal/auth/tokenstore"
	"greenmarket/backend/internal/member/domain"
	"greenmarket/backend/internal/security"
)

type memRegistry struct {
	mu       sync.Mutex
	members  map[string]*domain.Member
	creds    map[string]*domain.Credential
	profiles map[string]*domain.Profile
}

func newMemRegistry() *memRegistry {
	return &memRegistry{
		members:  make(map[string]*domain.Member),
		creds:    make(map[string]*domain.Credential),
		profiles: make(map[string]*domain.Profile),
	}
}

func (r *memRegistry) GetMemberByID(ctx context.Context, id string) (*domain.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.members[id], nil
}

func (r *memRegistry) GetCredential(ctx context.Context, memberID string) (*domain.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.creds[memberID], nil
}

func (r *memRegistry) GetProfile(ctx context.Context, memberID string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.profiles[memberID], nil
}

func (r *memRegistry) UpdatePasswordHash(ctx context.Context, memberID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.creds[memberID]; ok {
		c2 := *c
		c2.PasswordHash = passwordHash
		r.creds[memberID] = &c2
	}
	return nil
}

func (r *memRegistry) DeleteMember(ctx context.Context, memberID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, memberID)
	delete(r.creds, memberID)
	delete(r.profiles, memberID)
	return nil
}

func (r *memRegistry) addGeneral(t *testing.T, hasher *security.Hasher, id, email, password string) {
	t.Helper()
	hash, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[id] = &domain.Member{ID: id, Email: email, Role: domain.RoleUser, CreatedAt: now}
	r.creds[id] = domain.NewGeneralCredential(id, hash, now)
	r.profiles[id] = &domain.Profile{MemberID: id, Name: "Name", Phone: "010-0000-0000", Birth: "1990-01-01"}
}

func (r *memRegistry) addSocial(id, email string, provider domain.Provider) {
	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[id] = &domain.Member{ID: id, Email: email, Role: domain.RoleUser, CreatedAt: now}
	r.creds[id] = domain.NewSocialCredential(id, provider, now)
}

func newTestMemberService(t *testing.T) (*MemberService, *memRegistry, *tokenstore.MemoryStore, *security.Hasher) {
	t.Helper()
	registry := newMemRegistry()
	store := tokenstore.NewMemoryStore()
	hasher := security.NewHasher(4)
	return NewMemberService(registry, store, hasher, nil), registry, store, hasher
}

func TestGetMemberInfo_General(t *testing.T) {
	svc, registry, _, hasher := newTestMemberService(t)
	registry.addGeneral(t, hasher, "m1", "user@example.com", "password1!")

	info, err := svc.GetMemberInfo(context.Background(), "m1")
	if err != nil {
		t.Fatalf("GetMemberInfo: %v", err)
	}
	if info.Kind != domain.CredentialGeneral {
		t.Errorf("Kind = %q, want general", info.Kind)
	}
	if info.Email != "user@example.com" || info.Name != "Name" || info.Phone == "" || info.Birth == "" {
		t.Errorf("info = %+v", info)
	}
	if info.Provider != "" {
		t.Error("general member info should not carry a provider")
	}
}

func TestGetMemberInfo_Social(t *testing.T) {
	svc, registry, _, _ := newTestMemberService(t)
	registry.addSocial("m2", "soc@example.com", domain.ProviderKakao)

	info, err := svc.GetMemberInfo(context.Background(), "m2")
	if err != nil {
		t.Fatalf("GetMemberInfo: %v", err)
	}
	if info.Kind != domain.CredentialSocial || info.Provider != domain.ProviderKakao {
		t.Errorf("info = %+v", info)
	}
	if info.Name != "" {
		t.Error("social member info should not carry profile fields")
	}
}

func TestGetMemberInfo_NotFound(t *testing.T) {
	svc, _, _, _ := newTestMemberService(t)
	if _, err := svc.GetMemberInfo(context.Background(), "nobody"); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("want ErrMemberNotFound, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, registry, _, hasher := newTestMemberService(t)
	registry.addGeneral(t, hasher, "m1", "user@example.com", "password1!")

	if err := svc.ChangePassword(context.Background(), "m1", "wrong", "newerpass1!"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("wrong current password: want ErrPasswordMismatch, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), "m1", "password1!", "newerpass1!"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	cred, _ := registry.GetCredential(context.Background(), "m1")
	if !hasher.Matches("newerpass1!", cred.PasswordHash) {
		t.Error("new password should match the stored hash")
	}
	if hasher.Matches("password1!", cred.PasswordHash) {
		t.Error("old password should no longer match")
	}
}

func TestChangePassword_SocialMember(t *testing.T) {
	svc, registry, _, _ := newTestMemberService(t)
	registry.addSocial("m2", "soc@example.com", domain.ProviderGoogle)
	if err := svc.ChangePassword(context.Background(), "m2", "x", "y"); !errors.Is(err, ErrGeneralMemberNotFound) {
		t.Errorf("want ErrGeneralMemberNotFound, got %v", err)
	}
}

func TestGetAutoLoginInfo(t *testing.T) {
	svc, registry, _, hasher := newTestMemberService(t)
	registry.addGeneral(t, hasher, "m1", "user@example.com", "password1!")

	auto, err := svc.GetAutoLoginInfo(context.Background(), "m1")
	if err != nil {
		t.Fatalf("GetAutoLoginInfo: %v", err)
	}
	if auto {
		t.Error("auto-login should default to false")
	}

	registry.mu.Lock()
	registry.creds["m1"].AutoLogin = true
	registry.mu.Unlock()
	auto, _ = svc.GetAutoLoginInfo(context.Background(), "m1")
	if !auto {
		t.Error("auto-login should reflect the stored flag")
	}

	registry.addSocial("m2", "soc@example.com", domain.ProviderNaver)
	if _, err := svc.GetAutoLoginInfo(context.Background(), "m2"); !errors.Is(err, ErrGeneralMemberNotFound) {
		t.Errorf("social member: want ErrGeneralMemberNotFound, got %v", err)
	}
}

func TestDeleteMember(t *testing.T) {
	svc, registry, store, hasher := newTestMemberService(t)
	registry.addGeneral(t, hasher, "m1", "user@example.com", "password1!")
	_ = store.Upsert(context.Background(), "user@example.com", "live-refresh-token")

	if err := svc.DeleteMember(context.Background(), "m1"); err != nil {
		t.Fatalf("DeleteMember: %v", err)
	}
	if m, _ := registry.GetMemberByID(context.Background(), "m1"); m != nil {
		t.Error("member row should be gone")
	}
	if ok, _ := store.Exists(context.Background(), "user@example.com"); ok {
		t.Error("refresh token entry should be removed on withdrawal")
	}

	if err := svc.DeleteMember(context.Background(), "m1"); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("double delete: want ErrMemberNotFound, got %v", err)
	}
}
