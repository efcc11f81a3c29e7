package service

import (
	"context"
	"errors"

	"greenmarket/backend/internal/audit"
	"greenmarket/backend/internal/auth/tokenstore"
	"greenmarket/backend/internal/member/domain"
	"greenmarket/backend/internal/security"
)

// Sentinel errors for the member service; the handler maps them to HTTP status codes.
var (
	ErrMemberNotFound        = errors.New("member not found")
	ErrGeneralMemberNotFound = errors.New("general member credential not found")
	ErrProfileNotFound       = errors.New("member profile not found")
	ErrPasswordMismatch      = errors.New("current password does not match")
)

// Registry is the identity registry capability the member service needs.
type Registry interface {
	GetMemberByID(ctx context.Context, id string) (*domain.Member, error)
	GetCredential(ctx context.Context, memberID string) (*domain.Credential, error)
	GetProfile(ctx context.Context, memberID string) (*domain.Profile, error)
	UpdatePasswordHash(ctx context.Context, memberID, passwordHash string) error
	DeleteMember(ctx context.Context, memberID string) error
}

// MemberInfo is the member's own account view. General members expose their
// profile details; social members expose only the provider.
type MemberInfo struct {
	Email    string
	Kind     domain.CredentialKind
	Name     string
	Phone    string
	Birth    string
	Provider domain.Provider
}

// MemberService implements member self-service: account info, password change,
// auto-login flag lookup, and withdrawal. The acting member id is always passed
// explicitly; there is no ambient authenticated-user state.
type MemberService struct {
	registry Registry
	store    tokenstore.Store
	hasher   *security.Hasher
	auditor  audit.AuditLogger
}

// NewMemberService returns a MemberService with the given dependencies.
// auditor may be nil to disable audit recording.
func NewMemberService(registry Registry, store tokenstore.Store, hasher *security.Hasher, auditor audit.AuditLogger) *MemberService {
	return &MemberService{
		registry: registry,
		store:    store,
		hasher:   hasher,
		auditor:  auditor,
	}
}

// GetMemberInfo returns the account view for memberID.
func (s *MemberService) GetMemberInfo(ctx context.Context, memberID string) (*MemberInfo, error) {
	member, err := s.registry.GetMemberByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	cred, err := s.registry.GetCredential(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, ErrGeneralMemberNotFound
	}
	info := &MemberInfo{Email: member.Email, Kind: cred.Kind}
	if cred.IsGeneral() {
		profile, err := s.registry.GetProfile(ctx, memberID)
		if err != nil {
			return nil, err
		}
		if profile == nil {
			return nil, ErrProfileNotFound
		}
		info.Name = profile.Name
		info.Phone = profile.Phone
		info.Birth = profile.Birth
		return info, nil
	}
	info.Provider = cred.Provider
	return info, nil
}

// ChangePassword verifies the current password and overwrites the hash with
// the new one. Only general members have a password to change.
func (s *MemberService) ChangePassword(ctx context.Context, memberID, current, next string) error {
	cred, err := s.registry.GetCredential(ctx, memberID)
	if err != nil {
		return err
	}
	if cred == nil || !cred.IsGeneral() {
		return ErrGeneralMemberNotFound
	}
	if !s.hasher.Matches(current, cred.PasswordHash) {
		return ErrPasswordMismatch
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := s.registry.UpdatePasswordHash(ctx, memberID, hash); err != nil {
		return err
	}
	s.audit(ctx, memberID, "password_changed", "")
	return nil
}

// GetAutoLoginInfo returns the stored auto-login flag of a general member.
func (s *MemberService) GetAutoLoginInfo(ctx context.Context, memberID string) (bool, error) {
	cred, err := s.registry.GetCredential(ctx, memberID)
	if err != nil {
		return false, err
	}
	if cred == nil || !cred.IsGeneral() {
		return false, ErrGeneralMemberNotFound
	}
	return cred.AutoLogin, nil
}

// DeleteMember withdraws the member: any live refresh token entry is removed
// first, then the member and all satellite rows are deleted atomically.
func (s *MemberService) DeleteMember(ctx context.Context, memberID string) error {
	member, err := s.registry.GetMemberByID(ctx, memberID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrMemberNotFound
	}
	exists, err := s.store.Exists(ctx, member.Email)
	if err != nil {
		return err
	}
	if exists {
		if err := s.store.Delete(ctx, member.Email); err != nil {
			return err
		}
	}
	if err := s.registry.DeleteMember(ctx, memberID); err != nil {
		return err
	}
	s.audit(ctx, memberID, "member_withdraw", "")
	return nil
}

func (s *MemberService) audit(ctx context.Context, memberID, action, metadata string) {
	if s.auditor == nil {
		return
	}
	s.auditor.LogEvent(ctx, memberID, action, "member", metadata)
}
