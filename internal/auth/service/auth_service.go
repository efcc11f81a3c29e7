package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"greenmarket/backend/internal/audit"
	"greenmarket/backend/internal/auth/tokenstore"
	memberdomain "greenmarket/backend/internal/member/domain"
	"greenmarket/backend/internal/security"
)

// Sentinel errors for the auth service; the handler maps them to HTTP status codes.
var (
	ErrEmailAlreadyExists        = errors.New("email already registered")
	ErrMemberNotFound            = errors.New("member not found")
	ErrGeneralMemberNotFound     = errors.New("general member credential not found")
	ErrLoginFailure              = errors.New("login failure")
	ErrInvalidAccessToken        = errors.New("invalid access token")
	ErrRefreshTokenNotFound      = errors.New("refresh token not found")
	ErrRefreshTokenOwnerMismatch = errors.New("refresh token does not belong to this member")
)

// TokenPair holds an access/refresh token pair returned by a successful login
// path or reissue.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SocialSignInResult is the outcome of SignInSocial. Tokens is nil for a
// first-time social member: consent must be captured before any session
// credential is issued.
type SocialSignInResult struct {
	Tokens          *TokenPair
	ConsentRequired bool
}

// AgreementResult is the outcome of AgreementInSignUp. Tokens is nil for
// general members, whose sessions are established through password sign-in.
type AgreementResult struct {
	Tokens *TokenPair
}

// Registry is the identity registry capability the auth service needs.
type Registry interface {
	GetMemberByEmail(ctx context.Context, email string) (*memberdomain.Member, error)
	GetCredential(ctx context.Context, memberID string) (*memberdomain.Credential, error)
	GetAgreement(ctx context.Context, memberID string) (*memberdomain.Agreement, error)
	CreateGeneralMember(ctx context.Context, m *memberdomain.Member, c *memberdomain.Credential, p *memberdomain.Profile) error
	CreateSocialMember(ctx context.Context, m *memberdomain.Member, c *memberdomain.Credential) error
	SaveAgreement(ctx context.Context, a *memberdomain.Agreement) error
	UpdatePasswordHash(ctx context.Context, memberID, passwordHash string) error
	UpdateAutoLogin(ctx context.Context, memberID string, autoLogin bool) error
}

// AuthService implements sign-up, the two sign-in paths, consent capture,
// token reissue, password recovery, and token status checks. It is the only
// component holding the session-issue decision rules.
type AuthService struct {
	registry Registry
	store    tokenstore.Store
	hasher   *security.Hasher
	tokens   *security.TokenProvider
	auditor  audit.AuditLogger
}

// NewAuthService returns an AuthService with the given dependencies.
// auditor may be nil to disable audit recording.
func NewAuthService(registry Registry, store tokenstore.Store, hasher *security.Hasher, tokens *security.TokenProvider, auditor audit.AuditLogger) *AuthService {
	return &AuthService{
		registry: registry,
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		auditor:  auditor,
	}
}

// SignUp creates a general (password) member: member row, hashed credential,
// and profile in one atomic write. No tokens are issued at sign-up.
func (s *AuthService) SignUp(ctx context.Context, email, password, name, phone, birth string) error {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := validatePassword(password); err != nil {
		return err
	}
	existing, err := s.registry.GetMemberByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailAlreadyExists
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	member := &memberdomain.Member{
		ID:        uuid.New().String(),
		Email:     email,
		Role:      memberdomain.RoleUser,
		CreatedAt: now,
	}
	if err := member.Validate(); err != nil {
		return err
	}
	cred := memberdomain.NewGeneralCredential(member.ID, hash, now)
	profile := &memberdomain.Profile{
		MemberID: member.ID,
		Name:     strings.TrimSpace(name),
		Phone:    strings.TrimSpace(phone),
		Birth:    strings.TrimSpace(birth),
	}
	if err := s.registry.CreateGeneralMember(ctx, member, cred, profile); err != nil {
		return err
	}
	s.audit(ctx, member.ID, "member_signup", "")
	return nil
}

// SignInGeneral authenticates a password member and returns a token pair.
// Wrong-password and wrong-email details are never distinguished in the error.
// The stored auto-login flag is updated only when the requested value differs.
func (s *AuthService) SignInGeneral(ctx context.Context, email, password string, autoLogin bool) (*TokenPair, error) {
	email = normalizeEmail(email)
	member, err := s.registry.GetMemberByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	cred, err := s.registry.GetCredential(ctx, member.ID)
	if err != nil {
		return nil, err
	}
	if cred == nil || !cred.IsGeneral() {
		return nil, ErrGeneralMemberNotFound
	}
	if !s.hasher.Matches(password, cred.PasswordHash) {
		s.audit(ctx, member.ID, "login_failure", "")
		return nil, ErrLoginFailure
	}
	if cred.AutoLogin != autoLogin {
		if err := s.registry.UpdateAutoLogin(ctx, member.ID, autoLogin); err != nil {
			return nil, err
		}
	}
	return s.authorize(ctx, email, member.ID)
}

// SignInSocial signs in a federated member whose email has already been
// resolved by the provider handshake. An email bound to a password account
// cannot be taken over by a social login. A first-time social member is
// created without agreement or profile and receives no tokens until consent
// is captured through AgreementInSignUp.
func (s *AuthService) SignInSocial(ctx context.Context, email string, provider memberdomain.Provider) (*SocialSignInResult, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	member, err := s.registry.GetMemberByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if member != nil {
		cred, err := s.registry.GetCredential(ctx, member.ID)
		if err != nil {
			return nil, err
		}
		if cred != nil && cred.IsGeneral() {
			return nil, ErrEmailAlreadyExists
		}
		agreement, err := s.registry.GetAgreement(ctx, member.ID)
		if err != nil {
			return nil, err
		}
		if agreement == nil {
			// Should not happen under correct client flow; backfill an
			// empty-consent placeholder so authorize has a row to rely on.
			if err := s.registry.SaveAgreement(ctx, &memberdomain.Agreement{MemberID: member.ID}); err != nil {
				return nil, err
			}
		}
		pair, err := s.authorize(ctx, email, member.ID)
		if err != nil {
			return nil, err
		}
		return &SocialSignInResult{Tokens: pair}, nil
	}

	now := time.Now().UTC()
	newMember := &memberdomain.Member{
		ID:        uuid.New().String(),
		Email:     email,
		Role:      memberdomain.RoleUser,
		CreatedAt: now,
	}
	cred := memberdomain.NewSocialCredential(newMember.ID, provider, now)
	if err := cred.Validate(); err != nil {
		return nil, err
	}
	if err := s.registry.CreateSocialMember(ctx, newMember, cred); err != nil {
		return nil, err
	}
	s.audit(ctx, newMember.ID, "social_signup", "provider="+string(provider))
	return &SocialSignInResult{ConsentRequired: true}, nil
}

// AgreementInSignUp records the consent flags for a member. For social members
// this is the gate that releases their first session: a token pair is issued.
// General members capture consent during sign-up flow and get no tokens here.
// Tokens are withheld or issued on existence of the row alone, regardless of
// whether consent was granted or declined.
func (s *AuthService) AgreementInSignUp(ctx context.Context, email string, personalInfo, thirdParty bool) (*AgreementResult, error) {
	email = normalizeEmail(email)
	member, err := s.registry.GetMemberByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	agreement := &memberdomain.Agreement{
		MemberID:     member.ID,
		PersonalInfo: personalInfo,
		ThirdParty:   thirdParty,
	}
	if err := s.registry.SaveAgreement(ctx, agreement); err != nil {
		return nil, err
	}
	s.audit(ctx, member.ID, "agreement_captured", "")

	cred, err := s.registry.GetCredential(ctx, member.ID)
	if err != nil {
		return nil, err
	}
	if cred != nil && cred.IsGeneral() {
		return &AgreementResult{}, nil
	}
	pair, err := s.authorize(ctx, email, member.ID)
	if err != nil {
		return nil, err
	}
	return &AgreementResult{Tokens: pair}, nil
}

// Reissue exchanges an expired access token for a fresh one. The access token
// is parsed structurally (signature checked, expiry ignored) to recover the
// member; the presented refresh token decides the path:
//   - invalid or expired refresh: the stored entry is discarded and a brand-new
//     pair is published. Mere invalidity is never fatal.
//   - valid refresh that does not match the stored value: suspected theft or
//     replay; fails with ErrRefreshTokenOwnerMismatch and no state change.
//   - valid and matching: only the access token is re-signed, the refresh token
//     is reused unchanged.
func (s *AuthService) Reissue(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	memberID, email, err := s.tokens.ParseExpired(accessToken)
	if err != nil {
		return nil, ErrInvalidAccessToken
	}

	if !s.tokens.Validate(refreshToken) {
		if err := s.store.Delete(ctx, email); err != nil {
			return nil, err
		}
		return s.publish(ctx, memberID, email)
	}

	stored, ok, err := s.store.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRefreshTokenNotFound
	}
	if !security.TokenEqual(refreshToken, stored) {
		s.audit(ctx, memberID, "token_reuse_suspected", "")
		return nil, ErrRefreshTokenOwnerMismatch
	}
	access, _, err := s.tokens.IssueAccess(memberID, email)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refreshToken}, nil
}

// FindPassword overwrites the password of a general member. No token side
// effects: existing sessions and stored refresh tokens are untouched.
func (s *AuthService) FindPassword(ctx context.Context, email, newPassword string) error {
	email = normalizeEmail(email)
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	member, err := s.registry.GetMemberByEmail(ctx, email)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrMemberNotFound
	}
	cred, err := s.registry.GetCredential(ctx, member.ID)
	if err != nil {
		return err
	}
	if cred == nil || !cred.IsGeneral() {
		return ErrGeneralMemberNotFound
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.registry.UpdatePasswordHash(ctx, member.ID, hash); err != nil {
		return err
	}
	s.audit(ctx, member.ID, "password_reset", "")
	return nil
}

// TokenStatus reports whether bearerHeader carries a currently valid access
// token. A missing, malformed, or expired header is "invalid", never an error.
func (s *AuthService) TokenStatus(bearerHeader string) bool {
	const prefix = "Bearer "
	if !strings.HasPrefix(bearerHeader, prefix) {
		return false
	}
	return s.tokens.Validate(strings.TrimSpace(bearerHeader[len(prefix):]))
}

// authorize is the shared tail of every login path. It re-verifies the member
// against the registry, then either reuses the stored refresh token (when still
// valid), or rotates it out and publishes a new pair.
//
// The read-then-write on the store is not mutually exclusive against concurrent
// calls for the same member; the last writer's token becomes canonical.
func (s *AuthService) authorize(ctx context.Context, email, subject string) (*TokenPair, error) {
	member, err := s.registry.GetMemberByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if member == nil || member.ID != subject {
		return nil, ErrMemberNotFound
	}

	stored, ok, err := s.store.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	if ok {
		if s.tokens.Validate(stored) {
			access, _, err := s.tokens.IssueAccess(subject, email)
			if err != nil {
				return nil, err
			}
			return &TokenPair{AccessToken: access, RefreshToken: stored}, nil
		}
		if err := s.store.Delete(ctx, email); err != nil {
			return nil, err
		}
	}
	return s.publish(ctx, subject, email)
}

// publish mints a new access+refresh pair and persists the refresh token as the
// member's single live entry.
func (s *AuthService) publish(ctx context.Context, memberID, email string) (*TokenPair, error) {
	access, _, err := s.tokens.IssueAccess(memberID, email)
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.tokens.IssueRefresh(email)
	if err != nil {
		return nil, err
	}
	if err := s.store.Upsert(ctx, email, refresh); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) audit(ctx context.Context, memberID, action, metadata string) {
	if s.auditor == nil {
		return
	}
	s.auditor.LogEvent(ctx, memberID, action, "auth", metadata)
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return errors.New("invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
