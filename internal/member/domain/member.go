package domain

import (
	"errors"
	"time"
)

// Member is the canonical account record, keyed by unique email. Email and ID
// are immutable after creation.
type Member struct {
	ID        string
	Email     string
	Role      Role
	CreatedAt time.Time
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Validate validates the member for persistence.
func (m *Member) Validate() error {
	if m.Email == "" {
		return errors.New("email is required")
	}
	if m.Role == "" {
		m.Role = RoleUser
	}
	return nil
}

// CredentialKind discriminates the two login paths. Fixed at creation; a member
// is exactly one of the two, never both, never neither.
type CredentialKind string

const (
	CredentialGeneral CredentialKind = "general"
	CredentialSocial  CredentialKind = "social"
)

// Provider identifies the federated identity provider for social members.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderNaver  Provider = "naver"
	ProviderKakao  Provider = "kakao"
)

// Credential is the tagged union over the two login paths. General members
// carry a password hash and the auto-login flag; social members carry only the
// provider. Kind never changes after creation.
type Credential struct {
	MemberID     string
	Kind         CredentialKind
	PasswordHash string   // general only
	AutoLogin    bool     // general only
	Provider     Provider // social only
	CreatedAt    time.Time
}

// NewGeneralCredential returns a password-path credential. AutoLogin starts
// false and is toggled on sign-in.
func NewGeneralCredential(memberID, passwordHash string, now time.Time) *Credential {
	return &Credential{
		MemberID:     memberID,
		Kind:         CredentialGeneral,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}
}

// NewSocialCredential returns a federated-path credential.
func NewSocialCredential(memberID string, provider Provider, now time.Time) *Credential {
	return &Credential{
		MemberID:  memberID,
		Kind:      CredentialSocial,
		Provider:  provider,
		CreatedAt: now,
	}
}

// Validate enforces the union shape: general credentials must carry a hash and
// no provider, social credentials the opposite.
func (c *Credential) Validate() error {
	if c.MemberID == "" {
		return errors.New("member id is required")
	}
	switch c.Kind {
	case CredentialGeneral:
		if c.PasswordHash == "" {
			return errors.New("general credential requires a password hash")
		}
		if c.Provider != "" {
			return errors.New("general credential must not carry a provider")
		}
	case CredentialSocial:
		if c.Provider == "" {
			return errors.New("social credential requires a provider")
		}
		if c.PasswordHash != "" {
			return errors.New("social credential must not carry a password hash")
		}
	default:
		return errors.New("credential kind must be general or social")
	}
	return nil
}

// IsGeneral reports whether the credential is on the password path.
func (c *Credential) IsGeneral() bool { return c.Kind == CredentialGeneral }

// Profile holds the personal details collected at general sign-up. Social
// members have no profile.
type Profile struct {
	MemberID string
	Name     string
	Phone    string
	Birth    string
}

// Agreement records consent for personal-data and third-party handling. At most
// one per member. Token gating checks only existence, not the flag values.
type Agreement struct {
	MemberID     string
	PersonalInfo bool
	ThirdParty   bool
}
