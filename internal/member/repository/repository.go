package repository

import (
	"context"

	"greenmarket/backend/internal/member/domain"
)

// Registry defines persistence for members and their satellite records
// (credential, profile, agreement). Lookups return (nil, nil) when the row is
// absent; errors are reserved for storage failures.
type Registry interface {
	GetMemberByID(ctx context.Context, id string) (*domain.Member, error)
	GetMemberByEmail(ctx context.Context, email string) (*domain.Member, error)
	GetCredential(ctx context.Context, memberID string) (*domain.Credential, error)
	GetProfile(ctx context.Context, memberID string) (*domain.Profile, error)
	GetAgreement(ctx context.Context, memberID string) (*domain.Agreement, error)

	// CreateGeneralMember persists member, credential, and profile in one
	// transaction; a partially created member is never observable.
	CreateGeneralMember(ctx context.Context, m *domain.Member, c *domain.Credential, p *domain.Profile) error
	// CreateSocialMember persists member and credential in one transaction.
	// No profile and no agreement; consent is captured in a later step.
	CreateSocialMember(ctx context.Context, m *domain.Member, c *domain.Credential) error

	// SaveAgreement inserts or overwrites the member's single agreement row.
	SaveAgreement(ctx context.Context, a *domain.Agreement) error
	// UpdatePasswordHash overwrites the password hash of a general credential.
	UpdatePasswordHash(ctx context.Context, memberID, passwordHash string) error
	// UpdateAutoLogin sets the auto-login flag of a general credential.
	UpdateAutoLogin(ctx context.Context, memberID string, autoLogin bool) error

	// DeleteMember removes the member and all satellite rows in one transaction.
	DeleteMember(ctx context.Context, memberID string) error
}
