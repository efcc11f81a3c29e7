package repository

import (
	"context"
	"database/sql"
	"errors"

	"greenmarket/backend/internal/member/domain"
)

// PostgresRegistry implements Registry on a Postgres database.
type PostgresRegistry struct {
	db *sql.DB
}

// NewPostgresRegistry returns a member registry that uses the given db for persistence.
func NewPostgresRegistry(db *sql.DB) *PostgresRegistry {
	return &PostgresRegistry{db: db}
}

const memberColumns = "id, email, role, created_at"

func scanMember(row *sql.Row) (*domain.Member, error) {
	var m domain.Member
	err := row.Scan(&m.ID, &m.Email, &m.Role, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// GetMemberByID returns the member for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRegistry) GetMemberByID(ctx context.Context, id string) (*domain.Member, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+memberColumns+" FROM members WHERE id = $1", id)
	return scanMember(row)
}

// GetMemberByEmail returns the member with the given email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRegistry) GetMemberByEmail(ctx context.Context, email string) (*domain.Member, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+memberColumns+" FROM members WHERE email = $1", email)
	return scanMember(row)
}

// GetCredential returns the member's credential, or nil if not found.
func (r *PostgresRegistry) GetCredential(ctx context.Context, memberID string) (*domain.Credential, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT member_id, kind, password_hash, auto_login, provider, created_at FROM credentials WHERE member_id = $1",
		memberID)
	var c domain.Credential
	var hash, provider sql.NullString
	err := row.Scan(&c.MemberID, &c.Kind, &hash, &c.AutoLogin, &provider, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c.PasswordHash = hash.String
	c.Provider = domain.Provider(provider.String)
	return &c, nil
}

// GetProfile returns the member's profile, or nil if not found.
func (r *PostgresRegistry) GetProfile(ctx context.Context, memberID string) (*domain.Profile, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT member_id, name, phone, birth FROM profiles WHERE member_id = $1", memberID)
	var p domain.Profile
	err := row.Scan(&p.MemberID, &p.Name, &p.Phone, &p.Birth)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// GetAgreement returns the member's agreement, or nil if not found.
func (r *PostgresRegistry) GetAgreement(ctx context.Context, memberID string) (*domain.Agreement, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT member_id, personal_info, third_party FROM agreements WHERE member_id = $1", memberID)
	var a domain.Agreement
	err := row.Scan(&a.MemberID, &a.PersonalInfo, &a.ThirdParty)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// CreateGeneralMember persists member, credential, and profile atomically.
func (r *PostgresRegistry) CreateGeneralMember(ctx context.Context, m *domain.Member, c *domain.Credential, p *domain.Profile) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if err := insertMember(ctx, tx, m); err != nil {
			return err
		}
		if err := insertCredential(ctx, tx, c); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO profiles (member_id, name, phone, birth) VALUES ($1, $2, $3, $4)",
			p.MemberID, p.Name, p.Phone, p.Birth)
		return err
	})
}

// CreateSocialMember persists member and credential atomically.
func (r *PostgresRegistry) CreateSocialMember(ctx context.Context, m *domain.Member, c *domain.Credential) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if err := insertMember(ctx, tx, m); err != nil {
			return err
		}
		return insertCredential(ctx, tx, c)
	})
}

// SaveAgreement inserts the agreement, overwriting the flags if a row already
// exists for the member.
func (r *PostgresRegistry) SaveAgreement(ctx context.Context, a *domain.Agreement) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO agreements (member_id, personal_info, third_party) VALUES ($1, $2, $3)
		 ON CONFLICT (member_id) DO UPDATE SET personal_info = EXCLUDED.personal_info, third_party = EXCLUDED.third_party`,
		a.MemberID, a.PersonalInfo, a.ThirdParty)
	return err
}

// UpdatePasswordHash overwrites the password hash of a general credential.
func (r *PostgresRegistry) UpdatePasswordHash(ctx context.Context, memberID, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE credentials SET password_hash = $2 WHERE member_id = $1 AND kind = 'general'",
		memberID, passwordHash)
	return err
}

// UpdateAutoLogin sets the auto-login flag of a general credential.
func (r *PostgresRegistry) UpdateAutoLogin(ctx context.Context, memberID string, autoLogin bool) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE credentials SET auto_login = $2 WHERE member_id = $1 AND kind = 'general'",
		memberID, autoLogin)
	return err
}

// DeleteMember removes the member and all satellite rows atomically.
func (r *PostgresRegistry) DeleteMember(ctx context.Context, memberID string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		for _, q := range []string{
			"DELETE FROM agreements WHERE member_id = $1",
			"DELETE FROM profiles WHERE member_id = $1",
			"DELETE FROM credentials WHERE member_id = $1",
			"DELETE FROM members WHERE id = $1",
		} {
			if _, err := tx.ExecContext(ctx, q, memberID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresRegistry) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func insertMember(ctx context.Context, tx *sql.Tx, m *domain.Member) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO members (id, email, role, created_at) VALUES ($1, $2, $3, $4)",
		m.ID, m.Email, m.Role, m.CreatedAt)
	return err
}

func insertCredential(ctx context.Context, tx *sql.Tx, c *domain.Credential) error {
	hash := sql.NullString{String: c.PasswordHash, Valid: c.PasswordHash != ""}
	provider := sql.NullString{String: string(c.Provider), Valid: c.Provider != ""}
	_, err := tx.ExecContext(ctx,
		"INSERT INTO credentials (member_id, kind, password_hash, auto_login, provider, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		c.MemberID, c.Kind, hash, c.AutoLogin, provider, c.CreatedAt)
	return err
}
