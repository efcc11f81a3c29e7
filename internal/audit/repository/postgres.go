package repository

import (
	"context"
	"database/sql"

	"greenmarket/backend/internal/audit/domain"
)

// PostgresRepository implements Repository on a Postgres database.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists one audit log entry. The entry must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	mid := sql.NullString{String: a.MemberID, Valid: a.MemberID != ""}
	meta := sql.NullString{String: a.Metadata, Valid: a.Metadata != ""}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO audit_logs (id, member_id, action, resource, ip, metadata, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		a.ID, mid, a.Action, a.Resource, a.IP, meta, a.CreatedAt)
	return err
}

// ListByMember returns audit logs for the member, newest first, paginated by limit and offset.
func (r *PostgresRepository) ListByMember(ctx context.Context, memberID string, limit, offset int32) ([]*domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, member_id, action, resource, ip, metadata, created_at FROM audit_logs
		 WHERE member_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		memberID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AuditLog
	for rows.Next() {
		var a domain.AuditLog
		var mid, meta sql.NullString
		if err := rows.Scan(&a.ID, &mid, &a.Action, &a.Resource, &a.IP, &meta, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.MemberID = mid.String
		a.Metadata = meta.String
		out = append(out, &a)
	}
	return out, rows.Err()
}
