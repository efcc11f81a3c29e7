package repository

import (
	"context"

	"greenmarket/backend/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
	ListByMember(ctx context.Context, memberID string, limit, offset int32) ([]*domain.AuditLog, error)
}
