// Package audit records auth events (sign-ups, login failures, suspected token
// reuse, withdrawals) for later review. Writes are best-effort and never affect
// the calling code path.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"greenmarket/backend/internal/audit/domain"
	auditrepo "greenmarket/backend/internal/audit/repository"
	"greenmarket/backend/internal/telemetry"
)

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// AuditLogger writes a single audit event with explicit action/resource.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, memberID, action, resource, metadata string)
}

// Logger implements AuditLogger using the audit repository, an optional IP
// extractor, and an optional telemetry emitter.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
	emitter     telemetry.EventEmitter
}

// NewLogger returns an AuditLogger that persists to repo, uses ipExtractor for
// client IP, and mirrors each event to emitter. All may be nil; a nil repo
// skips persistence, a nil emitter skips export.
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor, emitter telemetry.EventEmitter) *Logger {
	return &Logger{repo: repo, ipExtractor: ipExtractor, emitter: emitter}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, memberID, action, resource, metadata string) {
	if l == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	now := time.Now().UTC()
	if l.repo != nil {
		entry := &domain.AuditLog{
			ID:        uuid.New().String(),
			MemberID:  memberID,
			Action:    action,
			Resource:  resource,
			IP:        ip,
			Metadata:  metadata,
			CreatedAt: now,
		}
		if err := l.repo.Create(ctx, entry); err != nil {
			log.Printf("audit: create log entry: %v", err)
		}
	}
	if l.emitter != nil {
		event := &telemetry.Event{
			MemberID:  memberID,
			Action:    action,
			Resource:  resource,
			IP:        ip,
			Metadata:  metadata,
			CreatedAt: now,
		}
		if err := l.emitter.Emit(ctx, event); err != nil {
			log.Printf("audit: emit event: %v", err)
		}
	}
}
