package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"greenmarket/backend/internal/audit/domain"
	"greenmarket/backend/internal/telemetry"
)

type memAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
	fail    bool
}

func (r *memAuditRepo) Create(ctx context.Context, a *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("storage down")
	}
	r.entries = append(r.entries, a)
	return nil
}

func (r *memAuditRepo) ListByMember(ctx context.Context, memberID string, limit, offset int32) ([]*domain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AuditLog
	for _, e := range r.entries {
		if e.MemberID == memberID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestLogger_LogEvent(t *testing.T) {
	repo := &memAuditRepo{}
	l := NewLogger(repo, func(context.Context) string { return "10.0.0.1" }, nil)

	l.LogEvent(context.Background(), "m1", "login_failure", "auth", "")

	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	e := repo.entries[0]
	if e.ID == "" {
		t.Error("entry should get an id")
	}
	if e.MemberID != "m1" || e.Action != "login_failure" || e.Resource != "auth" {
		t.Errorf("entry = %+v", e)
	}
	if e.IP != "10.0.0.1" {
		t.Errorf("IP = %q, want 10.0.0.1", e.IP)
	}
}

func TestLogger_BestEffort(t *testing.T) {
	// Repository failure must not panic or surface to the caller.
	l := NewLogger(&memAuditRepo{fail: true}, nil, nil)
	l.LogEvent(context.Background(), "m1", "member_signup", "auth", "")

	// Nil repo is a no-op.
	NewLogger(nil, nil, nil).LogEvent(context.Background(), "m1", "member_signup", "auth", "")
}

type memEmitter struct {
	events []*telemetry.Event
}

func (e *memEmitter) Emit(_ context.Context, event *telemetry.Event) error {
	e.events = append(e.events, event)
	return nil
}

func TestLogger_MirrorsToEmitter(t *testing.T) {
	repo := &memAuditRepo{}
	emitter := &memEmitter{}
	l := NewLogger(repo, nil, emitter)

	l.LogEvent(context.Background(), "m1", "token_reuse_suspected", "auth", "email=a@b.com")

	if len(emitter.events) != 1 {
		t.Fatalf("emitted events = %d, want 1", len(emitter.events))
	}
	ev := emitter.events[0]
	if ev.MemberID != "m1" || ev.Action != "token_reuse_suspected" {
		t.Errorf("event = %+v", ev)
	}
	if ev.CreatedAt.IsZero() {
		t.Error("event should carry a timestamp")
	}
}

func TestLogger_UnknownIP(t *testing.T) {
	repo := &memAuditRepo{}
	l := NewLogger(repo, nil, nil)
	l.LogEvent(context.Background(), "", "login_failure", "auth", "email=unknown@example.com")
	if repo.entries[0].IP != "unknown" {
		t.Errorf("IP = %q, want unknown", repo.entries[0].IP)
	}
}
