// Package telemetry defines the event contract for exporting security events
// (sign-ins, token reuse signals, withdrawals) to the observability backend.
package telemetry

import (
	"context"
	"time"
)

// Event is a security-relevant occurrence tied to a member.
type Event struct {
	MemberID  string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}

// EventEmitter emits events (e.g. to OTel Logs). Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}
