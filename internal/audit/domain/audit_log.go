package domain

import "time"

// AuditLog is one recorded auth event.
type AuditLog struct {
	ID        string
	MemberID  string // empty for events with no resolved member (e.g. login_failure on unknown email)
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
