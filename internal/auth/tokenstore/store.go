// Package tokenstore holds the active refresh token per member, keyed by email.
// At most one live entry per member; the value is replaced wholesale on rotation
// and deleted on detected invalidity or withdrawal. The store enforces no expiry
// of its own: token validity lives in the token's embedded exp claim.
package tokenstore

import "context"

// Store is a single-value-per-email lookup/overwrite table for refresh tokens.
type Store interface {
	// Get returns the stored token for email. ok is false when no entry exists.
	Get(ctx context.Context, email string) (token string, ok bool, err error)
	// Upsert stores token for email, replacing any previous value.
	Upsert(ctx context.Context, email, token string) error
	// Delete removes the entry for email. Deleting a missing entry is not an error.
	Delete(ctx context.Context, email string) error
	// Exists reports whether an entry exists for email.
	Exists(ctx context.Context, email string) (bool, error)
}
