package middleware

import "context"

type contextKey struct{ name string }

var (
	memberIDKey = contextKey{"member_id"}
	emailKey    = contextKey{"email"}
)

// WithIdentity returns a context carrying the authenticated member id and email.
// Handlers read them via GetMemberID and GetEmail; there is no other ambient
// authentication state.
func WithIdentity(ctx context.Context, memberID, email string) context.Context {
	ctx = context.WithValue(ctx, memberIDKey, memberID)
	ctx = context.WithValue(ctx, emailKey, email)
	return ctx
}

// GetMemberID returns the member id from context and true if set; otherwise "", false.
func GetMemberID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(memberIDKey).(string)
	return v, ok
}

// GetEmail returns the email from context and true if set; otherwise "", false.
func GetEmail(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(emailKey).(string)
	return v, ok
}
