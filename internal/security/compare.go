package security

import "crypto/subtle"

// TokenEqual compares two token strings in constant time. Used when matching a
// presented refresh token against the stored value for an email, where an
// early-exit comparison could leak prefix information.
func TokenEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
