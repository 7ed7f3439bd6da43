// Package entity contains the core business objects of the gateway,
// each representing a unique, identifiable concept within the domain.
package entity

import "time"

// MaxSessionAge is the fixed maximum lifetime of a session. Sessions older
// than this are treated as absent by the store; the same value drives the
// cookie's Max-Age attribute.
const MaxSessionAge = 24 * time.Hour

// Session is proof of a successful authentication. The token is a 128-bit
// value from a cryptographically secure source, base64-encoded, and is
// never derived from user-controllable input. Sessions are created by the
// login verifier and the registration flow and are never mutated.
type Session struct {
	ID        int64     // Store-assigned identifier.
	UserID    int64     // The owning user; many sessions may exist per user.
	Token     string    // Base64-encoded 128-bit random value, unique across sessions.
	CreatedAt time.Time // Issuance timestamp.
}

// ExpiredAt reports whether the session has outlived MaxSessionAge at the
// given instant. Expired sessions must be honored nowhere.
func (s *Session) ExpiredAt(now time.Time) bool {
	return now.Sub(s.CreatedAt) > MaxSessionAge
}
