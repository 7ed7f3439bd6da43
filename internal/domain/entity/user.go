// Package entity contains the core business objects of the gateway,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"
)

// User is a registered principal. The email is the login identifier and is
// stored lower-cased; Username is a free-form display name with no
// uniqueness constraint. PasswordHash holds a self-describing argon2id PHC
// string and must never appear in logs or responses.
type User struct {
	ID           int64     // Store-assigned identifier, immutable once created.
	Email        string    // Unique login identifier, compared case-insensitively.
	Username     *string   // Optional display name; nil when the user left it blank.
	PasswordHash string    // Argon2id PHC string (algorithm, params, salt, digest).
	CreatedAt    time.Time // Set by the store on creation.
}

// NormalizeEmail lower-cases an email for storage and lookup. All store
// operations go through this so `USER@Example.com` and `user@example.com`
// resolve to the same account.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
