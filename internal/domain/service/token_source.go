// Package service defines interfaces for core, stateless domain logic.
package service

// TokenSource produces session tokens. The production implementation draws
// 128 bits from a cryptographically secure random source and base64-encodes
// them; tests substitute a deterministic source.
type TokenSource interface {
	// NewToken returns a fresh, unguessable session token.
	NewToken() (string, error)
}
