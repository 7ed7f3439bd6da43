// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"sharp/internal/domain/entity"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new user.
// Password and PasswordRepeat arrive separately so the mismatch check
// happens here, before any hashing or I/O.
type RegisterInput struct {
	Email          string
	Username       string
	Password       string
	PasswordRepeat string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// --- Output DTOs ---

// AuthOutput returns the authenticated user together with the session
// issued for them. The delivery layer turns the session into a cookie.
type AuthOutput struct {
	User    *entity.User
	Session *entity.Session
}

// AuthUsecase defines the interface for credential-related business
// operations. This is the contract the delivery layer depends on.
type AuthUsecase interface {
	// Register creates a new user and their first session atomically.
	// When it fails, no user row and no session row exist.
	Register(ctx context.Context, input *RegisterInput) (*AuthOutput, error)

	// Login verifies a credential pair and issues a fresh session. All
	// verification failures surface as the same ErrInvalidCredentials
	// with comparable timing, whether the email was unknown or the
	// password wrong.
	Login(ctx context.Context, input *LoginInput) (*AuthOutput, error)

	// Logout ends the session identified by token.
	Logout(ctx context.Context, token string) error
}
