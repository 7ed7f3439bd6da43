// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers
// and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"sharp/internal/domain/entity"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
// Absence of a user is an expected outcome, not a backend failure.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the standard operations for user persistence.
// The application layer depends on this interface, never on the concrete
// implementation or a raw database handle.
type UserRepository interface {
	// Create persists a new user. The email is stored lower-cased; a
	// violated email uniqueness constraint surfaces as a conflict error.
	// On success the entity's ID and CreatedAt are populated.
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail retrieves a single user by email, compared
	// case-insensitively. Returns ErrUserNotFound when no match exists.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID retrieves a single user by their store-assigned ID.
	FindByID(ctx context.Context, id int64) (*entity.User, error)
}
