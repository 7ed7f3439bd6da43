// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers
// and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"sharp/internal/domain/entity"
)

// Domain-specific errors for session persistence.
var (
	// ErrSessionNotFound is returned when a session token resolves to no
	// row, or to a row older than the maximum session lifetime. Callers
	// cannot tell the two cases apart; an expired session is absent.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTokenConflict is returned when a session token collides with an
	// existing one. Collisions are astronomically unlikely; the caller
	// regenerates the token and retries once.
	ErrTokenConflict = errors.New("session token already exists")
)

// SessionRepository defines the standard operations for session persistence.
type SessionRepository interface {
	// Create persists a new session. A violated token uniqueness
	// constraint surfaces as ErrTokenConflict. On success the entity's
	// ID and CreatedAt are populated.
	Create(ctx context.Context, session *entity.Session) error

	// FindByToken retrieves a live session by its token. Expired rows are
	// reported as ErrSessionNotFound and are not eagerly deleted; garbage
	// collection is a separate concern.
	FindByToken(ctx context.Context, token string) (*entity.Session, error)

	// DeleteByToken removes a session, ending it. Logout is not wired to
	// a route by the gateway; this is the extension point for it.
	DeleteByToken(ctx context.Context, token string) error
}
