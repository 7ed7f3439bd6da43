package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail("USER@Example.COM"))
	assert.Equal(t, "user@example.com", NormalizeEmail("  user@example.com "))
	assert.Equal(t, "user@example.com", NormalizeEmail("user@example.com"))
}

func TestSession_ExpiredAt(t *testing.T) {
	now := time.Now()
	session := &Session{CreatedAt: now.Add(-MaxSessionAge)}

	// Exactly at the limit is still live; one instant past it is not.
	assert.False(t, session.ExpiredAt(now))
	assert.True(t, session.ExpiredAt(now.Add(time.Nanosecond)))
}
