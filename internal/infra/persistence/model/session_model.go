package model

import "time"

// SessionModel mirrors the 'sessions' table. The token column carries a
// uniqueness constraint as the backstop against the (negligible) chance of
// a random token collision.
type SessionModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	UserID    int64  `gorm:"not null;index"`
	Token     string `gorm:"type:varchar(64);uniqueIndex;not null"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (SessionModel) TableName() string {
	return "sessions"
}
