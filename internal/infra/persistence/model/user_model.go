// Package model holds the GORM persistence models mirroring the gateway's
// two tables. Mapping between these and the domain entities happens in the
// repository implementations.
package model

import "time"

// UserModel mirrors the 'users' table. IDs are integer autoincrement keys
// assigned by the database.
type UserModel struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"`
	Email        string  `gorm:"type:varchar(255);uniqueIndex;not null"`
	Username     *string `gorm:"type:varchar(100)"`
	PasswordHash string  `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
