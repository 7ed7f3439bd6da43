package sqldb

import (
	"sharp/internal/errors"
	"sharp/internal/infra/persistence/model"

	"gorm.io/gorm"
)

// Setup creates or updates the users and sessions tables. AutoMigrate is
// idempotent, so running it against an already-initialized database is a
// no-op. It runs once at startup, never on a request path.
func Setup(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.UserModel{}, &model.SessionModel{}); err != nil {
		return errors.Wrap(err, "failed to migrate schema")
	}

	return nil
}
