package sqldb

import (
	"strings"

	"sharp/internal/errors"

	"gorm.io/gorm"
)

// isUniqueConstraintViolation reports whether err was caused by a violated
// uniqueness constraint. GORM's TranslateError covers both backends, the
// string checks are a fallback for drivers that slip through untranslated.
func isUniqueConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") || // postgres
		strings.Contains(msg, "sqlstate 23505") // postgres unique_violation
}

func isNotNullConstraintViolation(err error) bool {
	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "not null") ||
		strings.Contains(msg, "null value") ||
		strings.Contains(msg, "sqlstate 23502")
}
