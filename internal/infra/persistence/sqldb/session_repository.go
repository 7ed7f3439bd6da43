package sqldb

import (
	"context"
	"time"

	"sharp/internal/domain/entity"
	domainerrors "sharp/internal/domain/errors"
	"sharp/internal/domain/repository"
	"sharp/internal/errors"
	"sharp/internal/infra/persistence/model"

	"gorm.io/gorm"
)

// sessionRepository implements the domain.SessionRepository interface using GORM.
type sessionRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSessionRepository is the constructor for sessionRepository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sessionRepository{db: db, now: time.Now}
}

// Create persists a new session. A collision on the token's unique index
// surfaces as ErrTokenConflict so the caller can regenerate and retry. The
// insert runs in a nested transaction: inside an enclosing transaction that
// is a savepoint, so on postgres a unique violation does not abort the
// outer transaction and the retry stays valid.
func (repo *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	sessionM := fromSessionDomain(session)

	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(sessionM).Error
	})
	if err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrTokenConflict
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create session")
	}

	session.ID = sessionM.ID
	session.CreatedAt = sessionM.CreatedAt

	return nil
}

// FindByToken retrieves a live session by its token. Expiry is enforced
// here, in the query itself, so no caller can observe a session older than
// MaxSessionAge regardless of what rows remain in the table.
func (repo *sessionRepository) FindByToken(ctx context.Context, token string) (*entity.Session, error) {
	cutoff := repo.now().Add(-entity.MaxSessionAge)

	var sessionM model.SessionModel
	err := repo.db.WithContext(ctx).
		Where("token = ? AND created_at >= ?", token, cutoff).
		First(&sessionM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}

		return nil, errors.Wrap(err, "failed to find session by token")
	}

	return toSessionDomain(&sessionM), nil
}

// DeleteByToken removes a session row. Deleting an absent token is not an
// error; the session is gone either way.
func (repo *sessionRepository) DeleteByToken(ctx context.Context, token string) error {
	err := repo.db.WithContext(ctx).
		Where("token = ?", token).
		Delete(&model.SessionModel{}).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete session")
	}

	return nil
}

// --- Mapper Functions ---

func toSessionDomain(data *model.SessionModel) *entity.Session {
	if data == nil {
		return nil
	}

	return &entity.Session{
		ID:        data.ID,
		UserID:    data.UserID,
		Token:     data.Token,
		CreatedAt: data.CreatedAt,
	}
}

func fromSessionDomain(data *entity.Session) *model.SessionModel {
	if data == nil {
		return nil
	}

	return &model.SessionModel{
		ID:     data.ID,
		UserID: data.UserID,
		Token:  data.Token,
	}
}
