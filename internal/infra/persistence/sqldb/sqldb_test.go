package sqldb

import (
	"context"
	"testing"
	"time"

	"sharp/internal/domain/entity"
	domainerrors "sharp/internal/domain/errors"
	"sharp/internal/domain/repository"
	"sharp/internal/errors"
	"sharp/internal/infra/persistence/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every connection to :memory: is its own database; pin the pool to
	// one so transactions see the same schema.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Setup(db))

	return db
}

func TestSetup_Idempotent(t *testing.T) {
	db := openTestDB(t)

	// Running schema setup against an initialized database is a no-op.
	require.NoError(t, Setup(db))
	require.NoError(t, Setup(db))

	assert.True(t, db.Migrator().HasTable(&model.UserModel{}))
	assert.True(t, db.Migrator().HasTable(&model.SessionModel{}))
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	username := "alice"
	user := &entity.User{
		Email:        "Alice@Example.COM",
		Username:     &username,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$ZGlnZXN0",
	}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, "alice@example.com", user.Email)

	found, err := repo.FindByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	require.NotNil(t, found.Username)
	assert.Equal(t, "alice", *found.Username)
	assert.Equal(t, user.PasswordHash, found.PasswordHash)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, found.Email, byID.Email)
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.User{Email: "bob@example.com", PasswordHash: "h"}))

	// The same address in different case hits the same unique index.
	err := repo.Create(ctx, &entity.User{Email: "BOB@example.com", PasswordHash: "h"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrEmailTaken)
}

func TestSessionRepository_CreateAndFind(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	session := &entity.Session{UserID: 1, Token: "live-token"}
	require.NoError(t, repo.Create(ctx, session))
	assert.NotZero(t, session.ID)
	assert.False(t, session.CreatedAt.IsZero())

	found, err := repo.FindByToken(ctx, "live-token")
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.UserID)
}

func TestSessionRepository_TokenConflict(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Session{UserID: 1, Token: "token"}))

	err := repo.Create(ctx, &entity.Session{UserID: 2, Token: "token"})
	assert.ErrorIs(t, err, repository.ErrTokenConflict)
}

func TestSessionRepository_FindByToken_Expired(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	stale := &model.SessionModel{
		UserID:    1,
		Token:     "stale-token",
		CreatedAt: time.Now().Add(-entity.MaxSessionAge - time.Minute),
	}
	require.NoError(t, db.Create(stale).Error)

	// The row exists but is past its lifetime; the repository reports it
	// as absent rather than expired.
	_, err := repo.FindByToken(ctx, "stale-token")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)

	var count int64
	require.NoError(t, db.Model(&model.SessionModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSessionRepository_FindByToken_ExactlyMaxAgeIsLive(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().Truncate(time.Second)
	repo := &sessionRepository{db: db, now: func() time.Time { return now }}
	ctx := context.Background()

	boundary := &model.SessionModel{
		UserID:    1,
		Token:     "boundary-token",
		CreatedAt: now.Add(-entity.MaxSessionAge),
	}
	require.NoError(t, db.Create(boundary).Error)

	// A session aged exactly MaxSessionAge is still live, matching the
	// entity's ExpiredAt predicate; one instant older and it is gone.
	found, err := repo.FindByToken(ctx, "boundary-token")
	require.NoError(t, err)
	assert.False(t, found.ExpiredAt(now))

	repo.now = func() time.Time { return now.Add(time.Second) }
	_, err = repo.FindByToken(ctx, "boundary-token")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestSessionRepository_FindByToken_Unknown(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionRepository(db)

	_, err := repo.FindByToken(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestSessionRepository_DeleteByToken(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Session{UserID: 1, Token: "token"}))
	require.NoError(t, repo.DeleteByToken(ctx, "token"))

	_, err := repo.FindByToken(ctx, "token")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)

	// Deleting an absent token is not an error.
	require.NoError(t, repo.DeleteByToken(ctx, "token"))
}

func TestTransactionManager_CommitsOnSuccess(t *testing.T) {
	db := openTestDB(t)
	tm := NewTransactionManager(db)
	ctx := context.Background()

	err := tm.Execute(ctx, func(factory repository.RepositoryFactory) error {
		user := &entity.User{Email: "carol@example.com", PasswordHash: "h"}
		if err := factory.UserRepo().Create(ctx, user); err != nil {
			return err
		}

		return factory.SessionRepo().Create(ctx, &entity.Session{UserID: user.ID, Token: "token"})
	})
	require.NoError(t, err)

	_, err = NewUserRepository(db).FindByEmail(ctx, "carol@example.com")
	require.NoError(t, err)
	_, err = NewSessionRepository(db).FindByToken(ctx, "token")
	require.NoError(t, err)
}

func TestTransactionManager_TokenConflictDoesNotPoisonTransaction(t *testing.T) {
	db := openTestDB(t)
	tm := NewTransactionManager(db)
	ctx := context.Background()

	require.NoError(t, NewSessionRepository(db).Create(ctx, &entity.Session{UserID: 1, Token: "taken"}))

	// A unique violation inside the transaction rolls back to a savepoint,
	// so the retry with a fresh token and the rest of the work still commit.
	err := tm.Execute(ctx, func(factory repository.RepositoryFactory) error {
		user := &entity.User{Email: "frank@example.com", PasswordHash: "h"}
		if err := factory.UserRepo().Create(ctx, user); err != nil {
			return err
		}

		err := factory.SessionRepo().Create(ctx, &entity.Session{UserID: user.ID, Token: "taken"})
		if !errors.Is(err, repository.ErrTokenConflict) {
			return err
		}

		return factory.SessionRepo().Create(ctx, &entity.Session{UserID: user.ID, Token: "fresh"})
	})
	require.NoError(t, err)

	_, err = NewUserRepository(db).FindByEmail(ctx, "frank@example.com")
	require.NoError(t, err)
	_, err = NewSessionRepository(db).FindByToken(ctx, "fresh")
	require.NoError(t, err)
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	tm := NewTransactionManager(db)
	ctx := context.Background()

	err := tm.Execute(ctx, func(factory repository.RepositoryFactory) error {
		user := &entity.User{Email: "dave@example.com", PasswordHash: "h"}
		if err := factory.UserRepo().Create(ctx, user); err != nil {
			return err
		}

		return domainerrors.ErrInternalError
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInternalError)

	// The user created inside the failed transaction must not exist.
	_, err = NewUserRepository(db).FindByEmail(ctx, "dave@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestTransactionManager_RollsBackOnPanic(t *testing.T) {
	db := openTestDB(t)
	tm := NewTransactionManager(db)
	ctx := context.Background()

	require.Panics(t, func() {
		_ = tm.Execute(ctx, func(factory repository.RepositoryFactory) error {
			user := &entity.User{Email: "eve@example.com", PasswordHash: "h"}
			if err := factory.UserRepo().Create(ctx, user); err != nil {
				return err
			}

			panic("boom")
		})
	})

	_, err := NewUserRepository(db).FindByEmail(ctx, "eve@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}
