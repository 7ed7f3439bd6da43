// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

	deliverycontext "sharp/internal/delivery/context"
	"sharp/internal/domain/entity"
	domainerrors "sharp/internal/domain/errors"
	"sharp/internal/domain/repository"
	"sharp/internal/domain/service"
	"sharp/internal/errors"
	"sharp/internal/usecase"

	"go.uber.org/fx"
)

// minPasswordLength is measured in bytes of the submitted password.
const minPasswordLength = 8

// authService implements the AuthUsecase interface.
type authService struct {
	txManager   repository.TransactionManager
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	hasher      service.PasswordHasher
	tokenSource service.TokenSource
	logger      *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	UserRepo    repository.UserRepository
	SessionRepo repository.SessionRepository
	Hasher      service.PasswordHasher
	TokenSource service.TokenSource
	Logger      *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:   params.TxManager,
		userRepo:    params.UserRepo,
		sessionRepo: params.SessionRepo,
		hasher:      params.Hasher,
		tokenSource: params.TokenSource,
		logger:      params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register orchestrates the complete registration process. Validation and
// hashing happen before the transaction; the user row and the first
// session row are created inside one transaction so a failure of either
// leaves no trace of the other.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.AuthOutput, error) {
	email := entity.NormalizeEmail(input.Email)
	srv.log(ctx).Info("Starting registration", slog.String("email", email))

	if len(input.Password) < minPasswordLength {
		return nil, domainerrors.ErrPasswordTooShort
	}
	if input.Password != input.PasswordRepeat {
		return nil, domainerrors.ErrPasswordMismatch
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash password during registration")
	}

	newUser := &entity.User{
		Email:        email,
		Username:     optionalUsername(input.Username),
		PasswordHash: hashedPassword,
	}

	var newSession *entity.Session
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.UserRepo().Create(ctx, newUser); err != nil {
			return err
		}

		created, err := srv.issueSession(ctx, repoFactory.SessionRepo(), newUser.ID)
		if err != nil {
			return err
		}
		newSession = created

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Registration failed", slog.String("email", email), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Registration completed", slog.Int64("userID", newUser.ID))

	return &usecase.AuthOutput{User: newUser, Session: newSession}, nil
}

// Login verifies the credential pair and issues a fresh session. The two
// rejection paths are deliberately symmetric: an unknown email burns the
// same hashing cost as a known email with a wrong password, and both
// produce the identical ErrInvalidCredentials.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	email := entity.NormalizeEmail(input.Email)
	srv.log(ctx).Debug("Starting login", slog.String("email", email))

	user, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.hasher.DummyCheck(input.Password)
			srv.log(ctx).Warn("Login failed", slog.String("email", email))

			return nil, domainerrors.ErrInvalidCredentials
		}
		srv.log(ctx).Error("Failed to load user during login", slog.Any("error", err))

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to load user during login")
	}

	ok, err := srv.hasher.Check(input.Password, user.PasswordHash)
	if err != nil {
		// A malformed stored hash is a backend fault, not a wrong password.
		srv.log(ctx).Error("Password check failed", slog.Int64("userID", user.ID), slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage("failed to verify password")
	}
	if !ok {
		srv.log(ctx).Warn("Login failed", slog.String("email", email))

		return nil, domainerrors.ErrInvalidCredentials
	}

	session, err := srv.issueSession(ctx, srv.sessionRepo, user.ID)
	if err != nil {
		srv.log(ctx).Error("Failed to issue session during login", slog.Int64("userID", user.ID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("User logged in", slog.Int64("userID", user.ID))

	return &usecase.AuthOutput{User: user, Session: session}, nil
}

// Logout ends the session identified by token. An already-absent token is
// treated as success.
func (srv *authService) Logout(ctx context.Context, token string) error {
	if err := srv.sessionRepo.DeleteByToken(ctx, token); err != nil {
		srv.log(ctx).Error("Failed to delete session", slog.Any("error", err))

		return errors.Wrap(err, "failed to delete session")
	}

	return nil
}

// issueSession generates a token and persists the session row through the
// given repository, which may be transaction-bound. A token collision is
// retried exactly once with a freshly generated token; a second collision
// indicates a broken random source and is surfaced as-is.
func (srv *authService) issueSession(ctx context.Context, sessionRepo repository.SessionRepository, userID int64) (*entity.Session, error) {
	for attempt := 0; attempt < 2; attempt++ {
		token, err := srv.tokenSource.NewToken()
		if err != nil {
			return nil, domainerrors.NewDatabaseExecuteError(err, "failed to generate session token")
		}

		session := &entity.Session{UserID: userID, Token: token}
		err = sessionRepo.Create(ctx, session)
		if err == nil {
			return session, nil
		}
		if errors.Is(err, repository.ErrTokenConflict) && attempt == 0 {
			srv.log(ctx).Warn("Session token collision, regenerating", slog.Int64("userID", userID))

			continue
		}

		return nil, err
	}

	return nil, domainerrors.NewDatabaseExecuteError(repository.ErrTokenConflict, "session token collided twice")
}

func optionalUsername(username string) *string {
	if username == "" {
		return nil
	}

	return &username
}
