package impl

import (
	"context"
	"log/slog"

	"sharp/config"
	deliverycontext "sharp/internal/delivery/context"
	"sharp/internal/domain/repository"
	"sharp/internal/errors"
	"sharp/internal/usecase"

	"go.uber.org/fx"
)

// gatewayService implements the GatewayUsecase interface.
type gatewayService struct {
	sessionRepo repository.SessionRepository
	exemptPaths map[string]struct{}
	logger      *slog.Logger
}

// GatewayServiceParams holds dependencies for gatewayService, injected by Fx.
type GatewayServiceParams struct {
	fx.In

	SessionRepo repository.SessionRepository
	Config      *config.Config
	Logger      *slog.Logger
}

// NewGatewayService is the constructor for gatewayService.
func NewGatewayService(params GatewayServiceParams) usecase.GatewayUsecase {
	exempt := make(map[string]struct{}, len(params.Config.Gateway.ExemptPaths))
	for _, path := range params.Config.Gateway.ExemptPaths {
		exempt[path] = struct{}{}
	}

	return &gatewayService{
		sessionRepo: params.SessionRepo,
		exemptPaths: exempt,
		logger:      params.Logger,
	}
}

func (srv *gatewayService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Decide returns the verdict for one request. The only information used is
// the exact request path and the presented token; no header or method ever
// influences the outcome.
func (srv *gatewayService) Decide(ctx context.Context, path, token string) (usecase.Decision, error) {
	if _, ok := srv.exemptPaths[path]; ok {
		return usecase.DecisionForward, nil
	}

	if token == "" {
		return usecase.DecisionDeny, nil
	}

	_, err := srv.sessionRepo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return usecase.DecisionDeny, nil
		}

		// A store failure is not a verdict. The caller fails closed.
		srv.log(ctx).Error("Session lookup failed", slog.Any("error", err))

		return usecase.DecisionDeny, errors.Wrap(err, "failed to look up session")
	}

	return usecase.DecisionForward, nil
}
