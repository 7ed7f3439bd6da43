package middleware

import (
	"log/slog"
	"net/http"

	deliverycontext "sharp/internal/delivery/context"
	"sharp/internal/delivery/http/cookie"
	"sharp/internal/delivery/http/proxy"
	"sharp/internal/usecase"

	"github.com/labstack/echo/v4"
)

// GatewayMiddleware sits in front of every route and dispatches on the
// gateway verdict: forward to the upstream, or fall through to the
// authentication surface registered on the router.
type GatewayMiddleware struct {
	gateway   usecase.GatewayUsecase
	forwarder *proxy.Forwarder
	logger    *slog.Logger
}

// NewGatewayMiddleware creates the dispatch middleware.
func NewGatewayMiddleware(gateway usecase.GatewayUsecase, forwarder *proxy.Forwarder, logger *slog.Logger) *GatewayMiddleware {
	return &GatewayMiddleware{
		gateway:   gateway,
		forwarder: forwarder,
		logger:    logger,
	}
}

// Process resolves the verdict for the request. A verdict error means the
// gateway cannot know whether the caller is authenticated; it answers 500
// and never touches the upstream.
func (m *GatewayMiddleware) Process(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		token := cookie.SessionToken(c)

		decision, err := m.gateway.Decide(ctx, c.Request().URL.Path, token)
		if err != nil {
			deliverycontext.GetLoggerOrDefault(ctx, m.logger).Error("Gateway decision failed",
				slog.String("path", c.Request().URL.Path),
				slog.Any("error", err),
			)

			return c.String(http.StatusInternalServerError, "internal error\n")
		}

		if decision == usecase.DecisionForward {
			return m.forwarder.Handle(c)
		}

		return next(c)
	}
}
