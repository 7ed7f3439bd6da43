package middleware

import (
	"log/slog"
	"net/http"

	domainerrors "sharp/internal/domain/errors"
	"sharp/internal/errors"

	"github.com/labstack/echo/v4"
)

// ErrorMiddleware is the backstop for errors no handler translated. The
// auth surface talks to browsers, so responses are plain text rather than
// JSON, and the generic message never includes backend detail.
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler.
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		_ = c.String(appErr.HTTPCode(), appErr.Message()+"\n")

		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		_ = c.String(httpErr.Code, http.StatusText(httpErr.Code)+"\n")

		return
	}

	m.logger.Error("Unhandled error",
		slog.Any("error", err),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)

	_ = c.String(http.StatusInternalServerError, "internal error\n")
}
