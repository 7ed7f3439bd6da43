// Package handler contains the HTTP handlers of the authentication surface.
package handler

import (
	"log/slog"
	"net/http"
	"os"

	"sharp/config"
	deliverycontext "sharp/internal/delivery/context"
	"sharp/internal/delivery/http/cookie"
	"sharp/internal/delivery/http/templates"
	domainerrors "sharp/internal/domain/errors"
	"sharp/internal/errors"
	"sharp/internal/usecase"

	"github.com/labstack/echo/v4"
)

// AuthHandler serves the login, registration and reset-password pages and
// their form submissions.
type AuthHandler struct {
	auth        usecase.AuthUsecase
	redirectURL string
	customCSS   string
	logger      *slog.Logger
}

// pageData is what every template receives.
type pageData struct {
	Flash string
}

type loginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

type registerForm struct {
	Email          string `form:"email" validate:"required,email"`
	Username       string `form:"username"`
	Password       string `form:"password" validate:"required"`
	PasswordRepeat string `form:"repeat_password" validate:"required"`
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(auth usecase.AuthUsecase, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:        auth,
		redirectURL: cfg.Auth.RedirectURL,
		customCSS:   cfg.Gateway.CustomCSSPath,
		logger:      logger,
	}
}

// Root sends the bare origin to the login page.
func (h *AuthHandler) Root(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, "/login")
}

// Fallback catches every unmatched path for an unauthenticated caller. It
// reveals nothing about the upstream's routes; everything lands on /.
func (h *AuthHandler) Fallback(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, "/")
}

// LoginPage renders the login form.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", pageData{Flash: cookie.TakeFlash(c)})
}

// Login handles the login form submission.
func (h *AuthHandler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return h.redirectWithFlash(c, "/login", domainerrors.ErrValidationFailed.Message())
	}
	if err := c.Validate(&form); err != nil {
		return h.redirectWithFlash(c, "/login", domainerrors.ErrValidationFailed.Message())
	}

	output, err := h.auth.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		return h.handleAuthError(c, "/login", err)
	}

	c.SetCookie(cookie.NewSession(output.Session.Token))

	return c.Redirect(http.StatusSeeOther, h.redirectURL)
}

// RegisterPage renders the registration form.
func (h *AuthHandler) RegisterPage(c echo.Context) error {
	return c.Render(http.StatusOK, "register.html", pageData{Flash: cookie.TakeFlash(c)})
}

// Register handles the registration form submission.
func (h *AuthHandler) Register(c echo.Context) error {
	var form registerForm
	if err := c.Bind(&form); err != nil {
		return h.redirectWithFlash(c, "/register", domainerrors.ErrValidationFailed.Message())
	}
	if err := c.Validate(&form); err != nil {
		return h.redirectWithFlash(c, "/register", domainerrors.ErrValidationFailed.Message())
	}

	output, err := h.auth.Register(c.Request().Context(), &usecase.RegisterInput{
		Email:          form.Email,
		Username:       form.Username,
		Password:       form.Password,
		PasswordRepeat: form.PasswordRepeat,
	})
	if err != nil {
		return h.handleAuthError(c, "/register", err)
	}

	c.SetCookie(cookie.NewSession(output.Session.Token))

	return c.Redirect(http.StatusSeeOther, h.redirectURL)
}

// ResetPasswordPage renders the reset-password placeholder.
func (h *AuthHandler) ResetPasswordPage(c echo.Context) error {
	return c.Render(http.StatusOK, "reset_password.html", pageData{Flash: cookie.TakeFlash(c)})
}

// Logout ends the presented session and clears the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	if token := cookie.SessionToken(c); token != "" {
		if err := h.auth.Logout(c.Request().Context(), token); err != nil {
			return err
		}
	}

	c.SetCookie(cookie.ExpireSession())

	return c.Redirect(http.StatusSeeOther, "/login")
}

// Stylesheet serves the page stylesheet, either the configured custom file
// or the embedded default.
func (h *AuthHandler) Stylesheet(c echo.Context) error {
	if h.customCSS != "" {
		content, err := os.ReadFile(h.customCSS)
		if err == nil {
			return c.Blob(http.StatusOK, "text/css; charset=utf-8", content)
		}
		deliverycontext.GetLoggerOrDefault(c.Request().Context(), h.logger).Warn("Failed to read custom stylesheet",
			slog.String("path", h.customCSS),
			slog.Any("error", err),
		)
	}

	return c.Blob(http.StatusOK, "text/css; charset=utf-8", templates.DefaultStylesheet())
}

// handleAuthError turns an expected authentication failure into a flash
// and a redirect back to the form. Anything else bubbles up to the error
// handler as a server fault.
func (h *AuthHandler) handleAuthError(c echo.Context, formPath string, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) && appErr.HTTPCode() < http.StatusInternalServerError {
		return h.redirectWithFlash(c, formPath, appErr.Message())
	}

	return errors.WithStack(err)
}

func (h *AuthHandler) redirectWithFlash(c echo.Context, path, message string) error {
	cookie.SetFlash(c, message)

	return c.Redirect(http.StatusSeeOther, path)
}
