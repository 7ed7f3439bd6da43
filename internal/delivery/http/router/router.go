// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"sharp/internal/delivery/http/middleware"
	"sharp/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler         *handler.AuthHandler
	RequestIDMiddleware *middleware.RequestIDMiddleware
	LoggerMiddleware    *middleware.LoggerMiddleware
	GatewayMiddleware   *middleware.GatewayMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler         *handler.AuthHandler
	requestIDMiddleware *middleware.RequestIDMiddleware
	loggerMiddleware    *middleware.LoggerMiddleware
	gatewayMiddleware   *middleware.GatewayMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:         params.AuthHandler,
		requestIDMiddleware: params.RequestIDMiddleware,
		loggerMiddleware:    params.LoggerMiddleware,
		gatewayMiddleware:   params.GatewayMiddleware,
	}
}

// RegisterRoutes sets up the middleware chain and the authentication
// surface. The gateway middleware runs on every request; the routes below
// are only ever reached on a deny verdict.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.Use(r.requestIDMiddleware.Process)
	e.Use(r.loggerMiddleware.Handle)
	e.Use(r.gatewayMiddleware.Process)

	e.GET("/", r.authHandler.Root)
	e.GET("/login", r.authHandler.LoginPage)
	e.POST("/login", r.authHandler.Login)
	e.GET("/register", r.authHandler.RegisterPage)
	e.POST("/register", r.authHandler.Register)
	e.GET("/reset-password", r.authHandler.ResetPasswordPage)
	e.POST("/logout", r.authHandler.Logout)
	e.GET("/sharp/style.css", r.authHandler.Stylesheet)

	e.RouteNotFound("/*", r.authHandler.Fallback)
}
