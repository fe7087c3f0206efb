// Package httpapi exposes the authentication operations over HTTP. It is
// deliberately thin: parsing, cookie handling and status mapping live
// here, every decision lives in the services package.
package httpapi

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/dmitrijs2005/llave/internal/logging"
	"github.com/dmitrijs2005/llave/internal/server/services"
	"github.com/dmitrijs2005/llave/internal/server/session"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc *services.AuthService, transport *session.Transport, log logging.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log.With("module", "httpapi"))

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())

	h := NewAuthHandler(svc, transport)

	e.POST("/api/auth/register", h.Register)
	e.POST("/api/auth/login", h.Login)
	e.GET("/api/auth/2fa/setup", h.SetupTwoFactor)
	e.POST("/api/auth/2fa/verify", h.VerifyTwoFactor)
	e.GET("/api/auth/me", h.Me)
	e.POST("/api/auth/logout", h.Logout)

	e.GET("/api/health", h.Health)
	e.POST("/api/init", h.Init)

	return e
}
