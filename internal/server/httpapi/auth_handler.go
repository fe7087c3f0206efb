package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/llave/internal/common"
	"github.com/dmitrijs2005/llave/internal/server/auth"
	"github.com/dmitrijs2005/llave/internal/server/services"
	"github.com/dmitrijs2005/llave/internal/server/session"
	"github.com/dmitrijs2005/llave/internal/server/users"
)

type AuthHandler struct {
	svc       *services.AuthService
	transport *session.Transport
}

func NewAuthHandler(svc *services.AuthService, transport *session.Transport) *AuthHandler {
	return &AuthHandler{svc: svc, transport: transport}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyRequest struct {
	Code   string `json:"code"`
	Enable bool   `json:"enable"`
}

type userPayload struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	TwoFactorEnabled bool   `json:"twoFactorEnabled"`
}

func toUserPayload(u *users.User) userPayload {
	return userPayload{ID: u.ID, Email: u.Email, TwoFactorEnabled: u.TwoFactorEnabled}
}

// authenticate resolves the session token on the request. Missing and
// invalid tokens are reported identically.
func (h *AuthHandler) authenticate(c echo.Context) (*auth.Claims, error) {
	token, ok := h.transport.Extract(c.Request())
	if !ok {
		return nil, common.ErrUnauthenticated
	}
	return h.svc.Authenticate(token)
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	user, token, err := h.svc.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.SetCookie(h.transport.Cookie(token))
	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"user":    toUserPayload(user),
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	user, token, requiresTwoFactor, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.SetCookie(h.transport.Cookie(token))

	if requiresTwoFactor {
		return c.JSON(http.StatusOK, map[string]any{
			"success":           true,
			"requiresTwoFactor": true,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"user":    toUserPayload(user),
	})
}

func (h *AuthHandler) SetupTwoFactor(c echo.Context) error {
	claims, err := h.authenticate(c)
	if err != nil {
		return err
	}

	setup, err := h.svc.SetupTwoFactor(c.Request().Context(), claims.UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"secret":            setup.Secret,
		"qrCodeUrl":         setup.QRCode,
		"alreadyConfigured": setup.AlreadyConfigured,
	})
}

func (h *AuthHandler) VerifyTwoFactor(c echo.Context) error {
	claims, err := h.authenticate(c)
	if err != nil {
		return err
	}

	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "two-factor code is required")
	}

	user, token, err := h.svc.VerifyTwoFactor(c.Request().Context(), claims.UserID, req.Code, req.Enable)
	if err != nil {
		return err
	}

	// the full token supersedes the partial one
	c.SetCookie(h.transport.Cookie(token))
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"user":    toUserPayload(user),
	})
}

func (h *AuthHandler) Me(c echo.Context) error {
	claims, err := h.authenticate(c)
	if err != nil {
		return err
	}

	user, err := h.svc.WhoAmI(c.Request().Context(), claims.UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user":              toUserPayload(user),
		"twoFactorVerified": claims.TwoFactorVerified,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.transport.ClearCookie())
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (h *AuthHandler) Health(c echo.Context) error {
	version, err := h.svc.Health(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"details": map[string]string{"postgresVersion": version},
	})
}

func (h *AuthHandler) Init(c echo.Context) error {
	if err := h.svc.EnsureStore(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}
