package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ghorer-khabar/mealclub/internal/api/middleware"
	"github.com/ghorer-khabar/mealclub/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	secure      bool
}

// NewAuthHandler builds the auth endpoints. secure marks the session cookie
// Secure, which production deployments behind TLS need.
func NewAuthHandler(authService ports.AuthService, secure bool) *AuthHandler {
	return &AuthHandler{authService: authService, secure: secure}
}

// Register creates a member account and starts a session.
//
// @Summary      Register a new member
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Credentials"
// @Success      201   {object}  Envelope
// @Failure      400   {object}  Envelope
// @Failure      429   {object}  Envelope
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sess, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	c.SetCookie(middleware.SessionCookie(sess.Token, h.secure))
	return respond(c, http.StatusCreated, "User registered successfully", map[string]any{
		"user": toUserResponse(sess.Member),
	})
}

// Login verifies credentials and starts a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  Envelope
// @Failure      400   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Failure      429   {object}  Envelope
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sess, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	c.SetCookie(middleware.SessionCookie(sess.Token, h.secure))
	return respond(c, http.StatusOK, "Login successful", map[string]any{
		"user": toUserResponse(sess.Member),
	})
}

// Logout clears the session cookie. The token itself stays valid until it
// expires.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  Envelope
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(middleware.ClearedSessionCookie(h.secure))
	return respond(c, http.StatusOK, "Logged out successfully", nil)
}

// Me returns the member resolved by the gate.
//
// @Summary      Current member
// @Tags         auth
// @Produce      json
// @Success      200  {object}  Envelope
// @Failure      401  {object}  Envelope
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	m, err := currentMember(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", map[string]any{"user": toUserResponse(m)})
}
