package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ProtectedHandler answers the capability probes. Each route is mounted
// behind the gate it reports on.
type ProtectedHandler struct{}

func NewProtectedHandler() *ProtectedHandler {
	return &ProtectedHandler{}
}

// User handles GET /api/protected/user.
func (h *ProtectedHandler) User(c echo.Context) error {
	return h.granted(c, "Access granted to user route")
}

// Admin handles GET /api/protected/admin.
func (h *ProtectedHandler) Admin(c echo.Context) error {
	return h.granted(c, "Access granted to admin route")
}

func (h *ProtectedHandler) granted(c echo.Context, msg string) error {
	m, err := currentMember(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, msg, map[string]any{
		"user": identityResponse{ID: m.ID, Username: m.Username, Role: m.Role},
	})
}
