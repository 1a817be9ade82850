package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ghorer-khabar/mealclub/internal/api/middleware"
)

// PageHandler renders the page shells the route policy guards. The body
// only names the page and, when the request carried valid claims, who is
// looking at it.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

type pageResponse struct {
	Page string            `json:"page"`
	User *identityResponse `json:"user,omitempty"`
}

func (h *PageHandler) Show(c echo.Context) error {
	page := strings.Trim(c.Request().URL.Path, "/")
	if page == "" {
		page = "home"
	}

	resp := pageResponse{Page: page}
	if claims, ok := middleware.CurrentClaims(c); ok {
		resp.User = &identityResponse{ID: claims.Subject, Username: claims.Username, Role: claims.Role}
	}
	return c.JSON(http.StatusOK, resp)
}
