package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/ghorer-khabar/mealclub/internal/api/middleware"
	"github.com/ghorer-khabar/mealclub/internal/core/domain"
)

// currentMember returns the member the gate attached. Handlers mounted
// without the gate get ErrUnauthenticated instead of a nil member.
func currentMember(c echo.Context) (*domain.Member, error) {
	m, ok := middleware.CurrentMember(c)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return m, nil
}

// bindAndValidate decodes the request body into req and runs the
// registered validator. Decode failures surface as validation errors.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.Invalid("invalid request payload")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}
