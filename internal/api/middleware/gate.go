package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/ghorer-khabar/mealclub/internal/api/metrics"
	"github.com/ghorer-khabar/mealclub/internal/core/domain"
)

// Authenticator resolves a raw token into the current member record.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Member, error)
}

// Capability is what a route demands of the caller.
type Capability struct {
	role string
}

// Authenticated admits any member with a valid session.
func Authenticated() Capability { return Capability{} }

// RequireRole admits members holding role. Administrators hold every role.
func RequireRole(role string) Capability { return Capability{role: role} }

// Allows reports whether a member with role satisfies the capability.
func (c Capability) Allows(role string) bool {
	if c.role == "" {
		return true
	}
	return role == c.role || role == domain.RoleAdmin
}

func (c Capability) String() string {
	if c.role == "" {
		return "authenticated"
	}
	return "role=" + c.role
}

// RequireCapability authenticates the request against the credential store
// and checks the member's current role, not the role in the token. On
// success the member is attached to the echo context and to the request
// context.
func RequireCapability(authn Authenticator, capability Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := requestToken(c)
			if !ok {
				metrics.GateDecisionsTotal.WithLabelValues("unauthenticated").Inc()
				return domain.ErrUnauthenticated
			}

			member, err := authn.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					metrics.GateDecisionsTotal.WithLabelValues("unauthenticated").Inc()
				}
				return err
			}

			if !capability.Allows(member.Role) {
				metrics.GateDecisionsTotal.WithLabelValues("forbidden").Inc()
				return fmt.Errorf("%w. %s role required", domain.ErrForbidden, capability.role)
			}

			metrics.GateDecisionsTotal.WithLabelValues("allow").Inc()
			SetCurrentMember(c, member)
			return next(c)
		}
	}
}
