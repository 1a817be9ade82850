package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ghorer-khabar/mealclub/internal/api/metrics"
	"github.com/ghorer-khabar/mealclub/internal/core/domain"
	"github.com/ghorer-khabar/mealclub/internal/core/ports"
)

// Headers the route policy sets on responses to requests with valid claims.
const (
	HeaderUserID       = "X-User-Id"
	HeaderUserUsername = "X-User-Username"
	HeaderUserRole     = "X-User-Role"
)

// RoutePolicyConfig configures the browser-navigation policy.
type RoutePolicyConfig struct {
	LoginPath        string
	UnauthorizedPath string
	AdminPrefix      string
	UserPrefix       string
	// SkipPrefixes are never inspected. API routes enforce their own gate.
	SkipPrefixes []string
}

// DefaultRoutePolicyConfig guards /admin and /user page subtrees.
var DefaultRoutePolicyConfig = RoutePolicyConfig{
	LoginPath:        "/login",
	UnauthorizedPath: "/unauthorized",
	AdminPrefix:      "/admin",
	UserPrefix:       "/user",
	SkipPrefixes:     []string{"/api", "/static", "/favicon.ico", "/swagger", "/metrics", "/health"},
}

// RoutePolicy guards page navigations using token claims only. It never
// reads the credential store, so a role changed after issuance is honoured
// here until the token expires; API routes re-check through the gate.
// Register it with e.Pre so it runs before routing.
func RoutePolicy(verifier ports.TokenVerifier, cfg RoutePolicyConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, p := range cfg.SkipPrefixes {
				if hasPathPrefix(path, p) {
					return next(c)
				}
			}

			var (
				claims domain.SessionClaims
				ok     bool
			)
			if token, found := requestToken(c); found {
				claims, ok = verifier.Verify(token)
			}

			if hasPathPrefix(path, cfg.AdminPrefix) {
				if !ok {
					return redirectToLogin(c, cfg.LoginPath, path)
				}
				if claims.Role != domain.RoleAdmin {
					metrics.RouteRedirectsTotal.WithLabelValues("unauthorized").Inc()
					return c.Redirect(http.StatusTemporaryRedirect, cfg.UnauthorizedPath)
				}
			}

			if hasPathPrefix(path, cfg.UserPrefix) && !ok {
				return redirectToLogin(c, cfg.LoginPath, path)
			}

			if ok {
				h := c.Response().Header()
				h.Set(HeaderUserID, claims.Subject)
				h.Set(HeaderUserUsername, claims.Username)
				h.Set(HeaderUserRole, claims.Role)
				c.Set(claimsKey, claims)
			}
			return next(c)
		}
	}
}

func redirectToLogin(c echo.Context, loginPath, from string) error {
	metrics.RouteRedirectsTotal.WithLabelValues("login").Inc()
	q := url.Values{"redirect": {from}}
	return c.Redirect(http.StatusTemporaryRedirect, loginPath+"?"+q.Encode())
}

// hasPathPrefix matches whole path segments: "/admin" matches "/admin" and
// "/admin/users" but not "/administrator".
func hasPathPrefix(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/")
}
