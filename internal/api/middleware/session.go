package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ghorer-khabar/mealclub/internal/core/domain"
)

// CookieName carries the session token.
const CookieName = "token"

// sessionMaxAge matches the token lifetime, in seconds.
const sessionMaxAge = 7 * 24 * 60 * 60

const (
	memberKey = "member"
	claimsKey = "session_claims"
)

type memberCtxKey struct{}

// ExtractToken returns the session token from a raw Cookie header. Pairs
// are split on ';' and each pair on its first '='. When the name repeats
// the last pair wins. An empty value counts as absent.
func ExtractToken(cookieHeader string) (string, bool) {
	var token string
	for _, pair := range strings.Split(cookieHeader, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || strings.TrimSpace(key) != CookieName {
			continue
		}
		token = strings.TrimSpace(value)
	}
	return token, token != ""
}

// SessionCookie builds the cookie that carries token. Secure is set in
// production only so local HTTP development keeps working.
func SessionCookie(token string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// ClearedSessionCookie expires the session cookie immediately.
func ClearedSessionCookie(secure bool) *http.Cookie {
	c := SessionCookie("", secure)
	c.MaxAge = -1
	return c
}

func requestToken(c echo.Context) (string, bool) {
	return ExtractToken(c.Request().Header.Get(echo.HeaderCookie))
}

// WithMember attaches the authenticated member to ctx.
func WithMember(ctx context.Context, m *domain.Member) context.Context {
	return context.WithValue(ctx, memberCtxKey{}, m)
}

// MemberFromContext returns the member attached by the gate.
func MemberFromContext(ctx context.Context) (*domain.Member, bool) {
	m, ok := ctx.Value(memberCtxKey{}).(*domain.Member)
	return m, ok && m != nil
}

// SetCurrentMember attaches m to the echo context and the request context.
func SetCurrentMember(c echo.Context, m *domain.Member) {
	c.Set(memberKey, m)
	c.SetRequest(c.Request().WithContext(WithMember(c.Request().Context(), m)))
}

// CurrentMember returns the member the gate resolved for this request.
func CurrentMember(c echo.Context) (*domain.Member, bool) {
	m, ok := c.Get(memberKey).(*domain.Member)
	return m, ok && m != nil
}

// CurrentClaims returns the unverified-against-store claims the route
// policy attached, if the request carried a valid token.
func CurrentClaims(c echo.Context) (domain.SessionClaims, bool) {
	claims, ok := c.Get(claimsKey).(domain.SessionClaims)
	return claims, ok
}
