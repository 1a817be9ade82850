package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ghorer-khabar/mealclub/internal/core/domain"
)

type stubAuthenticator struct {
	members map[string]*domain.Member
	err     error
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*domain.Member, error) {
	if s.err != nil {
		return nil, s.err
	}
	m, ok := s.members[token]
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return m, nil
}

func newGateStub() *stubAuthenticator {
	return &stubAuthenticator{members: map[string]*domain.Member{
		"member-token": {ID: "m1", Username: "alice", Role: domain.RoleMember},
		"admin-token":  {ID: "a1", Username: "admin", Role: domain.RoleAdmin},
	}}
}

func runGate(t *testing.T, authn Authenticator, capability Capability, cookie string) (bool, *domain.Member, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
	if cookie != "" {
		req.Header.Set(echo.HeaderCookie, cookie)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var (
		called bool
		seen   *domain.Member
	)
	err := RequireCapability(authn, capability)(func(c echo.Context) error {
		called = true
		fromEcho, ok := CurrentMember(c)
		if !ok {
			t.Fatal("member not set on echo context")
		}
		fromCtx, ok := MemberFromContext(c.Request().Context())
		if !ok || fromCtx != fromEcho {
			t.Fatal("member not set on request context")
		}
		seen = fromEcho
		return c.NoContent(http.StatusOK)
	})(c)
	return called, seen, err
}

func TestCapability_AdminSatisfiesEveryRole(t *testing.T) {
	cases := []struct {
		capability Capability
		role       string
		want       bool
	}{
		{Authenticated(), domain.RoleMember, true},
		{Authenticated(), domain.RoleAdmin, true},
		{RequireRole(domain.RoleMember), domain.RoleMember, true},
		{RequireRole(domain.RoleMember), domain.RoleAdmin, true},
		{RequireRole(domain.RoleAdmin), domain.RoleAdmin, true},
		{RequireRole(domain.RoleAdmin), domain.RoleMember, false},
		{RequireRole(domain.RoleMember), "", false},
	}
	for _, tc := range cases {
		if got := tc.capability.Allows(tc.role); got != tc.want {
			t.Errorf("%s.Allows(%q) = %v, want %v", tc.capability, tc.role, got, tc.want)
		}
	}
}

func TestRequireCapability_NoCookie(t *testing.T) {
	called, _, err := runGate(t, newGateStub(), Authenticated(), "")
	if !errors.Is(err, domain.ErrUnauthenticated) || called {
		t.Fatalf("expected ErrUnauthenticated without calling next, got %v (called=%v)", err, called)
	}
}

func TestRequireCapability_UnknownToken(t *testing.T) {
	called, _, err := runGate(t, newGateStub(), Authenticated(), "token=forged")
	if !errors.Is(err, domain.ErrUnauthenticated) || called {
		t.Fatalf("expected ErrUnauthenticated, got %v (called=%v)", err, called)
	}
}

func TestRequireCapability_Forbidden(t *testing.T) {
	called, _, err := runGate(t, newGateStub(), RequireRole(domain.RoleAdmin), "token=member-token")
	if !errors.Is(err, domain.ErrForbidden) || called {
		t.Fatalf("expected ErrForbidden, got %v (called=%v)", err, called)
	}
}

func TestRequireCapability_AdminPassesMemberRoute(t *testing.T) {
	called, seen, err := runGate(t, newGateStub(), RequireRole(domain.RoleMember), "theme=dark; token=admin-token")
	if err != nil || !called {
		t.Fatalf("expected admin admitted, got %v (called=%v)", err, called)
	}
	if seen.ID != "a1" {
		t.Fatalf("unexpected member %+v", seen)
	}
}

func TestRequireCapability_StoreFailureSurfaces(t *testing.T) {
	stub := newGateStub()
	stub.err = errors.New("mongo: connection reset")
	called, _, err := runGate(t, stub, Authenticated(), "token=member-token")
	if err == nil || errors.Is(err, domain.ErrUnauthenticated) || called {
		t.Fatalf("expected raw store error, got %v (called=%v)", err, called)
	}
}
