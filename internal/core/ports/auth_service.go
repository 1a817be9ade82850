package ports

import (
	"context"

	"github.com/ghorer-khabar/mealclub/internal/core/domain"
)

// RegisterInput is the self-registration payload. Role defaults to member.
type RegisterInput struct {
	Username string
	Password string
	Role     string
}

// Session pairs a freshly issued token with the member it was issued for.
type Session struct {
	Token  string
	Member *domain.Member
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*Session, error)
	Login(ctx context.Context, username, password string) (*Session, error)
	// Authenticate resolves a raw token into the current member record.
	// Every "no session" cause returns domain.ErrUnauthenticated.
	Authenticate(ctx context.Context, token string) (*domain.Member, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(m *domain.Member) (string, error)
}

// TokenVerifier checks a token without touching the store.
type TokenVerifier interface {
	Verify(token string) (domain.SessionClaims, bool)
}

// LoginGuard throttles repeated failed logins per username.
type LoginGuard interface {
	IsLocked(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}
