package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ghorer-khabar/mealclub/internal/api/metrics"
	"github.com/ghorer-khabar/mealclub/internal/core/domain"
	"github.com/ghorer-khabar/mealclub/internal/core/ports"
)

// TokenCodec is both halves of the token service.
type TokenCodec interface {
	ports.TokenIssuer
	ports.TokenVerifier
}

// AuthService implements registration, login and session resolution.
type AuthService struct {
	repo   ports.MemberRepository
	tokens TokenCodec
	guard  ports.LoginGuard
	log    zerolog.Logger
}

// NewAuthService wires the service. guard may be nil to disable lockout.
func NewAuthService(repo ports.MemberRepository, tokens TokenCodec, guard ports.LoginGuard, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, guard: guard, log: log}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.Session, error) {
	username, err := domain.NormalizeUsername(in.Username)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = domain.RoleMember
	}
	if !domain.ValidRole(role) {
		return nil, domain.Invalid("invalid role")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Member{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Votes:        []domain.VoteRecord{},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, domain.ErrUsernameTaken) || errors.Is(err, domain.ErrValidation) {
			outcome = "invalid"
		}
		metrics.AuthAttemptsTotal.WithLabelValues("register", outcome).Inc()
		return nil, err
	}

	token, err := s.tokens.Issue(created)
	if err != nil {
		return nil, fmt.Errorf("register: issue token: %w", err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	s.log.Info().Str("member_id", created.ID).Str("role", created.Role).Msg("member registered")
	return &ports.Session{Token: token, Member: created}, nil
}

// Login answers ErrInvalidCredentials for both unknown usernames and wrong
// passwords.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.Invalid("username and password are required")
	}

	if s.guard != nil {
		locked, err := s.guard.IsLocked(ctx, username)
		if err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("login guard check failed, continuing")
		} else if locked {
			metrics.AuthAttemptsTotal.WithLabelValues("login", "locked").Inc()
			return nil, domain.ErrTooManyAttempts
		}
	}

	member, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			s.recordFailure(ctx, username)
			return nil, domain.ErrInvalidCredentials
		}
		metrics.AuthAttemptsTotal.WithLabelValues("login", "error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)) != nil {
		s.recordFailure(ctx, username)
		return nil, domain.ErrInvalidCredentials
	}

	if s.guard != nil {
		if err := s.guard.Reset(ctx, username); err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("failed to reset login guard")
		}
	}

	token, err := s.tokens.Issue(member)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	return &ports.Session{Token: token, Member: member}, nil
}

// Authenticate verifies the token and then re-reads the member, so a role
// change or deletion after issuance takes effect on the next request.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Member, error) {
	claims, ok := s.tokens.Verify(token)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	member, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	member.PasswordHash = ""
	return member, nil
}

func (s *AuthService) recordFailure(ctx context.Context, username string) {
	metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid").Inc()
	if s.guard == nil {
		return
	}
	if err := s.guard.RecordFailure(ctx, username); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to record login failure")
	}
}

func hashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
