package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ghorer-khabar/mealclub/internal/core/domain"
)

func TestNewTokenService_RequiresSecret(t *testing.T) {
	for _, secret := range []string{"", "   "} {
		if _, err := NewTokenService(secret, SessionTTL); !errors.Is(err, ErrMissingSecret) {
			t.Errorf("secret %q: expected ErrMissingSecret, got %v", secret, err)
		}
	}
}

func TestTokenService_RoundTrip(t *testing.T) {
	tokens := newTestTokens(t)
	m := &domain.Member{ID: "65f000000000000000000001", Username: "alice", Role: domain.RoleMember}

	token, err := tokens.Issue(m)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, ok := tokens.Verify(token)
	if !ok {
		t.Fatal("expected token to verify")
	}
	if claims.Subject != m.ID || claims.Username != "alice" || claims.Role != domain.RoleMember {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenService_ExpiresAfterSevenDays(t *testing.T) {
	tokens := newTestTokens(t)
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issuedAt }

	token, err := tokens.Issue(&domain.Member{ID: "m1", Username: "alice", Role: domain.RoleMember})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tokens.now = func() time.Time { return issuedAt.Add(7*24*time.Hour - time.Minute) }
	if _, ok := tokens.Verify(token); !ok {
		t.Fatal("expected token valid just before expiry")
	}

	tokens.now = func() time.Time { return issuedAt.Add(7*24*time.Hour + time.Minute) }
	if _, ok := tokens.Verify(token); ok {
		t.Fatal("expected token rejected after expiry")
	}
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	tokens := newTestTokens(t)

	claims := jwt.MapClaims{"sub": "m1", "exp": time.Now().Add(time.Hour).Unix()}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, ok := tokens.Verify(unsigned); ok {
		t.Fatal("alg=none token must not verify")
	}

	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	if _, ok := tokens.Verify(hs512); ok {
		t.Fatal("HS512 token must not verify")
	}
}

func TestTokenService_RejectsMissingSubjectAndExpiry(t *testing.T) {
	tokens := newTestTokens(t)

	noSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	if _, ok := tokens.Verify(noSub); ok {
		t.Error("token without subject must not verify")
	}

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "m1",
	}).SignedString([]byte("test-secret"))
	if _, ok := tokens.Verify(noExp); ok {
		t.Error("token without exp must not verify")
	}
}
