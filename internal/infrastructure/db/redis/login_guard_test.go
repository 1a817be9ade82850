package redis

import (
	"testing"
	"time"
)

func TestNewLoginGuard_Defaults(t *testing.T) {
	g := NewLoginGuard(nil, 0, 0)
	if g.maxFailures != 5 {
		t.Errorf("expected default max failures 5, got %d", g.maxFailures)
	}
	if g.lockout != 15*time.Minute {
		t.Errorf("expected default lockout 15m, got %v", g.lockout)
	}
}

func TestLoginGuard_KeyPerUsername(t *testing.T) {
	g := NewLoginGuard(nil, 3, time.Minute)
	if got := g.key("alice"); got != "login_failures:alice" {
		t.Fatalf("unexpected key %q", got)
	}
	if g.key("alice") == g.key("bob") {
		t.Fatal("usernames must not share a counter")
	}
}
