package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/ghorer-khabar/mealclub/internal/api/middleware"
	"github.com/ghorer-khabar/mealclub/internal/core/domain"
	"github.com/ghorer-khabar/mealclub/internal/core/ports"
)

// stubMemberService implements ports.MemberService; unset funcs panic.
type stubMemberService struct {
	dashboardFn func(ctx context.Context, memberID string) (*ports.Dashboard, error)
	paymentFn   func(ctx context.Context, memberID string, amount float64) (*domain.Member, error)
	selectFn    func(ctx context.Context, memberID, packageID string) (*domain.Member, error)
	clearFn     func(ctx context.Context, memberID string) (*domain.Member, error)
	listFn      func(ctx context.Context, role string) ([]*domain.Member, error)
	provisionFn func(ctx context.Context, in ports.ProvisionMemberInput) (*ports.MemberAccount, error)
	updateFn    func(ctx context.Context, id string, in ports.UpdateMemberInput) (*ports.MemberAccount, error)
	deleteFn    func(ctx context.Context, id string) error
}

func (s *stubMemberService) Dashboard(ctx context.Context, memberID string) (*ports.Dashboard, error) {
	return s.dashboardFn(ctx, memberID)
}

func (s *stubMemberService) RecordPayment(ctx context.Context, memberID string, amount float64) (*domain.Member, error) {
	return s.paymentFn(ctx, memberID, amount)
}

func (s *stubMemberService) SelectMealPackage(ctx context.Context, memberID, packageID string) (*domain.Member, error) {
	return s.selectFn(ctx, memberID, packageID)
}

func (s *stubMemberService) ClearMealPackage(ctx context.Context, memberID string) (*domain.Member, error) {
	return s.clearFn(ctx, memberID)
}

func (s *stubMemberService) ListMembers(ctx context.Context, role string) ([]*domain.Member, error) {
	return s.listFn(ctx, role)
}

func (s *stubMemberService) ProvisionMember(ctx context.Context, in ports.ProvisionMemberInput) (*ports.MemberAccount, error) {
	return s.provisionFn(ctx, in)
}

func (s *stubMemberService) UpdateMember(ctx context.Context, id string, in ports.UpdateMemberInput) (*ports.MemberAccount, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubMemberService) DeleteMember(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func TestUserHandler_Dashboard(t *testing.T) {
	name, price, due := "Standard", 3000.0, 1000.0
	stub := &stubMemberService{
		dashboardFn: func(ctx context.Context, memberID string) (*ports.Dashboard, error) {
			if memberID != "m1" {
				t.Fatalf("unexpected member %s", memberID)
			}
			return &ports.Dashboard{MealPackage: &name, Price: &price, AmountPaid: 2000, Due: &due, YesVotes: 3}, nil
		},
	}

	c, rec := newContext(http.MethodGet, "/api/user/dashboard", "")
	middleware.SetCurrentMember(c, alice)
	if err := NewUserHandler(stub).Dashboard(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["meal_package"] != "Standard" || data["due"] != 1000.0 || data["yes_votes"] != 3.0 {
		t.Fatalf("unexpected dashboard: %+v", data)
	}
}

func TestUserHandler_Dashboard_NoPackage(t *testing.T) {
	stub := &stubMemberService{
		dashboardFn: func(ctx context.Context, memberID string) (*ports.Dashboard, error) {
			return &ports.Dashboard{AmountPaid: 500}, nil
		},
	}
	c, rec := newContext(http.MethodGet, "/api/user/dashboard", "")
	middleware.SetCurrentMember(c, alice)
	if err := NewUserHandler(stub).Dashboard(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["meal_package"] != nil || data["due"] != nil {
		t.Fatalf("expected null package fields, got %+v", data)
	}
}

func TestUserHandler_Payment(t *testing.T) {
	stub := &stubMemberService{
		paymentFn: func(ctx context.Context, memberID string, amount float64) (*domain.Member, error) {
			if amount <= 0 {
				return nil, domain.Invalid("valid payment amount is required")
			}
			return &domain.Member{ID: memberID, Username: "alice", TotalPaid: 2000 + amount}, nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := newContext(http.MethodPost, "/api/user/payment", `{"amount":500}`)
	middleware.SetCurrentMember(c, alice)
	if err := handler.RecordPayment(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := decodeEnvelope(t, rec)["data"].(map[string]any)["total_paid"]; got != 2500.0 {
		t.Fatalf("expected total 2500, got %v", got)
	}

	c, _ = newContext(http.MethodPost, "/api/user/payment", `{"amount":-5}`)
	middleware.SetCurrentMember(c, alice)
	if err := handler.RecordPayment(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	c, rec = newContext(http.MethodGet, "/api/user/payment", "")
	middleware.SetCurrentMember(c, &domain.Member{ID: "m1", Username: "alice", TotalPaid: 750})
	if err := handler.PaymentInfo(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["total_paid"] != 750.0 || data["user_id"] != "m1" || data["username"] != "alice" {
		t.Fatalf("unexpected payment info: %+v", data)
	}
}

func TestUserHandler_MealPackage(t *testing.T) {
	pkgID := "pk1"
	stub := &stubMemberService{
		selectFn: func(ctx context.Context, memberID, packageID string) (*domain.Member, error) {
			if packageID != pkgID {
				return nil, domain.ErrPackageNotFound
			}
			return &domain.Member{ID: memberID, MealPackageID: &pkgID}, nil
		},
		clearFn: func(ctx context.Context, memberID string) (*domain.Member, error) {
			return &domain.Member{ID: memberID}, nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := newContext(http.MethodPut, "/api/user/meal-package", `{"meal_package_id":"pk1"}`)
	middleware.SetCurrentMember(c, alice)
	if err := handler.SelectMealPackage(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := decodeEnvelope(t, rec)["data"].(map[string]any)["user"].(map[string]any)["meal_package_id"]; got != "pk1" {
		t.Fatalf("expected pk1, got %v", got)
	}

	c, _ = newContext(http.MethodPut, "/api/user/meal-package", `{"meal_package_id":"nope"}`)
	middleware.SetCurrentMember(c, alice)
	if err := handler.SelectMealPackage(c); !errors.Is(err, domain.ErrPackageNotFound) {
		t.Fatalf("expected ErrPackageNotFound, got %v", err)
	}

	c, _ = newContext(http.MethodPut, "/api/user/meal-package", `{}`)
	middleware.SetCurrentMember(c, alice)
	if err := handler.SelectMealPackage(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	c, rec = newContext(http.MethodDelete, "/api/user/meal-package", "")
	middleware.SetCurrentMember(c, alice)
	if err := handler.ClearMealPackage(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := decodeEnvelope(t, rec)["data"].(map[string]any)["user"].(map[string]any)["meal_package_id"]; got != nil {
		t.Fatalf("expected cleared package, got %v", got)
	}
}

func TestUserHandler_Votes(t *testing.T) {
	member := &domain.Member{ID: "m1", Votes: []domain.VoteRecord{
		{PollID: "p1", Choice: domain.ChoiceYes, VotedAt: time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC)},
		{PollID: "p2", Choice: domain.ChoiceNo, VotedAt: time.Date(2025, 5, 3, 9, 0, 0, 0, time.UTC)},
	}}
	handler := NewUserHandler(&stubMemberService{})

	c, rec := newContext(http.MethodGet, "/api/user/votes", "")
	middleware.SetCurrentMember(c, member)
	if err := handler.Votes(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if votes := decodeEnvelope(t, rec)["data"].(map[string]any)["votes"].([]any); len(votes) != 2 {
		t.Fatalf("expected 2 votes, got %d", len(votes))
	}

	c, rec = newContext(http.MethodGet, "/api/user/votes?pollId=p2", "")
	middleware.SetCurrentMember(c, member)
	if err := handler.Votes(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if v := decodeEnvelope(t, rec)["data"].(map[string]any)["vote"].(map[string]any); v["choice"] != "no" {
		t.Fatalf("unexpected vote: %+v", v)
	}

	c, rec = newContext(http.MethodGet, "/api/user/votes?pollId=p3", "")
	middleware.SetCurrentMember(c, member)
	if err := handler.Votes(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if v, ok := data["vote"]; !ok || v != nil {
		t.Fatalf("expected explicit null vote, got %+v", data)
	}
}
