package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/ghorer-khabar/mealclub/internal/api/middleware"
	"github.com/ghorer-khabar/mealclub/internal/core/domain"
	"github.com/ghorer-khabar/mealclub/internal/core/ports"
)

type stubPackageService struct {
	pkgs []*domain.MealPackage
	last ports.PackageUpdate
}

func (s *stubPackageService) ListPackages(context.Context) ([]*domain.MealPackage, error) {
	return s.pkgs, nil
}

func (s *stubPackageService) CreatePackage(_ context.Context, name string, price float64) (*domain.MealPackage, error) {
	p, err := domain.NewMealPackage(name, price)
	if err != nil {
		return nil, err
	}
	p.ID = "pk-new"
	s.pkgs = append(s.pkgs, p)
	return p, nil
}

func (s *stubPackageService) UpdatePackage(_ context.Context, id string, upd ports.PackageUpdate) (*domain.MealPackage, error) {
	s.last = upd
	for _, p := range s.pkgs {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrPackageNotFound
}

func (s *stubPackageService) DeletePackage(_ context.Context, id string) error {
	return domain.ErrPackageNotFound
}

func TestPackageHandler(t *testing.T) {
	stub := &stubPackageService{pkgs: []*domain.MealPackage{{ID: "pk1", Name: "Basic", Price: 2000}}}
	handler := NewPackageHandler(stub)

	c, rec := newContext(http.MethodGet, "/api/meal-packages", "")
	if err := handler.List(c); err != nil {
		t.Fatalf("list: %v", err)
	}
	if pkgs := decodeEnvelope(t, rec)["data"].(map[string]any)["packages"].([]any); len(pkgs) != 1 {
		t.Fatalf("expected 1 package, got %d", len(pkgs))
	}

	c, rec = newContext(http.MethodPost, "/api/admin/packages", `{"name":"Premium","price":4000}`)
	if err := handler.Create(c); err != nil || rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %v", rec.Code, err)
	}

	c, _ = newContext(http.MethodPost, "/api/admin/packages", `{"name":"Premium","price":-1}`)
	if err := handler.Create(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for negative price, got %v", err)
	}

	c, _ = newContext(http.MethodPut, "/api/admin/packages/pk1", `{"price":2500}`)
	c.SetParamNames("id")
	c.SetParamValues("pk1")
	if err := handler.Update(c); err != nil {
		t.Fatalf("update: %v", err)
	}
	if stub.last.Name != nil || stub.last.Price == nil || *stub.last.Price != 2500 {
		t.Fatalf("expected price-only update, got %+v", stub.last)
	}

	c, _ = newContext(http.MethodDelete, "/api/admin/packages/zz", "")
	if err := handler.Delete(c); !errors.Is(err, domain.ErrPackageNotFound) {
		t.Fatalf("expected ErrPackageNotFound, got %v", err)
	}
}

func TestAdminUserHandler_ListAndProvision(t *testing.T) {
	due := 1500.0
	stub := &stubMemberService{
		listFn: func(ctx context.Context, role string) ([]*domain.Member, error) {
			if role != domain.RoleAdmin {
				t.Fatalf("expected role filter admin, got %q", role)
			}
			return []*domain.Member{{ID: "a1", Username: "admin", Role: domain.RoleAdmin}}, nil
		},
		provisionFn: func(ctx context.Context, in ports.ProvisionMemberInput) (*ports.MemberAccount, error) {
			if in.Username != "dave" || in.MealPackageID != "pk1" || in.TotalPaid != 1500 {
				t.Fatalf("unexpected input: %+v", in)
			}
			pkgID := in.MealPackageID
			return &ports.MemberAccount{
				Member:  &domain.Member{ID: "m4", Username: in.Username, Role: domain.RoleMember, MealPackageID: &pkgID, TotalPaid: in.TotalPaid},
				Package: &domain.MealPackage{ID: "pk1", Name: "Standard", Price: 3000},
				Due:     &due,
			}, nil
		},
	}
	handler := NewAdminUserHandler(stub)

	c, rec := newContext(http.MethodGet, "/api/admin/users?role=admin", "")
	if err := handler.List(c); err != nil {
		t.Fatalf("list: %v", err)
	}
	if users := decodeEnvelope(t, rec)["data"].(map[string]any)["users"].([]any); len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}

	c, rec = newContext(http.MethodPost, "/api/admin/users", `{"username":"dave","password":"secret1","meal_package_id":"pk1","total_paid":1500}`)
	if err := handler.Create(c); err != nil {
		t.Fatalf("provision: %v", err)
	}
	user := decodeEnvelope(t, rec)["data"].(map[string]any)["user"].(map[string]any)
	if user["username"] != "dave" || user["due"] != 1500.0 {
		t.Fatalf("unexpected account: %+v", user)
	}
	if pkg := user["meal_package"].(map[string]any); pkg["name"] != "Standard" {
		t.Fatalf("unexpected package: %+v", pkg)
	}
}

func TestAdminUserHandler_UpdateAndDelete(t *testing.T) {
	stub := &stubMemberService{
		updateFn: func(ctx context.Context, id string, in ports.UpdateMemberInput) (*ports.MemberAccount, error) {
			if id != "m1" || in.Role == nil || *in.Role != domain.RoleAdmin || in.Password != nil {
				t.Fatalf("unexpected update: %s %+v", id, in)
			}
			return &ports.MemberAccount{Member: &domain.Member{ID: id, Role: *in.Role}}, nil
		},
		deleteFn: func(ctx context.Context, id string) error {
			return domain.ErrMemberNotFound
		},
	}
	handler := NewAdminUserHandler(stub)

	c, rec := newContext(http.MethodPut, "/api/admin/users/m1", `{"role":"admin"}`)
	c.SetParamNames("id")
	c.SetParamValues("m1")
	if err := handler.Update(c); err != nil {
		t.Fatalf("update: %v", err)
	}
	user := decodeEnvelope(t, rec)["data"].(map[string]any)["user"].(map[string]any)
	if v, ok := user["due"]; !ok || v != nil {
		t.Fatalf("expected null due without a package, got %+v", user)
	}

	c, _ = newContext(http.MethodDelete, "/api/admin/users/zz", "")
	if err := handler.Delete(c); !errors.Is(err, domain.ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestProtectedHandler(t *testing.T) {
	handler := NewProtectedHandler()

	c, rec := newContext(http.MethodGet, "/api/protected/admin", "")
	middleware.SetCurrentMember(c, &domain.Member{ID: "a1", Username: "admin", Role: domain.RoleAdmin})
	if err := handler.Admin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decodeEnvelope(t, rec)
	if resp["message"] != "Access granted to admin route" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
	if u := resp["data"].(map[string]any)["user"].(map[string]any); u["role"] != domain.RoleAdmin {
		t.Fatalf("unexpected identity: %+v", u)
	}

	c, _ = newContext(http.MethodGet, "/api/protected/user", "")
	if err := handler.User(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestPageHandler(t *testing.T) {
	handler := NewPageHandler()

	c, rec := newContext(http.MethodGet, "/", "")
	if err := handler.Show(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decodeEnvelope(t, rec)
	if resp["page"] != "home" {
		t.Fatalf("expected home page, got %+v", resp)
	}
	if _, ok := resp["user"]; ok {
		t.Fatal("anonymous page must not carry a user")
	}

	c, rec = newContext(http.MethodGet, "/admin/polls", "")
	if err := handler.Show(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decodeEnvelope(t, rec); resp["page"] != "admin/polls" {
		t.Fatalf("unexpected page: %+v", resp)
	}
}
