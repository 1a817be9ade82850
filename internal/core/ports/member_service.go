package ports

import (
	"context"

	"github.com/ghorer-khabar/mealclub/internal/core/domain"
)

// ProvisionMemberInput is the admin-side account creation payload.
type ProvisionMemberInput struct {
	Username      string
	Password      string
	Role          string
	MealPackageID string
	TotalPaid     float64
}

// UpdateMemberInput is the admin-side edit payload. Nil fields are untouched.
// A non-nil Password is hashed and replaces the digest.
type UpdateMemberInput struct {
	Role          *string
	Password      *string
	MealPackageID *string
	TotalPaid     *float64
}

// MemberAccount is a member with its resolved meal package and balance.
// Package and Due are nil when the member has no package.
type MemberAccount struct {
	Member  *domain.Member
	Package *domain.MealPackage
	Due     *float64
}

// Dashboard is the member self-service summary.
type Dashboard struct {
	MealPackage *string
	Price       *float64
	AmountPaid  float64
	Due         *float64
	YesVotes    int
}

type MemberService interface {
	Dashboard(ctx context.Context, memberID string) (*Dashboard, error)
	RecordPayment(ctx context.Context, memberID string, amount float64) (*domain.Member, error)
	SelectMealPackage(ctx context.Context, memberID, packageID string) (*domain.Member, error)
	ClearMealPackage(ctx context.Context, memberID string) (*domain.Member, error)

	ListMembers(ctx context.Context, role string) ([]*domain.Member, error)
	ProvisionMember(ctx context.Context, in ProvisionMemberInput) (*MemberAccount, error)
	UpdateMember(ctx context.Context, id string, in UpdateMemberInput) (*MemberAccount, error)
	DeleteMember(ctx context.Context, id string) error
}

type PackageService interface {
	ListPackages(ctx context.Context) ([]*domain.MealPackage, error)
	CreatePackage(ctx context.Context, name string, price float64) (*domain.MealPackage, error)
	UpdatePackage(ctx context.Context, id string, upd PackageUpdate) (*domain.MealPackage, error)
	DeletePackage(ctx context.Context, id string) error
}
