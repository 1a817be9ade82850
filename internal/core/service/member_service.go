package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ghorer-khabar/mealclub/internal/core/domain"
	"github.com/ghorer-khabar/mealclub/internal/core/ports"
)

// MemberService covers member self-service and admin account management.
type MemberService struct {
	members  ports.MemberRepository
	packages ports.PackageRepository
	log      zerolog.Logger
}

func NewMemberService(members ports.MemberRepository, packages ports.PackageRepository, log zerolog.Logger) *MemberService {
	return &MemberService{members: members, packages: packages, log: log}
}

// Dashboard summarizes the member's package, balance and yes votes. Price
// and Due stay nil when no package is selected or it has been deleted.
func (s *MemberService) Dashboard(ctx context.Context, memberID string) (*ports.Dashboard, error) {
	m, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	d := &ports.Dashboard{AmountPaid: m.TotalPaid, YesVotes: m.YesVotes()}

	pkg, err := s.packageOf(ctx, m)
	if err != nil {
		return nil, err
	}
	if pkg != nil {
		name, price, due := pkg.Name, pkg.Price, pkg.Due(m.TotalPaid)
		d.MealPackage, d.Price, d.Due = &name, &price, &due
	}
	return d, nil
}

func (s *MemberService) RecordPayment(ctx context.Context, memberID string, amount float64) (*domain.Member, error) {
	if amount <= 0 {
		return nil, domain.Invalid("valid payment amount is required")
	}

	m, err := s.members.AddPayment(ctx, memberID, amount)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("member_id", memberID).Float64("amount", amount).Float64("total_paid", m.TotalPaid).Msg("payment recorded")
	return m, nil
}

func (s *MemberService) SelectMealPackage(ctx context.Context, memberID, packageID string) (*domain.Member, error) {
	packageID = strings.TrimSpace(packageID)
	if packageID == "" {
		return nil, domain.Invalid("meal package id is required")
	}
	if _, err := s.packages.FindByID(ctx, packageID); err != nil {
		return nil, err
	}
	return s.members.Update(ctx, memberID, ports.MemberUpdate{MealPackageID: &packageID})
}

func (s *MemberService) ClearMealPackage(ctx context.Context, memberID string) (*domain.Member, error) {
	return s.members.Update(ctx, memberID, ports.MemberUpdate{ClearMealPackage: true})
}

func (s *MemberService) ListMembers(ctx context.Context, role string) ([]*domain.Member, error) {
	if role != "" && !domain.ValidRole(role) {
		return nil, domain.Invalid("invalid role")
	}
	members, err := s.members.List(ctx, ports.MemberFilter{Role: role})
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// ProvisionMember creates an account on behalf of an administrator. An
// empty MealPackageID leaves the member without a package; a non-empty
// one must reference an existing package.
func (s *MemberService) ProvisionMember(ctx context.Context, in ports.ProvisionMemberInput) (*ports.MemberAccount, error) {
	username, err := domain.NormalizeUsername(in.Username)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount("total paid", in.TotalPaid); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = domain.RoleMember
	}
	if !domain.ValidRole(role) {
		return nil, domain.Invalid("invalid role")
	}

	var pkg *domain.MealPackage
	var pkgID *string
	if id := strings.TrimSpace(in.MealPackageID); id != "" {
		pkg, err = s.lookupPackage(ctx, id)
		if err != nil {
			return nil, err
		}
		pkgID = &pkg.ID
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.members.Create(ctx, &domain.Member{
		Username:      username,
		PasswordHash:  hash,
		Role:          role,
		MealPackageID: pkgID,
		TotalPaid:     in.TotalPaid,
		Votes:         []domain.VoteRecord{},
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("member_id", created.ID).Str("role", created.Role).Msg("member provisioned")
	return account(created, pkg), nil
}

// UpdateMember applies an admin edit and returns the member together with
// the balance due against its current package.
func (s *MemberService) UpdateMember(ctx context.Context, id string, in ports.UpdateMemberInput) (*ports.MemberAccount, error) {
	upd := ports.MemberUpdate{}

	if in.Role != nil {
		if !domain.ValidRole(*in.Role) {
			return nil, domain.Invalid("invalid role")
		}
		upd.Role = in.Role
	}
	if in.Password != nil {
		if err := domain.ValidatePassword(*in.Password); err != nil {
			return nil, err
		}
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		upd.PasswordHash = &hash
	}
	if in.TotalPaid != nil {
		if err := domain.ValidateAmount("total paid", *in.TotalPaid); err != nil {
			return nil, err
		}
		upd.TotalPaid = in.TotalPaid
	}
	if in.MealPackageID != nil && strings.TrimSpace(*in.MealPackageID) != "" {
		pkg, err := s.lookupPackage(ctx, strings.TrimSpace(*in.MealPackageID))
		if err != nil {
			return nil, err
		}
		upd.MealPackageID = &pkg.ID
	}

	m, err := s.members.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	pkg, err := s.packageOf(ctx, m)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("member_id", m.ID).Msg("member updated")
	return account(m, pkg), nil
}

func (s *MemberService) DeleteMember(ctx context.Context, id string) error {
	if err := s.members.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("member_id", id).Msg("member deleted")
	return nil
}

// lookupPackage reports an unknown package reference as a validation
// failure of the submitted payload rather than a missing resource.
func (s *MemberService) lookupPackage(ctx context.Context, id string) (*domain.MealPackage, error) {
	pkg, err := s.packages.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrPackageNotFound) {
			return nil, domain.Invalid("invalid meal package id")
		}
		return nil, err
	}
	return pkg, nil
}

// packageOf resolves the member's package; a dangling reference yields nil.
func (s *MemberService) packageOf(ctx context.Context, m *domain.Member) (*domain.MealPackage, error) {
	if m.MealPackageID == nil {
		return nil, nil
	}
	pkg, err := s.packages.FindByID(ctx, *m.MealPackageID)
	if err != nil {
		if errors.Is(err, domain.ErrPackageNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve meal package: %w", err)
	}
	return pkg, nil
}

func account(m *domain.Member, pkg *domain.MealPackage) *ports.MemberAccount {
	acc := &ports.MemberAccount{Member: m, Package: pkg}
	if pkg != nil {
		due := pkg.Due(m.TotalPaid)
		acc.Due = &due
	}
	return acc
}
