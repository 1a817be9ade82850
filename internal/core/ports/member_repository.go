package ports

import (
	"context"

	"github.com/ghorer-khabar/mealclub/internal/core/domain"
)

// MemberFilter narrows List. Empty fields do not filter.
type MemberFilter struct {
	Role string
}

// MemberUpdate carries a partial update. Nil fields are left untouched;
// ClearMealPackage takes precedence over MealPackageID.
type MemberUpdate struct {
	Role             *string
	PasswordHash     *string
	MealPackageID    *string
	ClearMealPackage bool
	TotalPaid        *float64
}

// MemberRepository is the credential store. It exclusively owns member records.
type MemberRepository interface {
	Create(ctx context.Context, m *domain.Member) (*domain.Member, error)
	FindByID(ctx context.Context, id string) (*domain.Member, error)
	FindByUsername(ctx context.Context, username string) (*domain.Member, error)
	// FindByIDs returns the members that exist; unknown ids are skipped.
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Member, error)
	List(ctx context.Context, filter MemberFilter) ([]*domain.Member, error)
	Update(ctx context.Context, id string, upd MemberUpdate) (*domain.Member, error)
	// AddPayment atomically increments total_paid and returns the new record.
	AddPayment(ctx context.Context, id string, amount float64) (*domain.Member, error)
	// UpsertVote sets the vote for vote.PollID in place or appends it.
	UpsertVote(ctx context.Context, memberID string, vote domain.VoteRecord) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}
