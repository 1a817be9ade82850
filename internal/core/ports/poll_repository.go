package ports

import (
	"context"
	"time"

	"github.com/ghorer-khabar/mealclub/internal/core/domain"
)

// PollFilter narrows List. A zero OpenAt lists every poll; otherwise only
// polls still open at that instant are returned.
type PollFilter struct {
	OpenAt time.Time
}

// PollRepository handles poll persistence.
type PollRepository interface {
	Create(ctx context.Context, p *domain.Poll) (*domain.Poll, error)
	FindByID(ctx context.Context, id string) (*domain.Poll, error)
	List(ctx context.Context, filter PollFilter) ([]*domain.Poll, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error

	// UpsertResponse records resp as the single response of resp.MemberID,
	// overwriting choice and timestamp in place when one exists. The write
	// is a single atomic document update guarded by expires_at > now, so a
	// poll that expired before the write is never modified. Returns
	// created=true when a new response was appended, domain.ErrPollClosed
	// when the guard fails and domain.ErrPollNotFound when the poll is gone.
	UpsertResponse(ctx context.Context, pollID string, resp domain.Response, now time.Time) (created bool, err error)
}
