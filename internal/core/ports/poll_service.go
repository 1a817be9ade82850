package ports

import (
	"context"
	"time"

	"github.com/ghorer-khabar/mealclub/internal/core/domain"
)

// PollView is a poll evaluated at read time.
type PollView struct {
	Poll    *domain.Poll
	Active  bool
	Expired bool
	// MyChoice is the caller's own response; nil when none or anonymous.
	MyChoice *domain.Choice
	Tally    domain.Tally
}

// ResponseRow is one line of the admin responses table.
type ResponseRow struct {
	MemberID   string
	Username   string
	Choice     domain.Choice
	RecordedAt time.Time
}

// VoteResult is returned after a response was accepted.
type VoteResult struct {
	PollID     string
	Choice     domain.Choice
	RecordedAt time.Time
	// Created is false when an earlier response was overwritten.
	Created bool
}

type PollService interface {
	CreatePoll(ctx context.Context, title string, expiresAt time.Time) (*domain.Poll, error)
	ListPolls(ctx context.Context, activeOnly bool) ([]PollView, error)
	GetPoll(ctx context.Context, pollID, memberID string) (*PollView, error)
	RecordResponse(ctx context.Context, pollID string, member *domain.Member, choice string) (*VoteResult, error)
	DeletePoll(ctx context.Context, pollID string) error
	PollResponses(ctx context.Context, pollID string) ([]ResponseRow, error)
}

// VoteHistoryInput mirrors an accepted response onto the member record.
type VoteHistoryInput struct {
	MemberID string
	PollID   string
	Choice   domain.Choice
	VotedAt  time.Time
}

// VoteHistoryService persists the member-side vote mirror.
type VoteHistoryService interface {
	Record(ctx context.Context, in VoteHistoryInput) error
}
