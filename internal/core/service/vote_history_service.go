package service

import (
	"context"
	"fmt"

	"github.com/ghorer-khabar/mealclub/internal/core/domain"
	"github.com/ghorer-khabar/mealclub/internal/core/ports"
)

// VoteHistoryService mirrors accepted poll responses onto member records.
// Poll responses stay the source of truth; this copy feeds the dashboard
// and the vote history endpoint.
type VoteHistoryService struct {
	members ports.MemberRepository
}

func NewVoteHistoryService(members ports.MemberRepository) *VoteHistoryService {
	return &VoteHistoryService{members: members}
}

func (s *VoteHistoryService) Record(ctx context.Context, in ports.VoteHistoryInput) error {
	err := s.members.UpsertVote(ctx, in.MemberID, domain.VoteRecord{
		PollID:  in.PollID,
		Choice:  in.Choice,
		VotedAt: in.VotedAt,
	})
	if err != nil {
		return fmt.Errorf("record vote history: %w", err)
	}
	return nil
}
