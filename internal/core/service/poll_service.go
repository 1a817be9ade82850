package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ghorer-khabar/mealclub/internal/api/metrics"
	"github.com/ghorer-khabar/mealclub/internal/core/domain"
	"github.com/ghorer-khabar/mealclub/internal/core/ports"
)

// VoteHistoryQueue accepts member vote-history writes for async processing.
type VoteHistoryQueue interface {
	Enqueue(in ports.VoteHistoryInput)
}

// PollService is the poll voting engine.
type PollService struct {
	polls   ports.PollRepository
	members ports.MemberRepository
	history VoteHistoryQueue
	log     zerolog.Logger
	now     func() time.Time
}

// NewPollService wires the engine. history may be nil to skip the member
// vote-history mirror.
func NewPollService(polls ports.PollRepository, members ports.MemberRepository, history VoteHistoryQueue, log zerolog.Logger) *PollService {
	return &PollService{
		polls:   polls,
		members: members,
		history: history,
		log:     log,
		now:     time.Now,
	}
}

func (s *PollService) CreatePoll(ctx context.Context, title string, expiresAt time.Time) (*domain.Poll, error) {
	poll, err := domain.NewPoll(title, expiresAt, s.now())
	if err != nil {
		return nil, err
	}

	created, err := s.polls.Create(ctx, poll)
	if err != nil {
		return nil, fmt.Errorf("create poll: %w", err)
	}

	metrics.PollsCreatedTotal.Inc()
	s.log.Info().Str("poll_id", created.ID).Time("expires_at", created.ExpiresAt).Msg("poll created")
	return created, nil
}

func (s *PollService) ListPolls(ctx context.Context, activeOnly bool) ([]ports.PollView, error) {
	now := s.now()
	filter := ports.PollFilter{}
	if activeOnly {
		filter.OpenAt = now
	}

	polls, err := s.polls.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list polls: %w", err)
	}

	views := make([]ports.PollView, 0, len(polls))
	for _, p := range polls {
		views = append(views, view(p, "", now))
	}
	return views, nil
}

func (s *PollService) GetPoll(ctx context.Context, pollID, memberID string) (*ports.PollView, error) {
	poll, err := s.polls.FindByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	v := view(poll, memberID, s.now())
	return &v, nil
}

// RecordResponse checks the poll lifecycle, then the choice, then records
// the member's single response. An expired poll is reported as closed
// whatever the payload. Resubmission overwrites the earlier choice.
func (s *PollService) RecordResponse(ctx context.Context, pollID string, member *domain.Member, choice string) (*ports.VoteResult, error) {
	now := s.now()
	poll, err := s.polls.FindByID(ctx, pollID)
	if err != nil {
		if errors.Is(err, domain.ErrPollNotFound) {
			metrics.VotesRejectedTotal.WithLabelValues("poll_not_found").Inc()
		}
		return nil, err
	}
	if poll.IsExpired(now) {
		metrics.VotesRejectedTotal.WithLabelValues("poll_closed").Inc()
		return nil, domain.ErrPollClosed
	}

	c, err := domain.ParseChoice(choice)
	if err != nil {
		metrics.VotesRejectedTotal.WithLabelValues("invalid_choice").Inc()
		return nil, err
	}

	resp := domain.Response{MemberID: member.ID, Choice: c, RecordedAt: now.UTC()}

	// The store re-checks expiry atomically with the write; a response that
	// lands after expiry is rejected there.
	created, err := s.polls.UpsertResponse(ctx, poll.ID, resp, now)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPollClosed):
			metrics.VotesRejectedTotal.WithLabelValues("poll_closed").Inc()
			return nil, err
		case errors.Is(err, domain.ErrPollNotFound):
			metrics.VotesRejectedTotal.WithLabelValues("poll_not_found").Inc()
			return nil, err
		}
		return nil, fmt.Errorf("record response: %w", err)
	}

	kind := "overwrite"
	if created {
		kind = "new"
	}
	metrics.VotesRecordedTotal.WithLabelValues(string(c), kind).Inc()

	if s.history != nil {
		s.history.Enqueue(ports.VoteHistoryInput{
			MemberID: member.ID,
			PollID:   poll.ID,
			Choice:   c,
			VotedAt:  resp.RecordedAt,
		})
	}

	s.log.Debug().
		Str("poll_id", poll.ID).
		Str("member_id", member.ID).
		Str("choice", string(c)).
		Bool("created", created).
		Msg("response recorded")

	return &ports.VoteResult{
		PollID:     poll.ID,
		Choice:     c,
		RecordedAt: resp.RecordedAt,
		Created:    created,
	}, nil
}

func (s *PollService) DeletePoll(ctx context.Context, pollID string) error {
	if err := s.polls.Delete(ctx, pollID); err != nil {
		return err
	}
	s.log.Info().Str("poll_id", pollID).Msg("poll deleted")
	return nil
}

// PollResponses resolves each responder's username through the member
// store; members deleted since voting show as "Unknown".
func (s *PollService) PollResponses(ctx context.Context, pollID string) ([]ports.ResponseRow, error) {
	poll, err := s.polls.FindByID(ctx, pollID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(poll.Responses))
	for _, r := range poll.Responses {
		ids = append(ids, r.MemberID)
	}

	names := make(map[string]string, len(ids))
	if len(ids) > 0 {
		members, err := s.members.FindByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("poll responses: %w", err)
		}
		for _, m := range members {
			names[m.ID] = m.Username
		}
	}

	rows := make([]ports.ResponseRow, 0, len(poll.Responses))
	for _, r := range poll.Responses {
		name, ok := names[r.MemberID]
		if !ok {
			name = "Unknown"
		}
		rows = append(rows, ports.ResponseRow{
			MemberID:   r.MemberID,
			Username:   name,
			Choice:     r.Choice,
			RecordedAt: r.RecordedAt,
		})
	}
	return rows, nil
}

func view(p *domain.Poll, memberID string, now time.Time) ports.PollView {
	v := ports.PollView{
		Poll:    p,
		Active:  p.IsActive(now),
		Expired: p.IsExpired(now),
		Tally:   p.Tally(),
	}
	if memberID != "" {
		if r, ok := p.ResponseOf(memberID); ok {
			c := r.Choice
			v.MyChoice = &c
		}
	}
	return v
}
