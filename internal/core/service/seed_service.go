package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ghorer-khabar/mealclub/internal/core/domain"
	"github.com/ghorer-khabar/mealclub/internal/core/ports"
)

// SeedSummary reports what Seed inserted.
type SeedSummary struct {
	Packages []*domain.MealPackage
	Members  []*domain.Member
	Polls    []*domain.Poll
}

// SeedService wipes every collection and loads the demo data set.
type SeedService struct {
	members  ports.MemberRepository
	polls    ports.PollRepository
	packages ports.PackageRepository
	log      zerolog.Logger
	now      func() time.Time
}

func NewSeedService(members ports.MemberRepository, polls ports.PollRepository, packages ports.PackageRepository, log zerolog.Logger) *SeedService {
	return &SeedService{members: members, polls: polls, packages: packages, log: log, now: time.Now}
}

type seedMember struct {
	username string
	password string
	role     string
	pkg      int
	paid     float64
}

var (
	seedPackages = []struct {
		name  string
		price float64
	}{
		{"Standard", 100},
		{"Premium", 150},
		{"Deluxe", 200},
	}

	seedMembers = []seedMember{
		{"alice", "password1", domain.RoleMember, 0, 100},
		{"bob", "password2", domain.RoleMember, 1, 50},
		{"carol", "password3", domain.RoleMember, 2, 0},
		{"dave", "password4", domain.RoleMember, 0, 100},
		{"admin", "adminpass", domain.RoleAdmin, 1, 150},
	}
)

// Seed is destructive: every member, poll and package is removed first.
func (s *SeedService) Seed(ctx context.Context) (*SeedSummary, error) {
	if err := s.members.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("seed: clear members: %w", err)
	}
	if err := s.polls.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("seed: clear polls: %w", err)
	}
	if err := s.packages.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("seed: clear packages: %w", err)
	}

	sum := &SeedSummary{}

	for _, p := range seedPackages {
		pkg, err := s.packages.Create(ctx, &domain.MealPackage{Name: p.name, Price: p.price})
		if err != nil {
			return nil, fmt.Errorf("seed: package %s: %w", p.name, err)
		}
		sum.Packages = append(sum.Packages, pkg)
	}

	now := s.now().UTC()
	for _, sm := range seedMembers {
		hash, err := hashPassword(sm.password)
		if err != nil {
			return nil, err
		}
		pkgID := sum.Packages[sm.pkg].ID
		m, err := s.members.Create(ctx, &domain.Member{
			Username:      sm.username,
			PasswordHash:  hash,
			Role:          sm.role,
			MealPackageID: &pkgID,
			TotalPaid:     sm.paid,
			Votes:         []domain.VoteRecord{},
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return nil, fmt.Errorf("seed: member %s: %w", sm.username, err)
		}
		sum.Members = append(sum.Members, m)
	}

	alice, bob, carol, dave := sum.Members[0], sum.Members[1], sum.Members[2], sum.Members[3]
	polls := []struct {
		title     string
		expiresAt time.Time
		votes     []domain.Response
	}{
		{"Active Poll", now.Add(24 * time.Hour), []domain.Response{
			{MemberID: alice.ID, Choice: domain.ChoiceYes, RecordedAt: now},
			{MemberID: bob.ID, Choice: domain.ChoiceNo, RecordedAt: now},
			{MemberID: carol.ID, Choice: domain.ChoiceYes, RecordedAt: now},
		}},
		{"Expired Poll", now.Add(-24 * time.Hour), []domain.Response{
			{MemberID: alice.ID, Choice: domain.ChoiceNo, RecordedAt: now},
			{MemberID: bob.ID, Choice: domain.ChoiceYes, RecordedAt: now},
			{MemberID: dave.ID, Choice: domain.ChoiceYes, RecordedAt: now},
		}},
	}

	for _, p := range polls {
		// Inserted directly: the expired poll could never take a response
		// through the voting engine.
		poll, err := s.polls.Create(ctx, &domain.Poll{
			Title:     p.title,
			CreatedAt: now,
			ExpiresAt: p.expiresAt,
			Responses: p.votes,
		})
		if err != nil {
			return nil, fmt.Errorf("seed: poll %s: %w", p.title, err)
		}
		for _, r := range p.votes {
			vote := domain.VoteRecord{PollID: poll.ID, Choice: r.Choice, VotedAt: r.RecordedAt}
			if err := s.members.UpsertVote(ctx, r.MemberID, vote); err != nil {
				return nil, fmt.Errorf("seed: vote history: %w", err)
			}
		}
		sum.Polls = append(sum.Polls, poll)
	}

	s.log.Info().
		Int("packages", len(sum.Packages)).
		Int("members", len(sum.Members)).
		Int("polls", len(sum.Polls)).
		Msg("database seeded")
	return sum, nil
}
