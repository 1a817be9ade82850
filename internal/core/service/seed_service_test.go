package service

import (
	"context"
	"testing"
	"time"

	"github.com/ghorer-khabar/mealclub/internal/core/domain"
	"github.com/ghorer-khabar/mealclub/internal/core/ports"
	"github.com/ghorer-khabar/mealclub/internal/testutil"
)

func TestSeedService_LoadsDemoData(t *testing.T) {
	members := testutil.NewMemberStore()
	polls := testutil.NewPollStore()
	packages := testutil.NewPackageStore()
	ctx := context.Background()

	// Pre-existing data is wiped.
	_, _ = members.Create(ctx, &domain.Member{Username: "stale", Role: domain.RoleMember})

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewSeedService(members, polls, packages, discardLogger)
	svc.now = func() time.Time { return now }

	sum, err := svc.Seed(ctx)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if len(sum.Packages) != 3 || len(sum.Members) != 5 || len(sum.Polls) != 2 {
		t.Fatalf("unexpected summary sizes: %d/%d/%d", len(sum.Packages), len(sum.Members), len(sum.Polls))
	}

	if _, err := members.FindByUsername(ctx, "stale"); err == nil {
		t.Error("expected pre-existing member to be wiped")
	}

	admins, _ := members.List(ctx, ports.MemberFilter{Role: domain.RoleAdmin})
	if len(admins) != 1 || admins[0].Username != "admin" {
		t.Fatalf("expected one admin, got %+v", admins)
	}

	active, _ := polls.List(ctx, ports.PollFilter{OpenAt: now})
	if len(active) != 1 || active[0].Title != "Active Poll" {
		t.Fatalf("expected only Active Poll open, got %+v", active)
	}
	tally := active[0].Tally()
	if tally.Yes != 2 || tally.No != 1 {
		t.Errorf("unexpected active tally: %+v", tally)
	}

	alice, _ := members.FindByUsername(ctx, "alice")
	if len(alice.Votes) != 2 || alice.YesVotes() != 1 {
		t.Errorf("expected alice to have 2 mirrored votes with 1 yes, got %+v", alice.Votes)
	}
}
