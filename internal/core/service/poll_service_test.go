package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ghorer-khabar/mealclub/internal/core/domain"
	"github.com/ghorer-khabar/mealclub/internal/core/ports"
	"github.com/ghorer-khabar/mealclub/internal/testutil"
)

type recordingQueue struct {
	mu    sync.Mutex
	items []ports.VoteHistoryInput
}

func (q *recordingQueue) Enqueue(in ports.VoteHistoryInput) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, in)
}

type pollFixture struct {
	svc     *PollService
	polls   *testutil.PollStore
	members *testutil.MemberStore
	queue   *recordingQueue
	now     time.Time
}

func newPollFixture(t *testing.T) *pollFixture {
	t.Helper()
	f := &pollFixture{
		polls:   testutil.NewPollStore(),
		members: testutil.NewMemberStore(),
		queue:   &recordingQueue{},
		now:     time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewPollService(f.polls, f.members, f.queue, discardLogger)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *pollFixture) member(t *testing.T, username string) *domain.Member {
	t.Helper()
	m, err := f.members.Create(context.Background(), &domain.Member{Username: username, Role: domain.RoleMember})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	return m
}

func (f *pollFixture) poll(t *testing.T, title string, ttl time.Duration) *domain.Poll {
	t.Helper()
	p, err := f.svc.CreatePoll(context.Background(), title, f.now.Add(ttl))
	if err != nil {
		t.Fatalf("create poll: %v", err)
	}
	return p
}

func TestPollService_CreatePoll_Validation(t *testing.T) {
	f := newPollFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CreatePoll(ctx, "   ", f.now.Add(time.Hour)); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("blank title: expected validation error, got %v", err)
	}
	if _, err := f.svc.CreatePoll(ctx, "Lunch", time.Time{}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("zero expiry: expected validation error, got %v", err)
	}
	if _, err := f.svc.CreatePoll(ctx, "Lunch", f.now); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("non-future expiry: expected validation error, got %v", err)
	}
}

func TestPollService_RecordResponse_ResubmissionOverwrites(t *testing.T) {
	f := newPollFixture(t)
	ctx := context.Background()
	alice := f.member(t, "alice")
	p := f.poll(t, "Lunch Friday", 24*time.Hour)

	first, err := f.svc.RecordResponse(ctx, p.ID, alice, "yes")
	if err != nil {
		t.Fatalf("first response: %v", err)
	}
	if !first.Created {
		t.Error("first response should be created")
	}

	f.now = f.now.Add(time.Minute)
	second, err := f.svc.RecordResponse(ctx, p.ID, alice, "no")
	if err != nil {
		t.Fatalf("second response: %v", err)
	}
	if second.Created {
		t.Error("second response should overwrite")
	}

	stored, _ := f.polls.FindByID(ctx, p.ID)
	if len(stored.Responses) != 1 {
		t.Fatalf("expected exactly one response, got %d", len(stored.Responses))
	}
	if stored.Responses[0].Choice != domain.ChoiceNo {
		t.Errorf("expected latest choice no, got %s", stored.Responses[0].Choice)
	}
	if !stored.Responses[0].RecordedAt.Equal(f.now) {
		t.Errorf("expected timestamp refreshed to %v, got %v", f.now, stored.Responses[0].RecordedAt)
	}

	tally := stored.Tally()
	if tally.Yes != 0 || tally.No != 1 || tally.Total != 1 {
		t.Errorf("unexpected tally: %+v", tally)
	}
}

func TestPollService_RecordResponse_RejectsExpired(t *testing.T) {
	f := newPollFixture(t)
	ctx := context.Background()
	alice := f.member(t, "alice")
	p := f.poll(t, "Lunch Friday", time.Hour)

	// Exactly at expiry counts as expired.
	f.now = p.ExpiresAt
	if _, err := f.svc.RecordResponse(ctx, p.ID, alice, "yes"); !errors.Is(err, domain.ErrPollClosed) {
		t.Fatalf("expected ErrPollClosed at expiry, got %v", err)
	}

	stored, _ := f.polls.FindByID(ctx, p.ID)
	if len(stored.Responses) != 0 {
		t.Fatalf("expired poll must not be modified, got %d responses", len(stored.Responses))
	}
	if len(f.queue.items) != 0 {
		t.Fatal("rejected response must not reach vote history")
	}
}

func TestPollService_RecordResponse_ExpiredRejectsInvalidPayload(t *testing.T) {
	f := newPollFixture(t)
	ctx := context.Background()
	alice := f.member(t, "alice")
	p := f.poll(t, "Lunch Friday", time.Hour)

	f.now = p.ExpiresAt.Add(time.Hour)
	for _, choice := range []string{"maybe", ""} {
		if _, err := f.svc.RecordResponse(ctx, p.ID, alice, choice); !errors.Is(err, domain.ErrPollClosed) {
			t.Fatalf("choice %q on expired poll: expected ErrPollClosed, got %v", choice, err)
		}
	}
}

func TestPollService_RecordResponse_InvalidChoiceAndUnknownPoll(t *testing.T) {
	f := newPollFixture(t)
	ctx := context.Background()
	alice := f.member(t, "alice")
	p := f.poll(t, "Lunch Friday", time.Hour)

	if _, err := f.svc.RecordResponse(ctx, p.ID, alice, "maybe"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := f.svc.RecordResponse(ctx, "65f0000000000000000000ff", alice, "yes"); !errors.Is(err, domain.ErrPollNotFound) {
		t.Errorf("expected ErrPollNotFound, got %v", err)
	}
}

func TestPollService_RecordResponse_EnqueuesHistory(t *testing.T) {
	f := newPollFixture(t)
	alice := f.member(t, "alice")
	p := f.poll(t, "Lunch Friday", time.Hour)

	if _, err := f.svc.RecordResponse(context.Background(), p.ID, alice, "yes"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(f.queue.items) != 1 {
		t.Fatalf("expected 1 history item, got %d", len(f.queue.items))
	}
	got := f.queue.items[0]
	if got.MemberID != alice.ID || got.PollID != p.ID || got.Choice != domain.ChoiceYes {
		t.Fatalf("unexpected history item: %+v", got)
	}
}

func TestPollService_RecordResponse_ConcurrentSameMember(t *testing.T) {
	f := newPollFixture(t)
	ctx := context.Background()
	alice := f.member(t, "alice")
	p := f.poll(t, "Lunch Friday", time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			choice := "yes"
			if i%2 == 0 {
				choice = "no"
			}
			if _, err := f.svc.RecordResponse(ctx, p.ID, alice, choice); err != nil {
				t.Errorf("record: %v", err)
			}
		}(i)
	}
	wg.Wait()

	stored, _ := f.polls.FindByID(ctx, p.ID)
	if len(stored.Responses) != 1 {
		t.Fatalf("expected one response after concurrent submissions, got %d", len(stored.Responses))
	}
}

func TestPollService_GetPoll_IncludesOwnChoice(t *testing.T) {
	f := newPollFixture(t)
	ctx := context.Background()
	alice := f.member(t, "alice")
	bob := f.member(t, "bob")
	p := f.poll(t, "Lunch Friday", time.Hour)

	if _, err := f.svc.RecordResponse(ctx, p.ID, alice, "yes"); err != nil {
		t.Fatalf("record: %v", err)
	}

	v, err := f.svc.GetPoll(ctx, p.ID, alice.ID)
	if err != nil {
		t.Fatalf("GetPoll: %v", err)
	}
	if v.MyChoice == nil || *v.MyChoice != domain.ChoiceYes {
		t.Fatalf("expected own choice yes, got %v", v.MyChoice)
	}
	if !v.Active || v.Expired {
		t.Errorf("expected active poll, got active=%v expired=%v", v.Active, v.Expired)
	}
	if v.Tally.YesPercentage != 100 {
		t.Errorf("expected 100%% yes, got %d", v.Tally.YesPercentage)
	}

	v, _ = f.svc.GetPoll(ctx, p.ID, bob.ID)
	if v.MyChoice != nil {
		t.Fatalf("bob has not voted, got %v", *v.MyChoice)
	}
}

func TestPollService_ListPolls_ActiveOnly(t *testing.T) {
	f := newPollFixture(t)
	ctx := context.Background()
	short := f.poll(t, "Short", time.Hour)
	f.poll(t, "Long", 48*time.Hour)

	f.now = short.ExpiresAt

	all, err := f.svc.ListPolls(ctx, false)
	if err != nil {
		t.Fatalf("ListPolls: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 polls, got %d", len(all))
	}

	active, _ := f.svc.ListPolls(ctx, true)
	if len(active) != 1 || active[0].Poll.Title != "Long" {
		t.Fatalf("expected only Long to be active, got %+v", active)
	}
}

func TestPollService_PollResponses_ResolvesUsernames(t *testing.T) {
	f := newPollFixture(t)
	ctx := context.Background()
	alice := f.member(t, "alice")
	carol := f.member(t, "carol")
	p := f.poll(t, "Lunch Friday", time.Hour)

	_, _ = f.svc.RecordResponse(ctx, p.ID, alice, "yes")
	_, _ = f.svc.RecordResponse(ctx, p.ID, carol, "no")
	_ = f.members.Delete(ctx, carol.ID)

	rows, err := f.svc.PollResponses(ctx, p.ID)
	if err != nil {
		t.Fatalf("PollResponses: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Username != "alice" || rows[0].Choice != domain.ChoiceYes {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Username != "Unknown" {
		t.Errorf("deleted member should show as Unknown, got %q", rows[1].Username)
	}
}

func TestPollService_DeletePoll(t *testing.T) {
	f := newPollFixture(t)
	ctx := context.Background()
	p := f.poll(t, "Lunch Friday", time.Hour)

	if err := f.svc.DeletePoll(ctx, p.ID); err != nil {
		t.Fatalf("DeletePoll: %v", err)
	}
	if _, err := f.svc.GetPoll(ctx, p.ID, ""); !errors.Is(err, domain.ErrPollNotFound) {
		t.Fatalf("expected ErrPollNotFound, got %v", err)
	}
	if err := f.svc.DeletePoll(ctx, p.ID); !errors.Is(err, domain.ErrPollNotFound) {
		t.Fatalf("second delete: expected ErrPollNotFound, got %v", err)
	}
}
