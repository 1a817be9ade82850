// Package testutil holds in-memory repositories for service and router tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ghorer-khabar/mealclub/internal/core/domain"
	"github.com/ghorer-khabar/mealclub/internal/core/ports"
)

func newID() string { return primitive.NewObjectID().Hex() }

// MemberStore is a mutex-guarded ports.MemberRepository.
type MemberStore struct {
	mu      sync.Mutex
	members map[string]*domain.Member
	order   []string

	// Err, when set, is returned by every call.
	Err error
}

func NewMemberStore() *MemberStore {
	return &MemberStore{members: make(map[string]*domain.Member)}
}

func cloneMember(m *domain.Member) *domain.Member {
	c := *m
	if m.MealPackageID != nil {
		id := *m.MealPackageID
		c.MealPackageID = &id
	}
	c.Votes = append([]domain.VoteRecord(nil), m.Votes...)
	return &c
}

func (s *MemberStore) Create(_ context.Context, m *domain.Member) (*domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, existing := range s.members {
		if existing.Username == m.Username {
			return nil, domain.ErrUsernameTaken
		}
	}
	c := cloneMember(m)
	if c.ID == "" {
		c.ID = newID()
	}
	s.members[c.ID] = c
	s.order = append(s.order, c.ID)
	return cloneMember(c), nil
}

func (s *MemberStore) FindByID(_ context.Context, id string) (*domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	m, ok := s.members[id]
	if !ok {
		return nil, domain.ErrMemberNotFound
	}
	return cloneMember(m), nil
}

func (s *MemberStore) FindByUsername(_ context.Context, username string) (*domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, m := range s.members {
		if m.Username == username {
			return cloneMember(m), nil
		}
	}
	return nil, domain.ErrMemberNotFound
}

func (s *MemberStore) FindByIDs(_ context.Context, ids []string) ([]*domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]*domain.Member, 0, len(ids))
	for _, id := range ids {
		if m, ok := s.members[id]; ok {
			out = append(out, cloneMember(m))
		}
	}
	return out, nil
}

func (s *MemberStore) List(_ context.Context, filter ports.MemberFilter) ([]*domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]*domain.Member, 0, len(s.order))
	for _, id := range s.order {
		m, ok := s.members[id]
		if !ok || (filter.Role != "" && m.Role != filter.Role) {
			continue
		}
		out = append(out, cloneMember(m))
	}
	return out, nil
}

func (s *MemberStore) Update(_ context.Context, id string, upd ports.MemberUpdate) (*domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	m, ok := s.members[id]
	if !ok {
		return nil, domain.ErrMemberNotFound
	}
	if upd.Role != nil {
		m.Role = *upd.Role
	}
	if upd.PasswordHash != nil {
		m.PasswordHash = *upd.PasswordHash
	}
	if upd.ClearMealPackage {
		m.MealPackageID = nil
	} else if upd.MealPackageID != nil {
		pid := *upd.MealPackageID
		m.MealPackageID = &pid
	}
	if upd.TotalPaid != nil {
		m.TotalPaid = *upd.TotalPaid
	}
	m.UpdatedAt = time.Now().UTC()
	return cloneMember(m), nil
}

func (s *MemberStore) AddPayment(_ context.Context, id string, amount float64) (*domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	m, ok := s.members[id]
	if !ok {
		return nil, domain.ErrMemberNotFound
	}
	m.TotalPaid += amount
	m.UpdatedAt = time.Now().UTC()
	return cloneMember(m), nil
}

func (s *MemberStore) UpsertVote(_ context.Context, memberID string, vote domain.VoteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	m, ok := s.members[memberID]
	if !ok {
		return domain.ErrMemberNotFound
	}
	for i := range m.Votes {
		if m.Votes[i].PollID == vote.PollID {
			if !m.Votes[i].VotedAt.After(vote.VotedAt) {
				m.Votes[i] = vote
			}
			return nil
		}
	}
	m.Votes = append(m.Votes, vote)
	return nil
}

func (s *MemberStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.members[id]; !ok {
		return domain.ErrMemberNotFound
	}
	delete(s.members, id)
	return nil
}

func (s *MemberStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.members = make(map[string]*domain.Member)
	s.order = nil
	return nil
}

// PollStore is a mutex-guarded ports.PollRepository. UpsertResponse holds
// the lock across the expiry check and the write, like the single-document
// update of the Mongo store.
type PollStore struct {
	mu    sync.Mutex
	polls map[string]*domain.Poll
	order []string

	Err error
}

func NewPollStore() *PollStore {
	return &PollStore{polls: make(map[string]*domain.Poll)}
}

func clonePoll(p *domain.Poll) *domain.Poll {
	c := *p
	c.Responses = append([]domain.Response(nil), p.Responses...)
	return &c
}

func (s *PollStore) Create(_ context.Context, p *domain.Poll) (*domain.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	c := clonePoll(p)
	if c.ID == "" {
		c.ID = newID()
	}
	if c.Responses == nil {
		c.Responses = []domain.Response{}
	}
	s.polls[c.ID] = c
	s.order = append(s.order, c.ID)
	return clonePoll(c), nil
}

func (s *PollStore) FindByID(_ context.Context, id string) (*domain.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.polls[id]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	return clonePoll(p), nil
}

// List returns polls newest first.
func (s *PollStore) List(_ context.Context, filter ports.PollFilter) ([]*domain.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]*domain.Poll, 0, len(s.order))
	for _, id := range s.order {
		p, ok := s.polls[id]
		if !ok {
			continue
		}
		if !filter.OpenAt.IsZero() && p.IsExpired(filter.OpenAt) {
			continue
		}
		out = append(out, clonePoll(p))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *PollStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.polls[id]; !ok {
		return domain.ErrPollNotFound
	}
	delete(s.polls, id)
	return nil
}

func (s *PollStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.polls = make(map[string]*domain.Poll)
	s.order = nil
	return nil
}

func (s *PollStore) UpsertResponse(_ context.Context, pollID string, resp domain.Response, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	p, ok := s.polls[pollID]
	if !ok {
		return false, domain.ErrPollNotFound
	}
	if p.IsExpired(now) {
		return false, domain.ErrPollClosed
	}
	for i := range p.Responses {
		if p.Responses[i].MemberID == resp.MemberID {
			p.Responses[i].Choice = resp.Choice
			p.Responses[i].RecordedAt = resp.RecordedAt
			return false, nil
		}
	}
	p.Responses = append(p.Responses, resp)
	return true, nil
}

// Expire moves a poll's expiry, for lifecycle tests.
func (s *PollStore) Expire(id string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.polls[id]; ok {
		p.ExpiresAt = at
	}
}

// PackageStore is a mutex-guarded ports.PackageRepository.
type PackageStore struct {
	mu    sync.Mutex
	pkgs  map[string]*domain.MealPackage
	order []string

	Err error
}

func NewPackageStore() *PackageStore {
	return &PackageStore{pkgs: make(map[string]*domain.MealPackage)}
}

func (s *PackageStore) Create(_ context.Context, p *domain.MealPackage) (*domain.MealPackage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	c := *p
	if c.ID == "" {
		c.ID = newID()
	}
	s.pkgs[c.ID] = &c
	s.order = append(s.order, c.ID)
	out := c
	return &out, nil
}

func (s *PackageStore) FindByID(_ context.Context, id string) (*domain.MealPackage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.pkgs[id]
	if !ok {
		return nil, domain.ErrPackageNotFound
	}
	c := *p
	return &c, nil
}

func (s *PackageStore) List(_ context.Context) ([]*domain.MealPackage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]*domain.MealPackage, 0, len(s.order))
	for _, id := range s.order {
		if p, ok := s.pkgs[id]; ok {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *PackageStore) Update(_ context.Context, id string, upd ports.PackageUpdate) (*domain.MealPackage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.pkgs[id]
	if !ok {
		return nil, domain.ErrPackageNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	c := *p
	return &c, nil
}

func (s *PackageStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.pkgs[id]; !ok {
		return domain.ErrPackageNotFound
	}
	delete(s.pkgs, id)
	return nil
}

func (s *PackageStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.pkgs = make(map[string]*domain.MealPackage)
	s.order = nil
	return nil
}

var (
	_ ports.MemberRepository  = (*MemberStore)(nil)
	_ ports.PollRepository    = (*PollStore)(nil)
	_ ports.PackageRepository = (*PackageStore)(nil)
)
