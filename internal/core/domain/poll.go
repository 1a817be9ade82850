package domain

import (
	"math"
	"strings"
	"time"
)

// Choice is a binary poll answer.
type Choice string

const (
	ChoiceYes Choice = "yes"
	ChoiceNo  Choice = "no"
)

// ParseChoice accepts exactly "yes" or "no".
func ParseChoice(s string) (Choice, error) {
	switch Choice(s) {
	case ChoiceYes, ChoiceNo:
		return Choice(s), nil
	}
	return "", Invalid("response must be 'yes' or 'no'")
}

// Response is a single member's answer on a poll. MemberID is unique
// within a poll.
type Response struct {
	MemberID   string    `json:"member_id"`
	Choice     Choice    `json:"choice"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Poll is a time-boxed yes/no question. There is no stored lifecycle
// state: open vs. expired is computed from ExpiresAt on every read.
type Poll struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	Responses []Response `json:"responses"`
}

// IsExpired reports whether voting is closed at now. The expiry instant
// itself is already expired.
func (p *Poll) IsExpired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// IsActive is the exact complement of IsExpired.
func (p *Poll) IsActive(now time.Time) bool {
	return !p.IsExpired(now)
}

// ResponseOf returns memberID's response, if any.
func (p *Poll) ResponseOf(memberID string) (Response, bool) {
	for _, r := range p.Responses {
		if r.MemberID == memberID {
			return r, true
		}
	}
	return Response{}, false
}

// Tally is the aggregate view of a poll's responses.
type Tally struct {
	Yes           int `json:"yes"`
	No            int `json:"no"`
	Total         int `json:"total"`
	YesPercentage int `json:"yes_percentage"`
	NoPercentage  int `json:"no_percentage"`
}

// Tally recomputes counts from the current responses.
func (p *Poll) Tally() Tally {
	var t Tally
	for _, r := range p.Responses {
		switch r.Choice {
		case ChoiceYes:
			t.Yes++
		case ChoiceNo:
			t.No++
		}
	}
	t.Total = len(p.Responses)
	if t.Total == 0 {
		return t
	}
	t.YesPercentage = percent(t.Yes, t.Total)
	t.NoPercentage = percent(t.No, t.Total)
	return t
}

func percent(n, total int) int {
	return int(math.Round(float64(n) / float64(total) * 100))
}

// NewPoll validates the inputs and builds a poll with no responses.
func NewPoll(title string, expiresAt, now time.Time) (*Poll, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, Invalid("poll title is required")
	}
	if expiresAt.IsZero() {
		return nil, Invalid("expiration date is required")
	}
	if !expiresAt.After(now) {
		return nil, Invalid("expiration date must be in the future")
	}
	return &Poll{
		Title:     title,
		CreatedAt: now.UTC(),
		ExpiresAt: expiresAt.UTC(),
		Responses: []Response{},
	}, nil
}
