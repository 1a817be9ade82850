package domain

import (
	"errors"
	"testing"
	"time"
)

func TestPoll_ExpiryBoundary(t *testing.T) {
	exp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &Poll{ExpiresAt: exp}

	cases := []struct {
		name    string
		now     time.Time
		expired bool
	}{
		{"before", exp.Add(-time.Nanosecond), false},
		{"at expiry instant", exp, true},
		{"after", exp.Add(time.Second), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.IsExpired(tc.now); got != tc.expired {
				t.Fatalf("IsExpired = %v, want %v", got, tc.expired)
			}
			if got := p.IsActive(tc.now); got == tc.expired {
				t.Fatalf("IsActive = %v, must be the complement of IsExpired", got)
			}
		})
	}
}

func TestPoll_TallyEmpty(t *testing.T) {
	p := &Poll{}
	if got := p.Tally(); got != (Tally{}) {
		t.Fatalf("expected zero tally, got %+v", got)
	}
}

func TestPoll_TallyPercentagesSumTo100(t *testing.T) {
	for yes := 0; yes <= 7; yes++ {
		for no := 0; no <= 7; no++ {
			if yes+no == 0 {
				continue
			}
			p := &Poll{}
			for i := 0; i < yes; i++ {
				p.Responses = append(p.Responses, Response{Choice: ChoiceYes})
			}
			for i := 0; i < no; i++ {
				p.Responses = append(p.Responses, Response{Choice: ChoiceNo})
			}
			tl := p.Tally()
			if tl.Yes != yes || tl.No != no || tl.Total != yes+no {
				t.Fatalf("counts wrong for %d/%d: %+v", yes, no, tl)
			}
			sum := tl.YesPercentage + tl.NoPercentage
			if sum < 99 || sum > 101 {
				t.Fatalf("percentages for %d/%d sum to %d", yes, no, sum)
			}
		}
	}
}

func TestPoll_TallySingleYes(t *testing.T) {
	p := &Poll{Responses: []Response{{MemberID: "a", Choice: ChoiceYes}}}
	want := Tally{Yes: 1, Total: 1, YesPercentage: 100}
	if got := p.Tally(); got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestParseChoice(t *testing.T) {
	for _, s := range []string{"yes", "no"} {
		if _, err := ParseChoice(s); err != nil {
			t.Fatalf("ParseChoice(%q): %v", s, err)
		}
	}
	for _, s := range []string{"", "YES", "maybe", " yes"} {
		if _, err := ParseChoice(s); !errors.Is(err, ErrValidation) {
			t.Fatalf("ParseChoice(%q) = %v, want validation error", s, err)
		}
	}
}

func TestNewPoll(t *testing.T) {
	now := time.Now()

	if _, err := NewPoll("  ", now.Add(time.Hour), now); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank title: got %v", err)
	}
	if _, err := NewPoll("Lunch", time.Time{}, now); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero expiry: got %v", err)
	}
	if _, err := NewPoll("Lunch", now, now); !errors.Is(err, ErrValidation) {
		t.Fatalf("non-future expiry: got %v", err)
	}

	p, err := NewPoll(" Lunch Friday ", now.Add(time.Hour), now)
	if err != nil {
		t.Fatalf("NewPoll: %v", err)
	}
	if p.Title != "Lunch Friday" || len(p.Responses) != 0 || !p.IsActive(now) {
		t.Fatalf("unexpected poll: %+v", p)
	}
}
