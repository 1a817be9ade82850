package domain

import (
	"strings"
	"time"
)

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

const (
	UsernameMinLen = 3
	UsernameMaxLen = 30
	PasswordMinLen = 6
)

// VoteRecord is the member-side mirror of a poll response.
type VoteRecord struct {
	PollID  string    `json:"poll_id"`
	Choice  Choice    `json:"choice"`
	VotedAt time.Time `json:"voted_at"`
}

// Member models an account holder. PasswordHash is write-only from the
// outside: it never serializes.
type Member struct {
	ID            string       `json:"id"`
	Username      string       `json:"username"`
	PasswordHash  string       `json:"-"`
	Role          string       `json:"role"`
	MealPackageID *string      `json:"meal_package_id"`
	TotalPaid     float64      `json:"total_paid"`
	Votes         []VoteRecord `json:"votes"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// IsAdmin reports whether the member holds the administrator role.
func (m *Member) IsAdmin() bool { return m.Role == RoleAdmin }

// Vote returns the member's recorded vote for pollID, if any.
func (m *Member) Vote(pollID string) (VoteRecord, bool) {
	for _, v := range m.Votes {
		if v.PollID == pollID {
			return v, true
		}
	}
	return VoteRecord{}, false
}

// YesVotes counts the member's recorded "yes" votes.
func (m *Member) YesVotes() int {
	n := 0
	for _, v := range m.Votes {
		if v.Choice == ChoiceYes {
			n++
		}
	}
	return n
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleMember || role == RoleAdmin
}

// NormalizeUsername trims surrounding whitespace and checks length bounds.
func NormalizeUsername(username string) (string, error) {
	u := strings.TrimSpace(username)
	if u == "" {
		return "", Invalid("username is required")
	}
	if len(u) < UsernameMinLen {
		return "", Invalid("username must be at least %d characters long", UsernameMinLen)
	}
	if len(u) > UsernameMaxLen {
		return "", Invalid("username cannot exceed %d characters", UsernameMaxLen)
	}
	return u, nil
}

// ValidatePassword checks the plaintext password before it is hashed.
func ValidatePassword(password string) error {
	if password == "" {
		return Invalid("password is required")
	}
	if len(password) < PasswordMinLen {
		return Invalid("password must be at least %d characters long", PasswordMinLen)
	}
	return nil
}

// ValidateAmount rejects negative monetary totals.
func ValidateAmount(field string, v float64) error {
	if v < 0 {
		return Invalid("%s cannot be negative", field)
	}
	return nil
}
