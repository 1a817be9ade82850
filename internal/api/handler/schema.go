package handler

import (
	"time"

	"github.com/ghorer-khabar/mealclub/internal/core/domain"
	"github.com/ghorer-khabar/mealclub/internal/core/ports"
)

// --- Request types ---

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	// Role is optional and defaults to member.
	Role string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type createPollRequest struct {
	Title string `json:"title" validate:"required"`
	// ExpiresAt is an RFC 3339 timestamp.
	ExpiresAt string `json:"expires_at" validate:"required"`
}

// pollResponseRequest leaves the choice unchecked: the voting engine
// rejects an expired poll before it looks at the payload.
type pollResponseRequest struct {
	Response string `json:"response"`
}

type paymentRequest struct {
	Amount float64 `json:"amount"`
}

type selectPackageRequest struct {
	MealPackageID string `json:"meal_package_id" validate:"required"`
}

type createPackageRequest struct {
	Name  string  `json:"name"  validate:"required"`
	Price float64 `json:"price" validate:"gte=0"`
}

type updatePackageRequest struct {
	Name  *string  `json:"name"`
	Price *float64 `json:"price"`
}

type provisionMemberRequest struct {
	Username      string  `json:"username" validate:"required"`
	Password      string  `json:"password" validate:"required"`
	Role          string  `json:"role"`
	MealPackageID string  `json:"meal_package_id"`
	TotalPaid     float64 `json:"total_paid" validate:"gte=0"`
}

type updateMemberRequest struct {
	Role          *string  `json:"role"`
	Password      *string  `json:"password"`
	MealPackageID *string  `json:"meal_package_id"`
	TotalPaid     *float64 `json:"total_paid"`
}

// --- Response types ---

type userResponse struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Role          string    `json:"role"`
	MealPackageID *string   `json:"meal_package_id"`
	TotalPaid     float64   `json:"total_paid"`
	CreatedAt     time.Time `json:"created_at"`
}

func toUserResponse(m *domain.Member) userResponse {
	return userResponse{
		ID:            m.ID,
		Username:      m.Username,
		Role:          m.Role,
		MealPackageID: m.MealPackageID,
		TotalPaid:     m.TotalPaid,
		CreatedAt:     m.CreatedAt,
	}
}

type accountResponse struct {
	userResponse
	MealPackage *domain.MealPackage `json:"meal_package"`
	Due         *float64            `json:"due"`
}

func toAccountResponse(acc *ports.MemberAccount) accountResponse {
	return accountResponse{
		userResponse: toUserResponse(acc.Member),
		MealPackage:  acc.Package,
		Due:          acc.Due,
	}
}

type pollResponse struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`
	IsActive  bool           `json:"is_active"`
	IsExpired bool           `json:"is_expired"`
	MyChoice  *domain.Choice `json:"my_choice,omitempty"`
	Tally     domain.Tally   `json:"tally"`
}

func toPollResponse(v ports.PollView) pollResponse {
	return pollResponse{
		ID:        v.Poll.ID,
		Title:     v.Poll.Title,
		CreatedAt: v.Poll.CreatedAt,
		ExpiresAt: v.Poll.ExpiresAt,
		IsActive:  v.Active,
		IsExpired: v.Expired,
		MyChoice:  v.MyChoice,
		Tally:     v.Tally,
	}
}

type voteResponse struct {
	PollID     string        `json:"poll_id"`
	Choice     domain.Choice `json:"choice"`
	RecordedAt time.Time     `json:"recorded_at"`
	Created    bool          `json:"created"`
}

type responseRow struct {
	MemberID   string        `json:"member_id"`
	Username   string        `json:"username"`
	Choice     domain.Choice `json:"choice"`
	RecordedAt time.Time     `json:"recorded_at"`
}

type dashboardResponse struct {
	MealPackage *string  `json:"meal_package"`
	Price       *float64 `json:"price"`
	AmountPaid  float64  `json:"amount_paid"`
	Due         *float64 `json:"due"`
	YesVotes    int      `json:"yes_votes"`
}

type paymentInfoResponse struct {
	UserID    string  `json:"user_id"`
	Username  string  `json:"username"`
	TotalPaid float64 `json:"total_paid"`
}

type identityResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
