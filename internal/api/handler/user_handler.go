package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ghorer-khabar/mealclub/internal/core/ports"
)

// UserHandler serves the member self-service endpoints under /api/user.
type UserHandler struct {
	members ports.MemberService
}

func NewUserHandler(members ports.MemberService) *UserHandler {
	return &UserHandler{members: members}
}

// Dashboard handles GET /api/user/dashboard.
//
// @Summary      Member dashboard
// @Tags         user
// @Produce      json
// @Success      200  {object}  Envelope
// @Failure      401  {object}  Envelope
// @Router       /api/user/dashboard [get]
func (h *UserHandler) Dashboard(c echo.Context) error {
	m, err := currentMember(c)
	if err != nil {
		return err
	}

	d, err := h.members.Dashboard(c.Request().Context(), m.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", dashboardResponse{
		MealPackage: d.MealPackage,
		Price:       d.Price,
		AmountPaid:  d.AmountPaid,
		Due:         d.Due,
		YesVotes:    d.YesVotes,
	})
}

// PaymentInfo handles GET /api/user/payment.
//
// @Summary      Payment total
// @Tags         user
// @Produce      json
// @Success      200  {object}  Envelope
// @Router       /api/user/payment [get]
func (h *UserHandler) PaymentInfo(c echo.Context) error {
	m, err := currentMember(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", paymentInfoResponse{UserID: m.ID, Username: m.Username, TotalPaid: m.TotalPaid})
}

// RecordPayment handles POST /api/user/payment.
//
// @Summary      Record a payment
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      paymentRequest  true  "Amount"
// @Success      200   {object}  Envelope
// @Failure      400   {object}  Envelope
// @Router       /api/user/payment [post]
func (h *UserHandler) RecordPayment(c echo.Context) error {
	m, err := currentMember(c)
	if err != nil {
		return err
	}
	var req paymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	updated, err := h.members.RecordPayment(c.Request().Context(), m.ID, req.Amount)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Payment recorded successfully", paymentInfoResponse{
		UserID:    updated.ID,
		Username:  updated.Username,
		TotalPaid: updated.TotalPaid,
	})
}

// SelectMealPackage handles PUT /api/user/meal-package.
//
// @Summary      Choose a meal package
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      selectPackageRequest  true  "Package id"
// @Success      200   {object}  Envelope
// @Failure      400   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Router       /api/user/meal-package [put]
func (h *UserHandler) SelectMealPackage(c echo.Context) error {
	m, err := currentMember(c)
	if err != nil {
		return err
	}
	var req selectPackageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	updated, err := h.members.SelectMealPackage(c.Request().Context(), m.ID, req.MealPackageID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Meal package updated successfully", map[string]any{"user": toUserResponse(updated)})
}

// ClearMealPackage handles DELETE /api/user/meal-package.
//
// @Summary      Drop the meal package
// @Tags         user
// @Produce      json
// @Success      200  {object}  Envelope
// @Router       /api/user/meal-package [delete]
func (h *UserHandler) ClearMealPackage(c echo.Context) error {
	m, err := currentMember(c)
	if err != nil {
		return err
	}

	updated, err := h.members.ClearMealPackage(c.Request().Context(), m.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Meal package removed successfully", map[string]any{"user": toUserResponse(updated)})
}

// Votes handles GET /api/user/votes. With ?pollId= only that poll's vote is
// returned, or null when the member has not voted on it.
//
// @Summary      Vote history
// @Tags         user
// @Produce      json
// @Param        pollId  query     string  false  "Poll id"
// @Success      200     {object}  Envelope
// @Router       /api/user/votes [get]
func (h *UserHandler) Votes(c echo.Context) error {
	m, err := currentMember(c)
	if err != nil {
		return err
	}

	if pollID := c.QueryParam("pollId"); pollID != "" {
		v, ok := m.Vote(pollID)
		if !ok {
			return respond(c, http.StatusOK, "", map[string]any{"vote": nil})
		}
		return respond(c, http.StatusOK, "", map[string]any{"vote": v})
	}
	return respond(c, http.StatusOK, "", map[string]any{"votes": m.Votes})
}
