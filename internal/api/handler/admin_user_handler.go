package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ghorer-khabar/mealclub/internal/core/ports"
)

// AdminUserHandler serves member administration under /api/admin/users.
type AdminUserHandler struct {
	members ports.MemberService
}

func NewAdminUserHandler(members ports.MemberService) *AdminUserHandler {
	return &AdminUserHandler{members: members}
}

// List handles GET /api/admin/users, optionally filtered by ?role=.
//
// @Summary      List members
// @Tags         admin
// @Produce      json
// @Param        role  query     string  false  "member or admin"
// @Success      200   {object}  Envelope
// @Failure      400   {object}  Envelope
// @Router       /api/admin/users [get]
func (h *AdminUserHandler) List(c echo.Context) error {
	members, err := h.members.ListMembers(c.Request().Context(), c.QueryParam("role"))
	if err != nil {
		return err
	}

	out := make([]userResponse, 0, len(members))
	for _, m := range members {
		out = append(out, toUserResponse(m))
	}
	return respond(c, http.StatusOK, "", map[string]any{"users": out})
}

// Create handles POST /api/admin/users.
//
// @Summary      Provision a member
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      provisionMemberRequest  true  "Member"
// @Success      201   {object}  Envelope
// @Failure      400   {object}  Envelope
// @Router       /api/admin/users [post]
func (h *AdminUserHandler) Create(c echo.Context) error {
	var req provisionMemberRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	acc, err := h.members.ProvisionMember(c.Request().Context(), ports.ProvisionMemberInput{
		Username:      req.Username,
		Password:      req.Password,
		Role:          req.Role,
		MealPackageID: req.MealPackageID,
		TotalPaid:     req.TotalPaid,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "User created successfully", map[string]any{"user": toAccountResponse(acc)})
}

// Update handles PUT /api/admin/users/:id. The response carries the
// balance due against the member's package.
//
// @Summary      Edit a member
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Member id"
// @Param        body  body      updateMemberRequest  true  "Fields to change"
// @Success      200   {object}  Envelope
// @Failure      400   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Router       /api/admin/users/{id} [put]
func (h *AdminUserHandler) Update(c echo.Context) error {
	var req updateMemberRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	acc, err := h.members.UpdateMember(c.Request().Context(), c.Param("id"), ports.UpdateMemberInput{
		Role:          req.Role,
		Password:      req.Password,
		MealPackageID: req.MealPackageID,
		TotalPaid:     req.TotalPaid,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User updated successfully", map[string]any{"user": toAccountResponse(acc)})
}

// Delete handles DELETE /api/admin/users/:id.
//
// @Summary      Delete a member
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "Member id"
// @Success      200  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /api/admin/users/{id} [delete]
func (h *AdminUserHandler) Delete(c echo.Context) error {
	if err := h.members.DeleteMember(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User deleted successfully", nil)
}
