package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ghorer-khabar/mealclub/internal/core/domain"
	"github.com/ghorer-khabar/mealclub/internal/core/ports"
)

// PollHandler serves poll lifecycle and voting endpoints.
type PollHandler struct {
	service ports.PollService
}

func NewPollHandler(service ports.PollService) *PollHandler {
	return &PollHandler{service: service}
}

// List handles GET /api/polls. With ?active=true only open polls are
// returned.
//
// @Summary      List polls
// @Tags         polls
// @Produce      json
// @Param        active  query     bool  false  "Only open polls"
// @Success      200     {object}  Envelope
// @Router       /api/polls [get]
func (h *PollHandler) List(c echo.Context) error {
	activeOnly := strings.EqualFold(c.QueryParam("active"), "true")

	views, err := h.service.ListPolls(c.Request().Context(), activeOnly)
	if err != nil {
		return err
	}

	out := make([]pollResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toPollResponse(v))
	}
	return respond(c, http.StatusOK, "", map[string]any{"polls": out})
}

// Create handles POST /api/polls.
//
// @Summary      Create a poll
// @Tags         polls
// @Accept       json
// @Produce      json
// @Param        body  body      createPollRequest  true  "Poll"
// @Success      201   {object}  Envelope
// @Failure      400   {object}  Envelope
// @Failure      403   {object}  Envelope
// @Router       /api/polls [post]
func (h *PollHandler) Create(c echo.Context) error {
	var req createPollRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	expiresAt, err := parseTimestamp(req.ExpiresAt)
	if err != nil {
		return err
	}

	poll, err := h.service.CreatePoll(c.Request().Context(), req.Title, expiresAt)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Poll created successfully", map[string]any{"poll": poll})
}

// Get handles GET /api/polls/:id. The caller's own choice is included.
//
// @Summary      Get a poll
// @Tags         polls
// @Produce      json
// @Param        id   path      string  true  "Poll id"
// @Success      200  {object}  Envelope
// @Failure      401  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /api/polls/{id} [get]
func (h *PollHandler) Get(c echo.Context) error {
	m, err := currentMember(c)
	if err != nil {
		return err
	}

	v, err := h.service.GetPoll(c.Request().Context(), c.Param("id"), m.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", map[string]any{"poll": toPollResponse(*v)})
}

// Delete handles DELETE /api/polls/:id.
//
// @Summary      Delete a poll
// @Tags         polls
// @Produce      json
// @Param        id   path      string  true  "Poll id"
// @Success      200  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /api/polls/{id} [delete]
func (h *PollHandler) Delete(c echo.Context) error {
	if err := h.service.DeletePoll(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Poll deleted successfully", nil)
}

// Respond handles POST /api/polls/:id/responses. A repeated submission
// replaces the caller's earlier choice.
//
// @Summary      Submit a response
// @Tags         polls
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Poll id"
// @Param        body  body      pollResponseRequest  true  "yes or no"
// @Success      200   {object}  Envelope
// @Failure      400   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Router       /api/polls/{id}/responses [post]
func (h *PollHandler) Respond(c echo.Context) error {
	m, err := currentMember(c)
	if err != nil {
		return err
	}
	var req pollResponseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.RecordResponse(c.Request().Context(), c.Param("id"), m, req.Response)
	if err != nil {
		return err
	}

	msg := "Response updated successfully"
	if res.Created {
		msg = "Response recorded successfully"
	}
	return respond(c, http.StatusOK, msg, map[string]any{"vote": voteResponse{
		PollID:     res.PollID,
		Choice:     res.Choice,
		RecordedAt: res.RecordedAt,
		Created:    res.Created,
	}})
}

// Responses handles GET /api/admin/polls/:id/responses.
//
// @Summary      Poll responses
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "Poll id"
// @Success      200  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /api/admin/polls/{id}/responses [get]
func (h *PollHandler) Responses(c echo.Context) error {
	rows, err := h.service.PollResponses(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	out := make([]responseRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, responseRow{MemberID: r.MemberID, Username: r.Username, Choice: r.Choice, RecordedAt: r.RecordedAt})
	}
	return respond(c, http.StatusOK, "", map[string]any{"responses": out})
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, domain.Invalid("invalid expiration date")
	}
	return t, nil
}
