package controllers

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"partyplanner/internal/delivery/http/helpers"
	"partyplanner/internal/domain"
	"partyplanner/internal/store"
	"partyplanner/internal/view"
)

// Fetcher starts the fetches a viewer can trigger.
type Fetcher interface {
	GetParty(ctx context.Context, id int64) error
	Refresh(ctx context.Context) error
}

// StateReader exposes the current store snapshot.
type StateReader interface {
	Snapshot() store.Snapshot
}

// RenderedView exposes the latest rendered #app container.
type RenderedView interface {
	HTML() string
}

// StateResponse is the data part of GET /api/state.
type StateResponse struct {
	store.Snapshot
	Attending []domain.Guest `json:"attending"`
}

// StateSuccessResponse is the success envelope for GET /api/state.
type StateSuccessResponse struct {
	Data  *StateResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type ViewerController struct {
	Logger  *slog.Logger
	Fetcher Fetcher
	Store   StateReader
	View    RenderedView
	Shell   view.PageOptions
	// Dispatch runs fetches triggered by a request after the response is sent.
	Dispatch func(func())
}

func NewViewerController(logger *slog.Logger, fetcher Fetcher, state StateReader, rendered RenderedView, page view.PageOptions) *ViewerController {
	return &ViewerController{
		Logger:   logger,
		Fetcher:  fetcher,
		Store:    state,
		View:     rendered,
		Shell:    page,
		Dispatch: func(fn func()) { go fn() },
	}
}

// Page godoc
// @Summary Party planner page
// @Description Full HTML document with the current party list, selection and guest list.
// @Tags viewer
// @Produce html
// @Success 200 {string} string "HTML document"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router / [get]
func (c *ViewerController) Page(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := view.WritePage(&buf, c.View.HTML(), c.Shell); err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteHTML(w, http.StatusOK, buf.String())
}

// Fragment godoc
// @Summary Rendered app container
// @Description The #app container from the latest render, without the document shell.
// @Tags viewer
// @Produce html
// @Success 200 {string} string "HTML fragment"
// @Router /app [get]
func (c *ViewerController) Fragment(w http.ResponseWriter, r *http.Request) {
	helpers.WriteHTML(w, http.StatusOK, c.View.HTML())
}

// SelectParty godoc
// @Summary Select a party
// @Description Starts fetching the party by id and redirects back to the page. The detail pane updates when the fetch resolves.
// @Tags viewer
// @Param partyID path int true "Party ID"
// @Success 303 "redirect to /"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /parties/{partyID}/select [post]
func (c *ViewerController) SelectParty(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("partyID"), 10, 64)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid party id")
		return
	}
	ctx := context.WithoutCancel(r.Context())
	c.Dispatch(func() { _ = c.Fetcher.GetParty(ctx, id) })
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Refresh godoc
// @Summary Refresh all collections
// @Description Re-runs the startup fetches and redirects back to the page.
// @Tags viewer
// @Success 303 "redirect to /"
// @Router /refresh [post]
func (c *ViewerController) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())
	c.Dispatch(func() { _ = c.Fetcher.Refresh(ctx) })
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// State godoc
// @Summary Current viewer state
// @Description Store snapshot plus the guests attending the selected party.
// @Tags viewer
// @Produce json
// @Success 200 {object} controllers.StateSuccessResponse "data contains the snapshot"
// @Router /api/state [get]
func (c *ViewerController) State(w http.ResponseWriter, r *http.Request) {
	s := c.Store.Snapshot()
	helpers.WriteJSONSuccess(w, http.StatusOK, &StateResponse{
		Snapshot:  s,
		Attending: domain.GuestsAttending(s.SelectedParty, s.Guests, s.Rsvps),
	})
}
