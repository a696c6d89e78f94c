// handlers_runs.go - Run history handlers
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/wastewise-india/sortline/store"
)

// RunsHandler serves the run history.
type RunsHandler struct {
	runs RunStore
}

// NewRunsHandler creates a runs handler. runs may be nil.
func NewRunsHandler(runs RunStore) *RunsHandler {
	return &RunsHandler{runs: runs}
}

// HandleListRuns returns recent runs, newest first. ?limit= caps the count.
func (h *RunsHandler) HandleListRuns(c echo.Context) error {
	if h.runs == nil {
		return NewStoreDisabledError()
	}
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return NewBadRequestError("limit must be a positive integer", err)
		}
		limit = n
	}
	runs, err := h.runs.ListRuns(c.Request().Context(), limit)
	if err != nil {
		return NewInternalError("failed to list runs", err)
	}
	if runs == nil {
		runs = []store.RunRecord{}
	}
	return c.JSON(http.StatusOK, runs)
}

// HandleGetRun returns one run by session id.
func (h *RunsHandler) HandleGetRun(c echo.Context) error {
	if h.runs == nil {
		return NewStoreDisabledError()
	}
	id := c.Param("id")
	rec, err := h.runs.GetRun(c.Request().Context(), id)
	if errors.Is(err, store.ErrRunNotFound) {
		return NewNotFoundError("run", id)
	}
	if err != nil {
		return NewInternalError("failed to load run", err)
	}
	return c.JSON(http.StatusOK, rec)
}
