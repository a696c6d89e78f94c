// handlers_line.go - Line control and snapshot handlers
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/wastewise-india/sortline/sim"
	"github.com/wastewise-india/sortline/store"
)

// MIMEApplicationMsgpack selects binary snapshot encoding.
const MIMEApplicationMsgpack = "application/msgpack"

// LineHandler exposes the live controller's commands.
type LineHandler struct {
	line LineController
	runs RunStore
}

// NewLineHandler creates a line handler. runs may be nil.
func NewLineHandler(line LineController, runs RunStore) *LineHandler {
	return &LineHandler{line: line, runs: runs}
}

// HandleStart starts the line and returns the resulting snapshot.
func (h *LineHandler) HandleStart(c echo.Context) error {
	snap, err := h.line.Start(c.Request().Context())
	if err != nil {
		return controllerError(err)
	}
	return writeSnapshot(c, snap)
}

// HandleStop pauses the line.
func (h *LineHandler) HandleStop(c echo.Context) error {
	snap, err := h.line.Stop(c.Request().Context())
	if err != nil {
		return controllerError(err)
	}
	return writeSnapshot(c, snap)
}

// HandleReset saves the ended session when a store is configured, then
// returns the fresh session's snapshot.
func (h *LineHandler) HandleReset(c echo.Context) error {
	ctx := c.Request().Context()
	ended, fresh, err := h.line.Reset(ctx)
	if err != nil {
		return controllerError(err)
	}
	if h.runs != nil && ended.Clock > 0 {
		rec := store.NewRunRecord(ended, h.line.Seed(), time.Now().UTC())
		// the session is gone from the line whether or not the client is still there
		if err := h.runs.SaveRun(context.WithoutCancel(ctx), rec); err != nil {
			// the reset itself already happened
			logrus.Warnf("Failed to save run %s: %v", rec.ID, err)
		} else {
			logrus.Infof("Saved run %s (%d processed, %d%% recovered)",
				rec.ID, rec.Stats.TotalProcessed, rec.Stats.RecoveryPercentage)
		}
	}
	return writeSnapshot(c, fresh)
}

// HandleStep runs one frame of a stopped line.
func (h *LineHandler) HandleStep(c echo.Context) error {
	snap, err := h.line.StepFrame(c.Request().Context())
	if err != nil {
		return controllerError(err)
	}
	return writeSnapshot(c, snap)
}

// HandleSnapshot returns the latest published snapshot.
func (h *LineHandler) HandleSnapshot(c echo.Context) error {
	return writeSnapshot(c, h.line.Snapshot())
}

// writeSnapshot encodes snap as msgpack when the client accepts it, JSON otherwise.
func writeSnapshot(c echo.Context, snap sim.Snapshot) error {
	if !strings.Contains(c.Request().Header.Get(echo.HeaderAccept), MIMEApplicationMsgpack) {
		return c.JSON(http.StatusOK, snap)
	}
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, MIMEApplicationMsgpack, data)
}
