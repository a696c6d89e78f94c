// websocket.go - Live snapshot stream
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/time/rate"

	"github.com/wastewise-india/sortline/sim"
)

const (
	defaultStreamFPS = 30
	writeWait        = 5 * time.Second
)

// StreamHandler pushes snapshots to WebSocket clients.
type StreamHandler struct {
	line     LineController
	fps      float64
	upgrader websocket.Upgrader
}

// NewStreamHandler creates a stream handler that sends at most fps frames per
// second to each client.
func NewStreamHandler(line LineController, fps float64) *StreamHandler {
	if fps <= 0 {
		fps = defaultStreamFPS
	}
	return &StreamHandler{
		line: line,
		fps:  fps,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// renderers are served from other origins
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
		},
	}
}

// HandleStream upgrades the connection and streams snapshots until the client
// leaves or the controller shuts down. ?codec=msgpack selects binary frames.
func (h *StreamHandler) HandleStream(c echo.Context) error {
	codec := c.QueryParam("codec")
	if codec != "" && codec != "json" && codec != "msgpack" {
		return NewBadRequestError("codec must be json or msgpack", nil)
	}

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		logrus.Debugf("[WebSocket] upgrade failed: %v", err)
		return nil
	}
	defer ws.Close()

	snaps, unsubscribe := h.line.Subscribe()
	defer unsubscribe()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	// control frames are only processed while reading
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logrus.Debugf("[WebSocket] read error: %v", err)
				}
				return
			}
		}
	}()

	logrus.Debugf("[WebSocket] client connected from %s (codec=%q)", c.RealIP(), codec)
	limiter := rate.NewLimiter(rate.Limit(h.fps), 1)
	for {
		// the subscription buffers only the newest snapshot, so waiting here
		// drops intermediate ones
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		var snap sim.Snapshot
		var ok bool
		select {
		case <-ctx.Done():
		case snap, ok = <-snaps:
		}
		if !ok {
			break
		}
		if err := writeFrame(ws, codec, snap); err != nil {
			logrus.Debugf("[WebSocket] write failed: %v", err)
			break
		}
	}

	ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	logrus.Debugf("[WebSocket] client disconnected")
	return nil
}

func writeFrame(ws *websocket.Conn, codec string, snap sim.Snapshot) error {
	ws.SetWriteDeadline(time.Now().Add(writeWait))
	if codec != "msgpack" {
		return ws.WriteJSON(snap)
	}
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return err
	}
	return ws.WriteMessage(websocket.BinaryMessage, data)
}
