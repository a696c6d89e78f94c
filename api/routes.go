// routes.go - Server assembly and route registration
package api

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Line LineController
	// Runs may be nil; run-history routes then answer STORE_DISABLED.
	Runs    RunStore
	Version string
	// WSFramesPerSecond caps snapshot frames per WebSocket client. Zero means 30.
	WSFramesPerSecond float64
}

// NewServer returns an Echo instance with middleware and every route registered.
func NewServer(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	SetupMiddleware(e)
	RegisterRoutes(e, deps)
	return e
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, deps Dependencies) {
	health := NewHealthHandler(deps.Version)
	line := NewLineHandler(deps.Line, deps.Runs)
	runs := NewRunsHandler(deps.Runs)
	ws := NewStreamHandler(deps.Line, deps.WSFramesPerSecond)

	e.GET("/health", health.HandleHealth)

	lineGroup := e.Group("/api/line")
	lineGroup.POST("/start", line.HandleStart)
	lineGroup.POST("/stop", line.HandleStop)
	lineGroup.POST("/reset", line.HandleReset)
	lineGroup.POST("/step", line.HandleStep)
	lineGroup.GET("/snapshot", line.HandleSnapshot)
	lineGroup.GET("/ws", ws.HandleStream)

	runsGroup := e.Group("/api/runs")
	runsGroup.GET("", runs.HandleListRuns)
	runsGroup.GET("/:id", runs.HandleGetRun)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	e.HTTPErrorHandler = ErrorHandler
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))
	e.Use(requestLogger)
}

// requestLogger logs each request at debug level.
func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		logrus.Debugf("%s %s -> %d (%s)", c.Request().Method, c.Request().URL.Path,
			c.Response().Status, time.Since(start).Round(time.Microsecond))
		return err
	}
}
