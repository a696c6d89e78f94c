package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wastewise-india/sortline/api"
	"github.com/wastewise-india/sortline/sim"
	"github.com/wastewise-india/sortline/sim/live"
	"github.com/wastewise-india/sortline/sim/trace"
	"github.com/wastewise-india/sortline/store"
)

// Version is reported by the health endpoint.
var Version = "dev"

var (
	// CLI flags for serve and watch
	listenAddr string  // HTTP listen address
	speed      float64 // Simulated ms per wall-clock ms
	wsFPS      float64 // Max snapshot frames per second per WebSocket client
	autostart  bool    // Start the line as soon as the controller runs
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the line in real time behind an HTTP and WebSocket API",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		ctrl, err := newController()
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		var st *store.Store
		deps := api.Dependencies{Line: ctrl, Version: Version, WSFramesPerSecond: wsFPS}
		if dbPath != "" {
			st, err = store.Open(dbPath)
			if err != nil {
				logrus.Fatalf("Failed to open run store: %v", err)
			}
			defer st.Close()
			deps.Runs = st
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := serve(ctx, ctrl, api.NewServer(deps), listenAddr); err != nil {
			logrus.Fatalf("Server failed: %v", err)
		}

		// the session still on the line when the server went down
		if st != nil {
			if snap := ctrl.Snapshot(); snap.Clock > 0 {
				rec := store.NewRunRecord(snap, ctrl.Seed(), time.Now().UTC())
				if err := st.SaveRun(context.Background(), rec); err != nil {
					logrus.Warnf("Failed to save final run: %v", err)
				}
			}
		}
		logrus.Info("Server stopped.")
	},
}

// newController builds a simulator from the shared flags and wraps it.
func newController() (*live.Controller, error) {
	cfg, err := loadLineConfig(configPath)
	if err != nil {
		return nil, err
	}
	if speed <= 0 {
		return nil, errors.New("--speed must be > 0")
	}
	s, err := sim.NewSimulator(cfg, seed, trace.TraceConfig{Level: trace.TraceLevelNone})
	if err != nil {
		return nil, err
	}
	if autostart {
		s.Start()
	}
	return live.New(s, live.Options{Speed: speed}), nil
}

// httpServer is satisfied by *echo.Echo.
type httpServer interface {
	Start(address string) error
	Shutdown(ctx context.Context) error
}

// serve runs the controller and the HTTP server until ctx is cancelled or
// either of them fails.
func serve(ctx context.Context, ctrl *live.Controller, srv httpServer, addr string) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return ctrl.Run(ctx)
	})
	g.Go(func() error {
		logrus.Infof("Listening on %s", addr)
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", ":8080", "HTTP listen address")
	serveCmd.Flags().Float64Var(&speed, "speed", 1, "Simulated ms per wall-clock ms")
	serveCmd.Flags().Float64Var(&wsFPS, "ws-fps", 30, "Max snapshot frames per second per WebSocket client")
	serveCmd.Flags().StringVar(&dbPath, "db", "", "SQLite file for the run history")
	serveCmd.Flags().BoolVar(&autostart, "autostart", false, "Start the line immediately")

	rootCmd.AddCommand(serveCmd)
}
