package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wastewise-india/sortline/sim"
	"github.com/wastewise-india/sortline/sim/trace"
	"github.com/wastewise-india/sortline/store"
)

var (
	// CLI flags shared by the simulation commands
	seed       int64  // Master seed for the spawner, inspection placement and session ids
	logLevel   string // Log verbosity level
	configPath string // Optional YAML overrides for the line constants
	dbPath     string // SQLite run history; empty disables it

	// CLI flags for run
	simulationHorizon int64  // Total simulated time (in ms)
	traceLevel        string // Transition trace verbosity
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "sortline",
	Short: "Dual-belt waste sorting line simulator",
}

// runCmd executes a headless simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a headless, deterministic simulation and print the stats",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := loadLineConfig(configPath)
		if err != nil {
			logrus.Fatalf("Invalid line config: %v", err)
		}
		if simulationHorizon <= 0 {
			logrus.Fatalf("--horizon must be > 0, got %d", simulationHorizon)
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Unknown trace level %q; valid: none, transitions", traceLevel)
		}

		logrus.Infof("Starting simulation with seed=%d, horizon=%dms", seed, simulationHorizon)
		startTime := time.Now()

		s, err := runHeadless(os.Stdout, cfg, seed, simulationHorizon, trace.TraceLevel(traceLevel))
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Infof("Simulated %d frames in %s", s.FrameCount, time.Since(startTime).Round(time.Millisecond))

		if dbPath != "" {
			if err := saveSession(cmd.Context(), dbPath, s.Snapshot(), s.Seed); err != nil {
				logrus.Fatalf("Failed to save run: %v", err)
			}
		}
		logrus.Info("Simulation complete.")
	},
}

// runHeadless simulates up to horizon and writes the stats report, plus the
// trace summary when tracing, to w.
func runHeadless(w io.Writer, cfg sim.LineConfig, seed, horizon int64, level trace.TraceLevel) (*sim.Simulator, error) {
	s, err := sim.NewSimulator(cfg, seed, trace.TraceConfig{Level: level})
	if err != nil {
		return nil, err
	}
	s.Run(horizon)
	s.Stats.Fprint(w, s.Clock)

	if s.Trace != nil {
		printTraceSummary(w, trace.Summarize(s.Trace))
	}
	return s, nil
}

func printTraceSummary(w io.Writer, summary *trace.TraceSummary) {
	fmt.Fprintln(w, "=== Transition Trace ===")
	fmt.Fprintf(w, "Transitions          : %d\n", summary.TotalTransitions)
	fmt.Fprintf(w, "Items Seen           : %d\n", summary.UniqueItems)
	fmt.Fprintf(w, "Inspections          : %d\n", summary.Inspections)
	if summary.Inspections > 0 {
		fmt.Fprintf(w, "Mean Dwell           : %.0f ms\n", summary.MeanDwellMs)
		fmt.Fprintf(w, "Max Dwell            : %d ms\n", summary.MaxDwellMs)
	}
	targets := make([]string, 0, len(summary.ByTarget))
	for target := range summary.ByTarget {
		targets = append(targets, target)
	}
	sort.Strings(targets)
	for _, target := range targets {
		fmt.Fprintf(w, "  -> %-16s : %d\n", target, summary.ByTarget[target])
	}
}

// saveSession writes the final state of a session to the run history.
func saveSession(ctx context.Context, path string, snap sim.Snapshot, seed int64) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	rec := store.NewRunRecord(snap, seed, time.Now().UTC())
	if err := st.SaveRun(ctx, rec); err != nil {
		return err
	}
	logrus.Infof("Saved run %s to %s", rec.ID, path)
	return nil
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	for _, c := range []*cobra.Command{runCmd, serveCmd, watchCmd} {
		c.Flags().Int64Var(&seed, "seed", 42, "Seed for item generation and inspection placement")
		c.Flags().StringVar(&configPath, "config", "", "YAML file overriding the line constants (see defaults.yaml)")
	}
	runCmd.Flags().Int64Var(&simulationHorizon, "horizon", 60_000, "Total simulated time (in ms)")
	runCmd.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Transition trace level (none, transitions)")
	runCmd.Flags().StringVar(&dbPath, "db", "", "SQLite file to record the run in")

	// Attach subcommands to `root`
	rootCmd.AddCommand(runCmd)
}
