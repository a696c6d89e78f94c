package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wastewise-india/sortline/tui"
)

var logFile string // watch log destination; the terminal belongs to the UI

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the line in real time in the terminal",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		if logFile == "" {
			logrus.SetOutput(io.Discard)
		} else {
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				logrus.Fatalf("Failed to open log file: %v", err)
			}
			defer f.Close()
			logrus.SetOutput(f)
		}

		ctrl, err := newController()
		if err != nil {
			logrus.SetOutput(os.Stderr)
			logrus.Fatalf("%v", err)
		}
		cfg, _ := loadLineConfig(configPath) // already validated by newController

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			return ctrl.Run(gctx)
		})
		g.Go(func() error {
			// quitting the UI ends the controller
			defer cancel()
			_, err := tea.NewProgram(tui.New(ctrl, cfg), tea.WithAltScreen(), tea.WithContext(gctx)).Run()
			return err
		})

		if err := g.Wait(); err != nil && !errors.Is(err, tea.ErrProgramKilled) && !errors.Is(err, context.Canceled) {
			logrus.SetOutput(os.Stderr)
			logrus.Fatalf("Watch failed: %v", err)
		}
	},
}

func init() {
	watchCmd.Flags().Float64Var(&speed, "speed", 1, "Simulated ms per wall-clock ms")
	watchCmd.Flags().BoolVar(&autostart, "autostart", false, "Start the line immediately")
	watchCmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file (discarded by default)")

	rootCmd.AddCommand(watchCmd)
}
