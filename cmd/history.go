package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wastewise-india/sortline/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		if dbPath == "" {
			logrus.Fatalf("--db is required")
		}

		st, err := store.Open(dbPath)
		if err != nil {
			logrus.Fatalf("Failed to open run store: %v", err)
		}
		defer st.Close()

		runs, err := st.ListRuns(cmd.Context(), historyLimit)
		if err != nil {
			logrus.Fatalf("Failed to list runs: %v", err)
		}
		printRuns(os.Stdout, runs)
	},
}

func printRuns(w io.Writer, runs []store.RunRecord) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("SESSION", "FINISHED", "SEED", "SIM TIME", "PROCESSED", "CLEANED", "SCRAPPED", "RECOVERY")
	for _, r := range runs {
		t.Row(
			r.ID,
			r.FinishedAt.Local().Format("2006-01-02 15:04:05"),
			strconv.FormatInt(r.Seed, 10),
			fmt.Sprintf("%.1fs", float64(r.ClockMs)/1000),
			strconv.Itoa(r.Stats.TotalProcessed),
			strconv.Itoa(r.Stats.Cleaned),
			strconv.Itoa(r.Stats.Scrapped),
			fmt.Sprintf("%d%%", r.Stats.RecoveryPercentage),
		)
	}
	fmt.Fprintln(w, t.Render())
}

func init() {
	historyCmd.Flags().StringVar(&dbPath, "db", "", "SQLite run history file")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Max runs to list")

	rootCmd.AddCommand(historyCmd)
}
