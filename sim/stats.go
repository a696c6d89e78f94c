// Tracks session-wide sorting outcomes: how many items left the line and how.

package sim

import (
	"fmt"
	"io"
	"math"
	"os"
)

// Stats aggregates item outcomes for the current session.
// Mutated only by the inspection resolution and the two terminal transitions.
type Stats struct {
	TotalProcessed     int `json:"total_processed" msgpack:"total_processed"` // recovered at exit + arrived at scrap sink
	Diverted           int `json:"diverted" msgpack:"diverted"`               // inspections resolved
	Cleaned            int `json:"cleaned" msgpack:"cleaned"`
	Scrapped           int `json:"scrapped" msgpack:"scrapped"` // counted at resolution, before reaching the sink
	Recovered          int `json:"recovered" msgpack:"recovered"`
	Escaped            int `json:"escaped" msgpack:"escaped"` // contaminated items that exited undetected
	RecoveryPercentage int `json:"recovery_percentage" msgpack:"recovery_percentage"`
}

// NewStats returns zeroed stats with the empty-session recovery rate.
func NewStats() Stats {
	return Stats{RecoveryPercentage: 100}
}

// recordRecovered books a clean item leaving through the recycling exit.
func (s *Stats) recordRecovered() {
	s.TotalProcessed++
	s.Recovered++
	s.recompute()
}

// recordScrapArrival books an item reaching the scrap sink.
func (s *Stats) recordScrapArrival() {
	s.TotalProcessed++
	s.recompute()
}

func (s *Stats) recordCleaned() {
	s.Diverted++
	s.Cleaned++
}

func (s *Stats) recordScrapped() {
	s.Diverted++
	s.Scrapped++
}

func (s *Stats) recompute() {
	s.RecoveryPercentage = RecoveryPercentage(s.Recovered, s.TotalProcessed)
}

// RecoveryPercentage is round(100 * recovered / processed), or 100 when nothing
// has been processed yet. The result is clamped to [0, 100].
func RecoveryPercentage(recovered, processed int) int {
	if processed <= 0 {
		return 100
	}
	pct := int(math.Round(float64(recovered) / float64(processed) * 100))
	return min(max(pct, 0), 100)
}

// Print displays the stats on stdout.
func (s Stats) Print(clockMs int64) {
	s.Fprint(os.Stdout, clockMs)
}

// Fprint writes the stats report to w.
func (s Stats) Fprint(w io.Writer, clockMs int64) {
	fmt.Fprintln(w, "=== Sorting Line Stats ===")
	fmt.Fprintf(w, "Simulated Time       : %.1f s\n", float64(clockMs)/1000)
	fmt.Fprintf(w, "Total Processed      : %d\n", s.TotalProcessed)
	fmt.Fprintf(w, "Diverted             : %d\n", s.Diverted)
	fmt.Fprintf(w, "Cleaned & Returned   : %d\n", s.Cleaned)
	fmt.Fprintf(w, "Scrapped             : %d\n", s.Scrapped)
	fmt.Fprintf(w, "Recovered            : %d\n", s.Recovered)
	if s.Escaped > 0 {
		fmt.Fprintf(w, "Escaped Undetected   : %d\n", s.Escaped)
	}
	fmt.Fprintf(w, "Recovery Rate        : %d%%\n", s.RecoveryPercentage)
}
