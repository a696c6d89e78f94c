package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalTransitions int
	UniqueItems      int
	ByTarget         map[string]int // target state or outcome → count
	Inspections      int            // completed inspections (resolved to returning or scrapping)
	MeanDwellMs      float64
	MaxDwellMs       int64
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ByTarget: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	items := make(map[uint64]struct{})
	enteredAt := make(map[uint64]int64)
	var totalDwell int64

	summary.TotalTransitions = len(st.Transitions)
	for _, r := range st.Transitions {
		items[r.ItemID] = struct{}{}
		summary.ByTarget[r.To]++

		switch {
		case r.To == "inspecting":
			enteredAt[r.ItemID] = r.Clock
		case r.From == "inspecting":
			start, ok := enteredAt[r.ItemID]
			if !ok {
				continue
			}
			delete(enteredAt, r.ItemID)
			dwell := r.Clock - start
			summary.Inspections++
			totalDwell += dwell
			if dwell > summary.MaxDwellMs {
				summary.MaxDwellMs = dwell
			}
		}
	}

	summary.UniqueItems = len(items)
	if summary.Inspections > 0 {
		summary.MeanDwellMs = float64(totalDwell) / float64(summary.Inspections)
	}
	return summary
}
