// Package trace provides transition-trace recording for sorting-line analysis.
// It has no dependencies on sim/ and stores pure data types only.
package trace

// Terminal pseudo-states recorded when an item leaves both lines.
const (
	OutcomeRecovered = "recovered" // left through the recycling exit clean
	OutcomeScrapSink = "scrap-sink"
	OutcomeEscaped   = "escaped" // left through the recycling exit still contaminated
)

// TransitionRecord captures a single item state change.
type TransitionRecord struct {
	ItemID uint64
	Kind   string // waste kind of the item
	Clock  int64  // sim ms
	From   string
	To     string // item state, or one of the Outcome* values
}
