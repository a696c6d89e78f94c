package sim

import (
	"fmt"
	"math"

	"github.com/wastewise-india/sortline/sim/trace"
)

// tickInspection advances every item on the inspection belt by one frame.
// Items climbing back to the primary line are queued for handoff.
func (sim *Simulator) tickInspection(now int64) {
	insp := sim.Config.Inspection
	scrap := sim.Config.Scrap

	sim.Inspection.retain(func(it *Item) bool {
		switch it.State {
		case StateInspecting:
			elapsed := now - it.InspectionEnteredAt
			it.ScanProgress = float64(elapsed%insp.ScanPulsePeriodMs) / float64(insp.ScanPulsePeriodMs)
			if elapsed >= insp.ScanDurationMs {
				sim.resolveInspection(it, now)
			}
		case StateReturning:
			it.Position.Y -= insp.ReturnDY
			it.Position.X += insp.ReturnDX
			if it.Position.Y <= sim.Config.Primary.Y {
				it.Position.Y = sim.Config.Primary.Y
				it.Position.X = sim.Config.Primary.ReentryX
				sim.transition(it, StateMoving, now)
				sim.toPrimary = append(sim.toPrimary, it)
				return false
			}
		case StateScrapping:
			dx := scrap.SinkX - it.Position.X
			dy := scrap.SinkY - it.Position.Y
			dist := math.Hypot(dx, dy)
			if dist <= scrap.Epsilon {
				sim.Stats.recordScrapArrival()
				sim.traceOutcome(it, trace.OutcomeScrapSink, now)
				return false
			}
			step := math.Min(scrap.Speed, dist)
			it.Position.X += dx / dist * step
			it.Position.Y += dy / dist * step
		default:
			panic(fmt.Sprintf("tickInspection: item %d in state %q on inspection line", it.ID, it.State))
		}
		return true
	})
}

// resolveInspection decides the fate of an item whose scan has completed.
func (sim *Simulator) resolveInspection(it *Item, now int64) {
	it.ScanProgress = 0
	if it.Cleanable {
		it.Contaminated = false
		it.Contaminant = nil
		sim.transition(it, StateReturning, now)
		sim.Stats.recordCleaned()
		sim.record(EventCleaned, now, fmt.Sprintf("%s cleaned successfully - returning to main belt", it.Name()))
		return
	}
	sim.transition(it, StateScrapping, now)
	sim.Stats.recordScrapped()
	sim.record(EventScrapped, now, fmt.Sprintf("%s unsalvageable - sending to scrap", it.Name()))
}
