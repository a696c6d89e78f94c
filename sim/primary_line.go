package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/wastewise-india/sortline/sim/trace"
)

// tickPrimary advances every item on the primary line by one frame.
// Items reaching the inspection belt are queued for handoff, not moved yet.
func (sim *Simulator) tickPrimary(now int64) {
	line := sim.Config.Primary
	insp := sim.Config.Inspection

	sim.Primary.retain(func(it *Item) bool {
		// detection only applies to items still riding the belt
		if it.State == StateMoving && it.Contaminated && line.DetectLo < it.Position.X && it.Position.X < line.DetectHi {
			sim.transition(it, StateDiverting, now)
			sim.record(EventDivert, now, fmt.Sprintf("Diverting %s to inspection belt", it.Name()))
		}

		switch it.State {
		case StateMoving:
			it.Position.X += line.Velocity
			if it.Position.X > line.Length {
				sim.exitPrimary(it, now)
				return false
			}
		case StateDiverting:
			it.Position.Y += insp.DivertDY
			it.Position.X += insp.DivertDX
			if it.Position.Y >= insp.Y {
				it.Position.Y = insp.Y
				it.InspectionEnteredAt = now
				it.InspectionPosition = insp.MinX + sim.rng.ForSubsystem(SubsystemInspection).Float64()*(insp.MaxX-insp.MinX)
				it.ScanProgress = 0
				sim.transition(it, StateInspecting, now)
				sim.record(EventScanStart, now, fmt.Sprintf("Scanning %s for contamination...", it.Name()))
				sim.toInspection = append(sim.toInspection, it)
				return false
			}
		default:
			panic(fmt.Sprintf("tickPrimary: item %d in state %q on primary line", it.ID, it.State))
		}
		return true
	})
}

// exitPrimary books an item leaving through the recycling exit.
func (sim *Simulator) exitPrimary(it *Item, now int64) {
	if it.Contaminated {
		sim.Stats.Escaped++
		sim.traceOutcome(it, trace.OutcomeEscaped, now)
		logrus.Warnf("[tick %07d] contaminated item %d left the line undetected", now, it.ID)
		return
	}
	sim.Stats.recordRecovered()
	sim.traceOutcome(it, trace.OutcomeRecovered, now)
}
