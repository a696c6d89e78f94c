package sim

import "fmt"

// ItemSpec describes an item to place on the primary line directly,
// bypassing the random spawner. Contaminant non-nil means contaminated.
type ItemSpec struct {
	Kind        Kind
	Contaminant *Contaminant
	Cleanable   bool
}

// spawn draws a random item from the catalogs and places it at the head of
// the primary line.
func (sim *Simulator) spawn(now int64) *Item {
	rng := sim.rng.ForSubsystem(SubsystemSpawner)
	spec := ItemSpec{Kind: Kinds[rng.Intn(len(Kinds))]}
	if rng.Float64() < sim.Config.Spawn.ContaminationProbability {
		c := Contaminants[rng.Intn(len(Contaminants))]
		spec.Contaminant = &c
		spec.Cleanable = rng.Float64() < sim.Config.Spawn.CleanableProbability
	}
	return sim.place(spec, now)
}

// Inject places an item built from spec at the head of the primary line at the
// current clock. It is the deterministic counterpart of the spawner.
func (sim *Simulator) Inject(spec ItemSpec) *Item {
	return sim.place(spec, sim.Clock)
}

func (sim *Simulator) place(spec ItemSpec, now int64) *Item {
	sim.nextItemID++
	it := &Item{
		ID:        sim.nextItemID,
		Kind:      spec.Kind,
		Position:  Position{X: 0, Y: sim.Config.Primary.Y},
		State:     StateMoving,
		SpawnedAt: now,
	}
	if spec.Contaminant != nil {
		c := *spec.Contaminant
		it.Contaminated = true
		it.Contaminant = &c
		it.Cleanable = spec.Cleanable
		sim.record(EventContaminatedSpawn, now,
			fmt.Sprintf("Contaminated %s detected (%s)", it.Name(), c.Name))
	}
	sim.Primary.Enqueue(it)
	return it
}
