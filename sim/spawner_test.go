package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawner_NoContamination_AllClean(t *testing.T) {
	s := newTestSimulator(t, 21, func(c *LineConfig) { c.Spawn.ContaminationProbability = 0 })

	s.Run(20 * s.Config.Timing.SpawnIntervalMs)

	for _, it := range s.Primary.Items() {
		assert.False(t, it.Contaminated)
		assert.Nil(t, it.Contaminant)
		assert.False(t, it.Cleanable)
	}
	assert.Equal(t, 0, countEvents(s, EventContaminatedSpawn))
}

func TestSpawner_FullContamination_EveryItemFlagged(t *testing.T) {
	s := newTestSimulator(t, 21, func(c *LineConfig) {
		c.Spawn.ContaminationProbability = 1
		c.Spawn.CleanableProbability = 1
	})

	// stop before the first item reaches the detection window
	s.Run(3 * s.Config.Timing.SpawnIntervalMs)

	require.Equal(t, 3, s.Primary.Len())
	for _, it := range s.Primary.Items() {
		assert.True(t, it.Contaminated)
		require.NotNil(t, it.Contaminant)
		assert.True(t, it.Cleanable)
		assert.Contains(t, Contaminants, *it.Contaminant)
	}
	assert.Equal(t, 3, countEvents(s, EventContaminatedSpawn))
}

func TestSpawner_ItemsStartAtLineHead(t *testing.T) {
	s := newTestSimulator(t, 8, nil)
	s.Start()

	s.Advance(s.Config.Timing.SpawnIntervalMs)

	require.Equal(t, 1, s.Primary.Len())
	it := s.Primary.Items()[0]
	assert.Equal(t, uint64(1), it.ID)
	assert.Equal(t, Position{X: 0, Y: s.Config.Primary.Y}, it.Position)
	assert.Equal(t, StateMoving, it.State)
	assert.Equal(t, s.Config.Timing.SpawnIntervalMs, it.SpawnedAt)
	assert.Contains(t, Kinds, it.Kind)
}

func TestSpawner_IDsIncreaseAndRestartAfterReset(t *testing.T) {
	s := newTestSimulator(t, 8, nil)
	s.Run(4 * s.Config.Timing.SpawnIntervalMs)

	items := s.Primary.Items()
	for i := 1; i < len(items); i++ {
		assert.Greater(t, items[i].ID, items[i-1].ID)
	}

	s.Reset()
	it := s.Inject(ItemSpec{Kind: KindPaper})
	assert.Equal(t, uint64(1), it.ID)
}

func TestSpawner_ContaminatedSpawnMessage(t *testing.T) {
	s := newTestSimulator(t, 1, nil)

	s.Inject(ItemSpec{Kind: KindPlasticBottle, Contaminant: &testContaminant})

	ev := s.Events.Recent()[0]
	assert.Equal(t, EventContaminatedSpawn, ev.Kind)
	assert.Equal(t, "Contaminated Plastic Bottle detected (Batteries)", ev.Message)
}

func TestSpawner_InjectCopiesContaminant(t *testing.T) {
	s := newTestSimulator(t, 1, nil)
	c := testContaminant

	it := s.Inject(ItemSpec{Kind: KindPaper, Contaminant: &c})
	c.Name = "mutated"

	assert.Equal(t, testContaminant.Name, it.Contaminant.Name)
}
