package sim

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is wrapped by every LineConfig validation failure.
var ErrInvalidConfig = errors.New("invalid line config")

// TimingConfig groups the two periodic drivers of the line.
type TimingConfig struct {
	FrameIntervalMs int64 `yaml:"frame_interval_ms"` // one tick of both lines
	SpawnIntervalMs int64 `yaml:"spawn_interval_ms"` // one new item on the primary line
}

// PrimaryLineConfig groups geometry of the moving conveyor.
type PrimaryLineConfig struct {
	Length   float64 `yaml:"length"`   // items past this X leave through the recycling exit
	Y        float64 `yaml:"y"`        // vertical level of the belt
	Velocity float64 `yaml:"velocity"` // X advance per frame while moving
	DetectLo float64 `yaml:"detect_lo"`
	DetectHi float64 `yaml:"detect_hi"` // detection window is the open interval (DetectLo, DetectHi)
	ReentryX float64 `yaml:"reentry_x"` // where cleaned items rejoin; must be past DetectHi
}

// InspectionLineConfig groups geometry and timing of the static inspection belt.
type InspectionLineConfig struct {
	Y                 float64 `yaml:"y"`
	MinX              float64 `yaml:"min_x"` // placement bounds for InspectionPosition
	MaxX              float64 `yaml:"max_x"`
	ScanDurationMs    int64   `yaml:"scan_duration_ms"`
	ScanPulsePeriodMs int64   `yaml:"scan_pulse_period_ms"` // rendering hint only
	DivertDX          float64 `yaml:"divert_dx"`
	DivertDY          float64 `yaml:"divert_dy"`
	ReturnDX          float64 `yaml:"return_dx"`
	ReturnDY          float64 `yaml:"return_dy"`
}

// ScrapConfig locates the scrap sink and the stepping toward it.
type ScrapConfig struct {
	SinkX   float64 `yaml:"sink_x"`
	SinkY   float64 `yaml:"sink_y"`
	Speed   float64 `yaml:"speed"`
	Epsilon float64 `yaml:"epsilon"`
}

// SpawnConfig holds the spawner's probabilities.
type SpawnConfig struct {
	ContaminationProbability float64 `yaml:"contamination_probability"`
	CleanableProbability     float64 `yaml:"cleanable_probability"`
}

// LineConfig is the full set of named simulation constants.
type LineConfig struct {
	Timing           TimingConfig         `yaml:"timing"`
	Primary          PrimaryLineConfig    `yaml:"primary"`
	Inspection       InspectionLineConfig `yaml:"inspection"`
	Scrap            ScrapConfig          `yaml:"scrap"`
	Spawn            SpawnConfig          `yaml:"spawn"`
	EventLogCapacity int                  `yaml:"event_log_capacity"`
}

// DefaultLineConfig returns the constants of the reference dual-belt layout.
// Keep in sync with defaults.yaml.
func DefaultLineConfig() LineConfig {
	return LineConfig{
		Timing: TimingConfig{
			FrameIntervalMs: 16,
			SpawnIntervalMs: 400,
		},
		Primary: PrimaryLineConfig{
			Length:   1400,
			Y:        150,
			Velocity: 1.2,
			DetectLo: 600,
			DetectHi: 650,
			ReentryX: 700,
		},
		Inspection: InspectionLineConfig{
			Y:                 400,
			MinX:              400,
			MaxX:              800,
			ScanDurationMs:    3000,
			ScanPulsePeriodMs: 1000,
			DivertDX:          1,
			DivertDY:          4,
			ReturnDX:          2,
			ReturnDY:          4,
		},
		Scrap: ScrapConfig{
			SinkX:   1150,
			SinkY:   530,
			Speed:   4,
			Epsilon: 5,
		},
		Spawn: SpawnConfig{
			ContaminationProbability: 0.10,
			CleanableProbability:     0.70,
		},
		EventLogCapacity: 6,
	}
}

// Validate reports every constraint the configuration violates.
func (c LineConfig) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	for _, f := range c.floatFields() {
		if !finite(f.value) {
			add("%s must be a finite number, got %v", f.name, f.value)
		}
	}
	if c.Timing.FrameIntervalMs <= 0 {
		add("frame_interval_ms must be > 0, got %d", c.Timing.FrameIntervalMs)
	}
	if c.Timing.SpawnIntervalMs <= 0 {
		add("spawn_interval_ms must be > 0, got %d", c.Timing.SpawnIntervalMs)
	}
	if c.Primary.Velocity <= 0 {
		add("primary velocity must be > 0, got %v", c.Primary.Velocity)
	}
	if c.Primary.DetectHi <= c.Primary.DetectLo {
		add("detection window (%v, %v) is empty", c.Primary.DetectLo, c.Primary.DetectHi)
	} else if c.Primary.Velocity >= c.Primary.DetectHi-c.Primary.DetectLo {
		add("velocity %v can step over the detection window of width %v",
			c.Primary.Velocity, c.Primary.DetectHi-c.Primary.DetectLo)
	}
	if c.Primary.DetectLo < 0 {
		add("detect_lo must be >= 0, got %v", c.Primary.DetectLo)
	}
	if c.Primary.ReentryX <= c.Primary.DetectHi {
		add("reentry_x %v must lie past detect_hi %v", c.Primary.ReentryX, c.Primary.DetectHi)
	}
	if c.Primary.Length <= c.Primary.ReentryX {
		add("line length %v must exceed reentry_x %v", c.Primary.Length, c.Primary.ReentryX)
	}
	if c.Inspection.Y <= c.Primary.Y {
		add("inspection y %v must be below primary y %v", c.Inspection.Y, c.Primary.Y)
	}
	if c.Inspection.MaxX < c.Inspection.MinX {
		add("inspection placement [%v, %v) is inverted", c.Inspection.MinX, c.Inspection.MaxX)
	}
	if c.Inspection.ScanDurationMs < 0 {
		add("scan_duration_ms must be >= 0, got %d", c.Inspection.ScanDurationMs)
	}
	if c.Inspection.ScanPulsePeriodMs <= 0 {
		add("scan_pulse_period_ms must be > 0, got %d", c.Inspection.ScanPulsePeriodMs)
	}
	if c.Inspection.DivertDY <= 0 || c.Inspection.ReturnDY <= 0 {
		add("divert_dy and return_dy must be > 0, got %v and %v", c.Inspection.DivertDY, c.Inspection.ReturnDY)
	}
	if c.Inspection.DivertDX < 0 || c.Inspection.ReturnDX < 0 {
		add("divert_dx and return_dx must be >= 0, got %v and %v", c.Inspection.DivertDX, c.Inspection.ReturnDX)
	}
	if c.Scrap.Speed <= 0 {
		add("scrap speed must be > 0, got %v", c.Scrap.Speed)
	}
	if c.Scrap.Epsilon <= 0 {
		add("scrap epsilon must be > 0, got %v", c.Scrap.Epsilon)
	}
	if !isProbability(c.Spawn.ContaminationProbability) {
		add("contamination_probability must be in [0, 1], got %v", c.Spawn.ContaminationProbability)
	}
	if !isProbability(c.Spawn.CleanableProbability) {
		add("cleanable_probability must be in [0, 1], got %v", c.Spawn.CleanableProbability)
	}
	if c.EventLogCapacity < 1 {
		add("event_log_capacity must be >= 1, got %d", c.EventLogCapacity)
	}
	return errors.Join(errs...)
}

type namedFloat struct {
	name  string
	value float64
}

func (c LineConfig) floatFields() []namedFloat {
	return []namedFloat{
		{"primary length", c.Primary.Length},
		{"primary y", c.Primary.Y},
		{"primary velocity", c.Primary.Velocity},
		{"detect_lo", c.Primary.DetectLo},
		{"detect_hi", c.Primary.DetectHi},
		{"reentry_x", c.Primary.ReentryX},
		{"inspection y", c.Inspection.Y},
		{"inspection min_x", c.Inspection.MinX},
		{"inspection max_x", c.Inspection.MaxX},
		{"divert_dx", c.Inspection.DivertDX},
		{"divert_dy", c.Inspection.DivertDY},
		{"return_dx", c.Inspection.ReturnDX},
		{"return_dy", c.Inspection.ReturnDY},
		{"scrap sink_x", c.Scrap.SinkX},
		{"scrap sink_y", c.Scrap.SinkY},
		{"scrap speed", c.Scrap.Speed},
		{"scrap epsilon", c.Scrap.Epsilon},
	}
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func isProbability(p float64) bool {
	return p >= 0 && p <= 1 && !math.IsNaN(p)
}

// MaxItemLifetimeFrames is a worst-case bound on the number of frames between an
// item's spawn and its removal from both lines. Only meaningful for a valid config.
func (c LineConfig) MaxItemLifetimeFrames() int64 {
	frames := func(distance, step float64) int64 {
		return int64(math.Ceil(distance/step)) + 1
	}
	drop := c.Inspection.Y - c.Primary.Y

	firstPass := frames(c.Primary.Length, c.Primary.Velocity)
	divert := frames(drop, c.Inspection.DivertDY)
	scan := int64(math.Ceil(float64(c.Inspection.ScanDurationMs)/float64(c.Timing.FrameIntervalMs))) + 2
	ret := frames(drop, c.Inspection.ReturnDY)
	secondPass := frames(c.Primary.Length-c.Primary.ReentryX, c.Primary.Velocity)

	// farthest point from the sink where scrapping can begin
	startX := []float64{
		c.Primary.DetectLo,
		c.Primary.DetectHi + c.Primary.Velocity + float64(divert)*c.Inspection.DivertDX,
	}
	var worst float64
	for _, x := range startX {
		worst = math.Max(worst, math.Hypot(c.Scrap.SinkX-x, c.Scrap.SinkY-c.Inspection.Y))
	}
	scrap := frames(worst, c.Scrap.Speed)

	return firstPass + divert + scan + max(ret+secondPass, scrap)
}
