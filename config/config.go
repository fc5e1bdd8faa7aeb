// Package config loads and diffs this simulation's tunable settings, in the
// shape of the teacher's config package (a Config struct round-tripped
// through a structured file format, diffed field-by-field) generalized from
// the teacher's fleet-of-named-components model (boards, processes,
// remotes) down to this repo's single global settings object plus a
// free-form AttributeMap for scenario-specific overrides.
package config

import (
	"time"

	"github.com/cityplan/simcore/prototype"
)

// SimulationConfig carries the top-level tick-loop settings (§5 of the
// expanded spec: a sharded, single-goroutine-per-shard scheduler). The
// simulation and the prototype compiler do not read these fields; they run
// on their own defaults (Simulation.Workers, prototype.GridCellSize).
type SimulationConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	Workers      int           `yaml:"workers"`
	GridCellSize float64       `yaml:"grid_cell_size"`
}

// MicrotrafficConfig carries the microtraffic engine's throttling
// cadences (spec §6); the engine itself runs on the constants in
// microtraffic/const.go and does not read these fields. The IDM physical
// constants are not configurable here.
type MicrotrafficConfig struct {
	SlowdownRadius         float64 `yaml:"slowdown_radius"`
	TrafficLogicThrottling int     `yaml:"traffic_logic_throttling"`
	PathfindingThrottling  int     `yaml:"pathfinding_throttling"`
}

// LandmarkConfig carries the stride of the landmark-routing election
// resolved in SPEC_FULL.md §9 as periodic stride sampling;
// lanegraph.NewGraph takes its stride as an argument and nothing in this
// module passes this value to it.
type LandmarkConfig struct {
	Stride int `yaml:"stride"`
}

// Config is the full simulation configuration: typed settings plus a
// free-form Attributes bag for values that don't warrant a field.
type Config struct {
	ConfigFilePath string `yaml:"-"`

	Simulation   SimulationConfig   `yaml:"simulation"`
	Microtraffic MicrotrafficConfig `yaml:"microtraffic"`
	Landmarks    LandmarkConfig     `yaml:"landmarks"`
	Attributes   AttributeMap       `yaml:"attributes"`
}

// Default returns a Config with every field at its system-boundary
// default (spec §6), for callers with no file to load (e.g. a CLI
// invoked with no --file flag).
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// applyDefaults fills zero-valued fields with this repo's system-boundary
// constants (spec §6), so a minimal or empty config file is still usable.
func (c *Config) applyDefaults() {
	if c.Simulation.TickInterval == 0 {
		c.Simulation.TickInterval = 100 * time.Millisecond
	}
	if c.Simulation.Workers == 0 {
		c.Simulation.Workers = 4
	}
	if c.Simulation.GridCellSize == 0 {
		c.Simulation.GridCellSize = prototype.GridCellSize
	}
	if c.Microtraffic.SlowdownRadius == 0 {
		c.Microtraffic.SlowdownRadius = 6.0
	}
	if c.Microtraffic.TrafficLogicThrottling == 0 {
		c.Microtraffic.TrafficLogicThrottling = 10
	}
	if c.Microtraffic.PathfindingThrottling == 0 {
		c.Microtraffic.PathfindingThrottling = 10
	}
	if c.Landmarks.Stride == 0 {
		c.Landmarks.Stride = 16
	}
	if c.Attributes == nil {
		c.Attributes = AttributeMap{}
	}
}
