// Package config provides configuration loading for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrConfigurationMissing is returned when a required arena or size parameter is absent.
var ErrConfigurationMissing = errors.New("configuration missing")

// Config holds all session configuration parameters.
// It is immutable once Load returns; components receive it by pointer.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Arena      ArenaConfig      `yaml:"arena"`
	Population PopulationConfig `yaml:"population"`
	Shapes     ShapeConfig      `yaml:"shapes"`
	Placement  PlacementConfig  `yaml:"placement"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Collision  CollisionConfig  `yaml:"collision"`
	Player     PlayerConfig     `yaml:"player"`
	Camera     CameraConfig     `yaml:"camera"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the windowed viewer.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// ArenaConfig holds the arena bounds.
type ArenaConfig struct {
	MapSize       float64 `yaml:"map_size"`       // Full side length of the square arena
	PlayableArea  float64 `yaml:"playable_area"`  // Half-extent of the spawn sub-region
	MaxObjectSize float64 `yaml:"max_object_size"` // Upper bound on any spawned nominal size
	WallThickness float64 `yaml:"wall_thickness"`
	WallHeight    float64 `yaml:"wall_height"`
}

// SizeCategory is one weighted bucket of the spawn size distribution.
type SizeCategory struct {
	Name     string  `yaml:"name"`
	Weight   float64 `yaml:"weight"`
	Min      float64 `yaml:"min"`
	Max      float64 `yaml:"max"`
	SqrtBias bool    `yaml:"sqrt_bias"` // size = min + sqrt(U)*(max-min)
}

// PopulationConfig holds population management parameters.
type PopulationConfig struct {
	InitialObjectCount int            `yaml:"initial_object_count"`
	MaxObjectCount     int            `yaml:"max_object_count"`
	RespawnObjects     bool           `yaml:"respawn_objects"`
	RetryFactor        int            `yaml:"retry_factor"`       // Spawn attempts = RetryFactor * desired
	MaxSpawnPerTick    int            `yaml:"max_spawn_per_tick"` // 0 = unlimited
	ScaleWithPlayer    bool           `yaml:"scale_with_player"`  // Category ranges grow with the player
	Categories         []SizeCategory `yaml:"categories"`
	CullMinSize        float64        `yaml:"cull_min_size"`        // Absolute size ceiling for culling
	CullPlayerRatio    float64        `yaml:"cull_player_ratio"`    // Size must be below playerRadius * this
	CullDistanceRatio  float64        `yaml:"cull_distance_ratio"`  // Distance threshold as fraction of playable area
}

// ShapeConfig holds the per-shape collision factors and the spawnable shapes.
type ShapeConfig struct {
	Kinds   []string           `yaml:"kinds"`
	Factors map[string]float64 `yaml:"factors"` // effectiveRadius = nominalSize * factor
}

// PlacementConfig holds rejection-sampling parameters.
type PlacementConfig struct {
	MaxAttempts     int     `yaml:"max_attempts"`
	OverlapBuffer   float64 `yaml:"overlap_buffer"`
	ClearanceMargin float64 `yaml:"clearance_margin"`
}

// PhysicsConfig holds player integration parameters.
type PhysicsConfig struct {
	Gravity       float64 `yaml:"gravity"`
	Friction      float64 `yaml:"friction"`     // Multiplicative damping per reference tick while grounded
	ReferenceDT   float64 `yaml:"reference_dt"` // Tick length the friction factor is expressed for
	MaxSpeed      float64 `yaml:"max_speed"`
	SpeedExponent float64 `yaml:"speed_exponent"` // Max speed scales with radius^exponent
	MaxFrameDT    float64 `yaml:"max_frame_dt"`
}

// CollisionConfig holds detection and response parameters.
type CollisionConfig struct {
	GridCellSize      float64 `yaml:"grid_cell_size"` // 0 disables the broad phase
	Workers           int     `yaml:"workers"`
	ParallelThreshold int     `yaml:"parallel_threshold"`

	BaseForce         float64 `yaml:"base_force"`
	ForceScale        float64 `yaml:"force_scale"`
	SizeFactorCap     float64 `yaml:"size_factor_cap"`
	CorrectionRatio   float64 `yaml:"correction_ratio"`
	MaxCorrectionStep float64 `yaml:"max_correction_step"`

	BarrierOvershoot   float64 `yaml:"barrier_overshoot"`
	BarrierRestitution float64 `yaml:"barrier_restitution"`
}

// PlayerConfig holds the player's starting state.
type PlayerConfig struct {
	InitialRadius float64 `yaml:"initial_radius"`
	InputSpeed    float64 `yaml:"input_speed"` // Horizontal speed per unit radius for movement input
}

// CameraConfig holds framing parameters.
type CameraConfig struct {
	MaxScreenPercentage float64 `yaml:"max_screen_percentage"`
	CameraZoomRate      float64 `yaml:"camera_zoom_rate"`
	BaseFOV             float64 `yaml:"base_fov"`
	FOVMin              float64 `yaml:"fov_min"`
	FOVMax              float64 `yaml:"fov_max"`
	FOVPerRadius        float64 `yaml:"fov_per_radius"`
	HeightRatio         float64 `yaml:"height_ratio"`
	ReferenceMapSize    float64 `yaml:"reference_map_size"`
	Smoothing           float64 `yaml:"smoothing"` // Per-second easing rate, 0 = snap
	MinimapSize         int     `yaml:"minimap_size"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	HalfMapSize float64 // MapSize / 2
	ArenaScale  float64 // MapSize / Camera.ReferenceMapSize
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Parse builds a configuration from YAML bytes alone, without embedded defaults.
// Used for fully specified configs (and tests of validation).
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// Validate checks that the parameters a session cannot start without are present.
func (c *Config) Validate() error {
	required := []struct {
		key string
		ok  bool
	}{
		{"arena.map_size", c.Arena.MapSize > 0},
		{"arena.playable_area", c.Arena.PlayableArea > 0},
		{"arena.max_object_size", c.Arena.MaxObjectSize > 0},
		{"population.max_object_count", c.Population.MaxObjectCount > 0},
		{"population.categories", len(c.Population.Categories) > 0},
		{"shapes.kinds", len(c.Shapes.Kinds) > 0},
		{"player.initial_radius", c.Player.InitialRadius > 0},
		{"camera.max_screen_percentage", c.Camera.MaxScreenPercentage > 0},
		{"camera.camera_zoom_rate", c.Camera.CameraZoomRate > 0},
	}
	for _, r := range required {
		if !r.ok {
			return fmt.Errorf("%w: %s", ErrConfigurationMissing, r.key)
		}
	}
	if c.Population.InitialObjectCount < 0 {
		return fmt.Errorf("population.initial_object_count must not be negative, got %d", c.Population.InitialObjectCount)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.HalfMapSize = c.Arena.MapSize / 2

	c.Derived.ArenaScale = 1
	if c.Camera.ReferenceMapSize > 0 {
		c.Derived.ArenaScale = c.Arena.MapSize / c.Camera.ReferenceMapSize
	}

	if c.Population.RetryFactor < 1 {
		c.Population.RetryFactor = 2
	}

	if c.Placement.MaxAttempts < 1 {
		c.Placement.MaxAttempts = 50
	}
	if c.Physics.ReferenceDT <= 0 {
		c.Physics.ReferenceDT = 1.0 / 60.0
	}
	if c.Collision.ParallelThreshold < 1 {
		c.Collision.ParallelThreshold = 64
	}
}

// WriteYAML writes the effective configuration to a file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
