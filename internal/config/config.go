// Package config loads simulation tuning from YAML, layered over embedded defaults.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all tuning parameters.
type Config struct {
	Network   NetworkConfig   `yaml:"network"`
	Upgrades  UpgradeConfig   `yaml:"upgrades"`
	XP        XPConfig        `yaml:"xp"`
	Power     PowerConfig     `yaml:"power"`
	Wind      WindConfig      `yaml:"wind"`
	Storage   StorageConfig   `yaml:"storage"`
	Economy   EconomyConfig   `yaml:"economy"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Viewer    ViewerConfig    `yaml:"viewer"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// NetworkConfig holds tick engine parameters.
type NetworkConfig struct {
	TickRate     float64 `yaml:"tick_rate"`      // Ticks per simulated second
	Passes       int     `yaml:"passes"`         // Propagation passes per tick
	FlowOrder    string  `yaml:"flow_order"`     // priority | topological
	MaxDeltaTime float64 `yaml:"max_delta_time"` // Largest frame dt accepted by the accumulator
}

// UpgradeConfig holds per-level upgrade bonuses and purchase rules.
type UpgradeConfig struct {
	MaxLevel                int       `yaml:"max_level"`
	MaxPerType              int       `yaml:"max_per_type"`
	CostMultipliers         []float64 `yaml:"cost_multipliers"`
	InputRatePerLevel       float64   `yaml:"input_rate_per_level"`
	OutputRatePerLevel      float64   `yaml:"output_rate_per_level"`
	CapacityPerLevel        float64   `yaml:"capacity_per_level"`
	RangePerLevel           float64   `yaml:"range_per_level"`
	ChannelLevelsPerSlot    int       `yaml:"channel_levels_per_slot"`
	RelayMaxChannelUpgrades int       `yaml:"relay_max_channel_upgrades"`
	GenerationPerLevel      float64   `yaml:"generation_per_level"`
	RelayEfficiencyPerLevel float64   `yaml:"relay_efficiency_per_level"`
	SolarEfficiencyPerLevel float64   `yaml:"solar_efficiency_per_level"`
	StabilityPerLevel       float64   `yaml:"stability_per_level"`
	MinInstability          float64   `yaml:"min_instability"`
	DecayFactorPerLevel     float64   `yaml:"decay_factor_per_level"`
}

// XPConfig holds node experience parameters.
type XPConfig struct {
	EnergyPerXP float64 `yaml:"energy_per_xp"`
	XPPerLevel  int     `yaml:"xp_per_level"`
}

// ModifierConfig is a damage/range/fire-rate multiplier set.
type ModifierConfig struct {
	Damage   float64 `yaml:"damage"`
	Range    float64 `yaml:"range"`
	FireRate float64 `yaml:"fire_rate"`
}

// PowerConfig holds tower power bridge parameters.
type PowerConfig struct {
	Threshold         float64        `yaml:"threshold"`      // powered = level > threshold
	BufferSeconds     float64        `yaml:"buffer_seconds"` // consumer capacity = draw * this
	Binding           string         `yaml:"binding"`        // buffer | tower_energy
	ChargeRate        float64        `yaml:"charge_rate"`    // tower_energy intake as a multiple of draw
	OverdriveScale    float64        `yaml:"overdrive_scale"`
	MaxDrawMultiplier float64        `yaml:"max_draw_multiplier"`
	PoweredBonus      ModifierConfig `yaml:"powered_bonus"`
	UnpoweredPenalty  ModifierConfig `yaml:"unpowered_penalty"`
}

// WindConfig holds wind generator instability.
type WindConfig struct {
	Instability         float64 `yaml:"instability"`
	FluctuationInterval float64 `yaml:"fluctuation_interval"`
}

// StorageConfig holds battery parameters.
type StorageConfig struct {
	StackBonus    float64 `yaml:"stack_bonus"`
	DecayInterval float64 `yaml:"decay_interval"`
}

// EconomyConfig holds the starting ledger.
type EconomyConfig struct {
	StartingGold float64 `yaml:"starting_gold"`
}

// TelemetryConfig holds output sampling.
type TelemetryConfig struct {
	SampleEvery int `yaml:"sample_every"` // Ticks between CSV rows
}

// ViewerConfig holds window settings for cmd/viewer.
type ViewerConfig struct {
	Width        int     `yaml:"width"`
	Height       int     `yaml:"height"`
	CellSize     float64 `yaml:"cell_size"`
	MaxDeltaTime float64 `yaml:"max_delta_time"`
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	TickInterval float64 // 1 / Network.TickRate
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
		// Only fields present in the file are overwritten.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// MustLoad is like Load but panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load: %v", err))
	}
	return cfg
}

func (c *Config) validate() error {
	if c.Network.TickRate <= 0 {
		return fmt.Errorf("network.tick_rate must be positive, got %v", c.Network.TickRate)
	}
	if c.Network.Passes < 1 {
		return fmt.Errorf("network.passes must be at least 1, got %d", c.Network.Passes)
	}
	switch c.Network.FlowOrder {
	case "priority", "topological":
	default:
		return fmt.Errorf("network.flow_order %q is not priority or topological", c.Network.FlowOrder)
	}
	switch c.Power.Binding {
	case "buffer", "tower_energy":
	default:
		return fmt.Errorf("power.binding %q is not buffer or tower_energy", c.Power.Binding)
	}
	if c.Power.ChargeRate < 1 {
		return fmt.Errorf("power.charge_rate must be at least 1, got %v", c.Power.ChargeRate)
	}
	if c.Upgrades.ChannelLevelsPerSlot < 1 {
		return fmt.Errorf("upgrades.channel_levels_per_slot must be at least 1")
	}
	return nil
}

func (c *Config) computeDerived() {
	c.Derived.TickInterval = 1 / c.Network.TickRate
	if c.Telemetry.SampleEvery < 1 {
		c.Telemetry.SampleEvery = 1
	}
}

// WriteYAML writes the effective configuration to path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
