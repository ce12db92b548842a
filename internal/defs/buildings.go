// internal/defs/buildings.go
package defs

import (
	"fmt"

	"go-power-towers/internal/energy"
)

// UpgradeDef is one purchasable upgrade of a building.
type UpgradeDef struct {
	Type        energy.UpgradeType `json:"type"`
	Cost        int                `json:"cost"`
	Description string             `json:"description"`
}

// BuildingStats are the base node stats of a building.
type BuildingStats struct {
	InputChannels  int     `json:"input_channels"`
	OutputChannels int     `json:"output_channels"`
	InputRate      float64 `json:"input_rate"`
	OutputRate     float64 `json:"output_rate"`
	Capacity       float64 `json:"capacity"`
	Range          float64 `json:"range"`

	Generator *energy.GeneratorParams `json:"generator,omitempty"`
	Storage   *energy.StorageParams   `json:"storage,omitempty"`
	Transfer  *energy.TransferParams  `json:"transfer,omitempty"`
}

// BuildingDefinition holds all the static data for an energy building.
type BuildingDefinition struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Kind        string        `json:"kind"`
	Cost        int           `json:"cost"`
	StackBonus  float64       `json:"stack_bonus,omitempty"`
	Stats       BuildingStats `json:"stats"`
	Upgrades    []UpgradeDef  `json:"upgrades"`
	Visuals     Visuals       `json:"visuals"`
}

// NodeKind resolves the definition's kind name.
func (d BuildingDefinition) NodeKind() (energy.Kind, error) {
	k, ok := energy.ParseKind(d.Kind)
	if !ok {
		return 0, fmt.Errorf("building %q: unknown kind %q", d.ID, d.Kind)
	}
	if k == energy.KindConsumer {
		return 0, fmt.Errorf("building %q: consumers are attached to towers", d.ID)
	}
	return k, nil
}

// NodeConfig builds the node configuration for a building at (x, y).
func (d BuildingDefinition) NodeConfig(x, y int) (energy.NodeConfig, error) {
	kind, err := d.NodeKind()
	if err != nil {
		return energy.NodeConfig{}, err
	}
	cfg := energy.DefaultNodeConfig(kind)
	cfg.Type = d.ID
	cfg.GridX, cfg.GridY = x, y
	cfg.InputChannels = d.Stats.InputChannels
	cfg.OutputChannels = d.Stats.OutputChannels
	cfg.InputRate = d.Stats.InputRate
	cfg.OutputRate = d.Stats.OutputRate
	cfg.Capacity = d.Stats.Capacity
	cfg.Range = d.Stats.Range
	if d.Stats.Generator != nil {
		cfg.Generator = *d.Stats.Generator
	}
	if d.Stats.Storage != nil {
		cfg.Storage = *d.Stats.Storage
	}
	if d.Stats.Transfer != nil {
		cfg.Transfer = *d.Stats.Transfer
	}
	return cfg, nil
}

// Upgrade looks up the upgrade of type t.
func (d BuildingDefinition) Upgrade(t energy.UpgradeType) (UpgradeDef, bool) {
	for _, u := range d.Upgrades {
		if u.Type == t {
			return u, true
		}
	}
	return UpgradeDef{}, false
}
