// internal/defs/towers.go
package defs

import (
	"image/color"
)

// TowerDefinition holds all the static data for a specific type of tower.
type TowerDefinition struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Cost    int         `json:"cost"`
	Combat  CombatStats `json:"combat"`
	Power   PowerStats  `json:"power"`
	Visuals Visuals     `json:"visuals"`
}

// CombatStats contains parameters related to a tower's combat abilities.
type CombatStats struct {
	Damage   float64 `json:"damage"`
	FireRate float64 `json:"fire_rate"` // Shots per second
	Range    float64 `json:"range"`
}

// PowerStats describe how a tower draws from the network.
type PowerStats struct {
	Draw           float64 `json:"draw"`            // energy per second
	EnergyCapacity float64 `json:"energy_capacity"` // the tower's own pool
}

// Visuals contains parameters for rendering a building or tower.
type Visuals struct {
	Color        color.RGBA `json:"color"`
	RadiusFactor float64    `json:"radius_factor"`
	StrokeWidth  float64    `json:"stroke_width"`
}
