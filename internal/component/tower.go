// component/tower.go
package component

import "go-power-towers/internal/energy"

// Tower is a combat tower that can be powered by the energy network.
type Tower struct {
	DefID string // ID из towers.json
	GridX int
	GridY int

	Base      Combat // stats from the definition
	Effective Combat // Base scaled by PowerModifiers

	Powered        bool
	PowerLevel     float64
	PowerModifiers energy.Modifiers

	Energy    float64
	MaxEnergy float64
}

// NewTower creates an unpowered tower with neutral modifiers.
func NewTower(defID string, x, y int, base Combat, maxEnergy float64) *Tower {
	t := &Tower{
		DefID:          defID,
		GridX:          x,
		GridY:          y,
		Base:           base,
		PowerModifiers: energy.NeutralModifiers,
		MaxEnergy:      maxEnergy,
	}
	t.RecalculateStats()
	return t
}

// SetPowerState implements energy.Tower.
func (t *Tower) SetPowerState(powered bool, level float64, mods energy.Modifiers) {
	t.Powered = powered
	t.PowerLevel = level
	t.PowerModifiers = mods
}

// RecalculateStats implements energy.Tower.
func (t *Tower) RecalculateStats() {
	t.Effective = Combat{
		Damage:   t.Base.Damage * t.PowerModifiers.Damage,
		FireRate: t.Base.FireRate * t.PowerModifiers.FireRate,
		Range:    t.Base.Range * t.PowerModifiers.Range,
	}
}

// AddEnergy implements energy.EnergyPool.
func (t *Tower) AddEnergy(amount float64) float64 {
	room := t.MaxEnergy - t.Energy
	if amount > room {
		amount = room
	}
	if amount <= 0 {
		return 0
	}
	t.Energy += amount
	return amount
}

// SpendEnergy implements energy.EnergyPool.
func (t *Tower) SpendEnergy(amount float64) float64 {
	if amount > t.Energy {
		amount = t.Energy
	}
	if amount <= 0 {
		return 0
	}
	t.Energy -= amount
	return amount
}

// EnergyRatio implements energy.EnergyPool.
func (t *Tower) EnergyRatio() float64 {
	if t.MaxEnergy <= 0 {
		return 0
	}
	return t.Energy / t.MaxEnergy
}
