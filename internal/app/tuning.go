package app

import (
	"go-power-towers/internal/building"
	"go-power-towers/internal/config"
	"go-power-towers/internal/energy"
)

// Rules maps the upgrade and XP sections onto the network rules.
func Rules(cfg *config.Config) energy.Rules {
	u := cfg.Upgrades
	r := energy.DefaultRules()
	r.MaxLevel = u.MaxLevel
	r.InputRatePerLevel = u.InputRatePerLevel
	r.OutputRatePerLevel = u.OutputRatePerLevel
	r.CapacityPerLevel = u.CapacityPerLevel
	r.RangePerLevel = u.RangePerLevel
	r.ChannelLevelsPerSlot = u.ChannelLevelsPerSlot
	r.RelayMaxChannelUpgrades = u.RelayMaxChannelUpgrades
	r.GenerationPerLevel = u.GenerationPerLevel
	r.RelayEfficiencyPerLevel = u.RelayEfficiencyPerLevel
	r.SolarEfficiencyPerLevel = u.SolarEfficiencyPerLevel
	r.StabilityPerLevel = u.StabilityPerLevel
	r.MinInstability = u.MinInstability
	r.DecayFactorPerLevel = u.DecayFactorPerLevel
	if cfg.Storage.DecayInterval > 0 {
		r.StorageDecayInterval = cfg.Storage.DecayInterval
	}
	r.EnergyPerXP = cfg.XP.EnergyPerXP
	r.XPPerLevel = cfg.XP.XPPerLevel
	return r
}

func modifiers(m config.ModifierConfig) energy.Modifiers {
	return energy.Modifiers{Damage: m.Damage, Range: m.Range, FireRate: m.FireRate}
}

// AdapterConfig maps the power section onto the tower adapter tuning.
func AdapterConfig(cfg *config.Config) energy.AdapterConfig {
	p := cfg.Power
	a := energy.DefaultAdapterConfig()
	a.Threshold = p.Threshold
	a.OverdriveScale = p.OverdriveScale
	a.MaxDrawMultiplier = p.MaxDrawMultiplier
	a.PoweredBonus = modifiers(p.PoweredBonus)
	a.UnpoweredPenalty = modifiers(p.UnpoweredPenalty)
	a.ChargeRate = p.ChargeRate
	if p.Binding == "tower_energy" {
		a.Mode = energy.BindTowerEnergy
	}
	return a
}

// BuildingOptions maps placement, upgrade purchase and wind tuning.
func BuildingOptions(cfg *config.Config) building.Options {
	o := building.DefaultOptions()
	o.CellSize = cfg.Viewer.CellSize
	o.StackBonus = cfg.Storage.StackBonus
	o.CostMultipliers = cfg.Upgrades.CostMultipliers
	o.MaxUpgradesPerType = cfg.Upgrades.MaxPerType
	o.BufferSeconds = cfg.Power.BufferSeconds
	o.Adapter = AdapterConfig(cfg)
	o.WindInstability = cfg.Wind.Instability
	o.FluctuationInterval = cfg.Wind.FluctuationInterval
	return o
}
