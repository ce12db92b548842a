package building

import (
	"fmt"

	"go-power-towers/internal/energy"
	"go-power-towers/internal/event"
	"go-power-towers/internal/types"
)

// UpgradeOption describes the next purchase of one upgrade type.
type UpgradeOption struct {
	Type        energy.UpgradeType
	Description string
	Level       int
	MaxLevel    int
	Cost        int
	CanAfford   bool
	Available   bool // false when the node cannot take it (level cap, channel cap)
}

// AvailableUpgrades lists upgrades of a building that are not maxed.
func (m *Manager) AvailableUpgrades(id types.EntityID) []UpgradeOption {
	b, ok := m.buildings[id]
	if !ok {
		return nil
	}
	var out []UpgradeOption
	for _, u := range b.Def.Upgrades {
		count := b.Node.Upgrades.Count(u.Type)
		if count >= m.opts.MaxUpgradesPerType {
			continue
		}
		cost := m.upgradeCost(u.Cost, count)
		out = append(out, UpgradeOption{
			Type:        u.Type,
			Description: u.Description,
			Level:       count,
			MaxLevel:    m.opts.MaxUpgradesPerType,
			Cost:        cost,
			CanAfford:   m.canAfford(cost),
			Available:   b.Node.CanUpgrade(u.Type),
		})
	}
	return out
}

// Upgrade buys the next level of t for a building and returns the price paid.
func (m *Manager) Upgrade(id types.EntityID, t energy.UpgradeType) (int, error) {
	b, ok := m.buildings[id]
	if !ok {
		return 0, fmt.Errorf("upgrade %d: %w", id, ErrNotFound)
	}
	u, ok := b.Def.Upgrade(t)
	if !ok {
		return 0, fmt.Errorf("%s has no %s upgrade: %w", b.Def.ID, t, ErrUnknownUpgrade)
	}
	count := b.Node.Upgrades.Count(t)
	if count >= m.opts.MaxUpgradesPerType || !b.Node.CanUpgrade(t) {
		return 0, fmt.Errorf("%s %s: %w", b.Def.ID, t, ErrUpgradeMaxed)
	}
	cost := m.upgradeCost(u.Cost, count)
	if !m.canAfford(cost) {
		m.toast("Not enough gold!", event.ToastError)
		return 0, fmt.Errorf("%s %s costs %d: %w", b.Def.ID, t, cost, ErrCannotAfford)
	}
	m.spend(cost)
	b.Node.Upgrade(t)

	m.logger.Info("building upgraded", "id", id, "upgrade", t, "count", count+1, "cost", cost)
	m.dispatch(event.BuildingUpgraded, Upgraded{ID: id, Type: t, Count: count + 1, Cost: cost})
	return cost, nil
}
