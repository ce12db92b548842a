package building

import (
	"fmt"

	"go-power-towers/internal/component"
	"go-power-towers/internal/energy"
	"go-power-towers/internal/event"
	"go-power-towers/internal/types"
)

// PlaceTower builds a tower with a consumer node so it can be wired into the
// network. The consumer buffers BufferSeconds of the tower's draw.
func (m *Manager) PlaceTower(defID string, x, y int) (types.EntityID, error) {
	def, ok := m.deps.Library.Tower(defID)
	if !ok {
		m.toast("Unknown tower!", event.ToastError)
		return 0, fmt.Errorf("%q: %w", defID, ErrUnknownTower)
	}
	if !m.canAfford(def.Cost) {
		m.toast("Not enough gold!", event.ToastError)
		return 0, fmt.Errorf("%s costs %d: %w", defID, def.Cost, ErrCannotAfford)
	}
	if !m.CanBuildAt(x, y) {
		m.toast("Cannot build here!", event.ToastError)
		return 0, fmt.Errorf("%s at (%d,%d): %w", defID, x, y, ErrCannotBuild)
	}

	id := m.deps.ECS.NewEntity()
	wx, wy := m.worldPos(x, y)
	tower := component.NewTower(def.ID, x, y, component.Combat{
		Damage:   def.Combat.Damage,
		FireRate: def.Combat.FireRate,
		Range:    def.Combat.Range,
	}, def.Power.EnergyCapacity)

	draw := def.Power.Draw
	cfg := energy.DefaultNodeConfig(energy.KindConsumer)
	cfg.ID = id
	cfg.Type = def.ID
	cfg.GridX, cfg.GridY = x, y
	cfg.WorldX, cfg.WorldY = wx, wy
	cfg.Consumer.Consumption = draw
	cfg.InputRate = draw
	if m.opts.BufferSeconds > 0 {
		cfg.Capacity = draw * m.opts.BufferSeconds
	}
	node := energy.NewNode(cfg)

	adapterCfg := m.opts.Adapter
	adapterCfg.BasePowerDraw = draw
	adapter := energy.NewTowerPowerAdapter(node, tower, adapterCfg)
	adapter.ApplyPowerModifiers()

	if err := m.deps.Network.RegisterNode(node); err != nil {
		return 0, fmt.Errorf("place tower %s: %w", defID, err)
	}
	m.spend(def.Cost)

	m.deps.ECS.Towers[id] = tower
	m.deps.ECS.PowerAdapters[id] = adapter
	m.deps.ECS.Positions[id] = &component.Position{X: wx, Y: wy}
	m.occupy(x, y, id)

	m.logger.Info("tower placed", "id", id, "type", defID, "x", x, "y", y, "draw", draw)
	m.dispatch(event.TowerPlaced, id)
	return id, nil
}

// RemoveTower deletes a tower and its consumer node.
func (m *Manager) RemoveTower(id types.EntityID) bool {
	tower, ok := m.deps.ECS.Towers[id]
	if !ok {
		return false
	}
	if m.connecting && m.source == id {
		m.CancelConnection()
	}
	m.deps.Network.UnregisterNode(id)
	m.release(tower.GridX, tower.GridY)
	m.deps.ECS.RemoveEntity(id)
	m.logger.Info("tower removed", "id", id)
	m.dispatch(event.TowerRemoved, id)
	return true
}

// Towers returns the tower IDs in ID order.
func (m *Manager) Towers() []types.EntityID {
	ids := make([]types.EntityID, 0, len(m.deps.ECS.Towers))
	for id := range m.deps.ECS.Towers {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

// SetPowerDraw changes a tower's draw multiplier.
func (m *Manager) SetPowerDraw(id types.EntityID, multiplier float64) bool {
	a, ok := m.deps.ECS.PowerAdapters[id]
	if !ok {
		return false
	}
	a.SetPowerDraw(multiplier)
	return true
}
