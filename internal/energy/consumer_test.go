package energy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumerSettle(t *testing.T) {
	n := newNode(KindConsumer, 1, 0, 0)

	n.Stored = 10
	assert.Equal(t, 5.0, n.Settle(1))
	assert.Equal(t, 1.0, n.Satisfaction())
	assert.Equal(t, 5.0, n.Stored)

	n.Stored = 2.5
	assert.Equal(t, 2.5, n.Settle(1))
	assert.Equal(t, 0.5, n.Satisfaction())
	assert.Equal(t, 0.0, n.Stored)

	assert.Equal(t, 0.0, n.Settle(1))
	assert.Equal(t, 0.0, n.Satisfaction())
}

func TestAdapterRequiresConsumer(t *testing.T) {
	assert.Nil(t, NewTowerPowerAdapter(newNode(KindStorage, 1, 0, 0), &fakeTower{}, DefaultAdapterConfig()))
}

func TestAdapterSetsBaseDraw(t *testing.T) {
	n := newNode(KindConsumer, 1, 0, 0)
	a := NewTowerPowerAdapter(n, &fakeTower{}, DefaultAdapterConfig())
	require.NotNil(t, a)
	assert.Equal(t, 3.0, n.Consumption())
	assert.Equal(t, 3.0, n.InputRate)
	assert.Same(t, a, n.Adapter())

	a.Detach()
	assert.Nil(t, n.Adapter())
}

func TestPowerModifiersInterpolateThenDropToPenalty(t *testing.T) {
	tower := &fakeTower{}
	a := NewTowerPowerAdapter(newNode(KindConsumer, 1, 0, 0), tower, DefaultAdapterConfig())

	a.SetPowerLevel(0.6)
	assert.True(t, tower.powered)
	assert.InDelta(t, 1.12, tower.mods.Damage, 1e-9)
	assert.InDelta(t, 1.06, tower.mods.Range, 1e-9)
	assert.InDelta(t, 1.09, tower.mods.FireRate, 1e-9)

	a.SetPowerLevel(0.4)
	assert.False(t, tower.powered)
	assert.Equal(t, 0.4, tower.level)
	assert.Equal(t, Modifiers{Damage: 0.7, Range: 0.9, FireRate: 0.8}, tower.mods)
	assert.Equal(t, 2, tower.recalcs)

	a.SetPowerLevel(1)
	assert.InDelta(t, 1.2, tower.mods.Damage, 1e-9)
}

func TestAdapterUpdateFromBuffer(t *testing.T) {
	tower := &fakeTower{}
	n := newNode(KindConsumer, 1, 0, 0)
	a := NewTowerPowerAdapter(n, tower, DefaultAdapterConfig())

	n.Stored = 3
	assert.Equal(t, 3.0, n.Settle(1))
	assert.True(t, tower.powered)
	assert.Equal(t, 1.0, a.PowerLevel())

	n.Stored = 1.5
	n.Settle(1)
	assert.Equal(t, 0.5, a.PowerLevel())
	assert.False(t, a.Powered(), "threshold is strict")
}

func TestAdapterUpdateFromTowerEnergy(t *testing.T) {
	tower := &poolTower{}
	tower.maxEnergy = 10
	cfg := DefaultAdapterConfig()
	cfg.Mode = BindTowerEnergy
	n := newNode(KindConsumer, 1, 0, 0)
	a := NewTowerPowerAdapter(n, tower, cfg)
	assert.Equal(t, 6.0, n.InputRate, "intake runs at twice the draw")

	n.Stored = 8
	assert.Equal(t, 8.0, n.Settle(1))
	assert.InDelta(t, 5.0, tower.energy, 1e-9, "upkeep is paid from the pool")
	assert.InDelta(t, 0.5, a.PowerLevel(), 1e-9)
	assert.False(t, a.Powered())

	n.Stored = 8
	assert.Equal(t, 5.0, n.Settle(1))
	assert.Equal(t, 3.0, n.Stored, "pool only takes what fits")
	assert.InDelta(t, 0.7, a.PowerLevel(), 1e-9)
	assert.True(t, a.Powered())
}

func TestTowerEnergyDrainsWhenStarved(t *testing.T) {
	tower := &poolTower{}
	tower.maxEnergy = 10
	tower.energy = 10
	cfg := DefaultAdapterConfig()
	cfg.Mode = BindTowerEnergy
	n := newNode(KindConsumer, 1, 0, 0)
	a := NewTowerPowerAdapter(n, tower, cfg)

	n.Stored = 0
	assert.Equal(t, 0.0, n.Settle(1))
	assert.InDelta(t, 0.7, a.PowerLevel(), 1e-9)
	assert.True(t, a.Powered())

	n.Settle(1)
	assert.InDelta(t, 0.4, a.PowerLevel(), 1e-9)
	assert.False(t, a.Powered())
	assert.Equal(t, cfg.UnpoweredPenalty, tower.mods)

	n.Settle(1)
	n.Settle(1)
	assert.Equal(t, 0.0, a.PowerLevel())
	assert.InDelta(t, 1.0/3, n.Satisfaction(), 1e-9)
	assert.Equal(t, 0.0, tower.energy)
}

func TestSetPowerDraw(t *testing.T) {
	n := newNode(KindConsumer, 1, 0, 0)
	a := NewTowerPowerAdapter(n, &fakeTower{}, DefaultAdapterConfig())

	a.SetPowerDraw(2)
	assert.InDelta(t, 6.0, n.Consumption(), 1e-9)
	assert.InDelta(t, 1.8, a.PoweredBonus().Damage, 1e-9)
	assert.InDelta(t, 1.65, a.PoweredBonus().Range, 1e-9)

	a.SetPowerDraw(0.5)
	assert.InDelta(t, 1.5, n.Consumption(), 1e-9)
	assert.InDelta(t, 1.1, a.PoweredBonus().Damage, 1e-9)
	assert.InDelta(t, 1.075, a.PoweredBonus().FireRate, 1e-9)

	a.SetPowerDraw(9)
	assert.Equal(t, 2.0, a.DrawMultiplier())

	a.SetPowerDraw(1)
	assert.Equal(t, DefaultAdapterConfig().PoweredBonus, a.PoweredBonus())
	assert.InDelta(t, 3.0, n.Consumption(), 1e-9)
}
