package building

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-power-towers/internal/defs"
	"go-power-towers/internal/economy"
	"go-power-towers/internal/energy"
	"go-power-towers/internal/event"
	"go-power-towers/internal/types"
	"go-power-towers/pkg/gridmap"
)

type fixture struct {
	m      *Manager
	nw     *energy.Network
	grid   *gridmap.GridMap
	ledger *economy.Ledger
	toasts []event.ToastMessage
	events []event.EventType
}

func newFixture(t *testing.T, gold int) *fixture {
	t.Helper()
	return newFixtureWith(t, gold, DefaultOptions())
}

func newFixtureWith(t *testing.T, gold int, opts Options) *fixture {
	t.Helper()
	lib, err := defs.LoadDefaults()
	require.NoError(t, err)

	f := &fixture{}
	d := event.NewDispatcher()
	d.Subscribe(event.Toast, event.ListenerFunc(func(e event.Event) {
		f.toasts = append(f.toasts, e.Data.(event.ToastMessage))
	}))
	for _, et := range []event.EventType{event.BuildingPlaced, event.BuildingRemoved, event.BuildingUpgraded, event.TowerPlaced} {
		d.Subscribe(et, event.ListenerFunc(func(e event.Event) {
			f.events = append(f.events, e.Type)
		}))
	}

	logger := slog.New(slog.DiscardHandler)
	f.nw = energy.NewNetwork(energy.Options{Dispatcher: d, Logger: logger})
	f.grid = gridmap.New(20, 20, 24)
	f.ledger = economy.NewLedger(gold, d)
	f.m = NewManager(Deps{
		Network:    f.nw,
		Library:    lib,
		Grid:       f.grid,
		Economy:    f.ledger,
		Dispatcher: d,
		Logger:     logger,
	}, opts)
	return f
}

func (f *fixture) lastToast() event.ToastMessage {
	if len(f.toasts) == 0 {
		return event.ToastMessage{}
	}
	return f.toasts[len(f.toasts)-1]
}

func TestPlaceBuilding(t *testing.T) {
	f := newFixture(t, 500)
	b, err := f.m.Place("base-generator", 2, 3)
	require.NoError(t, err)

	assert.Equal(t, 450, f.ledger.Gold())
	n, ok := f.nw.Node(b.ID)
	require.True(t, ok)
	assert.Equal(t, "base-generator", n.Type)
	assert.Equal(t, energy.KindStable, n.Kind)
	assert.Equal(t, 60.0, n.WorldX)
	assert.True(t, f.grid.IsOccupied(2, 3))
	got, ok := f.m.BuildingAt(2, 3)
	require.True(t, ok)
	assert.Same(t, b, got)
	assert.Equal(t, []event.EventType{event.BuildingPlaced}, f.events)
}

func TestPlaceRejections(t *testing.T) {
	f := newFixture(t, 70)
	require.NoError(t, f.grid.SetTerrain(5, 5, gridmap.TerrainWater))
	_, err := f.m.Place("base-generator", 1, 1)
	require.NoError(t, err)

	_, err = f.m.Place("fusion-reactor", 2, 2)
	assert.ErrorIs(t, err, ErrUnknownBuilding)

	_, err = f.m.Place("wind-generator", 2, 2)
	assert.ErrorIs(t, err, ErrCannotAfford)
	assert.Equal(t, "Not enough gold!", f.lastToast().Message)

	_, err = f.m.Place("base-generator", 1, 1)
	assert.ErrorIs(t, err, ErrCannotAfford, "gold is checked first")

	f.ledger.Earn(100)
	_, err = f.m.Place("base-generator", 1, 1)
	assert.ErrorIs(t, err, ErrCannotBuild)
	_, err = f.m.Place("base-generator", 5, 5)
	assert.ErrorIs(t, err, ErrCannotBuild)
	_, err = f.m.Place("base-generator", 40, 5)
	assert.ErrorIs(t, err, ErrCannotBuild)
	assert.Equal(t, event.ToastError, f.lastToast().Kind)

	assert.Equal(t, 1, f.nw.NodeCount())
	assert.Equal(t, 120, f.ledger.Gold())
}

func TestBatteryStacking(t *testing.T) {
	f := newFixture(t, 1000)
	a, err := f.m.Place("battery", 0, 0)
	require.NoError(t, err)
	b, err := f.m.Place("battery", 1, 1)
	require.NoError(t, err)
	c, err := f.m.Place("battery", 6, 6)
	require.NoError(t, err)

	assert.InDelta(t, 1.15, a.Node.StackMultiplier(), 1e-9)
	assert.InDelta(t, 1.15, b.Node.StackMultiplier(), 1e-9)
	assert.Equal(t, 1.0, c.Node.StackMultiplier())
	assert.InDelta(t, 230.0, a.Node.EffectiveCapacity(), 1e-9)

	a.Node.Stored = 230
	require.True(t, f.m.Remove(b.ID))
	assert.Equal(t, 1.0, a.Node.StackMultiplier())
	assert.Equal(t, 200.0, a.Node.Stored)
}

func TestUpgradeCostsEscalate(t *testing.T) {
	f := newFixture(t, 1000)
	b, err := f.m.Place("base-generator", 0, 0)
	require.NoError(t, err)

	var paid []int
	for i := 0; i < 5; i++ {
		cost, err := f.m.Upgrade(b.ID, energy.UpgradeGeneration)
		require.NoError(t, err)
		paid = append(paid, cost)
	}
	assert.Equal(t, []int{30, 45, 66, 90, 120}, paid)
	assert.Equal(t, 6, b.Node.Level)
	assert.InDelta(t, 10.0, b.Node.BaseGeneration(), 1e-9)

	_, err = f.m.Upgrade(b.ID, energy.UpgradeGeneration)
	assert.ErrorIs(t, err, ErrUpgradeMaxed)
	_, err = f.m.Upgrade(b.ID, energy.UpgradeDecay)
	assert.ErrorIs(t, err, ErrUnknownUpgrade)
	_, err = f.m.Upgrade(999, energy.UpgradeRange)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1000-50-351, f.ledger.Gold())

	for _, opt := range f.m.AvailableUpgrades(b.ID) {
		assert.NotEqual(t, energy.UpgradeGeneration, opt.Type)
	}
}

func TestUpgradeNeedsGold(t *testing.T) {
	f := newFixture(t, 80)
	b, err := f.m.Place("battery", 0, 0)
	require.NoError(t, err)
	_, err = f.m.Upgrade(b.ID, energy.UpgradeCapacity)
	assert.ErrorIs(t, err, ErrCannotAfford)
	assert.Zero(t, b.Node.Upgrades.Capacity)

	opts := f.m.AvailableUpgrades(b.ID)
	require.Len(t, opts, 5)
	assert.Equal(t, energy.UpgradeCapacity, opts[0].Type)
	assert.Equal(t, 40, opts[0].Cost)
	assert.False(t, opts[0].CanAfford)
	assert.True(t, opts[0].Available)
}

func TestRelayChannelUpgradeCap(t *testing.T) {
	f := newFixture(t, 5000)
	b, err := f.m.Place("power-transfer", 0, 0)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := f.m.Upgrade(b.ID, energy.UpgradeChannels)
		require.NoError(t, err)
	}
	_, err = f.m.Upgrade(b.ID, energy.UpgradeChannels)
	assert.ErrorIs(t, err, ErrUpgradeMaxed)
	assert.Equal(t, 6, b.Node.EffectiveOutputChannels())
}

func TestConnectionMode(t *testing.T) {
	f := newFixture(t, 1000)
	var modes []ConnectionModeState
	f.m.deps.Dispatcher.Subscribe(event.ConnectionMode, event.ListenerFunc(func(e event.Event) {
		modes = append(modes, e.Data.(ConnectionModeState))
	}))

	gen, err := f.m.Place("base-generator", 0, 0)
	require.NoError(t, err)
	bat, err := f.m.Place("battery", 2, 0)
	require.NoError(t, err)
	_, err = f.m.Place("battery", 15, 15)
	require.NoError(t, err)

	targets, err := f.m.StartConnection(gen.ID)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, bat.ID, targets[0].Node.ID)
	src, active := f.m.Connecting()
	assert.True(t, active)
	assert.Equal(t, gen.ID, src)

	res, err := f.m.EndConnection(bat.ID)
	require.NoError(t, err)
	assert.Equal(t, energy.ConnectConnected, res)
	assert.Equal(t, event.ToastMessage{Message: "Connected!", Kind: event.ToastSuccess}, f.lastToast())
	_, active = f.m.Connecting()
	assert.False(t, active)

	_, err = f.m.EndConnection(bat.ID)
	assert.ErrorIs(t, err, ErrNotConnecting)

	_, err = f.m.StartConnection(gen.ID)
	require.NoError(t, err)
	res, _ = f.m.EndConnection(bat.ID)
	assert.Equal(t, energy.ConnectDisconnected, res)

	_, err = f.m.StartConnection(bat.ID)
	require.NoError(t, err)
	res, _ = f.m.EndConnection(gen.ID)
	assert.Equal(t, energy.ConnectRejected, res)
	assert.Equal(t, "Connection failed!", f.lastToast().Message)

	_, err = f.m.StartConnection(404)
	assert.ErrorIs(t, err, energy.ErrNodeNotFound)

	require.NotEmpty(t, modes)
	assert.True(t, modes[0].Active)
	assert.Equal(t, []types.EntityID{bat.ID}, modes[0].Targets)
	assert.False(t, modes[len(modes)-1].Active)
}

func TestRemoveCascadesConnections(t *testing.T) {
	f := newFixture(t, 1000)
	gen, _ := f.m.Place("base-generator", 0, 0)
	relay, _ := f.m.Place("power-transfer", 1, 0)
	bat, _ := f.m.Place("battery", 2, 0)
	require.Equal(t, energy.ConnectConnected, f.m.Connect(gen.ID, relay.ID))
	require.Equal(t, energy.ConnectConnected, f.m.Connect(relay.ID, bat.ID))

	assert.True(t, f.m.Remove(relay.ID))
	assert.False(t, f.m.Remove(relay.ID))
	assert.Empty(t, f.nw.Connections())
	assert.False(t, f.grid.IsOccupied(1, 0))
	assert.Len(t, f.m.Buildings(), 2)
}

func TestTowerIsPoweredByGenerator(t *testing.T) {
	f := newFixture(t, 1000)
	gen, err := f.m.Place("base-generator", 0, 0)
	require.NoError(t, err)
	id, err := f.m.PlaceTower("arrow-tower", 1, 0)
	require.NoError(t, err)
	tower := f.m.ECS().Towers[id]
	require.NotNil(t, tower)

	assert.False(t, tower.Powered)
	assert.InDelta(t, 7.0, tower.Effective.Damage, 1e-9, "unpowered penalty applies at placement")
	node, ok := f.nw.Node(id)
	require.True(t, ok)
	assert.InDelta(t, 12.0, node.EffectiveCapacity(), 1e-9)

	require.Equal(t, energy.ConnectConnected, f.m.Connect(gen.ID, id))
	for i := 0; i < 10; i++ {
		f.nw.Update(0.1)
	}
	assert.True(t, tower.Powered)
	assert.InDelta(t, 12.0, tower.Effective.Damage, 1e-9)
	assert.Equal(t, []types.EntityID{id}, f.m.Towers())

	assert.True(t, f.m.SetPowerDraw(id, 2))
	assert.InDelta(t, 6.0, node.Consumption(), 1e-9)

	assert.True(t, f.m.RemoveTower(id))
	assert.False(t, f.m.RemoveTower(id))
	assert.Empty(t, f.nw.Connections())
	assert.True(t, f.m.CanBuildAt(1, 0))
}

func TestTowerEnergyPoolDrainsAfterDisconnect(t *testing.T) {
	opts := DefaultOptions()
	opts.Adapter.Mode = energy.BindTowerEnergy
	f := newFixtureWith(t, 1000, opts)
	gen, err := f.m.Place("base-generator", 0, 0)
	require.NoError(t, err)
	id, err := f.m.PlaceTower("arrow-tower", 1, 0)
	require.NoError(t, err)
	tower := f.m.ECS().Towers[id]
	adapter := f.m.ECS().PowerAdapters[id]

	require.Equal(t, energy.ConnectConnected, f.m.Connect(gen.ID, id))
	for i := 0; i < 600; i++ {
		f.nw.Update(0.1)
	}
	assert.True(t, tower.Powered)
	assert.Greater(t, adapter.PowerLevel(), 0.9)
	assert.Greater(t, tower.Effective.Damage, 11.0)

	require.Equal(t, energy.ConnectDisconnected, f.m.Connect(gen.ID, id))
	for i := 0; i < 6000; i++ {
		f.nw.Update(0.1)
	}
	assert.False(t, tower.Powered)
	assert.Equal(t, 0.0, adapter.PowerLevel())
	assert.InDelta(t, 0.0, tower.Energy, 1e-9)
	assert.InDelta(t, 7.0, tower.Effective.Damage, 1e-9)
}

func TestRemoveTowerLeavesConnectionMode(t *testing.T) {
	f := newFixture(t, 1000)
	id, err := f.m.PlaceTower("arrow-tower", 1, 0)
	require.NoError(t, err)
	bat, err := f.m.Place("battery", 2, 0)
	require.NoError(t, err)

	_, err = f.m.StartConnection(id)
	require.NoError(t, err)
	require.True(t, f.m.RemoveTower(id))

	_, active := f.m.Connecting()
	assert.False(t, active)
	_, err = f.m.EndConnection(bat.ID)
	assert.ErrorIs(t, err, ErrNotConnecting)
	assert.NotEqual(t, "Connection failed!", f.lastToast().Message)
}

func TestPlaceTowerRejections(t *testing.T) {
	f := newFixture(t, 10)
	_, err := f.m.PlaceTower("siege-engine", 0, 0)
	assert.ErrorIs(t, err, ErrUnknownTower)
	_, err = f.m.PlaceTower("arrow-tower", 0, 0)
	assert.ErrorIs(t, err, ErrCannotAfford)
}
