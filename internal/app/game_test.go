package app

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-power-towers/internal/building"
	"go-power-towers/internal/config"
	"go-power-towers/internal/energy"
	"go-power-towers/internal/telemetry"
	"go-power-towers/pkg/gridmap"
)

func newGame(t *testing.T, sc *Scenario, out *telemetry.OutputManager) *Game {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	if sc == nil {
		sc, err = LoadScenario("")
		require.NoError(t, err)
	}
	g, err := NewGame(cfg, sc, Options{Output: out, Logger: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)
	return g
}

func TestDefaultScenarioBuilds(t *testing.T) {
	g := newGame(t, nil, nil)

	assert.Equal(t, 9, g.Network.NodeCount())
	assert.Len(t, g.Network.Connections(), 7)
	assert.Equal(t, 355, g.Ledger.Gold())
	assert.Len(t, g.Buildings.Towers(), 3)

	gen, ok := g.Entity("gen")
	require.True(t, ok)
	node, _ := g.Network.Node(gen)
	assert.Equal(t, 1, node.Upgrades.Generation)
	assert.InDelta(t, 6.0, node.BaseGeneration(), 1e-9)

	bat1, _ := g.Entity("bat1")
	node, _ = g.Network.Node(bat1)
	assert.InDelta(t, 230.0, node.EffectiveCapacity(), 1e-9)

	tile, ok := g.Grid.Tile(10, 13)
	require.True(t, ok)
	assert.False(t, g.Grid.CanBuild(10, 13))
	assert.Equal(t, gridmap.TerrainWater, tile.Terrain)
}

func TestDefaultScenarioPowersTowers(t *testing.T) {
	g := newGame(t, nil, nil)
	assert.Equal(t, 50, g.RunFor(5))
	assert.InDelta(t, 5.0, g.Network.SimTime(), 1e-9)

	for _, name := range []string{"arrow", "cannon", "laser"} {
		id, ok := g.Entity(name)
		require.True(t, ok)
		tower := g.ECS.Towers[id]
		assert.True(t, tower.Powered, name)
		assert.Greater(t, tower.Effective.Damage, tower.Base.Damage, name)
	}

	s := g.State()
	assert.Equal(t, uint64(50), s.Tick)
	assert.Greater(t, s.Stats.Loss, 0.0, "relay efficiency loses energy")
	totals := g.Telemetry.Totals()
	assert.Equal(t, uint64(50), totals.Ticks)
	assert.Greater(t, totals.Consumed, 0.0)
}

func TestUpdateClampsPausesAndSpeeds(t *testing.T) {
	g := newGame(t, nil, nil)

	assert.Equal(t, 2, g.Update(1.0), "frame dt is clamped to max_delta_time")
	assert.InDelta(t, 0.25, g.GetGameTime(), 1e-9)

	g.HandlePauseClick()
	assert.True(t, g.IsPaused())
	assert.Zero(t, g.Update(0.2))
	g.HandlePauseClick()

	g.HandleSpeedClick()
	assert.Equal(t, 2.0, g.SpeedMultiplier)
	g.HandleSpeedClick()
	g.HandleSpeedClick()
	assert.Equal(t, 1.0, g.SpeedMultiplier)
}

func TestScenarioErrorsSurface(t *testing.T) {
	cfg := config.MustLoad("")
	sc, err := ParseScenario([]byte(`
name: broke
map: { width: 8, height: 8 }
gold: 10
buildings:
  - { name: gen, type: base-generator, x: 1, y: 1 }
`))
	require.NoError(t, err)
	_, err = NewGame(cfg, sc, Options{Logger: slog.New(slog.DiscardHandler)})
	assert.ErrorIs(t, err, building.ErrCannotAfford)

	sc, err = ParseScenario([]byte(`
name: far
map: { width: 30, height: 8 }
buildings:
  - { name: gen, type: base-generator, x: 1, y: 1 }
  - { name: bat, type: battery, x: 20, y: 1 }
links:
  - { from: gen, to: bat }
`))
	require.NoError(t, err)
	_, err = NewGame(cfg, sc, Options{Logger: slog.New(slog.DiscardHandler)})
	assert.ErrorIs(t, err, energy.ErrOutOfRange)
}

func TestParseScenarioValidates(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty map", "map: { width: 0, height: 4 }"},
		{"duplicate names", `
map: { width: 4, height: 4 }
buildings:
  - { name: a, type: battery, x: 0, y: 0 }
  - { name: a, type: battery, x: 1, y: 0 }`},
		{"unknown link", `
map: { width: 4, height: 4 }
buildings:
  - { name: a, type: battery, x: 0, y: 0 }
links:
  - { from: a, to: b }`},
		{"unknown upgrade target", `
map: { width: 4, height: 4 }
upgrades:
  - { target: a, type: range }`},
		{"bad feature", "map: { width: 4, height: 4, trees: [[1, 2, 3]] }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}

func TestGeneratedMapIsSeeded(t *testing.T) {
	cfg := config.MustLoad("")
	spec := MapSpec{Width: 16, Height: 12, Seed: 3, Generate: true}
	sc := &Scenario{Name: "gen", Map: spec}

	a, err := NewGame(cfg, sc, Options{Logger: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)
	b, err := NewGame(cfg, sc, Options{Logger: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)
	for y := 0; y < spec.Height; y++ {
		for x := 0; x < spec.Width; x++ {
			ta, _ := a.Grid.Tile(x, y)
			tb, _ := b.Grid.Tile(x, y)
			require.Equal(t, ta, tb, "tile (%d,%d)", x, y)
		}
	}
}

func TestTelemetryOutput(t *testing.T) {
	dir := t.TempDir()
	out, err := telemetry.NewOutputManager(dir)
	require.NoError(t, err)

	g := newGame(t, nil, out)
	g.RunFor(2)
	require.NoError(t, out.Close())

	assert.Equal(t, 2, g.Telemetry.Samples())
	assert.NoError(t, g.Telemetry.Err())
	for _, f := range []string{"config.yaml", "network.csv", "nodes.csv"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, f)
	}
}

func TestTuningFromConfig(t *testing.T) {
	cfg := config.MustLoad("")
	cfg.Upgrades.GenerationPerLevel = 0.5
	cfg.Storage.DecayInterval = 30
	cfg.Power.Binding = "tower_energy"
	cfg.Power.PoweredBonus.Damage = 1.5
	cfg.Power.ChargeRate = 3

	r := Rules(cfg)
	assert.Equal(t, 0.5, r.GenerationPerLevel)
	assert.Equal(t, 30.0, r.StorageDecayInterval)
	assert.Equal(t, 10, r.MaxLevel)

	a := AdapterConfig(cfg)
	assert.Equal(t, energy.BindTowerEnergy, a.Mode)
	assert.Equal(t, 1.5, a.PoweredBonus.Damage)
	assert.Equal(t, 3.0, a.ChargeRate)

	o := BuildingOptions(cfg)
	assert.Equal(t, 4.0, o.BufferSeconds)
	assert.Equal(t, 5, o.MaxUpgradesPerType)
	assert.Equal(t, energy.BindTowerEnergy, o.Adapter.Mode)
}
