package energy

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"go-power-towers/internal/types"
)

func quietNetwork(opts Options) *Network {
	opts.Logger = slog.New(slog.DiscardHandler)
	return NewNetwork(opts)
}

func newNode(kind Kind, id types.EntityID, x, y int) *Node {
	cfg := DefaultNodeConfig(kind)
	cfg.ID = id
	cfg.GridX, cfg.GridY = x, y
	cfg.WorldX, cfg.WorldY = float64(x)*24, float64(y)*24
	return NewNode(cfg)
}

func mustRegister(t *testing.T, nw *Network, nodes ...*Node) {
	t.Helper()
	for _, n := range nodes {
		require.NoError(t, nw.RegisterNode(n))
	}
}

func mustConnect(t *testing.T, nw *Network, from, to types.EntityID) {
	t.Helper()
	require.Equal(t, ConnectConnected, nw.Connect(from, to), "connect %d -> %d", from, to)
}

var errLookup = errors.New("lookup failed")

type fakeEnv struct {
	biome    Biome
	counts   map[Feature]int
	err      error
	consumed int
}

func (e *fakeEnv) BiomeAt(x, y int) (Biome, error) {
	return e.biome, e.err
}

func (e *fakeEnv) CountNearby(x, y, radius int, f Feature) (int, error) {
	return e.counts[f], e.err
}

func (e *fakeEnv) ConsumeFeature(x, y, radius int, f Feature) bool {
	if e.counts[f] == 0 {
		return false
	}
	e.counts[f]--
	e.consumed++
	return true
}

type fakeTower struct {
	powered   bool
	level     float64
	mods      Modifiers
	recalcs   int
	energy    float64
	maxEnergy float64
	lastAdded float64
}

func (f *fakeTower) SetPowerState(powered bool, level float64, mods Modifiers) {
	f.powered, f.level, f.mods = powered, level, mods
}

func (f *fakeTower) RecalculateStats() {
	f.recalcs++
}

type poolTower struct {
	fakeTower
}

func (p *poolTower) AddEnergy(amount float64) float64 {
	room := p.maxEnergy - p.energy
	if amount > room {
		amount = room
	}
	p.energy += amount
	p.lastAdded = amount
	return amount
}

func (p *poolTower) SpendEnergy(amount float64) float64 {
	if amount > p.energy {
		amount = p.energy
	}
	p.energy -= amount
	return amount
}

func (p *poolTower) EnergyRatio() float64 {
	if p.maxEnergy <= 0 {
		return 0
	}
	return p.energy / p.maxEnergy
}
