package energy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageDecay(t *testing.T) {
	n := newNode(KindStorage, 1, 0, 0)
	n.Stored = 100
	lost := n.ApplyDecay(60)
	assert.InDelta(t, 0.5, lost, 1e-9)
	assert.InDelta(t, 99.5, n.Stored, 1e-9)
	assert.InDelta(t, 0.5, n.TotalDecayed(), 1e-9)

	n.Stored = 0
	assert.Equal(t, 0.0, n.ApplyDecay(60))
}

func TestDecayUpgradeSlowsDecay(t *testing.T) {
	n := newNode(KindStorage, 1, 0, 0)
	require.True(t, n.Upgrade(UpgradeDecay))
	n.Stored = 100
	n.ApplyDecay(60)
	assert.InDelta(t, 99.6, n.Stored, 1e-9)
}

func TestOnlyStorageDecays(t *testing.T) {
	n := newNode(KindTransfer, 1, 0, 0)
	n.Stored = 40
	assert.Equal(t, 0.0, n.ApplyDecay(600))
	assert.Equal(t, 40.0, n.Stored)
}

func TestStackingScalesCapacity(t *testing.T) {
	n := newNode(KindStorage, 1, 0, 0)
	n.SetStacking(2, 0.15)
	assert.InDelta(t, 260.0, n.EffectiveCapacity(), 1e-9)
	assert.Equal(t, 2, n.AdjacentStorage())

	n.Stored = 250
	n.SetStacking(0, 0.15)
	assert.Equal(t, 200.0, n.EffectiveCapacity())
	assert.Equal(t, 200.0, n.Stored, "stored clamps when capacity shrinks")
	assert.Equal(t, 1.0, n.StackMultiplier())
}

func TestRelayEfficiency(t *testing.T) {
	n := newNode(KindTransfer, 1, 0, 0)
	assert.InDelta(t, 0.95, n.TransferEfficiency(), 1e-9)
	require.True(t, n.Upgrade(UpgradeEfficiency))
	assert.InDelta(t, 0.97, n.TransferEfficiency(), 1e-9)
	for n.Upgrade(UpgradeEfficiency) {
	}
	assert.Equal(t, 1.0, n.TransferEfficiency())

	assert.Equal(t, 1.0, newNode(KindStorage, 2, 0, 0).TransferEfficiency())
}
