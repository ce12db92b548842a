package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 10.0, cfg.Network.TickRate)
	assert.Equal(t, 3, cfg.Network.Passes)
	assert.Equal(t, "priority", cfg.Network.FlowOrder)
	assert.InDelta(t, 0.1, cfg.Derived.TickInterval, 1e-12)
	assert.Equal(t, 0.5, cfg.Power.Threshold)
	assert.Equal(t, 1.2, cfg.Power.PoweredBonus.Damage)
	assert.Equal(t, 0.7, cfg.Power.UnpoweredPenalty.Damage)
	assert.Equal(t, 2.0, cfg.Power.ChargeRate)
	assert.Equal(t, []float64{1, 1.5, 2.2, 3, 4}, cfg.Upgrades.CostMultipliers)
}

func TestLoadOverridesOnlyPresentFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	require.NoError(t, os.WriteFile(path, []byte("network:\n  tick_rate: 20\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20.0, cfg.Network.TickRate)
	assert.Equal(t, 3, cfg.Network.Passes)
	assert.InDelta(t, 0.05, cfg.Derived.TickInterval, 1e-12)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero tick rate", "network:\n  tick_rate: 0\n"},
		{"no passes", "network:\n  passes: 0\n"},
		{"unknown flow order", "network:\n  flow_order: random\n"},
		{"unknown binding", "power:\n  binding: battery\n"},
		{"slow charge", "power:\n  charge_rate: 0.5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := MustLoad("")
	cfg.Wind.Instability = 0.1
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.1, again.Wind.Instability)
}
