package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"go-power-towers/internal/energy"
	"go-power-towers/pkg/gridmap"
)

func TestLerpColor(t *testing.T) {
	a := color.RGBA{R: 0, G: 100, B: 200, A: 255}
	b := color.RGBA{R: 100, G: 100, B: 0, A: 255}

	assert.Equal(t, a, LerpColor(a, b, 0))
	assert.Equal(t, b, LerpColor(a, b, 1))
	assert.Equal(t, color.RGBA{R: 50, G: 100, B: 100, A: 255}, LerpColor(a, b, 0.5))
}

func TestFillColorClamps(t *testing.T) {
	p := DefaultPalette()
	assert.Equal(t, p.Empty, p.FillColor(-1))
	assert.Equal(t, p.Full, p.FillColor(2))
}

func TestTileColor(t *testing.T) {
	p := DefaultPalette()
	tests := []struct {
		name string
		tile gridmap.Tile
		want color.RGBA
	}{
		{"water wins over biome", gridmap.Tile{Biome: energy.BiomeDesert, Terrain: gridmap.TerrainWater}, p.Water},
		{"hill", gridmap.Tile{Biome: energy.BiomeGrass, Terrain: gridmap.TerrainHill}, p.Hill},
		{"biome", gridmap.Tile{Biome: energy.BiomeSnow, Terrain: gridmap.TerrainGround}, p.Biomes[energy.BiomeSnow]},
		{"unknown biome", gridmap.Tile{Biome: "lava", Terrain: gridmap.TerrainGround}, p.Biomes[energy.BiomeGrass]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.TileColor(tt.tile))
		})
	}
}

func TestLinkColorAndWidth(t *testing.T) {
	p := DefaultPalette()
	assert.Equal(t, p.LinkIdle, p.LinkColor(energy.ConnectionState{}))
	assert.Equal(t, p.LinkActive, p.LinkColor(energy.ConnectionState{Active: true, EnergyFlow: 5}))
	assert.Equal(t, DarkenColor(p.LinkActive), p.LinkColor(energy.ConnectionState{Active: true}))

	assert.Equal(t, float32(1), LinkWidth(0, 2))
	assert.Equal(t, float32(3), LinkWidth(0.5, 2))
	assert.Equal(t, float32(5), LinkWidth(10, 2))
}

func TestNodeLabel(t *testing.T) {
	assert.Equal(t, "G", NodeLabel(energy.NodeState{Kind: energy.KindStable.String()}))
	assert.Equal(t, "R", NodeLabel(energy.NodeState{Kind: energy.KindTransfer.String()}))
	assert.Equal(t, "?", NodeLabel(energy.NodeState{Kind: energy.KindConsumer.String()}))
}

func TestTextColorOn(t *testing.T) {
	p := DefaultPalette()
	assert.Equal(t, p.TextDark, p.TextColorOn(p.Biomes[energy.BiomeSnow]))
	assert.Equal(t, p.TextLight, p.TextColorOn(p.Background))
}
