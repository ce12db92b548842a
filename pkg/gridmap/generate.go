package gridmap

import (
	"go-power-towers/internal/energy"
	"go-power-towers/internal/utils"
)

// GenerateOptions controls procedural map generation.
type GenerateOptions struct {
	Width     int
	Height    int
	CellSize  float64
	BlockSize int // biome patch size in cells

	Biomes      []utils.WeightedEntry // keys are biome names
	TreeChance  map[energy.Biome]float64
	HillChance  float64
	WaterChance float64
	RegrowDelay float64
}

// DefaultGenerateOptions returns a mixed map.
func DefaultGenerateOptions(width, height int, cellSize float64) GenerateOptions {
	return GenerateOptions{
		Width:     width,
		Height:    height,
		CellSize:  cellSize,
		BlockSize: 6,
		Biomes: []utils.WeightedEntry{
			{Key: string(energy.BiomeGrass), Weight: 30},
			{Key: string(energy.BiomePlains), Weight: 20},
			{Key: string(energy.BiomeForest), Weight: 20},
			{Key: string(energy.BiomeDesert), Weight: 10},
			{Key: string(energy.BiomeSwamp), Weight: 10},
			{Key: string(energy.BiomeSnow), Weight: 10},
		},
		TreeChance: map[energy.Biome]float64{
			energy.BiomeForest: 0.5,
			energy.BiomeGrass:  0.1,
			energy.BiomePlains: 0.05,
			energy.BiomeSwamp:  0.15,
			energy.BiomeSnow:   0.05,
		},
		HillChance:  0.08,
		WaterChance: 0.05,
		RegrowDelay: 30,
	}
}

// Generate scatters biome patches and terrain features from rng, so the same
// seed always yields the same map.
func Generate(opts GenerateOptions, rng *utils.PRNGService) *GridMap {
	m := New(opts.Width, opts.Height, opts.CellSize)
	if opts.RegrowDelay > 0 {
		m.RegrowDelay = opts.RegrowDelay
	}
	block := opts.BlockSize
	if block < 1 {
		block = 1
	}

	for by := 0; by < m.Height; by += block {
		for bx := 0; bx < m.Width; bx += block {
			biome := energy.Biome(rng.ChooseWeighted(opts.Biomes))
			if biome == "" {
				biome = energy.BiomeGrass
			}
			m.FillBiome(bx, by, block, block, biome)
		}
	}

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			t := &m.tiles[m.index(x, y)]
			r := rng.Float64()
			switch {
			case r < opts.WaterChance:
				t.Terrain = TerrainWater
			case r < opts.WaterChance+opts.HillChance:
				t.Terrain = TerrainHill
			default:
				t.Trees = rng.Float64() < opts.TreeChance[t.Biome]
			}
		}
	}
	return m
}
