// internal/render/color.go
package render

import (
	"image/color"

	"go-power-towers/internal/energy"
	"go-power-towers/internal/utils"
	"go-power-towers/pkg/gridmap"
)

// Palette holds every color the network renderer uses.
type Palette struct {
	Background color.RGBA
	Biomes     map[energy.Biome]color.RGBA
	Water      color.RGBA
	Hill       color.RGBA
	Path       color.RGBA
	Tree       color.RGBA
	GridLine   color.RGBA

	LinkActive   color.RGBA
	LinkIdle     color.RGBA
	LinkPreview  color.RGBA
	RangeOutline color.RGBA
	Selection    color.RGBA

	Empty     color.RGBA // fill gauge at 0
	Full      color.RGBA // fill gauge at 1
	Powered   color.RGBA
	Unpowered color.RGBA
	Tower     color.RGBA

	TextDark  color.RGBA
	TextLight color.RGBA
	Success   color.RGBA
	Error     color.RGBA

	StrokeWidth float32
}

// DefaultPalette returns the viewer's stock colors.
func DefaultPalette() Palette {
	return Palette{
		Background: color.RGBA{R: 24, G: 26, B: 32, A: 255},
		Biomes: map[energy.Biome]color.RGBA{
			energy.BiomeGrass:  {R: 96, G: 140, B: 72, A: 255},
			energy.BiomePlains: {R: 150, G: 160, B: 90, A: 255},
			energy.BiomeDesert: {R: 210, G: 185, B: 120, A: 255},
			energy.BiomeForest: {R: 52, G: 100, B: 56, A: 255},
			energy.BiomeSwamp:  {R: 80, G: 96, B: 70, A: 255},
			energy.BiomeSnow:   {R: 225, G: 230, B: 235, A: 255},
		},
		Water:    color.RGBA{R: 50, G: 110, B: 190, A: 255},
		Hill:     color.RGBA{R: 130, G: 110, B: 90, A: 255},
		Path:     color.RGBA{R: 120, G: 100, B: 70, A: 255},
		Tree:     color.RGBA{R: 20, G: 70, B: 30, A: 255},
		GridLine: color.RGBA{R: 0, G: 0, B: 0, A: 40},

		LinkActive:   color.RGBA{R: 255, G: 235, B: 59, A: 255},
		LinkIdle:     color.RGBA{R: 120, G: 120, B: 120, A: 255},
		LinkPreview:  color.RGBA{R: 120, G: 220, B: 255, A: 160},
		RangeOutline: color.RGBA{R: 255, G: 255, B: 255, A: 90},
		Selection:    color.RGBA{R: 255, G: 255, B: 255, A: 255},

		Empty:     color.RGBA{R: 200, G: 50, B: 40, A: 255},
		Full:      color.RGBA{R: 80, G: 220, B: 90, A: 255},
		Powered:   color.RGBA{R: 255, G: 215, B: 0, A: 255},
		Unpowered: color.RGBA{R: 90, G: 90, B: 90, A: 255},
		Tower:     color.RGBA{R: 190, G: 60, B: 60, A: 255},

		TextDark:  color.RGBA{R: 20, G: 20, B: 20, A: 255},
		TextLight: color.RGBA{R: 235, G: 235, B: 235, A: 255},
		Success:   color.RGBA{R: 120, G: 230, B: 120, A: 255},
		Error:     color.RGBA{R: 255, G: 110, B: 110, A: 255},

		StrokeWidth: 2,
	}
}

// TileColor is the background color of a cell.
func (p Palette) TileColor(t gridmap.Tile) color.RGBA {
	switch t.Terrain {
	case gridmap.TerrainWater:
		return p.Water
	case gridmap.TerrainHill:
		return p.Hill
	case gridmap.TerrainPath:
		return p.Path
	}
	if c, ok := p.Biomes[t.Biome]; ok {
		return c
	}
	return p.Biomes[energy.BiomeGrass]
}

// FillColor blends Empty to Full by ratio.
func (p Palette) FillColor(ratio float64) color.RGBA {
	return LerpColor(p.Empty, p.Full, utils.Clamp(ratio, 0, 1))
}

// LinkColor is brighter the more energy moved over the link last tick.
func (p Palette) LinkColor(c energy.ConnectionState) color.RGBA {
	if !c.Active {
		return p.LinkIdle
	}
	return LerpColor(DarkenColor(p.LinkActive), p.LinkActive, utils.Clamp(c.EnergyFlow, 0, 1))
}

// LerpColor interpolates each channel.
func LerpColor(a, b color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: uint8(utils.Lerp(float64(a.R), float64(b.R), t) + 0.5),
		G: uint8(utils.Lerp(float64(a.G), float64(b.G), t) + 0.5),
		B: uint8(utils.Lerp(float64(a.B), float64(b.B), t) + 0.5),
		A: uint8(utils.Lerp(float64(a.A), float64(b.A), t) + 0.5),
	}
}

// DarkenColor reduces the brightness of a color.
func DarkenColor(c color.RGBA) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * 0.5),
		G: uint8(float64(c.G) * 0.5),
		B: uint8(float64(c.B) * 0.5),
		A: c.A,
	}
}

// TextColorOn picks dark or light text for a background.
func (p Palette) TextColorOn(bg color.RGBA) color.RGBA {
	if (int(bg.R)+int(bg.G)+int(bg.B))/3 > 128 {
		return p.TextDark
	}
	return p.TextLight
}
