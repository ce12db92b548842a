// pkg/gridmap/gridmap.go
package gridmap

import (
	"errors"
	"fmt"
	"math"

	"go-power-towers/internal/energy"
)

// ErrOutOfBounds is returned for coordinates outside the map.
var ErrOutOfBounds = errors.New("gridmap: out of bounds")

// Terrain is the ground type of a cell.
type Terrain string

const (
	TerrainGround Terrain = "ground"
	TerrainHill   Terrain = "hill"
	TerrainWater  Terrain = "water"
	TerrainPath   Terrain = "path"
)

// Tile is one grid cell.
type Tile struct {
	Biome    energy.Biome
	Terrain  Terrain
	Trees    bool
	Occupied bool

	regrowIn float64
}

// Regrowing reports whether harvested trees are growing back on the tile.
func (t Tile) Regrowing() bool {
	return t.regrowIn > 0
}

// GridMap is a rectangular biome/terrain grid. It implements
// energy.Environment and energy.FeatureConsumer.
type GridMap struct {
	Width    int
	Height   int
	CellSize float64

	// RegrowDelay is the number of seconds a harvested tree takes to return.
	RegrowDelay float64

	tiles    []Tile
	regrowth []int
}

// New creates a map of grass ground tiles.
func New(width, height int, cellSize float64) *GridMap {
	m := &GridMap{
		Width:       width,
		Height:      height,
		CellSize:    cellSize,
		RegrowDelay: 30,
		tiles:       make([]Tile, width*height),
	}
	for i := range m.tiles {
		m.tiles[i] = Tile{Biome: energy.BiomeGrass, Terrain: TerrainGround}
	}
	return m
}

func (m *GridMap) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

func (m *GridMap) index(x, y int) int {
	return y*m.Width + x
}

// Tile returns the tile at (x, y).
func (m *GridMap) Tile(x, y int) (Tile, bool) {
	if !m.InBounds(x, y) {
		return Tile{}, false
	}
	return m.tiles[m.index(x, y)], true
}

func (m *GridMap) tile(x, y int) (*Tile, error) {
	if !m.InBounds(x, y) {
		return nil, fmt.Errorf("cell (%d,%d): %w", x, y, ErrOutOfBounds)
	}
	return &m.tiles[m.index(x, y)], nil
}

func (m *GridMap) SetBiome(x, y int, b energy.Biome) error {
	t, err := m.tile(x, y)
	if err != nil {
		return err
	}
	t.Biome = b
	return nil
}

// FillBiome sets the biome of every cell in the rectangle, clipped to the map.
func (m *GridMap) FillBiome(x, y, w, h int, b energy.Biome) {
	for cy := y; cy < y+h; cy++ {
		for cx := x; cx < x+w; cx++ {
			if m.InBounds(cx, cy) {
				m.tiles[m.index(cx, cy)].Biome = b
			}
		}
	}
}

// SetTerrain changes the ground type. Water and path cells lose their trees.
func (m *GridMap) SetTerrain(x, y int, terrain Terrain) error {
	t, err := m.tile(x, y)
	if err != nil {
		return err
	}
	t.Terrain = terrain
	if terrain == TerrainWater || terrain == TerrainPath {
		t.Trees = false
	}
	return nil
}

func (m *GridMap) SetTrees(x, y int, trees bool) error {
	t, err := m.tile(x, y)
	if err != nil {
		return err
	}
	if trees && (t.Terrain == TerrainWater || t.Terrain == TerrainPath) {
		return fmt.Errorf("trees on %s at (%d,%d)", t.Terrain, x, y)
	}
	t.Trees = trees
	t.regrowIn = 0
	return nil
}

func (m *GridMap) SetOccupied(x, y int, occupied bool) error {
	t, err := m.tile(x, y)
	if err != nil {
		return err
	}
	t.Occupied = occupied
	return nil
}

func (m *GridMap) IsOccupied(x, y int) bool {
	t, ok := m.Tile(x, y)
	return ok && t.Occupied
}

// CanBuild reports whether a building may be placed at (x, y).
func (m *GridMap) CanBuild(x, y int) bool {
	t, ok := m.Tile(x, y)
	if !ok {
		return false
	}
	return !t.Occupied && t.Terrain != TerrainWater && t.Terrain != TerrainPath
}

// BiomeAt implements energy.Environment.
func (m *GridMap) BiomeAt(x, y int) (energy.Biome, error) {
	t, err := m.tile(x, y)
	if err != nil {
		return "", err
	}
	return t.Biome, nil
}

func hasFeature(t *Tile, f energy.Feature) bool {
	switch f {
	case energy.FeatureTrees:
		return t.Trees
	case energy.FeatureHills:
		return t.Terrain == TerrainHill
	case energy.FeatureWater:
		return t.Terrain == TerrainWater
	}
	return false
}

// CountNearby implements energy.Environment. Cells outside the map are
// skipped; a centre outside the map is an error.
func (m *GridMap) CountNearby(x, y, radius int, f energy.Feature) (int, error) {
	if !m.InBounds(x, y) {
		return 0, fmt.Errorf("count %s at (%d,%d): %w", f, x, y, ErrOutOfBounds)
	}
	count := 0
	for cy := y - radius; cy <= y+radius; cy++ {
		for cx := x - radius; cx <= x+radius; cx++ {
			if m.InBounds(cx, cy) && hasFeature(&m.tiles[m.index(cx, cy)], f) {
				count++
			}
		}
	}
	return count, nil
}

// ConsumeFeature implements energy.FeatureConsumer for trees: the nearest
// tree within radius is cut and scheduled to regrow.
func (m *GridMap) ConsumeFeature(x, y, radius int, f energy.Feature) bool {
	if f != energy.FeatureTrees {
		return false
	}
	best := -1
	bestDist := math.MaxFloat64
	for cy := y - radius; cy <= y+radius; cy++ {
		for cx := x - radius; cx <= x+radius; cx++ {
			if !m.InBounds(cx, cy) {
				continue
			}
			i := m.index(cx, cy)
			if !m.tiles[i].Trees {
				continue
			}
			dx, dy := float64(cx-x), float64(cy-y)
			if d := dx*dx + dy*dy; d < bestDist {
				best, bestDist = i, d
			}
		}
	}
	if best < 0 {
		return false
	}
	m.tiles[best].Trees = false
	m.tiles[best].regrowIn = m.RegrowDelay
	m.regrowth = append(m.regrowth, best)
	return true
}

// Update advances tree regrowth by dt seconds.
func (m *GridMap) Update(dt float64) {
	kept := m.regrowth[:0]
	for _, i := range m.regrowth {
		t := &m.tiles[i]
		if t.regrowIn <= 0 {
			continue
		}
		t.regrowIn -= dt
		if t.regrowIn <= 0 {
			t.regrowIn = 0
			t.Trees = true
			continue
		}
		kept = append(kept, i)
	}
	m.regrowth = kept
}

// GridToWorld returns the world position of a cell centre.
func (m *GridMap) GridToWorld(x, y int) (float64, float64) {
	return (float64(x) + 0.5) * m.CellSize, (float64(y) + 0.5) * m.CellSize
}

// WorldToGrid returns the cell containing a world position.
func (m *GridMap) WorldToGrid(wx, wy float64) (int, int) {
	if m.CellSize <= 0 {
		return 0, 0
	}
	return int(math.Floor(wx / m.CellSize)), int(math.Floor(wy / m.CellSize))
}
