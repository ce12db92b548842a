package app

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"go-power-towers/internal/energy"
	"go-power-towers/internal/utils"
	"go-power-towers/pkg/gridmap"
)

//go:embed scenarios/default.yaml
var defaultScenarioYAML []byte

// Scenario describes a map and the network built on it at start.
type Scenario struct {
	Name      string         `yaml:"name"`
	Map       MapSpec        `yaml:"map"`
	Gold      int            `yaml:"gold"` // 0 uses economy.starting_gold
	Buildings []Placement    `yaml:"buildings"`
	Towers    []Placement    `yaml:"towers"`
	Links     []Link         `yaml:"links"`
	Upgrades  []UpgradeOrder `yaml:"upgrades"`
}

// MapSpec is either a generated map (Generate) or a plain grass map, with
// explicit regions and features applied on top.
type MapSpec struct {
	Width       int      `yaml:"width"`
	Height      int      `yaml:"height"`
	Seed        int64    `yaml:"seed"`
	Generate    bool     `yaml:"generate"`
	RegrowDelay float64  `yaml:"regrow_delay"`
	Regions     []Region `yaml:"regions"`
	Trees       [][2]int `yaml:"trees"`
	Hills       [][2]int `yaml:"hills"`
	Water       [][2]int `yaml:"water"`
}

// Region paints a rectangle with one biome.
type Region struct {
	Biome energy.Biome `yaml:"biome"`
	X     int          `yaml:"x"`
	Y     int          `yaml:"y"`
	W     int          `yaml:"w"`
	H     int          `yaml:"h"`
}

// Placement puts a building or tower on a cell. Name is the handle used by
// links and upgrades.
type Placement struct {
	Name string  `yaml:"name"`
	Type string  `yaml:"type"`
	X    int     `yaml:"x"`
	Y    int     `yaml:"y"`
	Draw float64 `yaml:"draw"` // towers only, 0 keeps 1x
}

type Link struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

type UpgradeOrder struct {
	Target string             `yaml:"target"`
	Type   energy.UpgradeType `yaml:"type"`
}

// LoadScenario reads a scenario file. An empty path loads the built-in one.
func LoadScenario(path string) (*Scenario, error) {
	data := defaultScenarioYAML
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading scenario: %w", err)
		}
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	sc := &Scenario{}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := sc.validate(); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
	}
	return sc, nil
}

func (sc *Scenario) validate() error {
	if sc.Map.Width <= 0 || sc.Map.Height <= 0 {
		return fmt.Errorf("map size %dx%d", sc.Map.Width, sc.Map.Height)
	}
	names := make(map[string]bool)
	for _, p := range append(append([]Placement(nil), sc.Buildings...), sc.Towers...) {
		if p.Name == "" {
			continue
		}
		if names[p.Name] {
			return fmt.Errorf("duplicate name %q", p.Name)
		}
		names[p.Name] = true
	}
	for _, l := range sc.Links {
		if !names[l.From] || !names[l.To] {
			return fmt.Errorf("link %s -> %s names an unknown placement", l.From, l.To)
		}
	}
	for _, u := range sc.Upgrades {
		if !names[u.Target] {
			return fmt.Errorf("upgrade of unknown placement %q", u.Target)
		}
	}
	return nil
}

// BuildMap creates the scenario's grid.
func (m MapSpec) BuildMap(cellSize float64, rng *utils.PRNGService) (*gridmap.GridMap, error) {
	var grid *gridmap.GridMap
	if m.Generate {
		opts := gridmap.DefaultGenerateOptions(m.Width, m.Height, cellSize)
		if m.RegrowDelay > 0 {
			opts.RegrowDelay = m.RegrowDelay
		}
		grid = gridmap.Generate(opts, rng)
	} else {
		grid = gridmap.New(m.Width, m.Height, cellSize)
		if m.RegrowDelay > 0 {
			grid.RegrowDelay = m.RegrowDelay
		}
	}

	for _, r := range m.Regions {
		grid.FillBiome(r.X, r.Y, r.W, r.H, r.Biome)
	}
	for _, c := range m.Water {
		if err := grid.SetTerrain(c[0], c[1], gridmap.TerrainWater); err != nil {
			return nil, fmt.Errorf("water: %w", err)
		}
	}
	for _, c := range m.Hills {
		if err := grid.SetTerrain(c[0], c[1], gridmap.TerrainHill); err != nil {
			return nil, fmt.Errorf("hill: %w", err)
		}
	}
	for _, c := range m.Trees {
		if err := grid.SetTrees(c[0], c[1], true); err != nil {
			return nil, fmt.Errorf("tree: %w", err)
		}
	}
	return grid, nil
}
