package defs

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

//go:embed data/buildings.json data/towers.json
var dataFS embed.FS

// Library holds building and tower definitions keyed by ID.
type Library struct {
	Buildings map[string]BuildingDefinition
	Towers    map[string]TowerDefinition

	buildingOrder []string
	towerOrder    []string
}

// LoadDefaults loads the embedded definitions.
func LoadDefaults() (*Library, error) {
	return Load("", "")
}

// Load reads building and tower definitions from the given files. An empty
// path selects the embedded file.
func Load(buildingsPath, towersPath string) (*Library, error) {
	lib := &Library{}

	data, err := readData(buildingsPath, "data/buildings.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read building definitions file: %w", err)
	}
	if err := lib.loadBuildings(data); err != nil {
		return nil, err
	}

	data, err = readData(towersPath, "data/towers.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read tower definitions file: %w", err)
	}
	if err := lib.loadTowers(data); err != nil {
		return nil, err
	}

	slog.Debug("definitions loaded", "buildings", len(lib.Buildings), "towers", len(lib.Towers))
	return lib, nil
}

func readData(path, embedded string) ([]byte, error) {
	if path == "" {
		return dataFS.ReadFile(embedded)
	}
	return os.ReadFile(path)
}

func (l *Library) loadBuildings(data []byte) error {
	var buildingDefs []BuildingDefinition
	if err := json.Unmarshal(data, &buildingDefs); err != nil {
		return fmt.Errorf("failed to unmarshal building definitions: %w", err)
	}

	l.Buildings = make(map[string]BuildingDefinition, len(buildingDefs))
	for _, def := range buildingDefs {
		if _, dup := l.Buildings[def.ID]; dup {
			return fmt.Errorf("duplicate building definition %q", def.ID)
		}
		if _, err := def.NodeKind(); err != nil {
			return err
		}
		l.Buildings[def.ID] = def
		l.buildingOrder = append(l.buildingOrder, def.ID)
	}
	return nil
}

func (l *Library) loadTowers(data []byte) error {
	var towerDefs []TowerDefinition
	if err := json.Unmarshal(data, &towerDefs); err != nil {
		return fmt.Errorf("failed to unmarshal tower definitions: %w", err)
	}

	l.Towers = make(map[string]TowerDefinition, len(towerDefs))
	for _, def := range towerDefs {
		if _, dup := l.Towers[def.ID]; dup {
			return fmt.Errorf("duplicate tower definition %q", def.ID)
		}
		l.Towers[def.ID] = def
		l.towerOrder = append(l.towerOrder, def.ID)
	}
	return nil
}

// Building looks up a building definition.
func (l *Library) Building(id string) (BuildingDefinition, bool) {
	def, ok := l.Buildings[id]
	return def, ok
}

// Tower looks up a tower definition.
func (l *Library) Tower(id string) (TowerDefinition, bool) {
	def, ok := l.Towers[id]
	return def, ok
}

// BuildingIDs lists building IDs in file order.
func (l *Library) BuildingIDs() []string {
	return append([]string(nil), l.buildingOrder...)
}

// TowerIDs lists tower IDs in file order.
func (l *Library) TowerIDs() []string {
	return append([]string(nil), l.towerOrder...)
}
