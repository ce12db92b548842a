// internal/building/manager.go
package building

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"go-power-towers/internal/component"
	"go-power-towers/internal/defs"
	"go-power-towers/internal/energy"
	"go-power-towers/internal/entity"
	"go-power-towers/internal/event"
	"go-power-towers/internal/types"
	"go-power-towers/pkg/gridmap"
)

var (
	ErrUnknownBuilding = errors.New("building: unknown building type")
	ErrUnknownTower    = errors.New("building: unknown tower type")
	ErrNotFound        = errors.New("building: not found")
	ErrCannotAfford    = errors.New("building: not enough gold")
	ErrCannotBuild     = errors.New("building: cannot build here")
	ErrUnknownUpgrade  = errors.New("building: unknown upgrade")
	ErrUpgradeMaxed    = errors.New("building: upgrade at max level")
	ErrNotConnecting   = errors.New("building: not in connection mode")
)

// Economy is the gold collaborator.
type Economy interface {
	CanAfford(amount int) bool
	Spend(amount int) bool
}

// Options tunes the manager.
type Options struct {
	CellSize           float64
	StackBonus         float64 // used when a definition has none
	CostMultipliers    []float64
	MaxUpgradesPerType int
	BufferSeconds      float64 // consumer buffer = draw * BufferSeconds
	Adapter            energy.AdapterConfig

	// Wind overrides; zero keeps the definition's values.
	WindInstability     float64
	FluctuationInterval float64
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		CellSize:           24,
		StackBonus:         0.15,
		CostMultipliers:    []float64{1, 1.5, 2.2, 3, 4},
		MaxUpgradesPerType: 5,
		BufferSeconds:      4,
		Adapter:            energy.DefaultAdapterConfig(),
	}
}

// Deps are the collaborators of a Manager. Grid, Economy, Random and
// Dispatcher are optional.
type Deps struct {
	Network    *energy.Network
	Library    *defs.Library
	ECS        *entity.ECS
	Grid       *gridmap.GridMap
	Economy    Economy
	Random     energy.RandomSource
	Dispatcher *event.Dispatcher
	Logger     *slog.Logger
}

// Building is a placed energy building.
type Building struct {
	ID   types.EntityID
	Def  defs.BuildingDefinition
	Node *energy.Node
}

// Placed is the payload of event.BuildingPlaced.
type Placed struct {
	ID    types.EntityID
	DefID string
	GridX int
	GridY int
}

// Upgraded is the payload of event.BuildingUpgraded.
type Upgraded struct {
	ID    types.EntityID
	Type  energy.UpgradeType
	Count int
	Cost  int
}

// ConnectionModeState is the payload of event.ConnectionMode.
type ConnectionModeState struct {
	Active  bool
	Source  types.EntityID
	Targets []types.EntityID
}

type cell struct{ x, y int }

// Manager places, upgrades and wires energy buildings and powered towers.
type Manager struct {
	deps Deps
	opts Options

	buildings map[types.EntityID]*Building
	order     []types.EntityID
	cells     map[cell]types.EntityID

	connecting bool
	source     types.EntityID

	logger *slog.Logger
}

// NewManager creates a manager over deps.
func NewManager(deps Deps, opts Options) *Manager {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.ECS == nil {
		deps.ECS = entity.NewECS()
	}
	return &Manager{
		deps:      deps,
		opts:      opts,
		buildings: make(map[types.EntityID]*Building),
		cells:     make(map[cell]types.EntityID),
		logger:    logger.With("component", "building"),
	}
}

func (m *Manager) Network() *energy.Network {
	return m.deps.Network
}

func (m *Manager) ECS() *entity.ECS {
	return m.deps.ECS
}

// Building looks up a placed building.
func (m *Manager) Building(id types.EntityID) (*Building, bool) {
	b, ok := m.buildings[id]
	return b, ok
}

// Buildings returns placed buildings in placement order.
func (m *Manager) Buildings() []*Building {
	out := make([]*Building, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.buildings[id])
	}
	return out
}

// BuildingAt returns the building occupying (x, y).
func (m *Manager) BuildingAt(x, y int) (*Building, bool) {
	id, ok := m.cells[cell{x, y}]
	if !ok {
		return nil, false
	}
	b, ok := m.buildings[id]
	return b, ok
}

// EntityAt returns the building or tower occupying (x, y).
func (m *Manager) EntityAt(x, y int) (types.EntityID, bool) {
	id, ok := m.cells[cell{x, y}]
	return id, ok
}

// CanBuildAt reports whether (x, y) is free and buildable.
func (m *Manager) CanBuildAt(x, y int) bool {
	if _, taken := m.cells[cell{x, y}]; taken {
		return false
	}
	if m.deps.Grid != nil {
		return m.deps.Grid.CanBuild(x, y)
	}
	return true
}

// Place builds defID at (x, y), charging its cost.
func (m *Manager) Place(defID string, x, y int) (*Building, error) {
	def, ok := m.deps.Library.Building(defID)
	if !ok {
		m.toast("Unknown building!", event.ToastError)
		return nil, fmt.Errorf("%q: %w", defID, ErrUnknownBuilding)
	}
	if !m.canAfford(def.Cost) {
		m.toast("Not enough gold!", event.ToastError)
		return nil, fmt.Errorf("%s costs %d: %w", defID, def.Cost, ErrCannotAfford)
	}
	if !m.CanBuildAt(x, y) {
		m.toast("Cannot build here!", event.ToastError)
		return nil, fmt.Errorf("%s at (%d,%d): %w", defID, x, y, ErrCannotBuild)
	}
	cfg, err := def.NodeConfig(x, y)
	if err != nil {
		return nil, err
	}

	cfg.ID = m.deps.ECS.NewEntity()
	cfg.WorldX, cfg.WorldY = m.worldPos(x, y)
	if cfg.Kind == energy.KindWind {
		if m.opts.WindInstability > 0 {
			cfg.Generator.Instability = m.opts.WindInstability
		}
		if m.opts.FluctuationInterval > 0 {
			cfg.Generator.FluctuationInterval = m.opts.FluctuationInterval
		}
	}
	node := energy.NewNode(cfg)
	if m.deps.Grid != nil {
		node.SetEnvironment(m.deps.Grid)
	}
	if m.deps.Random != nil {
		node.SetRandomSource(m.deps.Random)
	}
	if err := m.deps.Network.RegisterNode(node); err != nil {
		return nil, fmt.Errorf("place %s: %w", defID, err)
	}
	m.spend(def.Cost)

	b := &Building{ID: cfg.ID, Def: def, Node: node}
	m.buildings[b.ID] = b
	m.order = append(m.order, b.ID)
	m.occupy(x, y, b.ID)
	m.deps.ECS.Positions[b.ID] = &component.Position{X: cfg.WorldX, Y: cfg.WorldY}
	if node.Kind == energy.KindStorage {
		m.recomputeStacking()
	}

	m.logger.Info("building placed", "id", b.ID, "type", defID, "x", x, "y", y)
	m.dispatch(event.BuildingPlaced, Placed{ID: b.ID, DefID: defID, GridX: x, GridY: y})
	return b, nil
}

// Remove deletes a building and every connection touching it. No refund.
func (m *Manager) Remove(id types.EntityID) bool {
	b, ok := m.buildings[id]
	if !ok {
		return false
	}
	if m.connecting && m.source == id {
		m.CancelConnection()
	}
	m.deps.Network.UnregisterNode(id)
	m.release(b.Node.GridX, b.Node.GridY)
	delete(m.buildings, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.deps.ECS.RemoveEntity(id)
	if b.Node.Kind == energy.KindStorage {
		m.recomputeStacking()
	}

	m.logger.Info("building removed", "id", id, "type", b.Def.ID)
	m.dispatch(event.BuildingRemoved, id)
	return true
}

// recomputeStacking sets every battery's neighbour count: storage buildings
// within one cell, diagonals included.
func (m *Manager) recomputeStacking() {
	var storage []*Building
	for _, id := range m.order {
		if b := m.buildings[id]; b.Node.Kind == energy.KindStorage {
			storage = append(storage, b)
		}
	}
	for _, b := range storage {
		adjacent := 0
		for _, o := range storage {
			if o == b {
				continue
			}
			dx := abs(b.Node.GridX - o.Node.GridX)
			dy := abs(b.Node.GridY - o.Node.GridY)
			if dx <= 1 && dy <= 1 {
				adjacent++
			}
		}
		bonus := b.Def.StackBonus
		if bonus == 0 {
			bonus = m.opts.StackBonus
		}
		b.Node.SetStacking(adjacent, bonus)
	}
}

// Connect toggles a connection between two nodes outside connection mode.
func (m *Manager) Connect(from, to types.EntityID) energy.ConnectResult {
	res := m.deps.Network.Connect(from, to)
	m.logger.Debug("connect", "from", from, "to", to, "result", res)
	return res
}

func (m *Manager) worldPos(x, y int) (float64, float64) {
	if m.deps.Grid != nil {
		return m.deps.Grid.GridToWorld(x, y)
	}
	size := m.opts.CellSize
	if size <= 0 {
		size = 24
	}
	return (float64(x) + 0.5) * size, (float64(y) + 0.5) * size
}

func (m *Manager) occupy(x, y int, id types.EntityID) {
	m.cells[cell{x, y}] = id
	if m.deps.Grid != nil {
		_ = m.deps.Grid.SetOccupied(x, y, true)
	}
}

func (m *Manager) release(x, y int) {
	delete(m.cells, cell{x, y})
	if m.deps.Grid != nil {
		_ = m.deps.Grid.SetOccupied(x, y, false)
	}
}

func (m *Manager) canAfford(cost int) bool {
	return m.deps.Economy == nil || m.deps.Economy.CanAfford(cost)
}

func (m *Manager) spend(cost int) {
	if m.deps.Economy != nil {
		m.deps.Economy.Spend(cost)
	}
}

func (m *Manager) dispatch(t event.EventType, data interface{}) {
	m.deps.Dispatcher.Dispatch(event.Event{Type: t, Data: data})
}

func (m *Manager) toast(msg string, kind event.ToastKind) {
	m.dispatch(event.Toast, event.ToastMessage{Message: msg, Kind: kind})
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// upgradeCost scales base by the multiplier for the current upgrade count.
func (m *Manager) upgradeCost(base, count int) int {
	mult := 1.0
	if n := len(m.opts.CostMultipliers); n > 0 {
		if count < n {
			mult = m.opts.CostMultipliers[count]
		} else {
			mult = m.opts.CostMultipliers[n-1]
		}
	}
	return int(math.Round(float64(base) * mult))
}

func sortIDs(ids []types.EntityID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
