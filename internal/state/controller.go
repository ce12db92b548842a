package state

import (
	"fmt"

	"go-power-towers/internal/app"
	"go-power-towers/internal/building"
	"go-power-towers/internal/energy"
	"go-power-towers/internal/types"
)

// Controller turns viewer input into building-layer calls. It keeps no
// ebiten state so it can be driven from tests.
type Controller struct {
	game *app.Game

	buildingTypes []string
	towerTypes    []string
	buildIndex    int
	towerIndex    int
	placingTower  bool

	selected types.EntityID
	targets  []types.EntityID
}

func NewController(g *app.Game) *Controller {
	return &Controller{
		game:          g,
		buildingTypes: g.Library.BuildingIDs(),
		towerTypes:    g.Library.TowerIDs(),
	}
}

// PlacingType is the definition the next empty-cell click builds.
func (c *Controller) PlacingType() string {
	if c.placingTower {
		if len(c.towerTypes) == 0 {
			return ""
		}
		return c.towerTypes[c.towerIndex]
	}
	if len(c.buildingTypes) == 0 {
		return ""
	}
	return c.buildingTypes[c.buildIndex]
}

// SelectBuilding picks the i-th building type (0-based).
func (c *Controller) SelectBuilding(i int) bool {
	if i < 0 || i >= len(c.buildingTypes) {
		return false
	}
	c.buildIndex = i
	c.placingTower = false
	return true
}

// CycleTower switches to tower placement, advancing through tower types on
// repeated calls.
func (c *Controller) CycleTower() {
	if len(c.towerTypes) == 0 {
		return
	}
	if c.placingTower {
		c.towerIndex = (c.towerIndex + 1) % len(c.towerTypes)
	}
	c.placingTower = true
}

func (c *Controller) Selected() types.EntityID {
	return c.selected
}

func (c *Controller) Targets() []types.EntityID {
	return c.targets
}

func (c *Controller) Connecting() bool {
	_, ok := c.game.Buildings.Connecting()
	return ok
}

// LeftClick selects, connects or builds depending on the cell and mode.
func (c *Controller) LeftClick(x, y int) {
	m := c.game.Buildings
	id, occupied := m.EntityAt(x, y)
	if c.Connecting() {
		if occupied {
			m.EndConnection(id)
		} else {
			m.CancelConnection()
		}
		c.targets = nil
		return
	}
	if occupied {
		c.selected = id
		return
	}
	c.selected = 0
	t := c.PlacingType()
	if t == "" {
		return
	}
	if c.placingTower {
		if id, err := m.PlaceTower(t, x, y); err == nil {
			c.selected = id
		}
		return
	}
	if b, err := m.Place(t, x, y); err == nil {
		c.selected = b.ID
	}
}

// RightClick cancels connection mode, or removes what stands on the cell.
func (c *Controller) RightClick(x, y int) {
	m := c.game.Buildings
	if c.Connecting() {
		c.Cancel()
		return
	}
	id, ok := m.EntityAt(x, y)
	if !ok {
		return
	}
	if !m.Remove(id) {
		m.RemoveTower(id)
	}
	if c.selected == id {
		c.selected = 0
	}
}

// StartConnection enters connection mode from the selected node.
func (c *Controller) StartConnection() error {
	if c.selected == 0 {
		return fmt.Errorf("nothing selected")
	}
	targets, err := c.game.Buildings.StartConnection(c.selected)
	if err != nil {
		return err
	}
	c.targets = c.targets[:0]
	for _, t := range targets {
		c.targets = append(c.targets, t.Node.ID)
	}
	return nil
}

// Cancel leaves connection mode, or clears the selection.
func (c *Controller) Cancel() {
	if c.Connecting() {
		c.game.Buildings.CancelConnection()
		c.targets = nil
		return
	}
	c.selected = 0
}

// UpgradeSelected buys the cheapest affordable upgrade of the selected
// building.
func (c *Controller) UpgradeSelected() (energy.UpgradeType, error) {
	var best *building.UpgradeOption
	for _, opt := range c.game.Buildings.AvailableUpgrades(c.selected) {
		if !opt.Available || !opt.CanAfford {
			continue
		}
		if best == nil || opt.Cost < best.Cost {
			o := opt
			best = &o
		}
	}
	if best == nil {
		return "", fmt.Errorf("no affordable upgrade for %d", c.selected)
	}
	_, err := c.game.Buildings.Upgrade(c.selected, best.Type)
	return best.Type, err
}

// AdjustDraw nudges the selected tower's draw multiplier by delta.
func (c *Controller) AdjustDraw(delta float64) bool {
	a, ok := c.game.ECS.PowerAdapters[c.selected]
	if !ok {
		return false
	}
	return c.game.Buildings.SetPowerDraw(c.selected, a.DrawMultiplier()+delta)
}

// Describe is a one-line summary of the selected entity.
func (c *Controller) Describe() string {
	if c.selected == 0 {
		return ""
	}
	n, ok := c.game.Network.Node(c.selected)
	if !ok {
		return ""
	}
	s := fmt.Sprintf("#%d %s L%d  %.1f/%.1f  in %d/%d out %d/%d",
		n.ID, n.Type, n.Level, n.Stored, n.EffectiveCapacity(),
		c.game.Network.UsedInputs(n.ID), n.EffectiveInputChannels(),
		c.game.Network.UsedOutputs(n.ID), n.EffectiveOutputChannels())
	if a := n.Adapter(); a != nil {
		s += fmt.Sprintf("  power %.0f%% draw x%.2f", a.PowerLevel()*100, a.DrawMultiplier())
	}
	return s
}
