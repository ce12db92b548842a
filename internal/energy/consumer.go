package energy

import "math"

// ConsumerParams configures a consumer node.
type ConsumerParams struct {
	// Consumption is the demand in energy/second.
	Consumption float64 `json:"consumption" yaml:"consumption"`
}

type consumerState struct {
	consumption float64
	satisfied   float64 // fraction of the last demand that was met
	drawn       float64
	adapter     *TowerPowerAdapter
}

func newConsumerState(p ConsumerParams) *consumerState {
	return &consumerState{consumption: math.Max(0, p.Consumption)}
}

// Consumption is the consumer's demand rate.
func (n *Node) Consumption() float64 {
	if n.consumer == nil {
		return 0
	}
	return n.consumer.consumption
}

// Satisfaction is the fraction of demand met on the last settle.
func (n *Node) Satisfaction() float64 {
	if n.consumer == nil {
		return 0
	}
	return n.consumer.satisfied
}

// Adapter returns the tower adapter bound to a consumer, if any.
func (n *Node) Adapter() *TowerPowerAdapter {
	if n.consumer == nil {
		return nil
	}
	return n.consumer.adapter
}

// Settle lets a consumer draw its demand for dt seconds from its buffer and
// forward the result to its bound tower. It returns the energy consumed.
func (n *Node) Settle(dt float64) float64 {
	b := behaviors[n.Kind].settle
	if b == nil || dt <= 0 {
		return 0
	}
	return b(n, dt)
}

func settleConsumer(n *Node, dt float64) float64 {
	if a := n.consumer.adapter; a != nil {
		return a.Update(dt)
	}
	return n.drawDemand(dt)
}

// drawDemand removes up to consumption*dt from the buffer.
func (n *Node) drawDemand(dt float64) float64 {
	c := n.consumer
	needed := c.consumption * dt
	var drawn float64
	switch {
	case n.Stored >= needed:
		drawn = needed
		n.Stored -= needed
		c.satisfied = 1
	case n.Stored > 0:
		drawn = n.Stored
		c.satisfied = n.Stored / needed
		n.Stored = 0
	default:
		c.satisfied = 0
	}
	c.drawn = drawn
	return drawn
}

// chargePool moves the buffer into pool, then pays consumption*dt of upkeep
// out of it. Satisfaction is the share of upkeep the pool covered.
func (n *Node) chargePool(pool EnergyPool, dt float64) float64 {
	c := n.consumer
	needed := c.consumption * dt
	accepted := pool.AddEnergy(n.Stored)
	n.Stored -= accepted
	spent := pool.SpendEnergy(needed)
	if needed > 0 {
		c.satisfied = spent / needed
	} else {
		c.satisfied = 1
	}
	c.drawn = accepted
	return accepted
}

// Modifiers scale a tower's combat stats.
type Modifiers struct {
	Damage   float64 `json:"damage" yaml:"damage"`
	Range    float64 `json:"range" yaml:"range"`
	FireRate float64 `json:"fire_rate" yaml:"fire_rate"`
}

// NeutralModifiers leave stats unchanged.
var NeutralModifiers = Modifiers{Damage: 1, Range: 1, FireRate: 1}

func (m Modifiers) lerpFromOne(t float64) Modifiers {
	return Modifiers{
		Damage:   1 + (m.Damage-1)*t,
		Range:    1 + (m.Range-1)*t,
		FireRate: 1 + (m.FireRate-1)*t,
	}
}

func (m Modifiers) scale(s float64) Modifiers {
	return Modifiers{Damage: m.Damage * s, Range: m.Range * s, FireRate: m.FireRate * s}
}

// Tower is the entity a consumer powers.
type Tower interface {
	SetPowerState(powered bool, level float64, mods Modifiers)
	RecalculateStats()
}

// EnergyPool is implemented by towers that keep their own energy store. In
// BindTowerEnergy mode the adapter charges it from the buffer, burns the
// tower's upkeep from it and reads the power level back from it.
type EnergyPool interface {
	AddEnergy(amount float64) float64
	SpendEnergy(amount float64) float64
	EnergyRatio() float64
}

// BindingMode selects where the power level comes from.
type BindingMode int

const (
	// BindBuffer derives the level from the fraction of demand met.
	BindBuffer BindingMode = iota
	// BindTowerEnergy derives the level from the tower's own energy ratio.
	BindTowerEnergy
)

func (m BindingMode) String() string {
	if m == BindTowerEnergy {
		return "tower_energy"
	}
	return "buffer"
}

// AdapterConfig tunes a TowerPowerAdapter.
type AdapterConfig struct {
	BasePowerDraw     float64
	Threshold         float64
	OverdriveScale    float64
	MaxDrawMultiplier float64
	PoweredBonus      Modifiers
	UnpoweredPenalty  Modifiers
	Mode              BindingMode

	// ChargeRate scales the intake over the draw in BindTowerEnergy mode so
	// the pool can fill while upkeep is paid.
	ChargeRate float64
}

// DefaultAdapterConfig returns the stock adapter tuning.
func DefaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		BasePowerDraw:     3,
		Threshold:         0.5,
		OverdriveScale:    0.5,
		MaxDrawMultiplier: 2,
		PoweredBonus:      Modifiers{Damage: 1.2, Range: 1.1, FireRate: 1.15},
		UnpoweredPenalty:  Modifiers{Damage: 0.7, Range: 0.9, FireRate: 0.8},
		ChargeRate:        2,
	}
}

// AdapterState is a read-only view of an adapter.
type AdapterState struct {
	Powered        bool
	PowerLevel     float64
	DrawMultiplier float64
	Consumption    float64
	Modifiers      Modifiers
}

// TowerPowerAdapter bridges a consumer node to the tower it powers.
type TowerPowerAdapter struct {
	node  *Node
	tower Tower
	cfg   AdapterConfig

	baseDraw       float64
	poweredBonus   Modifiers
	drawMultiplier float64

	powered    bool
	powerLevel float64
	modifiers  Modifiers
}

// NewTowerPowerAdapter binds tower to the consumer node. It returns nil when
// node is not a consumer. The consumer's demand is reset to the base draw.
func NewTowerPowerAdapter(node *Node, tower Tower, cfg AdapterConfig) *TowerPowerAdapter {
	if node == nil || node.consumer == nil {
		return nil
	}
	a := &TowerPowerAdapter{
		node:           node,
		tower:          tower,
		cfg:            cfg,
		baseDraw:       cfg.BasePowerDraw,
		poweredBonus:   cfg.PoweredBonus,
		drawMultiplier: 1,
		modifiers:      cfg.UnpoweredPenalty,
	}
	if a.baseDraw > 0 {
		a.setConsumption(a.baseDraw)
	} else {
		a.baseDraw = node.consumer.consumption
	}
	node.consumer.adapter = a
	return a
}

// Detach unbinds the adapter from its node.
func (a *TowerPowerAdapter) Detach() {
	if a.node.consumer.adapter == a {
		a.node.consumer.adapter = nil
	}
}

func (a *TowerPowerAdapter) Node() *Node {
	return a.node
}

func (a *TowerPowerAdapter) Tower() Tower {
	return a.tower
}

func (a *TowerPowerAdapter) Powered() bool {
	return a.powered
}

func (a *TowerPowerAdapter) PowerLevel() float64 {
	return a.powerLevel
}

func (a *TowerPowerAdapter) Modifiers() Modifiers {
	return a.modifiers
}

func (a *TowerPowerAdapter) State() AdapterState {
	return AdapterState{
		Powered:        a.powered,
		PowerLevel:     a.powerLevel,
		DrawMultiplier: a.drawMultiplier,
		Consumption:    a.node.consumer.consumption,
		Modifiers:      a.modifiers,
	}
}

// Update settles the consumer for dt seconds and pushes the resulting power
// state to the tower. It returns the energy consumed from the buffer.
func (a *TowerPowerAdapter) Update(dt float64) float64 {
	if pool, ok := a.pool(); ok {
		drawn := a.node.chargePool(pool, dt)
		a.SetPowerLevel(pool.EnergyRatio())
		return drawn
	}
	drawn := a.node.drawDemand(dt)
	a.SetPowerLevel(a.node.consumer.satisfied)
	return drawn
}

func (a *TowerPowerAdapter) pool() (EnergyPool, bool) {
	if a.cfg.Mode != BindTowerEnergy {
		return nil, false
	}
	pool, ok := a.tower.(EnergyPool)
	return pool, ok
}

// SetPowerLevel sets the level directly and re-applies modifiers.
func (a *TowerPowerAdapter) SetPowerLevel(level float64) {
	a.powerLevel = math.Max(0, math.Min(1, level))
	a.powered = a.powerLevel > a.cfg.Threshold
	a.ApplyPowerModifiers()
}

// ApplyPowerModifiers recomputes the multipliers and writes them to the tower.
// Powered towers interpolate from neutral towards the bonus by level;
// unpowered towers take the full penalty.
func (a *TowerPowerAdapter) ApplyPowerModifiers() {
	if a.powered {
		a.modifiers = a.poweredBonus.lerpFromOne(math.Min(1, a.powerLevel))
	} else {
		a.modifiers = a.cfg.UnpoweredPenalty
	}
	if a.tower == nil {
		return
	}
	a.tower.SetPowerState(a.powered, a.powerLevel, a.modifiers)
	a.tower.RecalculateStats()
}

// SetPowerDraw scales the demand by m, clamped to [0, MaxDrawMultiplier].
// Overdrive raises the bonus at a reduced rate; underdrive pulls it towards
// neutral.
func (a *TowerPowerAdapter) SetPowerDraw(m float64) {
	hi := a.cfg.MaxDrawMultiplier
	if hi <= 0 {
		hi = 2
	}
	m = math.Max(0, math.Min(hi, m))
	a.drawMultiplier = m

	base := a.cfg.PoweredBonus
	switch {
	case m > 1:
		a.poweredBonus = base.scale(1 + (m-1)*a.cfg.OverdriveScale)
	case m < 1:
		a.poweredBonus = base.lerpFromOne(m)
	default:
		a.poweredBonus = base
	}

	a.setConsumption(a.baseDraw * m)
	a.ApplyPowerModifiers()
}

func (a *TowerPowerAdapter) DrawMultiplier() float64 {
	return a.drawMultiplier
}

// PoweredBonus is the bonus after the draw multiplier.
func (a *TowerPowerAdapter) PoweredBonus() Modifiers {
	return a.poweredBonus
}

func (a *TowerPowerAdapter) setConsumption(c float64) {
	a.node.consumer.consumption = c
	a.node.InputRate = c
	if _, ok := a.pool(); ok && a.cfg.ChargeRate > 1 {
		a.node.InputRate = c * a.cfg.ChargeRate
	}
}
