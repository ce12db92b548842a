package energy

import (
	"math"

	"go-power-towers/internal/types"
)

// Upgrades counts purchased upgrades per type. Effective stats are derived
// from these counters; base stats are never rewritten.
type Upgrades struct {
	InputRate  int `json:"input_rate" yaml:"input_rate"`
	OutputRate int `json:"output_rate" yaml:"output_rate"`
	Capacity   int `json:"capacity" yaml:"capacity"`
	Range      int `json:"range" yaml:"range"`
	Channels   int `json:"channels" yaml:"channels"`
	Generation int `json:"generation" yaml:"generation"`
	Efficiency int `json:"efficiency" yaml:"efficiency"`
	Stability  int `json:"stability" yaml:"stability"`
	Decay      int `json:"decay" yaml:"decay"`
	Radius     int `json:"radius" yaml:"radius"`
}

// Count returns the counter for t.
func (u Upgrades) Count(t UpgradeType) int {
	if p := u.counter(t); p != nil {
		return *p
	}
	return 0
}

// Total is the number of upgrades bought across all types.
func (u Upgrades) Total() int {
	return u.InputRate + u.OutputRate + u.Capacity + u.Range + u.Channels +
		u.Generation + u.Efficiency + u.Stability + u.Decay + u.Radius
}

func (u *Upgrades) counter(t UpgradeType) *int {
	switch t {
	case UpgradeInputRate:
		return &u.InputRate
	case UpgradeOutputRate:
		return &u.OutputRate
	case UpgradeCapacity:
		return &u.Capacity
	case UpgradeRange:
		return &u.Range
	case UpgradeChannels:
		return &u.Channels
	case UpgradeGeneration:
		return &u.Generation
	case UpgradeEfficiency:
		return &u.Efficiency
	case UpgradeStability:
		return &u.Stability
	case UpgradeDecay:
		return &u.Decay
	case UpgradeRadius:
		return &u.Radius
	}
	return nil
}

// NodeConfig describes a node to build. Only the params block matching Kind
// is used.
type NodeConfig struct {
	ID     types.EntityID
	Type   string
	Kind   Kind
	GridX  int
	GridY  int
	WorldX float64
	WorldY float64

	InputChannels  int
	OutputChannels int
	InputRate      float64
	OutputRate     float64
	Capacity       float64
	Stored         float64
	Range          float64
	MaxLevel       int

	Generator GeneratorParams
	Storage   StorageParams
	Transfer  TransferParams
	Consumer  ConsumerParams
}

// Node is a participant in the power network.
type Node struct {
	ID     types.EntityID
	Type   string
	Kind   Kind
	GridX  int
	GridY  int
	WorldX float64
	WorldY float64

	InputChannels  int
	OutputChannels int
	InputRate      float64
	OutputRate     float64
	Capacity       float64
	Stored         float64
	Range          float64

	Level    int
	MaxLevel int
	XP       int
	Upgrades Upgrades

	totalProcessed float64
	rules          *Rules

	gen      *generatorState
	storage  *storageState
	transfer *transferState
	consumer *consumerState
}

// NewNode builds a node of cfg.Kind with the network's default rules.
func NewNode(cfg NodeConfig) *Node {
	n := &Node{
		ID:             cfg.ID,
		Type:           cfg.Type,
		Kind:           cfg.Kind,
		GridX:          cfg.GridX,
		GridY:          cfg.GridY,
		WorldX:         cfg.WorldX,
		WorldY:         cfg.WorldY,
		InputChannels:  cfg.InputChannels,
		OutputChannels: cfg.OutputChannels,
		InputRate:      cfg.InputRate,
		OutputRate:     cfg.OutputRate,
		Capacity:       cfg.Capacity,
		Range:          cfg.Range,
		Level:          1,
		MaxLevel:       cfg.MaxLevel,
		rules:          &defaultRules,
	}
	if n.MaxLevel <= 0 {
		n.MaxLevel = defaultRules.MaxLevel
	}
	if n.Type == "" {
		n.Type = cfg.Kind.String()
	}

	switch cfg.Kind.Category() {
	case CategoryGenerator:
		n.gen = newGeneratorState(cfg.Kind, cfg.Generator)
	case CategoryStorage:
		n.storage = newStorageState(cfg.Storage)
	case CategoryTransfer:
		n.transfer = newTransferState(cfg.Transfer)
	case CategoryConsumer:
		n.consumer = newConsumerState(cfg.Consumer)
		if n.InputRate == 0 {
			n.InputRate = n.consumer.consumption
		}
	}
	n.Stored = math.Min(math.Max(cfg.Stored, 0), n.EffectiveCapacity())
	return n
}

// SetRules replaces the rules used for effective stats. Networks call this on
// registration.
func (n *Node) SetRules(r *Rules) {
	if r != nil {
		n.rules = r
	}
}

// Rules returns the rules in effect for the node.
func (n *Node) Rules() Rules {
	return *n.rules
}

func (n *Node) Category() Category {
	return n.Kind.Category()
}

func (n *Node) EffectiveInputRate() float64 {
	return n.InputRate * (1 + float64(n.Upgrades.InputRate)*n.rules.InputRatePerLevel)
}

func (n *Node) EffectiveOutputRate() float64 {
	return n.OutputRate * (1 + float64(n.Upgrades.OutputRate)*n.rules.OutputRatePerLevel)
}

// EffectiveCapacity includes the storage stacking multiplier.
func (n *Node) EffectiveCapacity() float64 {
	c := n.Capacity * (1 + float64(n.Upgrades.Capacity)*n.rules.CapacityPerLevel)
	if n.storage != nil {
		c *= n.storage.stackMultiplier
	}
	return c
}

func (n *Node) EffectiveRange() float64 {
	return n.Range + float64(n.Upgrades.Range)*n.rules.RangePerLevel
}

// channelBonus is the number of extra slots per side granted by channel
// upgrades. Transfer nodes gain a slot per upgrade.
func (n *Node) channelBonus() int {
	if n.Kind == KindTransfer {
		return n.Upgrades.Channels
	}
	per := n.rules.ChannelLevelsPerSlot
	if per < 1 {
		per = 1
	}
	return n.Upgrades.Channels / per
}

// EffectiveInputChannels only grows sides that exist on the base node.
func (n *Node) EffectiveInputChannels() int {
	if n.InputChannels == 0 {
		return 0
	}
	return n.InputChannels + n.channelBonus()
}

func (n *Node) EffectiveOutputChannels() int {
	if n.OutputChannels == 0 {
		return 0
	}
	return n.OutputChannels + n.channelBonus()
}

// AvailableOutput is the energy the node can push in dt seconds.
func (n *Node) AvailableOutput(dt float64) float64 {
	return math.Max(0, math.Min(n.Stored, n.EffectiveOutputRate()*dt))
}

// AvailableInput is the energy the node can accept in dt seconds.
func (n *Node) AvailableInput(dt float64) float64 {
	room := n.EffectiveCapacity() - n.Stored
	return math.Max(0, math.Min(room, n.EffectiveInputRate()*dt))
}

// ReceiveEnergy stores up to amount and returns what was accepted.
func (n *Node) ReceiveEnergy(amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	room := n.EffectiveCapacity() - n.Stored
	if room <= 0 {
		return 0
	}
	accepted := math.Min(amount, room)
	n.Stored += accepted
	if n.Kind == KindStorage || n.Kind == KindTransfer {
		n.addProcessed(accepted)
	}
	return accepted
}

// FillRatio is stored over effective capacity.
func (n *Node) FillRatio() float64 {
	c := n.EffectiveCapacity()
	if c <= 0 {
		return 0
	}
	return n.Stored / c
}

// CanUpgrade reports whether t applies to this node and is not capped.
func (n *Node) CanUpgrade(t UpgradeType) bool {
	if n.Level >= n.MaxLevel {
		return false
	}
	switch t {
	case UpgradeInputRate, UpgradeCapacity, UpgradeRange:
		return true
	case UpgradeOutputRate:
		return n.OutputChannels > 0
	case UpgradeChannels:
		if n.Kind == KindTransfer {
			return n.Upgrades.Channels < n.rules.RelayMaxChannelUpgrades
		}
		return true
	case UpgradeGeneration:
		return n.Kind.IsGenerator()
	case UpgradeEfficiency:
		return n.Kind == KindTransfer || n.Kind == KindSolar
	case UpgradeStability:
		return n.Kind == KindWind
	case UpgradeDecay:
		return n.Kind == KindStorage
	case UpgradeRadius:
		return n.Kind == KindBiomass || n.Kind == KindHydro
	}
	return false
}

// Upgrade increments the counter for t and the node level. It reports false
// and changes nothing when the upgrade does not apply or the level is capped.
func (n *Node) Upgrade(t UpgradeType) bool {
	if !n.CanUpgrade(t) {
		return false
	}
	*n.Upgrades.counter(t)++
	n.Level++
	return true
}

// TotalProcessed is the lifetime energy counted towards XP.
func (n *Node) TotalProcessed() float64 {
	return n.totalProcessed
}

func (n *Node) addProcessed(amount float64) {
	n.totalProcessed += amount
	if n.rules.EnergyPerXP <= 0 {
		return
	}
	xp := int(n.totalProcessed / n.rules.EnergyPerXP)
	if xp <= n.XP {
		return
	}
	n.XP = xp
	if n.rules.XPPerLevel <= 0 {
		return
	}
	level := 1 + n.XP/n.rules.XPPerLevel
	if level > n.MaxLevel {
		level = n.MaxLevel
	}
	if level > n.Level {
		n.Level = level
	}
}

// XPProgress returns XP earned since the node's current level began and the
// XP a level takes. Levels bought with upgrades move the baseline, so
// current stays at 0 until XP catches up.
func (n *Node) XPProgress() (current, needed int) {
	per := n.rules.XPPerLevel
	if per <= 0 {
		return 0, 0
	}
	current = n.XP - (n.Level-1)*per
	if current < 0 {
		current = 0
	}
	return current, per
}

// Distance is the Euclidean grid distance between two nodes.
func (n *Node) Distance(o *Node) float64 {
	return gridDistance(n.GridX, n.GridY, o.GridX, o.GridY)
}

func gridDistance(x1, y1, x2, y2 int) float64 {
	dx := float64(x1 - x2)
	dy := float64(y1 - y2)
	return math.Sqrt(dx*dx + dy*dy)
}

// DefaultNodeConfig returns the stock stats of a kind.
func DefaultNodeConfig(kind Kind) NodeConfig {
	cfg := NodeConfig{
		Kind:           kind,
		InputChannels:  1,
		OutputChannels: 1,
		InputRate:      10,
		OutputRate:     10,
		Capacity:       100,
		Range:          5,
		MaxLevel:       10,
	}
	switch kind {
	case KindStable:
		cfg.Type = "base-generator"
		cfg.InputChannels, cfg.InputRate = 0, 0
		cfg.OutputRate, cfg.Capacity, cfg.Range = 15, 50, 4
		cfg.Generator = GeneratorParams{BaseGeneration: 5}
	case KindBiomass:
		cfg.Type = "bio-generator"
		cfg.InputChannels, cfg.InputRate = 0, 0
		cfg.OutputRate, cfg.Capacity, cfg.Range = 20, 80, 4
		cfg.Generator = GeneratorParams{BaseGeneration: 8, Radius: 3, MaxFeatures: 12, HarvestRate: 0.1}
	case KindWind:
		cfg.Type = "wind-generator"
		cfg.InputChannels, cfg.InputRate = 0, 0
		cfg.OutputRate, cfg.Capacity, cfg.Range = 25, 60, 5
		cfg.Generator = GeneratorParams{BaseGeneration: 12, Radius: 2, MaxFeatures: 9, Instability: 0.3}
	case KindSolar:
		cfg.Type = "solar-generator"
		cfg.InputChannels, cfg.InputRate = 0, 0
		cfg.OutputRate, cfg.Capacity, cfg.Range = 18, 70, 4
		cfg.Generator = GeneratorParams{BaseGeneration: 10, BiomeEfficiency: DefaultSolarEfficiency()}
	case KindHydro:
		cfg.Type = "water-generator"
		cfg.InputChannels, cfg.InputRate = 0, 0
		cfg.OutputRate, cfg.Capacity, cfg.Range = 22, 65, 4
		cfg.Generator = GeneratorParams{BaseGeneration: 10, Radius: 2, MaxFeatures: 9}
	case KindStorage:
		cfg.Type = "battery"
		cfg.InputRate, cfg.OutputRate, cfg.Capacity, cfg.Range = 20, 20, 200, 3
		cfg.Storage = StorageParams{DecayRate: 0.005}
	case KindTransfer:
		cfg.Type = "power-transfer"
		cfg.InputChannels, cfg.OutputChannels = 2, 2
		cfg.InputRate, cfg.OutputRate, cfg.Capacity, cfg.Range = 30, 30, 50, 6
		cfg.Transfer = TransferParams{Efficiency: 0.95}
	case KindConsumer:
		cfg.Type = "power-consumer"
		cfg.OutputChannels, cfg.OutputRate = 0, 0
		cfg.InputRate, cfg.Capacity, cfg.Range = 5, 20, 0
		cfg.Consumer = ConsumerParams{Consumption: 5}
	}
	return cfg
}
