package energy

// Category is the role a node plays in flow ordering.
type Category string

const (
	CategoryGenerator Category = "generator"
	CategoryStorage   Category = "storage"
	CategoryTransfer  Category = "transfer"
	CategoryConsumer  Category = "consumer"
)

// flowRank orders connection sources within a tick: generators drain first,
// consumers last.
func (c Category) flowRank() int {
	switch c {
	case CategoryGenerator:
		return 0
	case CategoryStorage:
		return 1
	case CategoryTransfer:
		return 2
	default:
		return 3
	}
}

// Kind is the closed set of node variants. Per-kind behaviour lives in the
// behaviors table rather than in separate types.
type Kind uint8

const (
	KindStable Kind = iota
	KindBiomass
	KindWind
	KindSolar
	KindHydro
	KindStorage
	KindTransfer
	KindConsumer
	kindCount
)

var kindNames = [kindCount]string{
	KindStable:   "stable",
	KindBiomass:  "biomass",
	KindWind:     "wind",
	KindSolar:    "solar",
	KindHydro:    "hydro",
	KindStorage:  "storage",
	KindTransfer: "transfer",
	KindConsumer: "consumer",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// Category returns the flow category of the kind.
func (k Kind) Category() Category {
	switch k {
	case KindStable, KindBiomass, KindWind, KindSolar, KindHydro:
		return CategoryGenerator
	case KindStorage:
		return CategoryStorage
	case KindTransfer:
		return CategoryTransfer
	default:
		return CategoryConsumer
	}
}

// IsGenerator reports whether the kind produces energy.
func (k Kind) IsGenerator() bool {
	return k.Category() == CategoryGenerator
}

// UpgradeType names an upgrade counter.
type UpgradeType string

const (
	UpgradeInputRate  UpgradeType = "inputRate"
	UpgradeOutputRate UpgradeType = "outputRate"
	UpgradeCapacity   UpgradeType = "capacity"
	UpgradeRange      UpgradeType = "range"
	UpgradeChannels   UpgradeType = "channels"
	UpgradeGeneration UpgradeType = "generation"
	UpgradeEfficiency UpgradeType = "efficiency"
	UpgradeStability  UpgradeType = "stability"
	UpgradeDecay      UpgradeType = "decay"
	UpgradeRadius     UpgradeType = "radius"
)

// Rules holds the per-level bonuses and XP curve shared by all nodes of a network.
type Rules struct {
	MaxLevel int

	InputRatePerLevel    float64 // multiplicative, +20% per level
	OutputRatePerLevel   float64
	CapacityPerLevel     float64
	RangePerLevel        float64 // additive cells per level
	ChannelLevelsPerSlot int     // channel upgrades needed for +1 in and +1 out

	RelayMaxChannelUpgrades int
	GenerationPerLevel      float64
	RelayEfficiencyPerLevel float64
	SolarEfficiencyPerLevel float64
	StabilityPerLevel       float64
	MinInstability          float64
	DecayFactorPerLevel     float64

	StorageDecayInterval float64 // seconds the decay rate is expressed over

	EnergyPerXP float64
	XPPerLevel  int
}

// DefaultRules returns the stock tuning.
func DefaultRules() Rules {
	return Rules{
		MaxLevel:                10,
		InputRatePerLevel:       0.2,
		OutputRatePerLevel:      0.2,
		CapacityPerLevel:        0.25,
		RangePerLevel:           2,
		ChannelLevelsPerSlot:    2,
		RelayMaxChannelUpgrades: 4,
		GenerationPerLevel:      0.2,
		RelayEfficiencyPerLevel: 0.02,
		SolarEfficiencyPerLevel: 0.1,
		StabilityPerLevel:       0.1,
		MinInstability:          0.05,
		DecayFactorPerLevel:     0.8,
		StorageDecayInterval:    60,
		EnergyPerXP:             100,
		XPPerLevel:              10,
	}
}

var defaultRules = DefaultRules()
