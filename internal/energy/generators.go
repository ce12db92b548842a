package energy

import "math"

// GeneratorParams configures a generator kind. Unused fields are ignored by
// kinds that do not read them.
type GeneratorParams struct {
	BaseGeneration float64 `json:"base_generation" yaml:"base_generation"`

	// Radius and MaxFeatures bound the terrain scan of biomass, wind and hydro.
	Radius      int `json:"radius" yaml:"radius"`
	MaxFeatures int `json:"max_features" yaml:"max_features"`

	// Instability is the wind fluctuation amplitude; the multiplier is drawn
	// from [1-Instability, 1+Instability] every FluctuationInterval seconds
	// (0 rolls every tick).
	Instability         float64 `json:"instability" yaml:"instability"`
	FluctuationInterval float64 `json:"fluctuation_interval" yaml:"fluctuation_interval"`

	BiomeEfficiency map[Biome]float64 `json:"biome_efficiency" yaml:"biome_efficiency"`

	// HarvestRate is the number of trees a fully efficient biomass generator
	// consumes per second.
	HarvestRate float64 `json:"harvest_rate" yaml:"harvest_rate"`
}

type generatorState struct {
	params GeneratorParams

	env Environment
	rng RandomSource

	generation    float64 // rate in energy/second from the last generate
	efficiency    float64
	featuresFound int
	biome         Biome

	multiplier       float64
	fluctuationTimer float64
	rolled           bool

	harvestProgress float64
	harvested       int
}

func newGeneratorState(kind Kind, p GeneratorParams) *generatorState {
	if kind == KindSolar && p.BiomeEfficiency == nil {
		p.BiomeEfficiency = DefaultSolarEfficiency()
	}
	return &generatorState{params: p, efficiency: 1, multiplier: 1}
}

// SetEnvironment attaches the map collaborator used by terrain-coupled
// generators. A nil environment means base generation.
func (n *Node) SetEnvironment(env Environment) {
	if n.gen != nil {
		n.gen.env = env
	}
}

// SetRandomSource attaches the RNG used by the wind roll. Without one the wind
// multiplier stays at 1.
func (n *Node) SetRandomSource(r RandomSource) {
	if n.gen != nil {
		n.gen.rng = r
	}
}

// GeneratorParams returns the generator configuration, or false for non-generators.
func (n *Node) GeneratorParams() (GeneratorParams, bool) {
	if n.gen == nil {
		return GeneratorParams{}, false
	}
	return n.gen.params, true
}

// BaseGeneration is the generation rate after generation upgrades, before
// environment effects.
func (n *Node) BaseGeneration() float64 {
	if n.gen == nil {
		return 0
	}
	return n.gen.params.BaseGeneration * (1 + float64(n.Upgrades.Generation)*n.rules.GenerationPerLevel)
}

// Generation is the rate produced on the last generate call.
func (n *Node) Generation() float64 {
	if n.gen == nil {
		return 0
	}
	return n.gen.generation
}

// GeneratorEfficiency is the terrain factor from the last generate call.
func (n *Node) GeneratorEfficiency() float64 {
	if n.gen == nil {
		return 0
	}
	return n.gen.efficiency
}

// FeaturesFound is the terrain count seen on the last generate call.
func (n *Node) FeaturesFound() int {
	if n.gen == nil {
		return 0
	}
	return n.gen.featuresFound
}

// Harvested is the number of trees consumed by a biomass generator.
func (n *Node) Harvested() int {
	if n.gen == nil {
		return 0
	}
	return n.gen.harvested
}

// Biome is the biome seen by a solar generator on its last generate call.
func (n *Node) Biome() Biome {
	if n.gen == nil {
		return ""
	}
	return n.gen.biome
}

// FeatureRadius is the terrain scan radius after radius upgrades.
func (n *Node) FeatureRadius() int {
	if n.gen == nil {
		return 0
	}
	return n.gen.params.Radius + n.Upgrades.Radius
}

// MaxFeatures is the feature count that yields full efficiency. Radius
// upgrades recompute it from the scanned area.
func (n *Node) MaxFeatures() int {
	if n.gen == nil {
		return 0
	}
	if n.Upgrades.Radius == 0 {
		return n.gen.params.MaxFeatures
	}
	side := 2*n.FeatureRadius() + 1
	if n.Kind == KindBiomass {
		return side*side - 1
	}
	return side * side
}

// Instability is the wind amplitude after stability upgrades.
func (n *Node) Instability() float64 {
	if n.gen == nil || n.Kind != KindWind {
		return 0
	}
	i := n.gen.params.Instability
	if n.Upgrades.Stability > 0 {
		i = math.Max(n.rules.MinInstability, i-float64(n.Upgrades.Stability)*n.rules.StabilityPerLevel)
	}
	return i
}

// WindBand returns the lowest and highest rate the wind generator can produce
// for its current terrain.
func (n *Node) WindBand() (lo, hi float64) {
	if n.gen == nil || n.Kind != KindWind {
		return 0, 0
	}
	base := n.BaseGeneration() * n.gen.efficiency
	i := n.Instability()
	return base * (1 - i), base * (1 + i)
}

// Generate produces energy for dt seconds into the node's own buffer and
// returns the amount stored. Non-generators produce nothing.
func (n *Node) Generate(dt float64) float64 {
	b := behaviors[n.Kind].generate
	if b == nil || dt <= 0 {
		return 0
	}
	rate := b(n, dt)
	n.gen.generation = rate
	produced := math.Min(rate*dt, math.Max(0, n.EffectiveCapacity()-n.Stored))
	if produced <= 0 {
		return 0
	}
	n.Stored += produced
	n.addProcessed(produced)
	return produced
}

func generateStable(n *Node, _ float64) float64 {
	n.gen.efficiency = 1
	return n.BaseGeneration()
}

// featureEfficiency scans terrain for the feature. A missing or failing
// environment leaves full efficiency.
func (n *Node) featureEfficiency(f Feature) float64 {
	g := n.gen
	g.efficiency = 1
	g.featuresFound = 0
	maxF := n.MaxFeatures()
	if g.env == nil || maxF <= 0 {
		return 1
	}
	count, err := g.env.CountNearby(n.GridX, n.GridY, n.FeatureRadius(), f)
	if err != nil {
		return 1
	}
	if count > maxF {
		count = maxF
	}
	if count < 0 {
		count = 0
	}
	g.featuresFound = count
	g.efficiency = float64(count) / float64(maxF)
	return g.efficiency
}

func generateBiomass(n *Node, dt float64) float64 {
	eff := n.featureEfficiency(FeatureTrees)
	n.harvest(eff, dt)
	return n.BaseGeneration() * eff
}

func (n *Node) harvest(eff, dt float64) {
	g := n.gen
	fc, ok := g.env.(FeatureConsumer)
	if !ok || g.params.HarvestRate <= 0 || g.featuresFound == 0 {
		return
	}
	g.harvestProgress += g.params.HarvestRate * eff * dt
	for g.harvestProgress >= 1 {
		g.harvestProgress--
		if fc.ConsumeFeature(n.GridX, n.GridY, n.FeatureRadius(), FeatureTrees) {
			g.harvested++
		}
	}
}

func generateWind(n *Node, dt float64) float64 {
	eff := n.featureEfficiency(FeatureHills)
	g := n.gen
	g.fluctuationTimer += dt
	if !g.rolled || g.params.FluctuationInterval <= 0 || g.fluctuationTimer >= g.params.FluctuationInterval {
		g.fluctuationTimer = 0
		g.rolled = true
		g.multiplier = 1
		if g.rng != nil {
			g.multiplier = 1 + (g.rng.Float64()*2-1)*n.Instability()
		}
	}
	return n.BaseGeneration() * eff * g.multiplier
}

func generateSolar(n *Node, _ float64) float64 {
	g := n.gen
	g.efficiency = 1
	g.biome = ""
	if g.env != nil {
		if biome, err := g.env.BiomeAt(n.GridX, n.GridY); err == nil {
			g.biome = biome
			if e, ok := g.params.BiomeEfficiency[biome]; ok {
				g.efficiency = e
			}
		}
	}
	bonus := 1 + float64(n.Upgrades.Efficiency)*n.rules.SolarEfficiencyPerLevel
	return n.BaseGeneration() * g.efficiency * bonus
}

func generateHydro(n *Node, _ float64) float64 {
	return n.BaseGeneration() * n.featureEfficiency(FeatureWater)
}

// behavior is the per-kind dispatch entry. Nil entries are no-ops.
type behavior struct {
	generate func(n *Node, dt float64) float64
	decay    func(n *Node, dt float64) float64
	settle   func(n *Node, dt float64) float64
}

var behaviors = [kindCount]behavior{
	KindStable:   {generate: generateStable},
	KindBiomass:  {generate: generateBiomass},
	KindWind:     {generate: generateWind},
	KindSolar:    {generate: generateSolar},
	KindHydro:    {generate: generateHydro},
	KindStorage:  {decay: decayStorage},
	KindTransfer: {},
	KindConsumer: {settle: settleConsumer},
}
