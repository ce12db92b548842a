package energy

// Biome identifies the biome of a map cell.
type Biome string

const (
	BiomeGrass  Biome = "grass"
	BiomePlains Biome = "plains"
	BiomeDesert Biome = "desert"
	BiomeForest Biome = "forest"
	BiomeSwamp  Biome = "swamp"
	BiomeSnow   Biome = "snow"
)

// Feature is a countable terrain feature near a generator.
type Feature string

const (
	FeatureTrees Feature = "trees"
	FeatureHills Feature = "hills"
	FeatureWater Feature = "water"
)

// Environment is the read-only map collaborator used by terrain-coupled
// generators. CountNearby counts cells with the feature inside the square of
// the given radius around (x, y), the centre cell included.
type Environment interface {
	BiomeAt(x, y int) (Biome, error)
	CountNearby(x, y, radius int, feature Feature) (int, error)
}

// FeatureConsumer is implemented by environments that support harvesting.
// ConsumeFeature depletes one matching cell within radius and reports whether
// one was found. Regrowth is the environment's business.
type FeatureConsumer interface {
	ConsumeFeature(x, y, radius int, feature Feature) bool
}

// RandomSource feeds the wind generator's instability roll.
type RandomSource interface {
	Float64() float64
}

// DefaultSolarEfficiency is the solar biome table.
func DefaultSolarEfficiency() map[Biome]float64 {
	return map[Biome]float64{
		BiomeDesert: 1.5,
		BiomePlains: 1.2,
		BiomeGrass:  1.0,
		BiomeForest: 0.6,
		BiomeSwamp:  0.4,
		BiomeSnow:   0.8,
	}
}
