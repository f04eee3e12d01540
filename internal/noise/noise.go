package noise

import (
	"github.com/aquilax/go-perlin"
)

// Sampler provides the deterministic scalar fields terrain generation
// reads. All samples are in [-1, 1] and depend only on the seed and the
// coordinates, so the same world seed reproduces the same terrain.
type Sampler interface {
	// Height samples the 2D surface-height field at world X,Z.
	Height(x, z float64) float64
	// Cave samples the 3D cave-carving field at world X,Y,Z.
	Cave(x, y, z float64) float64
	// Vegetation samples the 2D vegetation-density field at world X,Z.
	Vegetation(x, z float64) float64
}

// Seed offsets keep the three fields decorrelated while still deriving
// from a single world seed.
const (
	heightSeedOffset     = 0
	caveSeedOffset       = 3
	vegetationSeedOffset = 7
)

const (
	alpha   = 2.0 // smoothing
	beta    = 2.0 // frequency multiplier between octaves
	octaves = 3
)

// Perlin is the production Sampler, backed by coherent Perlin noise
// with one independently seeded generator per field.
type Perlin struct {
	height     *perlin.Perlin
	cave       *perlin.Perlin
	vegetation *perlin.Perlin

	heightFreq     float64
	caveFreq       float64
	vegetationFreq float64
}

// PerlinOptions configures the sampling frequency per field. Zero
// values fall back to defaults tuned for gentle rolling terrain.
type PerlinOptions struct {
	HeightFrequency     float64
	CaveFrequency       float64
	VegetationFrequency float64
}

// NewPerlin creates a Perlin sampler for the given world seed.
func NewPerlin(seed int64, opts PerlinOptions) *Perlin {
	if opts.HeightFrequency == 0 {
		opts.HeightFrequency = 1.0 / 48.0
	}
	if opts.CaveFrequency == 0 {
		opts.CaveFrequency = 1.0 / 12.0
	}
	if opts.VegetationFrequency == 0 {
		opts.VegetationFrequency = 1.0 / 24.0
	}
	return &Perlin{
		height:         perlin.NewPerlin(alpha, beta, octaves, seed+heightSeedOffset),
		cave:           perlin.NewPerlin(alpha, beta, octaves, seed+caveSeedOffset),
		vegetation:     perlin.NewPerlin(alpha, beta, octaves, seed+vegetationSeedOffset),
		heightFreq:     opts.HeightFrequency,
		caveFreq:       opts.CaveFrequency,
		vegetationFreq: opts.VegetationFrequency,
	}
}

func (p *Perlin) Height(x, z float64) float64 {
	return clampUnit(p.height.Noise2D(x*p.heightFreq, z*p.heightFreq))
}

func (p *Perlin) Cave(x, y, z float64) float64 {
	return clampUnit(p.cave.Noise3D(x*p.caveFreq, y*p.caveFreq, z*p.caveFreq))
}

func (p *Perlin) Vegetation(x, z float64) float64 {
	return clampUnit(p.vegetation.Noise2D(x*p.vegetationFreq, z*p.vegetationFreq))
}

// clampUnit guards against the slight overshoot perlin octave sums can
// produce at extreme inputs.
func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// Normalize maps a [-1,1] sample into [0,1].
func Normalize(v float64) float64 {
	return (v + 1) / 2
}

// Flat is a Sampler returning a constant value for every field.
// Used by tests and the flat-world preset.
type Flat struct {
	Value float64
}

func (f Flat) Height(x, z float64) float64     { return f.Value }
func (f Flat) Cave(x, y, z float64) float64    { return f.Value }
func (f Flat) Vegetation(x, z float64) float64 { return f.Value }

// Func adapts arbitrary functions into a Sampler, handy for shaping
// specific test terrains.
type Func struct {
	HeightFunc     func(x, z float64) float64
	CaveFunc       func(x, y, z float64) float64
	VegetationFunc func(x, z float64) float64
}

func (f Func) Height(x, z float64) float64 {
	if f.HeightFunc == nil {
		return 0
	}
	return f.HeightFunc(x, z)
}

func (f Func) Cave(x, y, z float64) float64 {
	if f.CaveFunc == nil {
		return 0
	}
	return f.CaveFunc(x, y, z)
}

func (f Func) Vegetation(x, z float64) float64 {
	if f.VegetationFunc == nil {
		return 0
	}
	return f.VegetationFunc(x, z)
}
