package field

import (
	"math"
	"math/rand/v2"

	perlin "github.com/aquilax/go-perlin"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/spacecol/pkg/errors"
)

// Radial defaults.
const (
	DefaultRingDensity        = 100
	DefaultDensityVariation   = 0.20
	DefaultInitialRadius      = 50.0
	DefaultRadiusStep         = 30.0
	DefaultRingIrregularity   = 0.10
	DefaultExpansionVariation = 0.30
	DefaultNoiseScale         = 100.0
	DefaultNoiseStrength      = 0.80
	DefaultLobes              = 2
	DefaultLobeMultiplier     = 2.0
	DefaultLobeSpread         = 30.0 // degrees
	DefaultLobeDrift          = 5.0  // degrees per ring

	// lowWaterFraction of the ring density below which a new ring is laid.
	lowWaterFraction = 0.1

	noiseOctaves = 4
	noiseAlpha   = 2.0
	noiseBeta    = 2.0
)

// RadialConfig parameterises the ring-lobed field.
type RadialConfig struct {
	Center             r3.Vec
	Density            int     // base attractors per ring
	DensityVariation   float64 // relative variation of the per-ring count
	InitialRadius      float64
	RadiusStep         float64 // base distance between rings
	Irregularity       float64 // uniform radial jitter, fraction of RadiusStep
	ExpansionVariation float64 // relative variation of the ring step
	NoiseScale         float64
	NoiseStrength      float64 // Perlin offset, fraction of RadiusStep
	Lobes              int
	LobeMultiplier     float64 // extra attractors per lobe = Density*(LobeMultiplier-1)
	LobeSpread         float64 // degrees
	LobeDrift          float64 // degrees per ring
}

// DefaultRadialConfig returns the defaults centred on center.
func DefaultRadialConfig(center r3.Vec) RadialConfig {
	return RadialConfig{
		Center:             center,
		Density:            DefaultRingDensity,
		DensityVariation:   DefaultDensityVariation,
		InitialRadius:      DefaultInitialRadius,
		RadiusStep:         DefaultRadiusStep,
		Irregularity:       DefaultRingIrregularity,
		ExpansionVariation: DefaultExpansionVariation,
		NoiseScale:         DefaultNoiseScale,
		NoiseStrength:      DefaultNoiseStrength,
		Lobes:              DefaultLobes,
		LobeMultiplier:     DefaultLobeMultiplier,
		LobeSpread:         DefaultLobeSpread,
		LobeDrift:          DefaultLobeDrift,
	}
}

func (c RadialConfig) validate() error {
	switch {
	case c.Density < 1:
		return errors.New(errors.ErrCodeConfiguration, "ring density must be at least 1, got %d", c.Density)
	case c.DensityVariation < 0 || c.DensityVariation > 1:
		return errors.New(errors.ErrCodeConfiguration, "density variation must be in [0,1], got %g", c.DensityVariation)
	case c.ExpansionVariation < 0 || c.ExpansionVariation > 1:
		return errors.New(errors.ErrCodeConfiguration, "expansion variation must be in [0,1], got %g", c.ExpansionVariation)
	case c.Lobes < 0:
		return errors.New(errors.ErrCodeConfiguration, "lobe count must not be negative, got %d", c.Lobes)
	case c.LobeMultiplier < 1 && c.Lobes > 0:
		return errors.New(errors.ErrCodeConfiguration, "lobe multiplier must be at least 1, got %g", c.LobeMultiplier)
	}
	if err := errors.ValidatePositive("noise scale", c.NoiseScale); err != nil {
		return err
	}
	if err := errors.ValidatePositive("radius step", c.RadiusStep); err != nil {
		return err
	}
	return errors.ValidateNonNegative("initial radius", c.InitialRadius)
}

// Radial lays attractors on expanding rings around a centre. A new ring is
// added whenever the live count drops below a tenth of the ring density, so
// the field never runs dry and a run using it must be node-capped.
type Radial struct {
	cfg RadialConfig

	seq    Sequence
	noise  *perlin.Perlin
	radius float64
	lobes  []float64 // current lobe directions, radians
	rings  int
}

// NewRadial creates a ring-lobed generator.
func NewRadial(cfg RadialConfig) *Radial {
	return &Radial{cfg: cfg}
}

func (g *Radial) Dims() int    { return 2 }
func (g *Radial) Kind() string { return KindRadial }

// Anchor returns a single root at the centre.
func (g *Radial) Anchor() Seed {
	return Seed{Pos: g.cfg.Center}
}

// Radius returns the radius at which the next ring will be laid.
func (g *Radial) Radius() float64 { return g.radius }

// Rings returns the number of rings laid since the last Generate.
func (g *Radial) Rings() int { return g.rings }

// Generate resets the ring state and lays the first ring.
func (g *Radial) Generate(rng *rand.Rand) ([]Attractor, error) {
	if err := g.cfg.validate(); err != nil {
		return nil, err
	}
	g.seq.Reset()
	g.radius = g.cfg.InitialRadius
	g.rings = 0
	g.noise = perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, rng.Int64N(10001))
	g.lobes = make([]float64, g.cfg.Lobes)
	for i := range g.lobes {
		g.lobes[i] = rng.Float64() * 2 * math.Pi
	}
	return g.ring(rng), nil
}

// Expand lays the next ring when live is below the low-water mark.
func (g *Radial) Expand(live int, rng *rand.Rand) []Attractor {
	if g.noise == nil || float64(live) >= lowWaterFraction*float64(g.cfg.Density) {
		return nil
	}
	return g.ring(rng)
}

func (g *Radial) ring(rng *rand.Rand) []Attractor {
	c := g.cfg
	step := math.Max(1, c.RadiusStep*uniform(rng, 1-c.ExpansionVariation, 1+c.ExpansionVariation))

	count := max(1, int(float64(c.Density)*uniform(rng, 1-c.DensityVariation, 1+c.DensityVariation)))
	cluster := 0.5 * c.DensityVariation
	angles := make([]float64, 0, count)
	for range count {
		angles = append(angles, rng.Float64()*2*math.Pi+uniform(rng, -cluster, cluster))
	}

	spread := c.LobeSpread * math.Pi / 180
	extra := int(float64(c.Density) * (c.LobeMultiplier - 1))
	for i := range g.lobes {
		if c.LobeDrift > 0 {
			g.lobes[i] += uniform(rng, -c.LobeDrift, c.LobeDrift) * math.Pi / 180
			g.lobes[i] = math.Mod(g.lobes[i], 2*math.Pi)
			if g.lobes[i] < 0 {
				g.lobes[i] += 2 * math.Pi
			}
		}
		for range extra {
			angles = append(angles, g.lobes[i]+uniform(rng, -spread/2, spread/2))
		}
	}

	jitter := c.RadiusStep * c.Irregularity
	pts := make([]r3.Vec, len(angles))
	for i, a := range angles {
		cos, sin := math.Cos(a), math.Sin(a)
		v := g.noise.Noise3D(g.radius*cos/c.NoiseScale, g.radius*sin/c.NoiseScale, g.radius/c.NoiseScale)
		r := g.radius + (v+1)/2*c.NoiseStrength*c.RadiusStep + uniform(rng, -jitter, jitter)
		r = math.Max(1, r)
		pts[i] = r3.Vec{X: c.Center.X + cos*r, Y: c.Center.Y + sin*r}
	}

	g.radius += step
	g.rings++
	return g.seq.Wrap(pts)
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
