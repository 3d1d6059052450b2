package field

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/spacecol/pkg/errors"
	"github.com/matzehuels/spacecol/pkg/mesh"
)

// minVolume is the smallest enclosed volume accepted as non-degenerate.
const minVolume = 1e-6

// VolumeConfig parameterises sampling inside a closed mesh.
type VolumeConfig struct {
	Path  string     // OBJ file; ignored when Mesh is set
	Mesh  *mesh.Mesh // preloaded mesh
	Count int
}

// Volume samples attractors at voxel centres inside a watertight mesh.
type Volume struct {
	cfg    VolumeConfig
	seq    Sequence
	mesh   *mesh.Mesh
	bounds r3.Box
	pitch  float64
}

// NewVolume creates a volume-sampled generator.
func NewVolume(cfg VolumeConfig) *Volume {
	return &Volume{cfg: cfg}
}

func (g *Volume) Dims() int    { return 3 }
func (g *Volume) Kind() string { return KindVolume }

// Pitch returns the voxel pitch used by the last Generate.
func (g *Volume) Pitch() float64 { return g.pitch }

// Anchor returns a root at the bottom centre of the mesh bounds growing along
// +Z for DefaultSeedSteps steps.
func (g *Volume) Anchor() Seed {
	b := g.bounds
	return Seed{
		Pos:   r3.Vec{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2, Z: b.Min.Z},
		Dir:   r3.Vec{Z: 1},
		Steps: DefaultSeedSteps,
	}
}

// Generate voxelises the mesh interior at pitch (|volume|/Count)^(1/3)/2 and
// subsamples the voxel centres down to Count.
func (g *Volume) Generate(rng *rand.Rand) ([]Attractor, error) {
	if g.cfg.Count <= 0 {
		return nil, errors.New(errors.ErrCodeConfiguration, "attractor count must be positive, got %d", g.cfg.Count)
	}
	g.seq.Reset()
	if g.mesh == nil {
		m, err := g.load()
		if err != nil {
			return nil, err
		}
		g.mesh = m
		g.bounds = m.Bounds()
	}

	vol := math.Abs(g.mesh.Volume())
	if vol <= minVolume {
		return nil, errors.New(errors.ErrCodeInvalidGeometry, "mesh volume %g is not positive", vol)
	}
	g.pitch = math.Cbrt(vol/float64(g.cfg.Count)) * 0.5
	pts := g.mesh.Voxelize(g.pitch)
	if len(pts) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidGeometry, "voxelisation at pitch %g yielded no points", g.pitch)
	}
	return g.seq.Wrap(subsample(pts, g.cfg.Count, rng)), nil
}

func (g *Volume) load() (*mesh.Mesh, error) {
	m := g.cfg.Mesh
	if m == nil {
		if g.cfg.Path == "" {
			return nil, errors.New(errors.ErrCodeResourceUnavailable, "no mesh given")
		}
		loaded, err := mesh.LoadOBJ(g.cfg.Path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeResourceUnavailable, err, "load mesh %s", g.cfg.Path)
		}
		m = loaded
	}
	if !m.IsWatertight() {
		m = m.Weld(mesh.DefaultWeldTolerance)
		if !m.IsWatertight() {
			return nil, errors.New(errors.ErrCodeInvalidGeometry, "mesh is not watertight after welding")
		}
	}
	return m, nil
}
