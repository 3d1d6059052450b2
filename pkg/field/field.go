// Package field produces the attractor points that a growth run colonizes.
//
// A [Generator] yields the initial attractor set. Generators that keep the
// field alive while the tree grows also implement [Expander], and generators
// that know where growth should start implement [Anchored].
//
// Four strategies are provided:
//
//   - [Radial]: expanding noise-perturbed rings with drifting lobes (2D)
//   - [Mask]: rejection sampling inside a dark image silhouette (2D)
//   - [Volume]: voxel centres inside a watertight triangle mesh (3D)
//   - [Ellipse]: uniform sampling inside an inset ellipse (2D)
//
// Every attractor carries an id from a per-generator [Sequence]; ids are
// unique for the lifetime of the generator and never reused.
package field

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"
)

// Strategy names accepted by configuration.
const (
	KindRadial  = "radial"
	KindMask    = "mask"
	KindVolume  = "volume"
	KindEllipse = "ellipse"
)

// ValidKinds is the set of strategy names.
var ValidKinds = map[string]bool{
	KindRadial:  true,
	KindMask:    true,
	KindVolume:  true,
	KindEllipse: true,
}

// DefaultSeedSteps is the length of the initial straight seed segment for
// anchored generators.
const DefaultSeedSteps = 5

// Attractor is a fixed point that pulls growth toward itself.
type Attractor struct {
	ID  int
	Pos r3.Vec
}

// Generator builds the initial attractor field.
type Generator interface {
	// Generate resets the generator and returns the initial field. The
	// random source is the only source of randomness used.
	Generate(rng *rand.Rand) ([]Attractor, error)
	// Dims returns 2 or 3.
	Dims() int
	// Kind returns the strategy name.
	Kind() string
}

// Expander is implemented by generators whose field grows during the run.
// Expand is called once per tick with the current live attractor count and
// returns the attractors to add, or nil.
type Expander interface {
	Expand(live int, rng *rand.Rand) []Attractor
}

// Anchored is implemented by generators that provide a default root.
// Anchor is only meaningful after a successful Generate.
type Anchored interface {
	Anchor() Seed
}

// Seed describes where growth starts: a root at Pos followed by Steps nodes
// placed one step size apart along Dir.
type Seed struct {
	Pos   r3.Vec
	Dir   r3.Vec
	Steps int
}

// Sequence hands out attractor ids.
type Sequence struct {
	next int
}

// Next returns a fresh id.
func (s *Sequence) Next() int {
	id := s.next
	s.next++
	return id
}

// Reset restarts numbering from zero.
func (s *Sequence) Reset() { s.next = 0 }

// Wrap assigns fresh ids to a batch of positions.
func (s *Sequence) Wrap(pts []r3.Vec) []Attractor {
	out := make([]Attractor, len(pts))
	for i, p := range pts {
		out[i] = Attractor{ID: s.Next(), Pos: p}
	}
	return out
}

// subsample picks n of pts uniformly without replacement. The input slice is
// reordered. When n >= len(pts) all points are returned.
func subsample(pts []r3.Vec, n int, rng *rand.Rand) []r3.Vec {
	if n >= len(pts) {
		return pts
	}
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(pts)-i)
		pts[i], pts[j] = pts[j], pts[i]
	}
	return pts[:n]
}
