package field

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/spacecol/pkg/errors"
)

// DefaultEllipseMargin is the inset between the frame and the ellipse.
const DefaultEllipseMargin = 50.0

// EllipseConfig parameterises uniform sampling inside an ellipse inscribed in
// a Width×Height frame and inset by Margin on every side.
type EllipseConfig struct {
	Width  float64
	Height float64
	Margin float64
	Count  int
}

// Ellipse samples attractors uniformly inside an inset ellipse.
type Ellipse struct {
	cfg EllipseConfig
	seq Sequence
}

// NewEllipse creates an ellipse generator.
func NewEllipse(cfg EllipseConfig) *Ellipse {
	return &Ellipse{cfg: cfg}
}

func (g *Ellipse) Dims() int    { return 2 }
func (g *Ellipse) Kind() string { return KindEllipse }

// Anchor returns a root at the bottom centre of the frame growing upward.
func (g *Ellipse) Anchor() Seed {
	return Seed{
		Pos:   r3.Vec{X: g.cfg.Width / 2, Y: g.cfg.Height},
		Dir:   r3.Vec{Y: -1},
		Steps: DefaultSeedSteps,
	}
}

// Generate rejection-samples exactly Count points.
func (g *Ellipse) Generate(rng *rand.Rand) ([]Attractor, error) {
	c := g.cfg
	rx, ry := c.Width/2-c.Margin, c.Height/2-c.Margin
	if rx <= 0 || ry <= 0 {
		return nil, errors.New(errors.ErrCodeConfiguration, "margin %g leaves no room in a %gx%g frame", c.Margin, c.Width, c.Height)
	}
	if c.Count < 0 {
		return nil, errors.New(errors.ErrCodeConfiguration, "attractor count must not be negative, got %d", c.Count)
	}
	g.seq.Reset()
	cx, cy := c.Width/2, c.Height/2
	pts := make([]r3.Vec, 0, c.Count)
	for len(pts) < c.Count {
		x, y := rng.Float64()*c.Width, rng.Float64()*c.Height
		dx, dy := (x-cx)/rx, (y-cy)/ry
		if dx*dx+dy*dy <= 1 {
			pts = append(pts, r3.Vec{X: x, Y: y})
		}
	}
	return g.seq.Wrap(pts), nil
}
