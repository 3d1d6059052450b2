package render

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/spacecol/pkg/errors"
	"github.com/matzehuels/spacecol/pkg/tree"
)

// Default drawing parameters.
const (
	DefaultWidth      = 800
	DefaultHeight     = 1000
	DefaultBackground = "#0a0a14"
	DefaultStroke     = "#ffffd0"
	DefaultLineWidth  = 1.0
	DefaultPadding    = 20.0
)

// Options controls the SVG and PNG sinks.
type Options struct {
	Width       int
	Height      int
	Background  string  // hex colour, ignored when Transparent
	Stroke      string  // hex colour of branches
	LineWidth   float64 // in pixels
	Transparent bool
	Fit         bool    // scale segment bounds into the frame
	Padding     float64 // margin used by Fit
}

// DefaultOptions returns the default drawing options.
func DefaultOptions() Options {
	return Options{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Background: DefaultBackground,
		Stroke:     DefaultStroke,
		LineWidth:  DefaultLineWidth,
		Padding:    DefaultPadding,
	}
}

// Validate fills zero values with defaults and checks the colours.
func (o *Options) Validate() error {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Background == "" {
		o.Background = DefaultBackground
	}
	if o.Stroke == "" {
		o.Stroke = DefaultStroke
	}
	if o.LineWidth <= 0 {
		o.LineWidth = DefaultLineWidth
	}
	if o.Padding < 0 {
		o.Padding = 0
	}
	if err := errors.ValidateColor(o.Background); err != nil {
		return err
	}
	return errors.ValidateColor(o.Stroke)
}

// projection maps world XY into frame pixels.
type projection struct {
	scale, dx, dy float64
}

func (p projection) apply(v r3.Vec) (x, y float64) {
	return v.X*p.scale + p.dx, v.Y*p.scale + p.dy
}

func newProjection(segs []tree.Segment, o Options) projection {
	id := projection{scale: 1}
	if !o.Fit || len(segs) == 0 {
		return id
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, s := range segs {
		for _, v := range [2]r3.Vec{s.From, s.To} {
			minX, maxX = math.Min(minX, v.X), math.Max(maxX, v.X)
			minY, maxY = math.Min(minY, v.Y), math.Max(maxY, v.Y)
		}
	}
	w, h := maxX-minX, maxY-minY
	availW := float64(o.Width) - 2*o.Padding
	availH := float64(o.Height) - 2*o.Padding
	if availW <= 0 || availH <= 0 {
		return id
	}
	scale := math.Inf(1)
	if w > 0 {
		scale = availW / w
	}
	if h > 0 {
		scale = math.Min(scale, availH/h)
	}
	if math.IsInf(scale, 1) {
		scale = 1
	}
	return projection{
		scale: scale,
		dx:    float64(o.Width)/2 - (minX+w/2)*scale,
		dy:    float64(o.Height)/2 - (minY+h/2)*scale,
	}
}
