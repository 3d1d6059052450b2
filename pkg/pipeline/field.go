package pipeline

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/spacecol/pkg/errors"
	"github.com/matzehuels/spacecol/pkg/field"
)

// NewGenerator builds the attractor generator selected by opts.Source.
// Options must have been validated.
func NewGenerator(opts Options) (field.Generator, error) {
	switch opts.Source {
	case field.KindRadial:
		cfg := field.DefaultRadialConfig(r3.Vec{X: float64(opts.Width) / 2, Y: float64(opts.Height) / 2})
		if opts.Density > 0 {
			cfg.Density = opts.Density
		}
		if opts.InitialRadius > 0 {
			cfg.InitialRadius = opts.InitialRadius
		}
		if opts.RadiusStep > 0 {
			cfg.RadiusStep = opts.RadiusStep
		}
		if opts.NoiseScale > 0 {
			cfg.NoiseScale = opts.NoiseScale
		}
		if opts.NoiseStrength > 0 {
			cfg.NoiseStrength = opts.NoiseStrength
		}
		if opts.Lobes > 0 {
			cfg.Lobes = opts.Lobes
		}
		return field.NewRadial(cfg), nil
	case field.KindMask:
		return field.NewMask(field.MaskConfig{
			Path:      opts.MaskPath,
			Width:     opts.Width,
			Height:    opts.Height,
			Count:     opts.Count,
			Threshold: maskThreshold(opts.Threshold),
			RootX:     opts.RootX,
			RootY:     opts.RootY,
		}), nil
	case field.KindVolume:
		return field.NewVolume(field.VolumeConfig{Path: opts.MeshPath, Count: opts.Count}), nil
	case field.KindEllipse:
		margin := opts.Margin
		if margin == 0 {
			margin = field.DefaultEllipseMargin
		}
		return field.NewEllipse(field.EllipseConfig{
			Width:  float64(opts.Width),
			Height: float64(opts.Height),
			Margin: margin,
			Count:  opts.Count,
		}), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidSource, "unknown attractor source %q", opts.Source)
}

func maskThreshold(t *int) *uint8 {
	if t == nil {
		return nil
	}
	v := uint8(*t)
	return &v
}
