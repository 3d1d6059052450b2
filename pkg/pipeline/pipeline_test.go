package pipeline

import (
	"testing"

	"github.com/matzehuels/spacecol/pkg/colonize"
	"github.com/matzehuels/spacecol/pkg/errors"
	"github.com/matzehuels/spacecol/pkg/field"
	"github.com/matzehuels/spacecol/pkg/render"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"obj", false},
		{"json", false},
		{"dot", false},
		{"nodelink", false},
		{"pdf", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Invalid format error = %v, want INVALID_FORMAT", err)
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func ptr[T any](v T) *T { return &v }

func TestExplicitZeroThresholdSurvivesDefaults(t *testing.T) {
	o := Options{Threshold: ptr(0)}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.Threshold == nil || *o.Threshold != 0 {
		t.Fatalf("threshold = %v, want explicit 0", o.Threshold)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	checks := []struct {
		name      string
		got, want any
	}{
		{"source", o.Source, DefaultSource},
		{"seed", o.Seed, DefaultSeed},
		{"width", o.Width, DefaultWidth},
		{"height", o.Height, DefaultHeight},
		{"count", o.Count, DefaultCount},
		{"threshold", *o.Threshold, field.DefaultMaskThreshold},
		{"step", o.StepSize, colonize.DefaultStepSize},
		{"kill", o.KillDistance, colonize.DefaultKillDistance},
		{"stagnation", o.StagnationLimit, colonize.DefaultStagnationLimit},
		{"max nodes", o.MaxNodes, DefaultMaxNodes},
		{"index", o.Index, colonize.IndexBruteForce},
		{"background", o.Background, render.DefaultBackground},
		{"stroke", o.Stroke, render.DefaultStroke},
		{"line width", o.LineWidth, render.DefaultLineWidth},
		{"frame interval", o.FrameInterval, 0},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if len(o.Formats) != 1 || o.Formats[0] != FormatSVG {
		t.Errorf("formats = %v, want [svg]", o.Formats)
	}
	if o.Logger == nil {
		t.Error("logger not defaulted")
	}

	// Idempotent: a second call must not re-apply defaults to disabled limits.
	o.MaxNodes = 0
	if err := o.ValidateAndSetDefaults(); err != nil || o.MaxNodes != 0 {
		t.Errorf("second call changed options: max nodes %d, err %v", o.MaxNodes, err)
	}
}

func TestNegativeLimitsDisable(t *testing.T) {
	o := Options{Source: field.KindEllipse, StagnationLimit: -1}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.StagnationLimit != 0 || o.MaxNodes != DefaultMaxNodes {
		t.Errorf("stagnation %d, max nodes %d", o.StagnationLimit, o.MaxNodes)
	}

	o = Options{Source: field.KindEllipse, MaxNodes: -1}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.MaxNodes != 0 {
		t.Errorf("max nodes = %d, want uncapped", o.MaxNodes)
	}
}

func TestFrameIntervalDefault(t *testing.T) {
	o := Options{FrameDir: t.TempDir()}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.FrameInterval != DefaultFrameInterval {
		t.Errorf("frame interval = %d, want %d", o.FrameInterval, DefaultFrameInterval)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"UnknownSource", Options{Source: "spiral"}, errors.ErrCodeInvalidSource},
		{"MaskWithoutPath", Options{Source: field.KindMask}, errors.ErrCodeConfiguration},
		{"MaskTraversal", Options{Source: field.KindMask, MaskPath: "../x.png"}, errors.ErrCodeInvalidPath},
		{"VolumeWithoutMesh", Options{Source: field.KindVolume}, errors.ErrCodeConfiguration},
		{"RadialUncapped", Options{Source: field.KindRadial, MaxNodes: -1}, errors.ErrCodeConfiguration},
		{"NoTermination", Options{Source: field.KindEllipse, MaxNodes: -1, StagnationLimit: -1}, errors.ErrCodeConfiguration},
		{"Threshold", Options{Threshold: ptr(300)}, errors.ErrCodeConfiguration},
		{"NegativeThreshold", Options{Threshold: ptr(-1)}, errors.ErrCodeConfiguration},
		{"NegativeCount", Options{Count: -5}, errors.ErrCodeConfiguration},
		{"NegativeStep", Options{StepSize: -1}, errors.ErrCodeConfiguration},
		{"UnknownIndex", Options{Index: "octree"}, errors.ErrCodeConfiguration},
		{"BadFormat", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"BadColor", Options{Stroke: "white"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestTreeKeyOpts(t *testing.T) {
	base := Options{Source: field.KindEllipse}
	if err := base.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}

	reseeded := base
	reseeded.Seed = 7
	if reseeded.ParamsHash() != base.ParamsHash() {
		t.Error("seed must not change the params hash")
	}
	if reseeded.TreeKeyOpts() == base.TreeKeyOpts() {
		t.Error("seed must change the tree key")
	}

	restyled := base
	restyled.Stroke = "#ff0000"
	if restyled.ParamsHash() != base.ParamsHash() {
		t.Error("render options must not change the params hash")
	}

	stepped := base
	stepped.StepSize = 2
	if stepped.ParamsHash() == base.ParamsHash() {
		t.Error("step size must change the params hash")
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	a := Options{Stroke: "#ff0000", Detailed: true}
	b := Options{Stroke: "#00ff00"}
	for _, o := range []*Options{&a, &b} {
		if err := o.ValidateAndSetDefaults(); err != nil {
			t.Fatal(err)
		}
	}

	if a.ArtifactKeyOpts(FormatOBJ) != b.ArtifactKeyOpts(FormatOBJ) {
		t.Error("obj key must ignore styling")
	}
	if a.ArtifactKeyOpts(FormatSVG) == b.ArtifactKeyOpts(FormatSVG) {
		t.Error("svg key must include the stroke")
	}
	if a.ArtifactKeyOpts(FormatDOT) == b.ArtifactKeyOpts(FormatDOT) {
		t.Error("dot key must include detailed labels")
	}
}

func TestVolumeRendersFitted(t *testing.T) {
	o := Options{Source: field.KindVolume, MeshPath: "mesh.obj"}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if !o.RenderOptions().Fit {
		t.Error("3D trees must be fitted into the frame")
	}
}

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		source string
		opts   Options
		dims   int
	}{
		{field.KindRadial, Options{}, 2},
		{field.KindEllipse, Options{}, 2},
		{field.KindMask, Options{MaskPath: "mask.png"}, 2},
		{field.KindVolume, Options{MeshPath: "mesh.obj"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			tt.opts.Source = tt.source
			if err := tt.opts.ValidateAndSetDefaults(); err != nil {
				t.Fatal(err)
			}
			gen, err := NewGenerator(tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if gen.Kind() != tt.source || gen.Dims() != tt.dims {
				t.Errorf("got %s/%dD, want %s/%dD", gen.Kind(), gen.Dims(), tt.source, tt.dims)
			}
		})
	}

	if _, err := NewGenerator(Options{Source: "spiral"}); !errors.Is(err, errors.ErrCodeInvalidSource) {
		t.Errorf("unknown source error = %v", err)
	}
}
