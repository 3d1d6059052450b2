// Package pipeline runs a complete growth job: seed, grow, render, cache and
// archive.
//
// The same pipeline backs the CLI and the HTTP API, so both entry points
// share defaults, validation, cache keys and artifact encoding.
//
// # Stages
//
//  1. Field: build the attractor generator named by [Options.Source]
//  2. Grow: run a [colonize.Simulation] to termination
//  3. Render: encode the requested formats (SVG, PNG, OBJ, JSON, DOT and
//     the Graphviz nodelink drawing)
//
// Finished trees and artifacts are cached by a key derived from every
// growth-relevant option, including the seed, so repeating a run is free.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Source:   "radial",
//	    Seed:     7,
//	    MaxNodes: 4000,
//	    Formats:  []string{"svg", "json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := res.Artifacts["svg"]
//
// A run can also be started in the background; its events arrive in order
// on the job's channel:
//
//	job := runner.Start(ctx, opts)
//	for ev := range job.Events() {
//	    ...
//	}
//	res, err := job.Wait()
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spacecol/pkg/cache"
	"github.com/matzehuels/spacecol/pkg/colonize"
	"github.com/matzehuels/spacecol/pkg/errors"
	"github.com/matzehuels/spacecol/pkg/field"
	"github.com/matzehuels/spacecol/pkg/graph"
	"github.com/matzehuels/spacecol/pkg/render"
	"github.com/matzehuels/spacecol/pkg/tree"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultSource is the attractor strategy used when none is given.
	DefaultSource = field.KindRadial

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultWidth and DefaultHeight size the 2D growth frame and the
	// rendered image.
	DefaultWidth  = render.DefaultWidth
	DefaultHeight = render.DefaultHeight

	// DefaultCount is the requested attractor count for the mask, volume
	// and ellipse strategies.
	DefaultCount = 1000

	// DefaultMaxNodes caps the tree. The radial field keeps expanding, so a
	// run without a cap would never end.
	DefaultMaxNodes = 5000

	// DefaultFrameInterval is the snapshot interval used when a frame
	// directory is set without an explicit interval.
	DefaultFrameInterval = 5
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatOBJ  = "obj"
	FormatJSON = "json"
	FormatDOT  = "dot"

	// FormatNodelink is the Graphviz drawing of the tree topology.
	FormatNodelink = "nodelink"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatOBJ:  true,
	FormatJSON: true,
	FormatDOT:  true,

	FormatNodelink: true,
}

// ValidIndexes is the set of nearest-node index names.
var ValidIndexes = map[string]bool{
	colonize.IndexBruteForce: true,
	colonize.IndexKDTree:     true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one growth run. It is decoded from
// API request bodies (JSON) and config files (TOML, YAML).
//
// Zero values select defaults. MaxNodes and StagnationLimit use a negative
// value to switch the limit off, since zero already means "default".
type Options struct {
	// Field options
	Source    string   `json:"source" toml:"source" yaml:"source" mapstructure:"source"`
	Seed      uint64   `json:"seed,omitempty" toml:"seed" yaml:"seed" mapstructure:"seed"`
	Width     int      `json:"width,omitempty" toml:"width" yaml:"width" mapstructure:"width"`
	Height    int      `json:"height,omitempty" toml:"height" yaml:"height" mapstructure:"height"`
	Count     int      `json:"count,omitempty" toml:"count" yaml:"count" mapstructure:"count"`
	Margin    float64  `json:"margin,omitempty" toml:"margin" yaml:"margin" mapstructure:"margin"`
	MaskPath  string   `json:"mask_path,omitempty" toml:"mask_path" yaml:"mask_path" mapstructure:"mask_path"`
	Threshold *int     `json:"threshold,omitempty" toml:"threshold" yaml:"threshold" mapstructure:"threshold"`
	RootX     *float64 `json:"root_x,omitempty" toml:"root_x" yaml:"root_x" mapstructure:"root_x"`
	RootY     *float64 `json:"root_y,omitempty" toml:"root_y" yaml:"root_y" mapstructure:"root_y"`
	MeshPath  string   `json:"mesh_path,omitempty" toml:"mesh_path" yaml:"mesh_path" mapstructure:"mesh_path"`

	// Radial ring options; zero keeps the field defaults.
	Density       int     `json:"density,omitempty" toml:"density" yaml:"density" mapstructure:"density"`
	InitialRadius float64 `json:"initial_radius,omitempty" toml:"initial_radius" yaml:"initial_radius" mapstructure:"initial_radius"`
	RadiusStep    float64 `json:"radius_step,omitempty" toml:"radius_step" yaml:"radius_step" mapstructure:"radius_step"`
	NoiseScale    float64 `json:"noise_scale,omitempty" toml:"noise_scale" yaml:"noise_scale" mapstructure:"noise_scale"`
	NoiseStrength float64 `json:"noise_strength,omitempty" toml:"noise_strength" yaml:"noise_strength" mapstructure:"noise_strength"`
	Lobes         int     `json:"lobes,omitempty" toml:"lobes" yaml:"lobes" mapstructure:"lobes"`

	// Growth options
	StepSize        float64 `json:"step_size,omitempty" toml:"step_size" yaml:"step_size" mapstructure:"step_size"`
	KillDistance    float64 `json:"kill_distance,omitempty" toml:"kill_distance" yaml:"kill_distance" mapstructure:"kill_distance"`
	StagnationLimit int     `json:"stagnation_limit,omitempty" toml:"stagnation_limit" yaml:"stagnation_limit" mapstructure:"stagnation_limit"`
	MaxNodes        int     `json:"max_nodes,omitempty" toml:"max_nodes" yaml:"max_nodes" mapstructure:"max_nodes"`
	NewNodesOnly    bool    `json:"new_nodes_only,omitempty" toml:"new_nodes_only" yaml:"new_nodes_only" mapstructure:"new_nodes_only"`
	Index           string  `json:"index,omitempty" toml:"index" yaml:"index" mapstructure:"index"`

	// Render options
	Formats     []string `json:"formats,omitempty" toml:"formats" yaml:"formats" mapstructure:"formats"`
	Background  string   `json:"background,omitempty" toml:"background" yaml:"background" mapstructure:"background"`
	Stroke      string   `json:"stroke,omitempty" toml:"stroke" yaml:"stroke" mapstructure:"stroke"`
	LineWidth   float64  `json:"line_width,omitempty" toml:"line_width" yaml:"line_width" mapstructure:"line_width"`
	Transparent bool     `json:"transparent,omitempty" toml:"transparent" yaml:"transparent" mapstructure:"transparent"`
	Fit         bool     `json:"fit,omitempty" toml:"fit" yaml:"fit" mapstructure:"fit"`
	Detailed    bool     `json:"detailed,omitempty" toml:"detailed" yaml:"detailed" mapstructure:"detailed"` // DOT node labels

	// Frame sequence; FrameDir empty disables it.
	FrameDir      string `json:"-" toml:"frame_dir" yaml:"frame_dir" mapstructure:"frame_dir"`
	FrameInterval int    `json:"frame_interval,omitempty" toml:"frame_interval" yaml:"frame_interval" mapstructure:"frame_interval"`

	Refresh bool `json:"refresh,omitempty" toml:"refresh" yaml:"refresh" mapstructure:"refresh"`

	// Runtime options (not serialized)
	Logger   *log.Logger       `json:"-" toml:"-" yaml:"-" mapstructure:"-"`
	Observer colonize.Observer `json:"-" toml:"-" yaml:"-" mapstructure:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// ID identifies the run in the archive.
	ID string

	// Tree is the finished growth tree.
	Tree *tree.Tree

	// Graph is the serialisable form of Tree.
	Graph graph.Tree

	// TreeKey is the cache key of the tree, shared by every run with the
	// same growth options.
	TreeKey string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Frames lists the snapshot images written during growth.
	Frames []string

	Stats Stats

	// CacheHit reports that the tree was served from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Nodes      int            `json:"nodes"`
	Ticks      int            `json:"ticks"`
	Reason     string         `json:"reason"`
	Growth     colonize.Stats `json:"growth"`
	GrowTime   time.Duration  `json:"grow_time"`
	RenderTime time.Duration  `json:"render_time"`
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	return errors.ValidateFormat(format, ValidFormats)
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSource checks that a source names a known attractor strategy.
func ValidateSource(source string) error {
	return errors.ValidateSourceKind(source, field.ValidKinds)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// Calling it more than once has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetFieldDefaults()
	if err := o.ValidateForField(); err != nil {
		return err
	}
	o.SetGrowthDefaults()
	if err := o.growthConfig().Validate(); err != nil {
		return err
	}
	if o.Source == field.KindRadial && o.MaxNodes == 0 {
		return errors.New(errors.ErrCodeConfiguration, "the radial field keeps expanding and needs a node cap")
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// SetFieldDefaults sets default values for the attractor field.
func (o *Options) SetFieldDefaults() {
	if o.Source == "" {
		o.Source = DefaultSource
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Count == 0 {
		o.Count = DefaultCount
	}
	if o.Threshold == nil {
		t := field.DefaultMaskThreshold
		o.Threshold = &t
	}
}

// ValidateForField checks the options of the selected strategy.
func (o *Options) ValidateForField() error {
	if err := ValidateSource(o.Source); err != nil {
		return err
	}
	switch {
	case o.Width < 0 || o.Height < 0:
		return errors.New(errors.ErrCodeConfiguration, "frame size must be positive, got %dx%d", o.Width, o.Height)
	case o.Count < 0:
		return errors.New(errors.ErrCodeConfiguration, "attractor count must not be negative, got %d", o.Count)
	case o.Threshold != nil && (*o.Threshold < 0 || *o.Threshold > 255):
		return errors.New(errors.ErrCodeConfiguration, "mask threshold must be in 0..255, got %d", *o.Threshold)
	}
	switch o.Source {
	case field.KindMask:
		if o.MaskPath == "" {
			return errors.New(errors.ErrCodeConfiguration, "mask source requires mask_path")
		}
		return errors.ValidatePath(o.MaskPath)
	case field.KindVolume:
		if o.MeshPath == "" {
			return errors.New(errors.ErrCodeConfiguration, "volume source requires mesh_path")
		}
		return errors.ValidatePath(o.MeshPath)
	}
	return nil
}

// SetGrowthDefaults sets default values for the growth loop.
func (o *Options) SetGrowthDefaults() {
	if o.StepSize == 0 {
		o.StepSize = colonize.DefaultStepSize
	}
	if o.KillDistance == 0 {
		o.KillDistance = colonize.DefaultKillDistance
	}
	switch {
	case o.StagnationLimit == 0:
		o.StagnationLimit = colonize.DefaultStagnationLimit
	case o.StagnationLimit < 0:
		o.StagnationLimit = 0
	}
	switch {
	case o.MaxNodes == 0:
		o.MaxNodes = DefaultMaxNodes
	case o.MaxNodes < 0:
		o.MaxNodes = 0
	}
	if o.Index == "" {
		o.Index = colonize.IndexBruteForce
	}
	if o.FrameDir != "" && o.FrameInterval == 0 {
		o.FrameInterval = DefaultFrameInterval
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Background == "" {
		o.Background = render.DefaultBackground
	}
	if o.Stroke == "" {
		o.Stroke = render.DefaultStroke
	}
	if o.LineWidth == 0 {
		o.LineWidth = render.DefaultLineWidth
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	ro := o.RenderOptions()
	return ro.Validate()
}

// RenderOptions returns the image options of the run.
func (o *Options) RenderOptions() render.Options {
	return render.Options{
		Width:       o.Width,
		Height:      o.Height,
		Background:  o.Background,
		Stroke:      o.Stroke,
		LineWidth:   o.LineWidth,
		Transparent: o.Transparent,
		Fit:         o.Fit || o.Source == field.KindVolume,
		Padding:     render.DefaultPadding,
	}
}

// growthConfig maps the growth options onto the simulation config.
func (o *Options) growthConfig() colonize.Config {
	cfg := colonize.DefaultConfig()
	cfg.StepSize = o.StepSize
	cfg.KillDistance = o.KillDistance
	cfg.StagnationLimit = o.StagnationLimit
	cfg.MaxNodes = o.MaxNodes
	cfg.NewNodesOnly = o.NewNodesOnly
	cfg.Index = o.Index
	cfg.FrameInterval = o.FrameInterval
	return cfg
}

// growthParams is the part of Options that determines the grown tree.
type growthParams struct {
	Width, Height   int
	Count           int
	Margin          float64
	Mask            string
	Threshold       *int
	RootX, RootY    *float64
	Mesh            string
	Density         int
	InitialRadius   float64
	RadiusStep      float64
	NoiseScale      float64
	NoiseStrength   float64
	Lobes           int
	StepSize        float64
	KillDistance    float64
	StagnationLimit int
	MaxNodes        int
	NewNodesOnly    bool
	Index           string
}

// ParamsHash hashes every growth-relevant option except source and seed.
// Mask and mesh inputs are identified by path.
func (o *Options) ParamsHash() string {
	h, _ := cache.HashJSON(growthParams{
		Width: o.Width, Height: o.Height,
		Count: o.Count, Margin: o.Margin,
		Mask: o.MaskPath, Threshold: o.Threshold, RootX: o.RootX, RootY: o.RootY,
		Mesh:    o.MeshPath,
		Density: o.Density, InitialRadius: o.InitialRadius, RadiusStep: o.RadiusStep,
		NoiseScale: o.NoiseScale, NoiseStrength: o.NoiseStrength, Lobes: o.Lobes,
		StepSize: o.StepSize, KillDistance: o.KillDistance,
		StagnationLimit: o.StagnationLimit, MaxNodes: o.MaxNodes,
		NewNodesOnly: o.NewNodesOnly, Index: o.Index,
	})
	return h
}

// TreeKeyOpts returns cache key options for the grown tree.
func (o *Options) TreeKeyOpts() cache.TreeKeyOpts {
	return cache.TreeKeyOpts{Source: o.Source, Seed: o.Seed, ParamsHash: o.ParamsHash()}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatSVG, FormatPNG:
		ro := o.RenderOptions()
		k.Width, k.Height = ro.Width, ro.Height
		k.Background, k.Stroke = ro.Background, ro.Stroke
		k.LineWidth = ro.LineWidth
		k.Transparent, k.Fit = ro.Transparent, ro.Fit
	case FormatDOT, FormatNodelink:
		k.Detailed = o.Detailed
	}
	return k
}

// HasFormat reports whether format is among the requested outputs.
func (o *Options) HasFormat(format string) bool {
	return slices.Contains(o.Formats, format)
}
