package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/spacecol/pkg/colonize"
	"github.com/matzehuels/spacecol/pkg/errors"
	"github.com/matzehuels/spacecol/pkg/pipeline"
)

// growFlags holds the flag values of the grow command. Only flags the user
// actually set override the config file.
type growFlags struct {
	config string
	output string
	format string

	source    string
	seed      uint64
	width     int
	height    int
	count     int
	margin    float64
	mask      string
	threshold int
	rootX     float64
	rootY     float64
	mesh      string

	density       int
	initialRadius float64
	radiusStep    float64
	noiseScale    float64
	noiseStrength float64
	lobes         int

	step         float64
	kill         float64
	stagnation   int
	maxNodes     int
	newNodesOnly bool
	index        string

	background  string
	stroke      string
	lineWidth   float64
	transparent bool
	fit         bool
	detailed    bool

	frames        string
	frameInterval int

	refresh   bool
	noCache   bool
	noArchive bool
	tui       bool
}

// growCommand creates the grow command.
func (c *CLI) growCommand() *cobra.Command {
	var f growFlags

	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Grow a tree and write its artifacts",
		Long: `Grow a branching structure from an attractor field and render it.

The field source is one of radial, mask, volume or ellipse. Options can be
read from a TOML or YAML file with --config; flags given on the command line
take precedence over the file.`,
		Example: `  spacecol grow
  spacecol grow --source ellipse --count 2000 -f svg,png -o out/tree
  spacecol grow --source mask --mask leaf.png --frames frames/
  spacecol grow --config tree.toml --seed 7 --tui`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options(cmd.Flags())
			if err != nil {
				return err
			}
			return c.runGrow(cmd.Context(), opts, f)
		},
	}

	f.register(cmd.Flags())

	return cmd
}

// register defines the grow flags on fs.
func (f *growFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.config, "config", "c", "", "read options from a TOML or YAML file")
	fs.StringVarP(&f.output, "output", "o", "tree", "output path without extension")
	fs.StringVarP(&f.format, "format", "f", pipeline.FormatSVG, "output formats: svg, png, obj, json, dot, nodelink (comma-separated)")

	fs.StringVarP(&f.source, "source", "s", pipeline.DefaultSource, "attractor field: radial, mask, volume, ellipse")
	fs.Uint64Var(&f.seed, "seed", pipeline.DefaultSeed, "random seed")
	fs.IntVar(&f.width, "width", pipeline.DefaultWidth, "canvas width")
	fs.IntVar(&f.height, "height", pipeline.DefaultHeight, "canvas height")
	fs.IntVar(&f.count, "count", pipeline.DefaultCount, "number of attractors (mask, volume, ellipse)")
	fs.Float64Var(&f.margin, "margin", 0, "ellipse inset from the canvas edge")
	fs.StringVar(&f.mask, "mask", "", "mask image (source mask)")
	fs.IntVar(&f.threshold, "threshold", 0, "mask darkness threshold (0-255)")
	fs.Float64Var(&f.rootX, "root-x", 0, "root x position for the mask source")
	fs.Float64Var(&f.rootY, "root-y", 0, "root y position for the mask source")
	fs.StringVar(&f.mesh, "mesh", "", "Wavefront OBJ mesh (source volume)")

	fs.IntVar(&f.density, "density", 0, "radial attractors per ring")
	fs.Float64Var(&f.initialRadius, "initial-radius", 0, "radius of the first radial ring")
	fs.Float64Var(&f.radiusStep, "radius-step", 0, "radial ring growth per expansion")
	fs.Float64Var(&f.noiseScale, "noise-scale", 0, "radial boundary noise frequency")
	fs.Float64Var(&f.noiseStrength, "noise-strength", 0, "radial boundary noise amplitude")
	fs.IntVar(&f.lobes, "lobes", 0, "number of radial lobes")

	fs.Float64Var(&f.step, "step", 0, "growth step size")
	fs.Float64Var(&f.kill, "kill", 0, "attractor kill distance")
	fs.IntVar(&f.stagnation, "stagnation", 0, "ticks an attractor may stall before removal (negative disables)")
	fs.IntVar(&f.maxNodes, "max-nodes", 0, "node cap (negative disables)")
	fs.BoolVar(&f.newNodesOnly, "new-nodes-only", false, "check proximity against new nodes only")
	fs.StringVar(&f.index, "index", "", "nearest-node index: brute, kdtree")

	fs.StringVar(&f.background, "background", "", "background color (#rrggbb)")
	fs.StringVar(&f.stroke, "stroke", "", "branch color (#rrggbb)")
	fs.Float64Var(&f.lineWidth, "line-width", 0, "branch stroke width")
	fs.BoolVar(&f.transparent, "transparent", false, "omit the background")
	fs.BoolVar(&f.fit, "fit", false, "scale the tree to the canvas")
	fs.BoolVar(&f.detailed, "detailed", false, "label nodes in dot and nodelink output")

	fs.StringVar(&f.frames, "frames", "", "write PNG frames of the growth to this directory")
	fs.IntVar(&f.frameInterval, "frame-interval", 0, "ticks between frames")

	fs.BoolVar(&f.refresh, "refresh", false, "ignore cached results")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the cache")
	fs.BoolVar(&f.noArchive, "no-archive", false, "do not record the run in the history")
	fs.BoolVar(&f.tui, "tui", false, "show an interactive progress view")
}

// options builds pipeline options from the config file and the flags that
// were set explicitly.
func (f *growFlags) options(fs *pflag.FlagSet) (pipeline.Options, error) {
	var opts pipeline.Options
	if f.config != "" {
		loaded, err := pipeline.LoadConfig(f.config)
		if err != nil {
			return opts, err
		}
		opts = loaded
	}

	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("source", func() { opts.Source = f.source })
	set("seed", func() { opts.Seed = f.seed })
	set("width", func() { opts.Width = f.width })
	set("height", func() { opts.Height = f.height })
	set("count", func() { opts.Count = f.count })
	set("margin", func() { opts.Margin = f.margin })
	set("mask", func() { opts.MaskPath = f.mask })
	set("threshold", func() { v := f.threshold; opts.Threshold = &v })
	set("root-x", func() { x := f.rootX; opts.RootX = &x })
	set("root-y", func() { y := f.rootY; opts.RootY = &y })
	set("mesh", func() { opts.MeshPath = f.mesh })

	set("density", func() { opts.Density = f.density })
	set("initial-radius", func() { opts.InitialRadius = f.initialRadius })
	set("radius-step", func() { opts.RadiusStep = f.radiusStep })
	set("noise-scale", func() { opts.NoiseScale = f.noiseScale })
	set("noise-strength", func() { opts.NoiseStrength = f.noiseStrength })
	set("lobes", func() { opts.Lobes = f.lobes })

	set("step", func() { opts.StepSize = f.step })
	set("kill", func() { opts.KillDistance = f.kill })
	set("stagnation", func() { opts.StagnationLimit = f.stagnation })
	set("max-nodes", func() { opts.MaxNodes = f.maxNodes })
	set("new-nodes-only", func() { opts.NewNodesOnly = f.newNodesOnly })
	set("index", func() { opts.Index = f.index })

	set("format", func() { opts.Formats = parseFormats(f.format) })
	set("background", func() { opts.Background = f.background })
	set("stroke", func() { opts.Stroke = f.stroke })
	set("line-width", func() { opts.LineWidth = f.lineWidth })
	set("transparent", func() { opts.Transparent = f.transparent })
	set("fit", func() { opts.Fit = f.fit })
	set("detailed", func() { opts.Detailed = f.detailed })

	set("frames", func() { opts.FrameDir = f.frames })
	set("frame-interval", func() { opts.FrameInterval = f.frameInterval })
	set("refresh", func() { opts.Refresh = f.refresh })

	var err error
	if opts.MaskPath, err = absPath(opts.MaskPath); err != nil {
		return opts, err
	}
	if opts.MeshPath, err = absPath(opts.MeshPath); err != nil {
		return opts, err
	}
	return opts, nil
}

// absPath resolves relative input paths so that "../leaf.png" passes path
// validation.
func absPath(p string) (string, error) {
	if p == "" || filepath.IsAbs(p) {
		return p, nil
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", p)
	}
	return abs, nil
}

// runGrow executes a growth with a spinner, or the progress view when
// f.tui is set, and writes the artifacts.
func (c *CLI) runGrow(ctx context.Context, opts pipeline.Options, f growFlags) error {
	logger := c.Logger
	if f.tui {
		logger = quietLogger()
	}
	runner, err := newRunner(ctx, logger, f.noCache)
	if err != nil {
		return err
	}
	if !f.noArchive {
		store, err := openArchive(ctx)
		if err != nil {
			c.Logger.Warn("history unavailable", "err", err)
		} else {
			runner.Archive = store
		}
	}
	defer runner.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prog := newProgress(c.Logger)
	job := runner.Start(ctx, opts)

	if f.tui {
		source := opts.Source
		if source == "" {
			source = pipeline.DefaultSource
		}
		p := tea.NewProgram(newGrowModel(job.Events(), cancel, source), tea.WithContext(ctx), tea.WithOutput(os.Stderr))
		if _, err := p.Run(); err != nil && ctx.Err() == nil {
			cancel()
			job.Wait()
			return fmt.Errorf("progress view: %w", err)
		}
	} else {
		followWithSpinner(ctx, job.Events())
	}

	res, err := job.Wait()
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(f.output, res.Artifacts)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	prog.done(fmt.Sprintf("Grew %d nodes", res.Stats.Nodes))

	printSuccess("Grew %s", res.ID)
	printStats(res.Stats.Nodes, res.Stats.Ticks, res.Stats.Reason, res.CacheHit)
	for _, p := range paths {
		printFile(p)
	}
	if len(res.Frames) > 0 {
		printDetail("%d frames in %s", len(res.Frames), opts.FrameDir)
	}
	if runner.Archive != nil {
		printNewline()
		printNextStep("Browse past runs", appName+" history")
	}
	return nil
}

// followWithSpinner shows growth progress until the event stream ends.
func followWithSpinner(ctx context.Context, events <-chan colonize.Event) {
	spin := newSpinnerWithContext(ctx, os.Stderr, "Growing...")
	spin.Start()
	defer spin.Stop()
	for ev := range events {
		if ev.Kind == colonize.EventProgress {
			spin.SetMessage(fmt.Sprintf("Growing... %3.0f%%", ev.Progress*100))
		}
	}
}
