package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spacecol/pkg/errors"
	"github.com/matzehuels/spacecol/pkg/graph"
	"github.com/matzehuels/spacecol/pkg/pipeline"
)

// renderFlags holds the flag values of the render command.
type renderFlags struct {
	output      string
	format      string
	width       int
	height      int
	background  string
	stroke      string
	lineWidth   float64
	transparent bool
	fit         bool
	detailed    bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render <tree.json>",
		Short: "Render a saved tree in other formats",
		Long: `Render a tree previously written with "grow -f json" without growing it again.

The output path defaults to the input path without its extension.`,
		Example: `  spacecol render tree.json -f png,obj
  spacecol render tree.json -f svg --stroke "#2e7d32" --background "#ffffff" -o green`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], f)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.output, "output", "o", "", "output path without extension")
	fs.StringVarP(&f.format, "format", "f", pipeline.FormatSVG, "output formats (comma-separated)")
	fs.IntVar(&f.width, "width", pipeline.DefaultWidth, "canvas width")
	fs.IntVar(&f.height, "height", pipeline.DefaultHeight, "canvas height")
	fs.StringVar(&f.background, "background", "", "background color (#rrggbb)")
	fs.StringVar(&f.stroke, "stroke", "", "branch color (#rrggbb)")
	fs.Float64Var(&f.lineWidth, "line-width", 0, "branch stroke width")
	fs.BoolVar(&f.transparent, "transparent", false, "omit the background")
	fs.BoolVar(&f.fit, "fit", false, "scale the tree to the canvas")
	fs.BoolVar(&f.detailed, "detailed", false, "label nodes in dot and nodelink output")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, f renderFlags) error {
	if err := errors.ValidatePath(input); err != nil {
		if input, err = absPath(input); err != nil {
			return err
		}
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResourceUnavailable, err, "read %s", input)
	}
	g, err := graph.UnmarshalTree(data)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", input)
	}

	opts := pipeline.Options{
		Formats:     parseFormats(f.format),
		Width:       f.width,
		Height:      f.height,
		Background:  f.background,
		Stroke:      f.stroke,
		LineWidth:   f.lineWidth,
		Transparent: f.transparent,
		Fit:         f.fit || g.Dims == 3,
		Detailed:    f.detailed,
	}

	prog := newProgress(c.Logger)
	artifacts, err := pipeline.Render(ctx, g, opts)
	if err != nil {
		return err
	}

	base := f.output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	}
	paths, err := writeArtifacts(base, artifacts)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	prog.done(fmt.Sprintf("Rendered %d files", len(paths)))

	printSuccess("Rendered %d nodes", len(g.Nodes))
	for _, p := range paths {
		printFile(p)
	}
	return nil
}
