package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/spacecol/pkg/graph"
	"github.com/matzehuels/spacecol/pkg/observability"
	"github.com/matzehuels/spacecol/pkg/render"
	"github.com/matzehuels/spacecol/pkg/render/nodelink"
	"github.com/matzehuels/spacecol/pkg/tree"
)

// Render encodes a finished tree in every requested format. Formats are
// rendered concurrently; the first failure cancels the rest.
func Render(ctx context.Context, g graph.Tree, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	t, err := graph.ToTree(g)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	edges := t.Edges()
	hooks := observability.Growth()

	var mu sync.Mutex
	artifacts := make(map[string][]byte, len(opts.Formats))
	eg, ctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		eg.Go(func() error {
			start := time.Now()
			data, err := renderFormat(ctx, format, g, t, edges, opts)
			hooks.OnRender(ctx, format, time.Since(start), err)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, format string, g graph.Tree, t *tree.Tree, edges []tree.Segment, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return render.RenderSVG(edges, opts.RenderOptions()), nil
	case FormatPNG:
		return render.RenderPNG(edges, opts.RenderOptions())
	case FormatOBJ:
		var buf bytes.Buffer
		if err := render.WriteOBJ(t, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		return graph.MarshalTree(g)
	case FormatDOT:
		return []byte(nodelink.ToDOT(t, nodelink.Options{Detailed: opts.Detailed})), nil
	case FormatNodelink:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(t, nodelink.Options{Detailed: opts.Detailed}))
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}

// Extension returns the file extension used when writing an artifact.
func Extension(format string) string {
	if format == FormatNodelink {
		return "nodelink.svg"
	}
	return format
}
