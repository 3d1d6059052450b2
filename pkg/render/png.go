package render

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/fogleman/gg"

	"github.com/matzehuels/spacecol/pkg/tree"
)

// RenderPNG rasterises the segments and returns the encoded PNG.
func RenderPNG(segs []tree.Segment, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, segs, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePNG rasterises the segments and encodes the PNG to w.
func WritePNG(w io.Writer, segs []tree.Segment, opts Options) error {
	dc, err := draw(segs, opts)
	if err != nil {
		return err
	}
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// RenderImage rasterises the segments into an in-memory image.
func RenderImage(segs []tree.Segment, opts Options) (image.Image, error) {
	dc, err := draw(segs, opts)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

func draw(segs []tree.Segment, opts Options) (*gg.Context, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	proj := newProjection(segs, opts)

	dc := gg.NewContext(opts.Width, opts.Height)
	if !opts.Transparent {
		dc.SetHexColor(opts.Background)
		dc.Clear()
	}
	dc.SetHexColor(opts.Stroke)
	dc.SetLineWidth(opts.LineWidth)
	dc.SetLineCapRound()
	for _, s := range segs {
		x1, y1 := proj.apply(s.From)
		x2, y2 := proj.apply(s.To)
		dc.DrawLine(x1, y1, x2, y2)
	}
	dc.Stroke()
	return dc, nil
}
