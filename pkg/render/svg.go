package render

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/spacecol/pkg/tree"
)

// RenderSVG draws the segments as an SVG document. Options are validated;
// invalid colours fall back to the defaults.
func RenderSVG(segs []tree.Segment, opts Options) []byte {
	if err := opts.Validate(); err != nil {
		opts.Background, opts.Stroke = DefaultBackground, DefaultStroke
	}
	proj := newProjection(segs, opts)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		opts.Width, opts.Height, opts.Width, opts.Height)
	if !opts.Transparent {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", opts.Background)
	}
	fmt.Fprintf(&buf, `  <g stroke="%s" stroke-width="%.2f" stroke-linecap="round" fill="none">`+"\n",
		opts.Stroke, opts.LineWidth)
	for _, s := range segs {
		x1, y1 := proj.apply(s.From)
		x2, y2 := proj.apply(s.To)
		fmt.Fprintf(&buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n", x1, y1, x2, y2)
	}
	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}
