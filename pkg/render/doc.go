// Package render turns growth trees into files.
//
// # Overview
//
// The sinks in this package all consume the same inputs, a list of
// parent-to-child [tree.Segment] values or a whole [tree.Tree]:
//
//   - [RenderSVG]: vector drawing of the branches
//   - [RenderPNG]: raster drawing through fogleman/gg
//   - [FrameWriter]: numbered PNG frames written on every snapshot
//   - [WriteOBJ]: Wavefront OBJ polylines for 3D tools
//   - [nodelink]: Graphviz topology diagrams
//
// # Coordinates
//
// 2D fields are generated in canvas coordinates (Y grows downwards), so by
// default segments are drawn as-is. 3D trees are projected on the XY plane.
// Set [Options.Fit] to scale the segment bounds uniformly into the frame
// with [Options.Padding] pixels of margin.
//
//	svg := render.RenderSVG(res.Edges, render.DefaultOptions())
//	png, err := render.RenderPNG(res.Edges, opts)
//
// The frame sequence is the hand-off point to external video encoders:
//
//	fw, _ := render.NewFrameWriter("frames", opts)
//	sim, _ := colonize.New(cfg, gen, colonize.WithObserver(fw))
package render
