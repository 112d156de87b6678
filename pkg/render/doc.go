// Package render draws a computed layout as a static preview image.
//
// # Overview
//
// The canvas positions produced by the layout engine are pinned into a
// Graphviz DOT document and rendered with the neato engine, which keeps
// pinned nodes where they are and only routes the edges:
//
//	dot := render.ToDOT(l, render.Options{})
//	svg, err := render.RenderSVG(ctx, dot)
//
// Ports chosen by the layout become head and tail compass points, so edges
// leave and enter nodes on the same sides as on the canvas.
//
// # Format Conversion
//
// SVG and PNG come straight from Graphviz. [ToPDF] converts SVG with the
// external rsvg-convert tool from librsvg. [Render] dispatches on a [Format]:
//
//	png, err := render.Render(ctx, l, render.FormatPNG, render.Options{Scale: 2})
package render
