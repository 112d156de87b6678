package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flowtower/pkg/errors"
)

// draw lays out a DOT document with neato, which honours pinned positions,
// and encodes it with Graphviz.
func draw(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// RenderSVG renders a DOT document to SVG sized by its view box.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	svg, err := draw(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(svg), nil
}

// RenderPNG renders a DOT document to PNG. scale multiplies Graphviz's
// 72 dpi default.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 2
	}
	dot = strings.Replace(dot, "{\n", fmt.Sprintf("{\n  dpi=%.0f;\n", 72*scale), 1)
	return draw(ctx, dot, graphviz.PNG)
}

var (
	svgOpenTag = regexp.MustCompile(`<svg[^>]*>`)
	viewBox    = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
	sizeAttrs  = regexp.MustCompile(`\s(?:width|height|viewBox)="[^"]*"`)
)

// normalizeViewBox resizes Graphviz's root svg element, sized in points, so
// its width and height equal the view box. Other attributes, such as the
// xlink namespace, are kept.
func normalizeViewBox(svg []byte) []byte {
	loc := svgOpenTag.FindIndex(svg)
	if loc == nil {
		return svg
	}
	open := svg[loc[0]:loc[1]]
	m := viewBox.FindSubmatch(open)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	rest := sizeAttrs.ReplaceAll(open, nil)
	rest = bytes.TrimSuffix(rest, []byte(">"))
	var out bytes.Buffer
	out.Grow(len(svg) + 32)
	out.Write(svg[:loc[0]])
	out.Write(rest)
	fmt.Fprintf(&out, ` viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	out.Write(svg[loc[1]:])
	return out.Bytes()
}

// ToPDF converts SVG to PDF with rsvg-convert from librsvg, since Graphviz
// builds without cairo cannot write PDF.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	bin, err := exec.LookPath("rsvg-convert")
	if err != nil {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"pdf export needs rsvg-convert (brew install librsvg, or apt install librsvg2-bin)")
	}
	var out, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-f", "pdf")
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}
