package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/flowtower/pkg/flow"
	"github.com/matzehuels/flowtower/pkg/graph"
)

// Options configures preview rendering.
type Options struct {
	// Labels shows node names inside activities. Gateways and events are
	// never labelled.
	Labels bool
	// Scale is the PNG resolution factor. Zero means 2.
	Scale float64
}

var shapes = map[string]string{
	flow.VisualStart:                      `shape=circle, style=filled, fillcolor="#c4e6c3"`,
	flow.VisualEnd:                        `shape=doublecircle, style=filled, fillcolor="#f7c6c6"`,
	flow.VisualTask:                       `shape=box, style="rounded,filled", fillcolor=white`,
	flow.VisualSubflow:                    `shape=box, style="rounded,filled,bold", fillcolor="#e8eefc"`,
	flow.VisualBranchGateway:              `shape=diamond, style=filled, fillcolor="#fde8b8", label="X"`,
	flow.VisualParallelGateway:            `shape=diamond, style=filled, fillcolor="#fde8b8", label="+"`,
	flow.VisualConditionalParallelGateway: `shape=diamond, style=filled, fillcolor="#fde8b8", label="O"`,
	flow.VisualConvergeGateway:            `shape=diamond, style=filled, fillcolor="#fde8b8", label="*"`,
}

var compass = map[graph.Arrow]string{
	graph.ArrowLeft:   "w",
	graph.ArrowRight:  "e",
	graph.ArrowTop:    "n",
	graph.ArrowBottom: "s",
}

// ToDOT converts a layout to a DOT document with every node pinned at its
// canvas centre. The y axis is flipped, since DOT grows upwards. Lines with
// an unplaced endpoint are omitted.
func ToDOT(l graph.Layout, opts Options) string {
	_, _, _, maxY := l.Bounds()
	placed := make(map[string]bool, len(l.Locations))

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=ortho;\n")
	buf.WriteString("  node [fixedsize=true, fontsize=11, fontname=\"Helvetica\", color=\"#a9adb6\"];\n")
	buf.WriteString("  edge [color=\"#a9adb6\", penwidth=2, arrowsize=0.6];\n")
	buf.WriteString("\n")

	for _, loc := range l.Locations {
		placed[loc.ID] = true
		cx := (loc.X + loc.Width/2)
		cy := (maxY - (loc.Y + loc.Height/2))
		attrs := []string{
			fmt.Sprintf("pos=\"%.2f,%.2f!\"", cx, cy),
			fmt.Sprintf("width=%.3f", loc.Width/72),
			fmt.Sprintf("height=%.3f", loc.Height/72),
		}
		if s, ok := shapes[loc.Type]; ok {
			attrs = append(attrs, s)
		}
		if !strings.Contains(shapes[loc.Type], "label=") {
			label := ""
			if opts.Labels && (loc.Type == flow.VisualTask || loc.Type == flow.VisualSubflow) {
				label = loc.Name
			}
			attrs = append(attrs, fmt.Sprintf("label=%q", label))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", loc.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, ln := range l.Lines {
		if !placed[ln.Source.ID] || !placed[ln.Target.ID] {
			continue
		}
		var attrs []string
		if p, ok := compass[ln.Source.Arrow]; ok {
			attrs = append(attrs, "tailport="+p)
		}
		if p, ok := compass[ln.Target.Arrow]; ok {
			attrs = append(attrs, "headport="+p)
		}
		attrs = append(attrs, fmt.Sprintf("id=%q", ln.ID))
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", ln.Source.ID, ln.Target.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}
