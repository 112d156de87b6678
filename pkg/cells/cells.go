package cells

import (
	"strings"

	"github.com/matzehuels/flowtower/pkg/errors"
	"github.com/matzehuels/flowtower/pkg/flow"
	"github.com/matzehuels/flowtower/pkg/graph"
)

// Mode selects the canvas orientation.
type Mode string

const (
	// ModeHorizontal emits flat node and edge cells.
	ModeHorizontal Mode = "horizontal"
	// ModeVertical additionally groups nodes into nested lanes.
	ModeVertical Mode = "vertical"
)

// Modes lists the supported modes.
var Modes = []Mode{ModeHorizontal, ModeVertical}

// ParseMode parses a mode name. The empty string selects ModeHorizontal.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeHorizontal:
		return ModeHorizontal, nil
	case ModeVertical:
		return ModeVertical, nil
	}
	return "", errors.New(errors.ErrCodeInvalidMode, "unknown canvas mode %q (want horizontal or vertical)", s)
}

// nodeComp maps location visual types to canvas component types.
var nodeComp = map[string]string{
	flow.VisualStart:                      graph.CompStart,
	flow.VisualEnd:                        graph.CompEnd,
	"start":                               graph.CompStart,
	"end":                                 graph.CompEnd,
	flow.VisualTask:                       graph.CompTask,
	flow.VisualSubflow:                    graph.CompSubflow,
	flow.VisualBranchGateway:              graph.CompBranchGateway,
	flow.VisualParallelGateway:            graph.CompParallelGateway,
	flow.VisualConditionalParallelGateway: graph.CompConditionalParallelGateway,
	flow.VisualConvergeGateway:            graph.CompConvergeGateway,
}

// ComponentType returns the canvas component type for a location's visual
// type.
func ComponentType(visual string) (string, bool) {
	c, ok := nodeComp[visual]
	return c, ok
}

// Serialize converts a layout into canvas cells: lane groups first (in
// vertical mode), then one node cell per location, then one edge cell per
// line. g supplies node details and gateway pairing and may be nil.
//
// A location whose type has no component is an INTERNAL_ERROR, and an
// unknown mode is INVALID_MODE.
func Serialize(l graph.Layout, g *flow.Graph, mode Mode) ([]graph.Cell, error) {
	if mode == "" {
		mode = ModeHorizontal
	}
	if mode != ModeHorizontal && mode != ModeVertical {
		return nil, errors.New(errors.ErrCodeInvalidMode, "unknown canvas mode %q", mode)
	}

	var ln *lanes
	if mode == ModeVertical {
		ln = assignLanes(l, g)
	}

	out := make([]graph.Cell, 0, len(l.Locations)+len(l.Lines))
	if ln != nil {
		for _, id := range ln.order {
			out = append(out, groupCell(id, ln.parent[id]))
		}
	}
	for _, loc := range l.Locations {
		c, err := nodeCell(loc, g, ln)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	for _, line := range l.Lines {
		out = append(out, edgeCell(line))
	}
	return out, nil
}

func groupCell(id, parent string) graph.Cell {
	z := 1
	return graph.Cell{
		ID:     id,
		Shape:  graph.ShapeNode,
		Parent: parent,
		ZIndex: &z,
		Data:   graph.CellData{Type: graph.CompGroup, Parent: parent},
	}
}

func nodeCell(loc graph.Location, g *flow.Graph, ln *lanes) (graph.Cell, error) {
	comp, ok := nodeComp[loc.Type]
	if !ok {
		return graph.Cell{}, errors.New(errors.ErrCodeInternal, "node %q: no canvas component for type %q", loc.ID, loc.Type)
	}
	data := graph.CellData{Type: comp}
	if g != nil {
		if n := g.Node(loc.ID); n != nil {
			data.NodeType = n.Kind.String()
			data.Component = n.Component
		}
	}
	var parent string
	if ln != nil {
		parent = ln.node[loc.ID]
		data.Parent = parent
		data.SourceGatewayID = ln.gateway[loc.ID]
	}
	l := loc
	data.Location = &l
	return graph.Cell{
		ID:       loc.ID,
		Shape:    graph.ShapeNode,
		Parent:   parent,
		Position: &graph.Point{X: loc.X, Y: loc.Y},
		Size:     &graph.Size{Width: loc.Width, Height: loc.Height},
		Data:     data,
	}, nil
}

func edgeCell(line graph.Line) graph.Cell {
	z := 0
	return graph.Cell{
		ID:     line.ID,
		Shape:  graph.ShapeEdge,
		ZIndex: &z,
		Source: &graph.Terminal{Cell: line.Source.ID, Port: line.Source.Arrow.Port()},
		Target: &graph.Terminal{Cell: line.Target.ID, Port: line.Target.Arrow.Port()},
		Attrs: &graph.Attrs{Line: graph.LineAttrs{
			Stroke:       graph.EdgeStroke,
			StrokeWidth:  graph.EdgeStrokeWidth,
			TargetMarker: graph.Marker{Name: "block", Width: 6, Height: 8},
			Class:        line.ID,
		}},
		Router: &graph.Router{Name: graph.EdgeRouter, Args: graph.RouterArgs{Padding: 1}},
	}
}
