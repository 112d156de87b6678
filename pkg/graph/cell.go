package graph

// =============================================================================
// Cell - Renderable Canvas Element
// =============================================================================

// Cell is one element handed to the canvas: a group (lane), a node or an
// edge. It is a discriminated union keyed by Shape and, for custom-node
// cells, by Data.Type:
//
//	group: Shape "custom-node", Data.Type "group", ZIndex 1
//	node:  Shape "custom-node", Position, Size, Data carries the location
//	edge:  Shape "edge", Source, Target, Attrs, Router, ZIndex 0
type Cell struct {
	ID       string    `json:"id"`
	Shape    string    `json:"shape"`
	Parent   string    `json:"parent,omitempty"`
	ZIndex   *int      `json:"zIndex,omitempty"`
	Position *Point    `json:"position,omitempty"`
	Size     *Size     `json:"size,omitempty"`
	Source   *Terminal `json:"source,omitempty"`
	Target   *Terminal `json:"target,omitempty"`
	Attrs    *Attrs    `json:"attrs,omitempty"`
	Router   *Router   `json:"router,omitempty"`
	Data     CellData  `json:"data"`
}

// IsGroup reports whether the cell is a lane group.
func (c *Cell) IsGroup() bool { return c.Shape == ShapeNode && c.Data.Type == CompGroup }

// IsNode reports whether the cell is a pipeline node.
func (c *Cell) IsNode() bool { return c.Shape == ShapeNode && c.Data.Type != CompGroup }

// IsEdge reports whether the cell is a flow.
func (c *Cell) IsEdge() bool { return c.Shape == ShapeEdge }

// CellData is the payload the canvas component receives. For node cells the
// embedded Location contributes id, position, size and name, while Type is
// replaced by the component type.
type CellData struct {
	Type            string `json:"type,omitempty"`
	Parent          string `json:"parent,omitempty"`
	SourceGatewayID string `json:"sourceGatewayId,omitempty"`
	NodeType        string `json:"nodeType,omitempty"` // payload type, e.g. "ServiceActivity"
	Component       string `json:"component,omitempty"`
	*Location
}

// Point is a canvas position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a canvas size.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Terminal is an edge end: the cell id and its port.
type Terminal struct {
	Cell string `json:"cell"`
	Port string `json:"port"`
}

// Attrs holds edge styling.
type Attrs struct {
	Line LineAttrs `json:"line"`
}

// LineAttrs is the stroke style of an edge.
type LineAttrs struct {
	Stroke       string `json:"stroke"`
	StrokeWidth  int    `json:"strokeWidth"`
	TargetMarker Marker `json:"targetMarker"`
	Class        string `json:"class"`
}

// Marker is an arrow head.
type Marker struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Router selects the canvas edge router.
type Router struct {
	Name string     `json:"name"`
	Args RouterArgs `json:"args"`
}

// RouterArgs configures the router.
type RouterArgs struct {
	Padding int `json:"padding"`
}
