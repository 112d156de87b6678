package graph

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Arrow names the side of a node an edge attaches to.
type Arrow string

// Port sides.
const (
	ArrowNone   Arrow = ""
	ArrowLeft   Arrow = "Left"
	ArrowRight  Arrow = "Right"
	ArrowTop    Arrow = "Top"
	ArrowBottom Arrow = "Bottom"
)

// Port returns the canvas port name for the arrow, e.g. "port_left".
func (a Arrow) Port() string {
	switch a {
	case ArrowLeft:
		return "port_left"
	case ArrowRight:
		return "port_right"
	case ArrowTop:
		return "port_top"
	case ArrowBottom:
		return "port_bottom"
	}
	return ""
}

// Cell shapes.
const (
	ShapeNode = "custom-node"
	ShapeEdge = "edge"
)

// Component types carried in node cell data. The canvas picks its node
// component by these names.
const (
	CompStart                      = "start"
	CompEnd                        = "end"
	CompTask                       = "task"
	CompSubflow                    = "subflow"
	CompBranchGateway              = "branch-gateway"
	CompParallelGateway            = "parallel-gateway"
	CompConditionalParallelGateway = "conditional-parallel-gateway"
	CompConvergeGateway            = "converge-gateway"
	CompGroup                      = "group"
)

// Condition types of synthetic tree entries.
const (
	ConditionTypeCondition = "condition"
	ConditionTypeDefault   = "default"
	ConditionTypeParallel  = "parallel"
)

// GatewayTypeConverge marks a converge gateway attached under its split.
const GatewayTypeConverge = "converge"

// Edge styling shared by every edge cell.
const (
	EdgeStroke      = "#a9adb6"
	EdgeStrokeWidth = 2
	EdgeRouter      = "manhattan"
)
