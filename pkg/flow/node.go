package flow

// NodeKind discriminates the node variants of a pipeline graph. It is
// resolved once when the graph is built and never re-derived from the
// payload afterwards.
type NodeKind int

const (
	// KindUnknown is the zero value; no node of a valid graph carries it.
	KindUnknown NodeKind = iota
	KindStartEvent
	KindEndEvent
	// KindActivity is a plain task node.
	KindActivity
	// KindSubProcess is an activity that references an embedded sub-workflow.
	KindSubProcess
	// KindParallelGateway fans out unconditionally to every outgoing flow.
	KindParallelGateway
	// KindExclusiveGateway takes exactly one conditional branch at runtime.
	KindExclusiveGateway
	// KindConditionalParallelGateway takes any subset of its conditional branches.
	KindConditionalParallelGateway
	// KindConvergeGateway joins branches back into a single outgoing flow.
	KindConvergeGateway
)

// Kinds lists every valid node kind in declaration order.
var Kinds = []NodeKind{
	KindStartEvent,
	KindEndEvent,
	KindActivity,
	KindSubProcess,
	KindParallelGateway,
	KindExclusiveGateway,
	KindConditionalParallelGateway,
	KindConvergeGateway,
}

// Payload type names as they appear in pipeline-tree documents.
const (
	TypeStartEvent                 = "EmptyStartEvent"
	TypeEndEvent                   = "EmptyEndEvent"
	TypeServiceActivity            = "ServiceActivity"
	TypeSubProcess                 = "SubProcess"
	TypeParallelGateway            = "ParallelGateway"
	TypeExclusiveGateway           = "ExclusiveGateway"
	TypeConditionalParallelGateway = "ConditionalParallelGateway"
	TypeConvergeGateway            = "ConvergeGateway"
)

// SubprocessComponent is the component code that turns a service activity
// into a sub-workflow reference.
const SubprocessComponent = "subprocess_plugin"

var kindTypes = map[NodeKind]string{
	KindStartEvent:                 TypeStartEvent,
	KindEndEvent:                   TypeEndEvent,
	KindActivity:                   TypeServiceActivity,
	KindSubProcess:                 TypeSubProcess,
	KindParallelGateway:            TypeParallelGateway,
	KindExclusiveGateway:           TypeExclusiveGateway,
	KindConditionalParallelGateway: TypeConditionalParallelGateway,
	KindConvergeGateway:            TypeConvergeGateway,
}

// String returns the payload type name of the kind.
func (k NodeKind) String() string {
	if s, ok := kindTypes[k]; ok {
		return s
	}
	return "Unknown"
}

// IsGateway reports whether the kind is one of the four gateway variants.
func (k NodeKind) IsGateway() bool {
	switch k {
	case KindParallelGateway, KindExclusiveGateway, KindConditionalParallelGateway, KindConvergeGateway:
		return true
	}
	return false
}

// IsSplit reports whether the kind fans out into branches.
func (k NodeKind) IsSplit() bool {
	switch k {
	case KindParallelGateway, KindExclusiveGateway, KindConditionalParallelGateway:
		return true
	}
	return false
}

// IsConditional reports whether branches of the kind carry conditions.
func (k NodeKind) IsConditional() bool {
	return k == KindExclusiveGateway || k == KindConditionalParallelGateway
}

// IsActivity reports whether the kind is a task or sub-workflow reference.
func (k NodeKind) IsActivity() bool {
	return k == KindActivity || k == KindSubProcess
}

// Node sizes in canvas units.
const (
	ActivityWidth  = 154
	ActivityHeight = 54
	EventSize      = 34
)

// Size returns the fixed canvas size of a node of this kind.
func (k NodeKind) Size() (width, height float64) {
	if k.IsActivity() {
		return ActivityWidth, ActivityHeight
	}
	return EventSize, EventSize
}

// Visual types used by the canvas for each node kind.
const (
	VisualStart                      = "startpoint"
	VisualEnd                        = "endpoint"
	VisualTask                       = "tasknode"
	VisualSubflow                    = "subflow"
	VisualBranchGateway              = "branchgateway"
	VisualParallelGateway            = "parallelgateway"
	VisualConditionalParallelGateway = "conditionalparallelgateway"
	VisualConvergeGateway            = "convergegateway"
)

var visualTypes = map[NodeKind]string{
	KindStartEvent:                 VisualStart,
	KindEndEvent:                   VisualEnd,
	KindActivity:                   VisualTask,
	KindSubProcess:                 VisualSubflow,
	KindParallelGateway:            VisualParallelGateway,
	KindExclusiveGateway:           VisualBranchGateway,
	KindConditionalParallelGateway: VisualConditionalParallelGateway,
	KindConvergeGateway:            VisualConvergeGateway,
}

// VisualType returns the canvas node type for the kind, or "" for KindUnknown.
func (k NodeKind) VisualType() string {
	return visualTypes[k]
}

// Condition is a labelled boolean expression attached to one outgoing flow
// of an exclusive or conditional-parallel gateway.
type Condition struct {
	FlowID   string `json:"flow_id"`
	Name     string `json:"name"`
	Evaluate string `json:"evaluate,omitempty"`
	Tag      string `json:"tag,omitempty"`
}

// Node is a vertex of a pipeline graph. Incoming and Outgoing always hold
// flow ids in declaration order, regardless of how the payload spelled them.
type Node struct {
	ID       string
	Kind     NodeKind
	Name     string
	Incoming []string
	Outgoing []string

	// Conditions are ordered by the gateway's declared outgoing flows.
	Conditions []Condition
	// DefaultCondition is taken when no explicit condition matches.
	DefaultCondition *Condition
	// ConvergeGatewayID optionally names the join paired with a split gateway.
	ConvergeGatewayID string

	// Component is the plugin code of a service activity.
	Component string
	// Pipeline is the embedded graph of a sub-workflow reference.
	Pipeline *Graph
}

// Size returns the canvas size of the node.
func (n *Node) Size() (width, height float64) { return n.Kind.Size() }

// IsSubWorkflow reports whether the node references an embedded sub-workflow.
func (n *Node) IsSubWorkflow() bool { return n.Kind == KindSubProcess }

// Condition returns the condition guarding flowID, including the default
// condition, or nil when the flow is unconditional.
func (n *Node) Condition(flowID string) *Condition {
	if n.DefaultCondition != nil && n.DefaultCondition.FlowID == flowID {
		return n.DefaultCondition
	}
	for i := range n.Conditions {
		if n.Conditions[i].FlowID == flowID {
			return &n.Conditions[i]
		}
	}
	return nil
}

// Flow is a directed edge between two nodes.
type Flow struct {
	ID        string
	Source    string
	Target    string
	IsDefault bool
}
