package graph

// =============================================================================
// TreeNode - Nested List View
// =============================================================================

// TreeNode is one entry of the nested list view of a pipeline.
//
// Real nodes carry their pipeline id and payload type. Synthetic entries
// wrap the branches of a gateway: ConditionType is set, Outgoing names the
// branch's flow, and for conditional branches that return to an earlier
// step IsLoop is set and CallbackData.ID names the step.
type TreeNode struct {
	ID       string      `json:"id,omitempty"`
	Type     string      `json:"type,omitempty"`
	Title    string      `json:"title"`
	Name     string      `json:"name"`
	Expanded bool        `json:"expanded"`
	Children []*TreeNode `json:"children"`

	IsGateway     bool          `json:"isGateway,omitempty"`
	ConditionType string        `json:"conditionType,omitempty"`
	Outgoing      string        `json:"outgoing,omitempty"`
	IsLoop        bool          `json:"isLoop,omitempty"`
	CallbackName  string        `json:"callbackName,omitempty"`
	CallbackData  *CallbackData `json:"callbackData,omitempty"`
	GatewayType   string        `json:"gatewayType,omitempty"`
}

// CallbackData describes a condition branch for the "jump to" affordance.
type CallbackData struct {
	ID        string `json:"id,omitempty"` // node the loop returns to
	Name      string `json:"name"`
	NodeID    string `json:"nodeId"` // gateway owning the condition
	OverlayID string `json:"overlayId"`
	Tag       string `json:"tag,omitempty"`
	Value     string `json:"value,omitempty"`
}

// IsSynthetic reports whether the entry wraps a gateway branch rather than
// a pipeline node.
func (n *TreeNode) IsSynthetic() bool { return n.ConditionType != "" }

// Walk calls fn for every entry in depth-first pre-order. Returning false
// from fn skips the entry's children.
func Walk(nodes []*TreeNode, fn func(n *TreeNode, depth int) bool) {
	walkTree(nodes, 0, fn)
}

func walkTree(nodes []*TreeNode, depth int, fn func(*TreeNode, int) bool) {
	for _, n := range nodes {
		if fn(n, depth) {
			walkTree(n.Children, depth+1, fn)
		}
	}
}
