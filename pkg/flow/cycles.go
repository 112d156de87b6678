package flow

// findBackEdges returns the set of flow ids that close a loop when the graph
// is walked depth-first from start in declared outgoing order.
//
// The walk uses white/gray/black coloring: a flow whose target is gray (on
// the current DFS path) is a back edge. The DFS is iterative with an explicit
// frame stack, so arbitrarily deep pipelines cannot exhaust the call stack.
//
// Nodes unreachable from start are never colored and contribute no back
// edges. Time complexity is O(V + E).
func findBackEdges(start string, out map[string][]*Flow) map[string]bool {
	const (
		white = iota
		gray
		black
	)

	back := make(map[string]bool)
	if start == "" {
		return back
	}

	type frame struct {
		node string
		next int
	}

	color := map[string]int{start: gray}
	stack := []frame{{node: start}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		flows := out[top.node]
		if top.next >= len(flows) {
			color[top.node] = black
			stack = stack[:len(stack)-1]
			continue
		}
		f := flows[top.next]
		top.next++
		switch color[f.Target] {
		case white:
			color[f.Target] = gray
			stack = append(stack, frame{node: f.Target})
		case gray:
			back[f.ID] = true
		}
	}
	return back
}
