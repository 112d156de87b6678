package tree

import (
	"fmt"

	"github.com/matzehuels/flowtower/pkg/flow"
	"github.com/matzehuels/flowtower/pkg/graph"
)

// walker holds the state of one Build call.
type walker struct {
	g      *flow.Graph
	labels Labels
	expand bool

	emitted map[string]bool // node ids already placed in the tree
	arrived map[string]bool // outgoing flow ids of emitted nodes
	closed  map[string]bool // condition flows whose branch came out empty
	entries map[string]*graph.TreeNode
	owner   map[string]*[]*graph.TreeNode // split id -> list holding its entry
	root    *[]*graph.TreeNode
	stats   Stats
}

func newWalker(g *flow.Graph, labels Labels, expand bool) *walker {
	return &walker{
		g:       g,
		labels:  labels,
		expand:  expand,
		emitted: make(map[string]bool),
		arrived: make(map[string]bool),
		closed:  make(map[string]bool),
		entries: make(map[string]*graph.TreeNode),
		owner:   make(map[string]*[]*graph.TreeNode),
	}
}

func (w *walker) build() []*graph.TreeNode {
	if w.g == nil || w.g.Start() == nil {
		return []*graph.TreeNode{}
	}
	start := w.g.Start()
	out := []*graph.TreeNode{{
		ID:       start.ID,
		Type:     start.Kind.String(),
		Title:    w.labels.Start,
		Name:     w.labels.Start,
		Children: []*graph.TreeNode{},
	}}
	w.root = &out
	w.emit(start)
	for _, f := range w.g.OutgoingFlows(start.ID) {
		w.walk(f.ID, w.root)
	}

	endID := ""
	if end := w.g.End(); end != nil {
		endID = end.ID
	}
	out = append(out, &graph.TreeNode{
		ID:       endID,
		Type:     flow.TypeEndEvent,
		Title:    w.labels.End,
		Name:     w.labels.End,
		Children: []*graph.TreeNode{},
	})
	return out
}

func (w *walker) emit(n *flow.Node) {
	w.emitted[n.ID] = true
	for _, fid := range n.Outgoing {
		w.arrived[fid] = true
	}
	for _, f := range w.g.OutgoingFlows(n.ID) {
		w.arrived[f.ID] = true
	}
	if n.Kind != flow.KindStartEvent && n.Kind != flow.KindEndEvent {
		w.stats.Nodes++
	}
}

// walk follows flow fid and appends what it reaches to out.
func (w *walker) walk(fid string, out *[]*graph.TreeNode) {
	w.stats.Steps++
	f := w.g.Flow(fid)
	if f == nil {
		return
	}
	n := w.g.Node(f.Target)
	if n == nil || w.emitted[n.ID] {
		return
	}

	switch {
	case n.Kind == flow.KindEndEvent:
		w.emit(n)
	case n.Kind.IsActivity():
		w.activity(n, out)
	case n.Kind.IsSplit():
		w.split(n, out)
	case n.Kind == flow.KindConvergeGateway:
		w.converge(n)
	}
}

func (w *walker) activity(n *flow.Node, out *[]*graph.TreeNode) {
	w.emit(n)
	entry := &graph.TreeNode{
		ID:       n.ID,
		Type:     n.Kind.String(),
		Title:    n.Name,
		Name:     n.Name,
		Expanded: !n.IsSubWorkflow(),
		Children: []*graph.TreeNode{},
	}
	if n.IsSubWorkflow() && w.expand && n.Pipeline != nil {
		sub := newWalker(n.Pipeline, w.labels, false)
		entry.Children = sub.build()
	}
	*out = append(*out, entry)
	for _, f := range w.g.OutgoingFlows(n.ID) {
		w.walk(f.ID, out)
	}
}

func (w *walker) gatewayEntry(n *flow.Node) *graph.TreeNode {
	label := w.labels.gateway(n.Kind)
	return &graph.TreeNode{
		ID:       n.ID,
		Type:     n.Kind.String(),
		Title:    label,
		Name:     label,
		Children: []*graph.TreeNode{},
	}
}

// split emits a splitting gateway, one synthetic entry per branch, and the
// branches themselves. Flows without a condition on a conditional gateway
// continue in out.
func (w *walker) split(n *flow.Node, out *[]*graph.TreeNode) {
	w.emit(n)
	entry := w.gatewayEntry(n)
	*out = append(*out, entry)
	w.entries[n.ID] = entry
	w.owner[n.ID] = out

	if n.Kind == flow.KindParallelGateway {
		for i, f := range w.g.OutgoingFlows(n.ID) {
			branch := &graph.TreeNode{
				ID:            fmt.Sprintf("%s-%s", n.ID, f.ID),
				Title:         w.labels.Parallel,
				Name:          fmt.Sprintf("%s %d", w.labels.Parallel, i+1),
				IsGateway:     true,
				ConditionType: graph.ConditionTypeParallel,
				Outgoing:      f.ID,
				Children:      []*graph.TreeNode{},
			}
			entry.Children = append(entry.Children, branch)
			w.walk(f.ID, &branch.Children)
		}
		w.settle(n.ID)
		return
	}

	type pending struct {
		entry *graph.TreeNode
		loop  bool
	}
	var branches []pending
	covered := make(map[string]bool)
	add := func(c flow.Condition, kind string) {
		covered[c.FlowID] = true
		b := &graph.TreeNode{
			ID:            fmt.Sprintf("%s-%s", c.Name, c.FlowID),
			Title:         c.Name,
			Name:          fmt.Sprintf("%s-%s", c.Name, c.FlowID),
			IsGateway:     true,
			ConditionType: kind,
			Outgoing:      c.FlowID,
			Children:      []*graph.TreeNode{},
		}
		// Default branches are never loops; one that returns to an emitted
		// node simply ends there.
		var direct bool
		if kind == graph.ConditionTypeCondition {
			b.CallbackData = &graph.CallbackData{
				Name:      c.Name,
				NodeID:    n.ID,
				OverlayID: "condition" + c.FlowID,
				Tag:       c.Tag,
				Value:     c.Evaluate,
			}
			var loop string
			loop, direct = w.classify(c.FlowID)
			if loop != "" {
				b.IsLoop = true
				b.CallbackData.ID = loop
				if t := w.g.Node(loop); t != nil {
					b.CallbackName = t.Name
				}
				w.stats.Loops++
			}
		}
		entry.Children = append(entry.Children, b)
		branches = append(branches, pending{entry: b, loop: direct})
	}
	if n.DefaultCondition != nil {
		add(*n.DefaultCondition, graph.ConditionTypeDefault)
	}
	for _, c := range n.Conditions {
		add(c, graph.ConditionTypeCondition)
	}

	for _, b := range branches {
		if !b.loop {
			w.walk(b.entry.Outgoing, &b.entry.Children)
		}
		if len(b.entry.Children) == 0 {
			w.closed[b.entry.Outgoing] = true
		}
	}
	for _, f := range w.g.OutgoingFlows(n.ID) {
		if !covered[f.ID] {
			w.walk(f.ID, out)
		}
	}
	w.settle(n.ID)
}

// classify decides whether the condition on flow fid loops back. It returns
// the id of the re-entered node, and whether the loop is direct, meaning
// the flow itself targets an emitted node and must not be walked.
//
// A forward flow into a converge gateway never counts as a loop.
func (w *walker) classify(fid string) (string, bool) {
	f := w.g.Flow(fid)
	if f == nil {
		return "", false
	}
	t := w.g.Node(f.Target)
	if t == nil {
		return "", false
	}
	if w.emitted[t.ID] {
		if t.Kind == flow.KindConvergeGateway && !w.g.IsBackEdge(fid) {
			return "", true
		}
		return t.ID, true
	}
	return w.findLoop(t.ID), false
}

// findLoop walks forward from id without emitting anything and returns the
// first already-emitted node it reaches before the branch closes. Nested
// splits and their converge gateways are balanced; the converge that closes
// the branch ends the search on that path.
func (w *walker) findLoop(id string) string {
	type frame struct {
		id    string
		depth int
	}
	seen := make(map[string]bool)
	stack := []frame{{id: id}}
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[fr.id] {
			continue
		}
		seen[fr.id] = true
		n := w.g.Node(fr.id)
		if n == nil || n.Kind == flow.KindEndEvent {
			continue
		}
		depth := fr.depth
		switch {
		case n.Kind == flow.KindConvergeGateway:
			if depth == 0 {
				continue
			}
			depth--
		case n.Kind.IsSplit():
			depth++
		}
		flows := w.g.OutgoingFlows(n.ID)
		for j := len(flows) - 1; j >= 0; j-- {
			next := flows[j].Target
			if t := w.g.Node(next); t != nil && w.emitted[next] {
				if t.Kind == flow.KindConvergeGateway && !w.g.IsBackEdge(flows[j].ID) {
					continue
				}
				return next
			}
			stack = append(stack, frame{id: next, depth: depth})
		}
	}
	return ""
}

// settle emits the join paired with a split if its last branch closed
// without reaching it.
func (w *walker) settle(splitID string) {
	join := w.g.MatchingJoin(splitID)
	if join == "" || w.emitted[join] {
		return
	}
	if n := w.g.Node(join); n != nil && n.Kind == flow.KindConvergeGateway {
		w.converge(n)
	}
}

// ready reports whether every forward incoming flow of a converge gateway
// has arrived or was closed.
func (w *walker) ready(n *flow.Node) bool {
	for _, f := range w.g.IncomingFlows(n.ID) {
		if w.g.IsBackEdge(f.ID) || w.g.Node(f.Source) == nil {
			continue
		}
		if !w.arrived[f.ID] && !w.closed[f.ID] {
			return false
		}
	}
	return true
}

// converge emits a converge gateway once all its branches are in. The entry
// is attached under its matching split, or at the top level when there is
// none, and the walk continues in the list holding that split.
func (w *walker) converge(n *flow.Node) {
	if w.emitted[n.ID] || !w.ready(n) {
		return
	}
	w.emit(n)
	entry := w.gatewayEntry(n)
	entry.GatewayType = graph.GatewayTypeConverge

	out := w.root
	if parent, ok := w.entries[w.g.MatchingSplit(n.ID)]; ok {
		parent.Children = append(parent.Children, entry)
		out = w.owner[parent.ID]
	} else {
		*w.root = append(*w.root, entry)
	}
	for _, f := range w.g.OutgoingFlows(n.ID) {
		w.walk(f.ID, out)
	}
}
