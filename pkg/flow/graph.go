package flow

import (
	"errors"
	"slices"
	"sync"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] and [Graph.AddFlow]
	// when the id is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same id already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrDuplicateFlowID is returned by [Graph.AddFlow] when a flow with the
	// same id already exists.
	ErrDuplicateFlowID = errors.New("duplicate flow ID")

	// ErrUnknownKind is returned by [Graph.AddNode] for KindUnknown nodes.
	ErrUnknownKind = errors.New("unknown node kind")

	// ErrNoStartEvent is returned when a graph has no start event.
	ErrNoStartEvent = errors.New("graph has no start event")

	// ErrNoEndEvent is returned when a graph has no end event.
	ErrNoEndEvent = errors.New("graph has no end event")

	// ErrMultipleEvents is returned when a second start or end event is added.
	ErrMultipleEvents = errors.New("graph already has this event")
)

// Graph is the normalized in-memory view of a pipeline tree: a node map, a
// flow map, and the start/end singletons. Declaration order of nodes and
// flows is retained and drives every ordering decision downstream.
//
// A Graph is built with [New] plus AddNode/AddFlow, or decoded with [Parse].
// Once built it is only read, and concurrent readers are safe. Mutating a
// graph while another goroutine reads it is not.
type Graph struct {
	nodes     map[string]*Node
	flows     map[string]*Flow
	nodeOrder []string
	flowOrder []string
	start     string
	end       string

	mu  sync.Mutex
	idx *index
}

// index holds adjacency derived from the flows. It is rebuilt lazily after
// any mutation.
type index struct {
	out       map[string][]*Flow
	in        map[string][]*Flow
	backEdges map[string]bool
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		flows: make(map[string]*Flow),
	}
}

// AddNode adds a node. Start and end events become the graph's singletons;
// adding a second one returns ErrMultipleEvents.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if n.Kind == KindUnknown {
		return ErrUnknownKind
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	switch n.Kind {
	case KindStartEvent:
		if g.start != "" {
			return ErrMultipleEvents
		}
		g.start = n.ID
	case KindEndEvent:
		if g.end != "" {
			return ErrMultipleEvents
		}
		g.end = n.ID
	}
	node := n
	node.Incoming = slices.Clone(n.Incoming)
	node.Outgoing = slices.Clone(n.Outgoing)
	g.nodes[node.ID] = &node
	g.nodeOrder = append(g.nodeOrder, node.ID)
	g.invalidate()
	return nil
}

// AddFlow adds a directed flow. The flow id is appended to the source's
// outgoing list and the target's incoming list when not already present,
// so payloads that list them and programmatic builders that don't end up
// identical. Endpoints may be missing; such flows are kept and ignored by
// the layout and tree algorithms.
func (g *Graph) AddFlow(f Flow) error {
	if f.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.flows[f.ID]; exists {
		return ErrDuplicateFlowID
	}
	flow := f
	g.flows[flow.ID] = &flow
	g.flowOrder = append(g.flowOrder, flow.ID)
	if src, ok := g.nodes[f.Source]; ok && !slices.Contains(src.Outgoing, f.ID) {
		src.Outgoing = append(src.Outgoing, f.ID)
	}
	if dst, ok := g.nodes[f.Target]; ok && !slices.Contains(dst.Incoming, f.ID) {
		dst.Incoming = append(dst.Incoming, f.ID)
	}
	g.invalidate()
	return nil
}

// Validate checks the minimal structure every algorithm relies on: a start
// and an end event. Deeper well-formedness is the upstream validator's job.
func (g *Graph) Validate() error {
	if g.start == "" {
		return ErrNoStartEvent
	}
	if g.end == "" {
		return ErrNoEndEvent
	}
	return nil
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node { return g.nodes[id] }

// Flow returns the flow with the given id, or nil.
func (g *Graph) Flow(id string) *Flow { return g.flows[id] }

// Start returns the start event, or nil.
func (g *Graph) Start() *Node { return g.nodes[g.start] }

// End returns the end event, or nil.
func (g *Graph) End() *Node { return g.nodes[g.end] }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// FlowCount returns the number of flows.
func (g *Graph) FlowCount() int { return len(g.flows) }

// Nodes returns all nodes in declaration order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, g.nodes[id])
	}
	return out
}

// Flows returns all flows in declaration order.
func (g *Graph) Flows() []*Flow {
	out := make([]*Flow, 0, len(g.flowOrder))
	for _, id := range g.flowOrder {
		out = append(out, g.flows[id])
	}
	return out
}

// OutgoingFlows returns the flows leaving id, ordered by the node's declared
// outgoing list. Flows that name id as source but are missing from that list
// follow in flow declaration order.
func (g *Graph) OutgoingFlows(id string) []*Flow { return g.index().out[id] }

// IncomingFlows returns the flows entering id in the node's declared order.
func (g *Graph) IncomingFlows(id string) []*Flow { return g.index().in[id] }

// Targets returns the target ids of the flows leaving id.
func (g *Graph) Targets(id string) []string {
	flows := g.OutgoingFlows(id)
	out := make([]string, len(flows))
	for i, f := range flows {
		out[i] = f.Target
	}
	return out
}

// IsBackEdge reports whether the flow closes a loop: its target is an
// ancestor of its source on the depth-first walk from the start event.
func (g *Graph) IsBackEdge(flowID string) bool { return g.index().backEdges[flowID] }

// BackEdges returns the ids of all back edges in flow declaration order.
func (g *Graph) BackEdges() []string {
	idx := g.index()
	var out []string
	for _, id := range g.flowOrder {
		if idx.backEdges[id] {
			out = append(out, id)
		}
	}
	return out
}

func (g *Graph) invalidate() {
	g.mu.Lock()
	g.idx = nil
	g.mu.Unlock()
}

func (g *Graph) index() *index {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx == nil {
		g.idx = g.buildIndex()
	}
	return g.idx
}

func (g *Graph) buildIndex() *index {
	idx := &index{
		out: make(map[string][]*Flow),
		in:  make(map[string][]*Flow),
	}
	for _, id := range g.nodeOrder {
		n := g.nodes[id]
		for _, fid := range n.Outgoing {
			if f, ok := g.flows[fid]; ok && f.Source == id {
				idx.out[id] = append(idx.out[id], f)
			}
		}
		for _, fid := range n.Incoming {
			if f, ok := g.flows[fid]; ok && f.Target == id {
				idx.in[id] = append(idx.in[id], f)
			}
		}
	}
	for _, fid := range g.flowOrder {
		f := g.flows[fid]
		if !containsFlow(idx.out[f.Source], f) {
			idx.out[f.Source] = append(idx.out[f.Source], f)
		}
		if !containsFlow(idx.in[f.Target], f) {
			idx.in[f.Target] = append(idx.in[f.Target], f)
		}
	}
	idx.backEdges = findBackEdges(g.start, idx.out)
	return idx
}

func containsFlow(flows []*Flow, f *Flow) bool {
	return slices.ContainsFunc(flows, func(x *Flow) bool { return x.ID == f.ID })
}
