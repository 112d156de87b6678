package layout

import (
	"github.com/matzehuels/flowtower/pkg/flow"
	"github.com/matzehuels/flowtower/pkg/graph"
)

// Compute lays out g and returns the placed nodes and port-assigned flows.
//
// The result is a pure function of g and the options: identical input
// yields identical output, and no state survives the call. Compute never
// fails; nodes the walk cannot reach (dangling branches, converge gateways
// whose branches never all arrive) are simply absent from Locations, and
// their flows keep empty arrows.
func Compute(g *flow.Graph, opts ...Option) graph.Layout {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if g == nil {
		return graph.Layout{Locations: []graph.Location{}, Lines: []graph.Line{}}
	}

	s := newState(g, cfg)
	if start := g.Start(); start != nil {
		s.place(start.ID, cfg.BaseX, cfg.BaseY, "")
	}
	return s.result()
}

type point struct{ x, y float64 }

// arrivals collects the positions proposed for a converge gateway by each
// incoming flow, in first-arrival order.
type arrivals struct {
	order []string
	at    map[string]point
}

// state is the working set of one Compute call.
type state struct {
	g   *flow.Graph
	cfg Config

	visited map[string]bool
	entered map[string]bool // nodes already entered through some flow
	pos     map[string]graph.Location
	order   []string
	listed  map[string]bool

	branchVisited map[string][]string // flow id -> ids reachable from its target, in visit order
	ports         map[string][2]graph.Arrow
	pending       map[string]*arrivals
}

func newState(g *flow.Graph, cfg Config) *state {
	return &state{
		g:             g,
		cfg:           cfg,
		visited:       make(map[string]bool),
		entered:       make(map[string]bool),
		pos:           make(map[string]graph.Location),
		listed:        make(map[string]bool),
		branchVisited: make(map[string][]string),
		ports:         make(map[string][2]graph.Arrow),
		pending:       make(map[string]*arrivals),
	}
}

// place positions node id at (x, y) and continues the walk through its
// outgoing flows. via is the flow the walk arrived on, or "" for the start
// event and re-layouts.
func (s *state) place(id string, x, y float64, via string) {
	n := s.g.Node(id)
	if n == nil || s.visited[id] {
		return
	}
	if n.Kind == flow.KindConvergeGateway && via != "" {
		p, ready := s.arrive(n, via, x, y)
		if !ready {
			return
		}
		x, y = p.x, p.y
	}
	s.record(n, x, y)

	if n.Kind == flow.KindEndEvent {
		return
	}
	edges := s.g.OutgoingFlows(id)
	switch len(edges) {
	case 0:
	case 1:
		s.single(n, edges[0])
	default:
		s.branches(n, edges)
	}
}

// arrive records the position proposed by flow via for a converge gateway
// and reports whether every forward incoming flow has now arrived. The
// gateway then sits right of the furthest arrival, on the first arrival's
// line.
func (s *state) arrive(n *flow.Node, via string, x, y float64) (point, bool) {
	if s.g.IsBackEdge(via) {
		return point{}, false
	}
	a := s.pending[n.ID]
	if a == nil {
		a = &arrivals{at: make(map[string]point)}
		s.pending[n.ID] = a
	}
	if _, ok := a.at[via]; !ok {
		a.order = append(a.order, via)
	}
	a.at[via] = point{x, y}

	for _, f := range s.g.IncomingFlows(n.ID) {
		if s.g.IsBackEdge(f.ID) || s.g.Node(f.Source) == nil {
			continue
		}
		if _, ok := a.at[f.ID]; !ok {
			return point{}, false
		}
	}
	p := a.at[a.order[0]]
	for _, fid := range a.order[1:] {
		p.x = max(p.x, a.at[fid].x)
	}
	return p, true
}

func (s *state) record(n *flow.Node, x, y float64) {
	w, h := n.Size()
	s.pos[n.ID] = graph.Location{
		ID:     n.ID,
		X:      x,
		Y:      y,
		Width:  w,
		Height: h,
		Type:   n.Kind.VisualType(),
		Name:   n.Name,
	}
	s.visited[n.ID] = true
	if !s.listed[n.ID] {
		s.listed[n.ID] = true
		s.order = append(s.order, n.ID)
	}
}

func (s *state) single(n *flow.Node, f *flow.Flow) {
	target := s.g.Node(f.Target)
	if target == nil {
		return
	}
	x, y := s.nextPosition(n, target, 0, nil)
	s.place(target.ID, x, y, f.ID)
	s.setPorts(f, 0)
}

func (s *state) branches(n *flow.Node, edges []*flow.Flow) {
	sorted := s.sortBranches(edges)
	for i, f := range sorted {
		target := s.g.Node(f.Target)
		if target == nil {
			continue
		}
		x, y := s.nextPosition(n, target, i, sorted)
		s.place(target.ID, x, y, f.ID)
		s.setPorts(f, i)
	}
	s.adjust(sorted)
}

// nextPosition proposes the position of the target of the index-th branch
// leaving src. Branch 0 continues on src's centre line; later branches
// stack below the previous one and align with its column.
func (s *state) nextPosition(src, target *flow.Node, index int, edges []*flow.Flow) (float64, float64) {
	sp := s.pos[src.ID]
	_, th := target.Size()

	gap := s.cfg.HorizontalSpacing
	if src.Kind.IsConditional() {
		gap = s.cfg.BranchOffset
	}
	x := sp.Right() + gap
	centred := sp.Y + sp.Height/2 - th/2
	if index == 0 {
		return x, centred
	}
	if prev, ok := s.placed(edges[index-1].Target); ok {
		x = max(x, prev.X)
	}
	for j := index - 1; j >= 0; j-- {
		if bottom, ok := s.branchBottom(edges[j]); ok {
			return x, bottom + s.cfg.VerticalSpacing
		}
	}
	return x, centred
}

// branchBottom returns the lowest edge of the placed nodes reachable from
// the branch.
func (s *state) branchBottom(f *flow.Flow) (float64, bool) {
	var bottom float64
	found := false
	for _, id := range s.branchVisited[f.ID] {
		if loc, ok := s.placed(id); ok {
			if !found || loc.Bottom() > bottom {
				bottom = loc.Bottom()
			}
			found = true
		}
	}
	return bottom, found
}

func (s *state) placed(id string) (graph.Location, bool) {
	if !s.visited[id] {
		return graph.Location{}, false
	}
	loc, ok := s.pos[id]
	return loc, ok
}

// setPorts assigns the flow's ports: the first branch leaves to the right
// and the others from the bottom; a node is entered from the left the first
// time and from the bottom afterwards.
func (s *state) setPorts(f *flow.Flow, index int) {
	src := graph.ArrowRight
	if index > 0 {
		src = graph.ArrowBottom
	}
	dst := graph.ArrowLeft
	if s.entered[f.Target] {
		dst = graph.ArrowBottom
	}
	s.entered[f.Target] = true
	s.ports[f.ID] = [2]graph.Arrow{src, dst}
}

func (s *state) result() graph.Layout {
	out := graph.Layout{
		Locations: make([]graph.Location, 0, len(s.order)),
		Lines:     make([]graph.Line, 0, s.g.FlowCount()),
	}
	for _, id := range s.order {
		if loc, ok := s.placed(id); ok {
			out.Locations = append(out.Locations, loc)
		}
	}
	for _, f := range s.g.Flows() {
		p := s.ports[f.ID]
		out.Lines = append(out.Lines, graph.Line{
			ID:     f.ID,
			Source: graph.Endpoint{ID: f.Source, Arrow: p[0]},
			Target: graph.Endpoint{ID: f.Target, Arrow: p[1]},
		})
	}
	return out
}
