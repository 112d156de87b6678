// Package flowtest builds pipeline graphs for tests.
//
// Nodes are declared first and flows afterwards, in call order, so the
// resulting graph's declaration order matches the order of the builder
// calls:
//
//	g := flowtest.New().
//		Start("start").Task("A").End("end").
//		Chain("start", "A", "end").
//		MustBuild()
package flowtest

import (
	"fmt"

	"github.com/matzehuels/flowtower/pkg/flow"
)

// Builder accumulates nodes and flows. Errors surface from Build.
type Builder struct {
	nodes []flow.Node
	index map[string]int
	flows []flow.Flow
	next  int
	err   error
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{index: make(map[string]int)}
}

func (b *Builder) node(n flow.Node) *Builder {
	if _, dup := b.index[n.ID]; dup && b.err == nil {
		b.err = fmt.Errorf("flowtest: duplicate node %q", n.ID)
	}
	b.index[n.ID] = len(b.nodes)
	b.nodes = append(b.nodes, n)
	return b
}

// Start declares the start event.
func (b *Builder) Start(id string) *Builder {
	return b.node(flow.Node{ID: id, Kind: flow.KindStartEvent})
}

// End declares the end event.
func (b *Builder) End(id string) *Builder {
	return b.node(flow.Node{ID: id, Kind: flow.KindEndEvent})
}

// Task declares a plain activity named after its id.
func (b *Builder) Task(id string) *Builder {
	return b.node(flow.Node{ID: id, Kind: flow.KindActivity, Name: id})
}

// Sub declares a sub-workflow activity embedding pipeline.
func (b *Builder) Sub(id string, pipeline *flow.Graph) *Builder {
	return b.node(flow.Node{
		ID:        id,
		Kind:      flow.KindSubProcess,
		Name:      id,
		Component: flow.SubprocessComponent,
		Pipeline:  pipeline,
	})
}

// Parallel declares a parallel gateway.
func (b *Builder) Parallel(id string) *Builder {
	return b.node(flow.Node{ID: id, Kind: flow.KindParallelGateway})
}

// Exclusive declares an exclusive (branch) gateway.
func (b *Builder) Exclusive(id string) *Builder {
	return b.node(flow.Node{ID: id, Kind: flow.KindExclusiveGateway})
}

// ConditionalParallel declares a conditional parallel gateway.
func (b *Builder) ConditionalParallel(id string) *Builder {
	return b.node(flow.Node{ID: id, Kind: flow.KindConditionalParallelGateway})
}

// Converge declares a converge gateway.
func (b *Builder) Converge(id string) *Builder {
	return b.node(flow.Node{ID: id, Kind: flow.KindConvergeGateway})
}

// Pair records an explicit converge gateway for a split gateway.
func (b *Builder) Pair(splitID, convergeID string) *Builder {
	if i, ok := b.index[splitID]; ok {
		b.nodes[i].ConvergeGatewayID = convergeID
	} else if b.err == nil {
		b.err = fmt.Errorf("flowtest: pair: unknown gateway %q", splitID)
	}
	return b
}

// Link adds a flow with an explicit id.
func (b *Builder) Link(id, source, target string) *Builder {
	b.flows = append(b.flows, flow.Flow{ID: id, Source: source, Target: target})
	return b
}

// Edge adds a flow with a generated id ("f1", "f2", ...).
func (b *Builder) Edge(source, target string) *Builder {
	b.next++
	return b.Link(fmt.Sprintf("f%d", b.next), source, target)
}

// Chain links consecutive ids with generated flows.
func (b *Builder) Chain(ids ...string) *Builder {
	for i := 1; i < len(ids); i++ {
		b.Edge(ids[i-1], ids[i])
	}
	return b
}

// When adds a conditional flow leaving a gateway and records its condition.
func (b *Builder) When(id, gateway, target, name, evaluate string) *Builder {
	b.Link(id, gateway, target)
	if i, ok := b.index[gateway]; ok {
		b.nodes[i].Conditions = append(b.nodes[i].Conditions, flow.Condition{
			FlowID:   id,
			Name:     name,
			Evaluate: evaluate,
		})
	} else if b.err == nil {
		b.err = fmt.Errorf("flowtest: when: unknown gateway %q", gateway)
	}
	return b
}

// Otherwise adds the default flow of a gateway.
func (b *Builder) Otherwise(id, gateway, target, name string) *Builder {
	b.flows = append(b.flows, flow.Flow{ID: id, Source: gateway, Target: target, IsDefault: true})
	if i, ok := b.index[gateway]; ok {
		b.nodes[i].DefaultCondition = &flow.Condition{FlowID: id, Name: name}
	} else if b.err == nil {
		b.err = fmt.Errorf("flowtest: otherwise: unknown gateway %q", gateway)
	}
	return b
}

// Build returns the graph.
func (b *Builder) Build() (*flow.Graph, error) {
	if b.err != nil {
		return nil, b.err
	}
	g := flow.New()
	for _, n := range b.nodes {
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("flowtest: node %q: %w", n.ID, err)
		}
	}
	for _, f := range b.flows {
		if err := g.AddFlow(f); err != nil {
			return nil, fmt.Errorf("flowtest: flow %q: %w", f.ID, err)
		}
	}
	return g, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *flow.Graph {
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}
