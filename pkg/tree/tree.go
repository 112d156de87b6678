package tree

import (
	"github.com/matzehuels/flowtower/pkg/errors"
	"github.com/matzehuels/flowtower/pkg/flow"
	"github.com/matzehuels/flowtower/pkg/graph"
)

// Labels are the display titles of entries that have no name of their own.
type Labels struct {
	Start    string                   `toml:"start"`
	End      string                   `toml:"end"`
	Parallel string                   `toml:"parallel"`
	Gateways map[flow.NodeKind]string `toml:"-"`
}

// DefaultLabels returns the English labels.
func DefaultLabels() Labels {
	return Labels{
		Start:    "Start",
		End:      "End",
		Parallel: "Parallel",
		Gateways: map[flow.NodeKind]string{
			flow.KindParallelGateway:            "Parallel Gateway",
			flow.KindExclusiveGateway:           "Branch Gateway",
			flow.KindConditionalParallelGateway: "Conditional Parallel Gateway",
			flow.KindConvergeGateway:            "Converge Gateway",
		},
	}
}

func (l Labels) gateway(k flow.NodeKind) string {
	if s, ok := l.Gateways[k]; ok && s != "" {
		return s
	}
	return DefaultLabels().Gateways[k]
}

// GatewayLabels converts labels keyed by payload type name, such as
// "ParallelGateway", into labels keyed by kind. Names of non-gateway types
// are rejected.
func GatewayLabels(byType map[string]string) (map[flow.NodeKind]string, error) {
	if len(byType) == 0 {
		return nil, nil
	}
	out := make(map[flow.NodeKind]string, len(byType))
	for name, label := range byType {
		kind := flow.KindUnknown
		for k := range DefaultLabels().Gateways {
			if k.String() == name {
				kind = k
			}
		}
		if kind == flow.KindUnknown {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown gateway type %q", name)
		}
		out[kind] = label
	}
	return out, nil
}

// Option configures a Builder.
type Option func(*Builder)

// WithLabels overrides display labels. Empty fields keep their defaults.
func WithLabels(l Labels) Option {
	return func(b *Builder) {
		if l.Start != "" {
			b.labels.Start = l.Start
		}
		if l.End != "" {
			b.labels.End = l.End
		}
		if l.Parallel != "" {
			b.labels.Parallel = l.Parallel
		}
		for k, v := range l.Gateways {
			b.labels.Gateways[k] = v
		}
	}
}

// WithoutSubprocesses leaves sub-workflow activities collapsed with no
// children.
func WithoutSubprocesses() Option {
	return func(b *Builder) { b.expand = false }
}

// Stats describes the work done by the last Build call.
type Stats struct {
	// Steps counts flow traversals, including the ones stopped by the
	// emitted-node check.
	Steps int
	// Nodes counts pipeline nodes emitted into the tree.
	Nodes int
	// Loops counts condition entries marked as loops.
	Loops int
}

// Builder turns pipeline graphs into list trees. A Builder may be reused,
// but not concurrently: Stats reflects the most recent Build.
type Builder struct {
	labels Labels
	expand bool
	stats  Stats
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{labels: DefaultLabels(), expand: true}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the tree of g: a synthetic start entry, the reachable nodes
// nested under the gateways that own them, and a synthetic end entry.
// Every pipeline node appears at most once. A nil graph or a graph without
// a start event yields an empty tree.
func (b *Builder) Build(g *flow.Graph) []*graph.TreeNode {
	w := newWalker(g, b.labels, b.expand)
	out := w.build()
	b.stats = w.stats
	return out
}

// Stats returns the counters of the most recent Build.
func (b *Builder) Stats() Stats { return b.stats }

// Build is shorthand for NewBuilder(opts...).Build(g).
func Build(g *flow.Graph, opts ...Option) []*graph.TreeNode {
	return NewBuilder(opts...).Build(g)
}
