package check

import (
	"fmt"

	"github.com/matzehuels/flowtower/pkg/errors"
	"github.com/matzehuels/flowtower/pkg/flow"
)

// Structure reports graph shapes the layout and tree builders tolerate but
// silently drop or misplace.
func Structure(g *flow.Graph) []Finding {
	var out []Finding
	warn := func(path, format string, args ...any) {
		out = append(out, Finding{
			Severity: SeverityWarning,
			Pass:     PassGraph,
			Path:     path,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	for _, n := range g.Nodes() {
		if err := errors.ValidateNodeID(n.ID); err != nil {
			warn(n.ID, "%s", errors.UserMessage(err))
		}
	}
	for _, f := range g.Flows() {
		if err := errors.ValidateNodeID(f.ID); err != nil {
			warn(f.ID, "%s", errors.UserMessage(err))
		}
		if g.Node(f.Source) == nil {
			warn(f.ID, "source %q is not a node", f.Source)
		}
		if g.Node(f.Target) == nil {
			warn(f.ID, "target %q is not a node", f.Target)
		}
	}

	reached := reachable(g)
	for _, n := range g.Nodes() {
		if !reached[n.ID] {
			warn(n.ID, "not reachable from the start event")
			continue
		}
		if n.Kind.IsSplit() && len(g.OutgoingFlows(n.ID)) > 1 && g.MatchingJoin(n.ID) == "" {
			warn(n.ID, "%s has no converge gateway", n.Kind)
		}
		if n.Kind == flow.KindConvergeGateway && g.MatchingSplit(n.ID) == "" {
			warn(n.ID, "converge gateway has no matching split")
		}
		if n.ConvergeGatewayID != "" {
			if c := g.Node(n.ConvergeGatewayID); c == nil || c.Kind != flow.KindConvergeGateway {
				warn(n.ID, "converge_gateway_id %q is not a converge gateway", n.ConvergeGatewayID)
			}
		}
	}
	return out
}

// reachable returns the ids reachable from the start event.
func reachable(g *flow.Graph) map[string]bool {
	seen := make(map[string]bool)
	start := g.Start()
	if start == nil {
		return seen
	}
	stack := []string{start.ID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] || g.Node(id) == nil {
			continue
		}
		seen[id] = true
		for _, f := range g.OutgoingFlows(id) {
			stack = append(stack, f.Target)
		}
	}
	return seen
}
