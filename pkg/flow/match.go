package flow

// MatchingSplit returns the id of the split gateway closed by the converge
// gateway convergeID, or "" when none can be found.
//
// An explicit converge_gateway_id on a split gateway wins. Otherwise the
// split is found by walking backwards from the converge along non-loop
// flows, counting nested converge/split pairs so that inner branches are
// skipped.
func (g *Graph) MatchingSplit(convergeID string) string {
	cg := g.Node(convergeID)
	if cg == nil || cg.Kind != KindConvergeGateway {
		return ""
	}
	for _, id := range g.nodeOrder {
		if n := g.nodes[id]; n.Kind.IsSplit() && n.ConvergeGatewayID == convergeID {
			return id
		}
	}

	depth := 0
	seen := map[string]bool{convergeID: true}
	cur := g.forwardIncoming(convergeID)
	for cur != "" && !seen[cur] {
		seen[cur] = true
		n := g.Node(cur)
		if n == nil {
			return ""
		}
		switch {
		case n.Kind == KindConvergeGateway:
			depth++
		case n.Kind.IsSplit():
			if depth == 0 {
				return cur
			}
			depth--
		}
		cur = g.forwardIncoming(cur)
	}
	return ""
}

// MatchingJoin returns the id of the converge gateway that closes the split
// gateway splitID, or "" when none can be found. Each branch is walked
// forward in declared order until one reaches a balanced converge.
func (g *Graph) MatchingJoin(splitID string) string {
	sg := g.Node(splitID)
	if sg == nil || !sg.Kind.IsSplit() {
		return ""
	}
	if sg.ConvergeGatewayID != "" && g.Node(sg.ConvergeGatewayID) != nil {
		return sg.ConvergeGatewayID
	}
	for _, f := range g.OutgoingFlows(splitID) {
		if g.IsBackEdge(f.ID) {
			continue
		}
		if join := g.walkToJoin(f.Target, splitID); join != "" {
			return join
		}
	}
	return ""
}

func (g *Graph) walkToJoin(from, splitID string) string {
	depth := 0
	seen := map[string]bool{splitID: true}
	cur := from
	for cur != "" && !seen[cur] {
		seen[cur] = true
		n := g.Node(cur)
		if n == nil {
			return ""
		}
		switch {
		case n.Kind == KindConvergeGateway:
			if depth == 0 {
				return cur
			}
			depth--
		case n.Kind.IsSplit():
			depth++
		}
		cur = ""
		for _, f := range g.OutgoingFlows(n.ID) {
			if !g.IsBackEdge(f.ID) {
				cur = f.Target
				break
			}
		}
	}
	return ""
}

// forwardIncoming returns the source of the first incoming flow of id that
// is not a back edge.
func (g *Graph) forwardIncoming(id string) string {
	for _, f := range g.IncomingFlows(id) {
		if !g.IsBackEdge(f.ID) {
			return f.Source
		}
	}
	return ""
}
