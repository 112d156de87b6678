package layout

import (
	"cmp"
	"slices"

	"github.com/matzehuels/flowtower/pkg/flow"
)

// sortBranches orders the outgoing flows of a split by descending branch
// depth. The sort is stable, so equal depths keep declaration order. As a
// side effect it records each branch's visited list.
//
// A flow that loops back has depth 0 and an empty visited list.
func (s *state) sortBranches(edges []*flow.Flow) []*flow.Flow {
	depth := make(map[string]int, len(edges))
	for _, f := range edges {
		if s.g.IsBackEdge(f.ID) {
			depth[f.ID] = 0
			s.branchVisited[f.ID] = nil
			continue
		}
		d, visited := s.branchDepth(f.Target)
		depth[f.ID] = d
		s.branchVisited[f.ID] = visited
	}
	sorted := slices.Clone(edges)
	slices.SortStableFunc(sorted, func(a, b *flow.Flow) int {
		return cmp.Compare(depth[b.ID], depth[a.ID])
	})
	return sorted
}

// branchDepth measures the branch starting at from with a depth-first walk
// that shares one visited set, so a node reachable by several paths counts
// once. Loop flows are not followed. It returns the depth and the visited
// ids in visit order.
//
// The end event counts 0, a node without outgoing flows 1, and any other
// node 1 plus the deepest of its unvisited successors.
func (s *state) branchDepth(from string) (int, []string) {
	type frame struct {
		id   string
		next int
		best int
	}

	seen := make(map[string]bool)
	var visited []string
	var stack []frame

	// enter marks id and either pushes a frame for it or returns its leaf
	// depth.
	enter := func(id string) (int, bool) {
		if id == "" || seen[id] {
			return 0, false
		}
		seen[id] = true
		visited = append(visited, id)
		n := s.g.Node(id)
		if n == nil || n.Kind == flow.KindEndEvent {
			return 0, false
		}
		if len(s.g.OutgoingFlows(id)) == 0 {
			return 1, false
		}
		stack = append(stack, frame{id: id})
		return 0, true
	}

	if d, pushed := enter(from); !pushed {
		return d, visited
	}
	depth := 0
	for len(stack) > 0 {
		top := len(stack) - 1
		flows := s.g.OutgoingFlows(stack[top].id)
		if stack[top].next < len(flows) {
			f := flows[stack[top].next]
			stack[top].next++
			if s.g.IsBackEdge(f.ID) {
				continue
			}
			if d, pushed := enter(f.Target); !pushed {
				stack[top].best = max(stack[top].best, d)
			}
			continue
		}
		d := 1 + stack[top].best
		stack = stack[:top]
		if top == 0 {
			depth = d
		} else {
			stack[top-1].best = max(stack[top-1].best, d)
		}
	}
	return depth, visited
}

// findConvergenceNode returns the first id of the first non-empty branch
// list that every other non-empty list also contains.
func (s *state) findConvergenceNode(edges []*flow.Flow) string {
	var lists [][]string
	for _, f := range edges {
		if l := s.branchVisited[f.ID]; len(l) > 0 {
			lists = append(lists, l)
		}
	}
	if len(lists) == 0 {
		return ""
	}
	for _, id := range lists[0] {
		shared := true
		for _, l := range lists[1:] {
			if !slices.Contains(l, id) {
				shared = false
				break
			}
		}
		if shared {
			return id
		}
	}
	return ""
}

// adjust moves branches that collide with an earlier sibling. Branch i is
// compared against every node of branches 0..i-1; on collision its nodes
// are released and laid out again below the lowest earlier node in its
// horizontal band. Branch i gets at most i attempts.
func (s *state) adjust(edges []*flow.Flow) {
	var front []string
	inFront := make(map[string]bool)

	for i, f := range edges {
		if len(s.branchVisited[f.ID]) == 0 {
			continue
		}
		scope := edges
		if i > 0 {
			scope = edges[:i+1]
		}
		conv := s.findConvergenceNode(scope)
		nodes := s.branchNodes(f, conv, inFront)

		if i > 0 && len(front) > 0 && len(nodes) > 0 && nodes[0] == f.Target {
			for attempt := 0; attempt < i; attempt++ {
				y, hit := s.collision(nodes, front)
				if !hit {
					break
				}
				s.relayout(nodes, y)
				nodes = s.branchNodes(f, conv, inFront)
				if len(nodes) == 0 {
					break
				}
			}
		}
		for _, id := range nodes {
			if !inFront[id] {
				inFront[id] = true
				front = append(front, id)
			}
		}
	}
}

// branchNodes returns the placed nodes of a branch: everything reachable
// from its target along forward flows, up to but excluding the convergence
// node, including the nodes of nested branches. Nodes in exclude are
// neither returned nor walked through. The target comes first.
func (s *state) branchNodes(f *flow.Flow, conv string, exclude map[string]bool) []string {
	if s.g.IsBackEdge(f.ID) {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	stack := []string{f.Target}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == "" || id == conv || seen[id] || exclude[id] {
			continue
		}
		seen[id] = true
		if _, ok := s.placed(id); !ok {
			continue
		}
		out = append(out, id)
		flows := s.g.OutgoingFlows(id)
		for j := len(flows) - 1; j >= 0; j-- {
			if !s.g.IsBackEdge(flows[j].ID) {
				stack = append(stack, flows[j].Target)
			}
		}
	}
	return out
}

// collision reports whether any node of the branch overlaps a front node,
// and the y below which the branch must move: the lowest front node within
// the branch's horizontal band, plus the vertical spacing.
func (s *state) collision(nodes, front []string) (float64, bool) {
	minX, maxX := 0.0, 0.0
	for i, id := range nodes {
		loc := s.pos[id]
		if i == 0 || loc.X < minX {
			minX = loc.X
		}
		if i == 0 || loc.Right() > maxX {
			maxX = loc.Right()
		}
	}

	hit := false
	var bottom float64
	for _, fid := range front {
		fl, ok := s.placed(fid)
		if !ok {
			continue
		}
		if fl.X < maxX && minX < fl.Right() {
			bottom = max(bottom, fl.Bottom())
		}
		for _, id := range nodes {
			if s.pos[id].Overlaps(fl) {
				hit = true
			}
		}
	}
	return bottom + s.cfg.VerticalSpacing, hit
}

// relayout releases the branch nodes and walks the branch again from its
// first node at the new y, keeping its column.
func (s *state) relayout(nodes []string, y float64) {
	first := nodes[0]
	x := s.pos[first].X
	for _, id := range nodes {
		delete(s.visited, id)
		delete(s.pos, id)
		delete(s.pending, id)
		if id != first {
			delete(s.entered, id)
		}
	}
	s.place(first, x, y, "")
}
