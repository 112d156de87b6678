package cells

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/matzehuels/flowtower/pkg/flow"
	"github.com/matzehuels/flowtower/pkg/graph"
)

// laneNamespace seeds the name-based UUIDs of lane groups.
var laneNamespace = uuid.MustParse("6f1c2a4e-3b7d-4c59-9e1a-8d0f5b2c7a31")

// lanes is the vertical-mode grouping of a layout.
type lanes struct {
	order   []string          // group ids in creation order
	parent  map[string]string // group id -> parent group id, "" for the root
	node    map[string]string // node id -> group id
	gateway map[string]string // node id -> split gateway whose branch holds it
	seed    string
}

func (ln *lanes) group(path, parent string) string {
	id := "group_" + uuid.NewSHA1(laneNamespace, []byte(ln.seed+"#"+path)).String()
	if _, ok := ln.parent[id]; !ok {
		ln.order = append(ln.order, id)
		ln.parent[id] = parent
	}
	return id
}

// assignLanes walks the layout from its start location along its lines.
// Each node joins the current lane. A node with several targets gets a new
// lane of its own, nested in the current one, with one child lane per
// branch. A converge gateway moves into the lane of the split it closes and
// the walk continues there. The end event shares the start event's lane.
func assignLanes(l graph.Layout, g *flow.Graph) *lanes {
	ln := &lanes{
		parent:  make(map[string]string),
		node:    make(map[string]string),
		gateway: make(map[string]string),
	}
	if len(l.Locations) == 0 {
		return ln
	}

	types := make(map[string]string, len(l.Locations))
	start := l.Locations[0].ID
	for _, loc := range l.Locations {
		types[loc.ID] = loc.Type
	}
	for _, loc := range l.Locations {
		if loc.Type == flow.VisualStart {
			start = loc.ID
			break
		}
	}
	ln.seed = start
	targets := make(map[string][]string)
	for _, line := range l.Lines {
		targets[line.Source.ID] = append(targets[line.Source.ID], line.Target.ID)
	}

	type frame struct {
		id, lane, gateway, path string
	}
	root := ln.group("0", "")
	visited := make(map[string]bool)
	stack := []frame{{id: start, lane: root, path: "0"}}
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if fr.id == "" || visited[fr.id] {
			continue
		}
		if _, placed := types[fr.id]; !placed {
			continue
		}
		visited[fr.id] = true

		if types[fr.id] == flow.VisualEnd {
			ln.node[fr.id] = ln.node[start]
		} else {
			ln.node[fr.id] = fr.lane
			if fr.gateway != "" {
				ln.gateway[fr.id] = fr.gateway
			}
		}

		next := targets[fr.id]
		if len(next) > 1 {
			path := fr.path + "/" + fr.id
			own := ln.group(path, fr.lane)
			ln.node[fr.id] = own
			branches := make([]frame, len(next))
			for i, t := range next {
				branch := path + "/" + strconv.Itoa(i)
				branches[i] = frame{id: t, lane: ln.group(branch, own), gateway: fr.id, path: branch}
			}
			for i := len(branches) - 1; i >= 0; i-- {
				stack = append(stack, branches[i])
			}
			continue
		}

		lane := fr.lane
		if types[fr.id] == flow.VisualConvergeGateway && g != nil {
			if split := g.MatchingSplit(fr.id); split != "" {
				if sl, ok := ln.node[split]; ok {
					ln.node[fr.id] = sl
					lane = sl
				}
			}
		}
		if len(next) == 1 {
			stack = append(stack, frame{id: next[0], lane: lane, gateway: fr.gateway, path: fr.path})
		}
	}
	return ln
}
