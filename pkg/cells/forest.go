package cells

import (
	"github.com/matzehuels/flowtower/pkg/errors"
	"github.com/matzehuels/flowtower/pkg/graph"
)

// CheckForest verifies the lane structure of serialized cells: group ids
// are unique, every parent reference names a group, exactly one group is a
// root, and following parents from any group ends at that root.
//
// Cells without groups pass trivially.
func CheckForest(cells []graph.Cell) error {
	parent := make(map[string]string)
	var groups []string
	for _, c := range cells {
		if !c.IsGroup() {
			continue
		}
		if _, dup := parent[c.ID]; dup {
			return errors.New(errors.ErrCodeInternal, "duplicate group %q", c.ID)
		}
		parent[c.ID] = c.Parent
		groups = append(groups, c.ID)
	}
	if len(groups) == 0 {
		return nil
	}

	root := ""
	for _, id := range groups {
		p := parent[id]
		if p == "" {
			if root != "" {
				return errors.New(errors.ErrCodeInternal, "groups %q and %q are both roots", root, id)
			}
			root = id
			continue
		}
		if _, ok := parent[p]; !ok {
			return errors.New(errors.ErrCodeInternal, "group %q has unknown parent %q", id, p)
		}
	}
	if root == "" {
		return errors.New(errors.ErrCodeInternal, "no root group")
	}

	for _, id := range groups {
		steps := 0
		for cur := id; cur != root; cur = parent[cur] {
			if steps++; steps > len(groups) {
				return errors.New(errors.ErrCodeInternal, "group %q is part of a parent cycle", id)
			}
		}
	}

	for _, c := range cells {
		if c.IsGroup() || c.Parent == "" {
			continue
		}
		if _, ok := parent[c.Parent]; !ok {
			return errors.New(errors.ErrCodeInternal, "cell %q has unknown parent %q", c.ID, c.Parent)
		}
	}
	return nil
}
