// Package cells converts a computed layout into the cells a canvas renders.
//
// [Serialize] emits one node cell per location and one edge cell per line.
// Node cells carry the location plus the canvas component type; edge cells
// carry ports, stroke style and the manhattan router:
//
//	l := layout.Compute(g)
//	cs, err := cells.Serialize(l, g, cells.ModeHorizontal)
//
// # Vertical Lanes
//
// In [ModeVertical] nodes are additionally grouped into lanes. Lane group
// cells come first in the output. A split gateway opens a lane holding
// itself and one nested lane per branch; its converge gateway returns to
// the split's lane. The end event sits in the start event's lane. Group ids
// are name-based UUIDs derived from the start id and the lane's position,
// so equal input yields equal ids. [CheckForest] verifies that the groups
// form a single tree.
package cells
