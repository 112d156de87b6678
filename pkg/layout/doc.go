// Package layout computes canvas positions for a pipeline graph.
//
// # Overview
//
// [Compute] walks the graph depth-first from the start event. Each node is
// placed once, to the right of its predecessor and centred on its line.
// Split gateways fan their branches out vertically:
//
//	start ── PG ──┬── A ──┬── CG ── end
//	              └── B ──┘
//
// The first branch continues the gateway's line; each later branch is
// stacked below the previous branch's lowest node and aligned with its
// column. Branches are ordered deepest first, keeping declaration order for
// equal depths.
//
// # Converge Gateways
//
// A converge gateway waits until every forward incoming flow has arrived,
// then sits right of the furthest arrival on the first arrival's line.
// Converge gateways whose branches never all arrive stay unplaced.
//
// # Collision Correction
//
// After a split's branches are placed, each branch is checked against the
// nodes of the branches above it. A colliding branch is released and laid
// out again below the lowest node in its horizontal band, at most once per
// earlier sibling.
//
// # Ports
//
// Lines carry the side each flow attaches to: the first branch leaves on
// the right and later branches from the bottom, and a node is entered on
// the left the first time and from the bottom afterwards.
//
// # Loops
//
// Flows that return to an earlier step never move a placed node; the walk
// simply stops at visited nodes. Loop flows are ignored when measuring
// branches and when waiting on converge gateways.
//
// # Configuration
//
// Spacing constants live in [Config] and are set with options:
//
//	l := layout.Compute(g, layout.WithSpacing(60, 40), layout.WithOrigin(0, 0))
package layout
