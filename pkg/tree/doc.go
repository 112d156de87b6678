// Package tree builds the nested list view of a pipeline graph.
//
// The view starts with a synthetic start entry and ends with a synthetic
// end entry. Activities follow their predecessor in the same list; each
// split gateway owns one synthetic entry per branch, and the nodes of that
// branch nest beneath it:
//
//	Start
//	Parallel Gateway
//	  Parallel 1
//	    A
//	  Parallel 2
//	    B
//	  Converge Gateway
//	End
//
// A converge gateway is emitted once every forward incoming flow has
// arrived, as the last child of the split it closes. The walk then resumes
// in the list holding that split.
//
// Conditional branches that return to an already emitted node are marked
// as loops and carry the node's id in their callback data. Every pipeline
// node appears at most once, so cyclic graphs terminate in time
// proportional to their flow count.
//
// Sub-workflow activities embed the tree of their pipeline one level deep.
package tree
