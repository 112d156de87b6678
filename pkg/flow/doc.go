// Package flow is the in-memory model of a pipeline tree: the workflow
// graph of start/end events, activities, gateways and the flows between
// them.
//
// # Node Kinds
//
// Every node carries a [NodeKind] resolved once at ingestion. Callers
// switch on the kind and never on which payload map a node came from:
//
//	switch n.Kind {
//	case flow.KindActivity, flow.KindSubProcess:
//	    // task, possibly with an embedded n.Pipeline
//	case flow.KindConvergeGateway:
//	    // join
//	}
//
// # Ingestion
//
// [Parse], [Decode] and [ReadFile] accept the pipeline-tree document in
// JSON or YAML. Id-keyed objects keep their key order, and legacy
// single-string incoming/outgoing fields are normalized by [StringList] so
// that Node.Incoming and Node.Outgoing are always slices.
//
// # Loops
//
// Flows that return to an earlier step are back edges of the depth-first
// walk from the start event. [Graph.IsBackEdge] answers in O(1) from an
// index built on first use.
package flow
