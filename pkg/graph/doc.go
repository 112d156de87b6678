// Package graph provides the serialization types for pipeline layouts,
// canvas cells and list trees.
//
// This package defines the canonical wire format for flowtower's output,
// used for JSON files, API responses and caching.
//
// # Architecture
//
// The package sits at the serialization boundary between the algorithms
// and external consumers:
//
//   - pkg/flow.Graph: Internal pipeline model (input)
//   - pkg/layout: Computes a [Layout]
//   - pkg/cells: Turns a [Layout] into []Cell
//   - pkg/tree: Builds []*TreeNode
//
// # Core Types
//
//   - [Layout]: Placed nodes ([Location]) and port-assigned flows ([Line])
//   - [Cell]: Group, node or edge cell for the canvas library
//   - [TreeNode]: Nested list entry, possibly a synthetic branch wrapper
//
// # Layout Serialization
//
//	{
//	  "locations": [{"id": "start", "x": 40, "y": 134, "width": 34, "height": 34, "type": "startpoint"}],
//	  "lines": [{"id": "f1", "source": {"id": "start", "arrow": "Right"}, "target": {"id": "a", "arrow": "Left"}}]
//	}
//
// Common operations:
//
//	data, _ := graph.MarshalLayout(l)            // Layout → []byte
//	l, _ := graph.UnmarshalLayout(data)          // []byte → Layout
//	graph.WriteLayoutFile(l, "layout.json")      // Layout → File
//	graph.WriteJSON(os.Stdout, cells)            // any → io.Writer
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
