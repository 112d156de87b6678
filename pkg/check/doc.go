// Package check reports problems in a pipeline tree payload without
// rejecting it.
//
// The layout and tree builders accept malformed structure and degrade
// gracefully; check is the place that tells the author what was ignored.
// It runs three passes:
//
//   - a JSON Schema check of the payload shape
//   - a syntax check of every condition expression, with ${var}
//     placeholders rewritten to plain identifiers first
//   - structural lints on the decoded graph (unreachable nodes, splits
//     without a join, conditions without an expression)
//
// Usage:
//
//	report, err := check.Payload(data)
//	for _, f := range report.Findings {
//	    fmt.Println(f)
//	}
package check
