package check

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/flowtower/pkg/errors"
	"github.com/matzehuels/flowtower/pkg/flow"
)

// Severity ranks a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Pass names the check that produced a finding.
type Pass string

const (
	PassSchema    Pass = "schema"
	PassCondition Pass = "condition"
	PassGraph     Pass = "graph"
)

// Finding is one reported problem.
type Finding struct {
	Severity Severity `json:"severity"`
	Pass     Pass     `json:"pass"`
	// Path locates the problem: a JSON pointer for schema findings, a node
	// or flow id otherwise.
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s [%s] %s: %s", f.Severity, f.Pass, f.Path, f.Message)
}

// Report collects the findings of every pass.
type Report struct {
	Findings []Finding `json:"findings"`
}

// Errors counts findings with error severity.
func (r Report) Errors() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			n++
		}
	}
	return n
}

// OK reports whether no pass found an error. Warnings do not count.
func (r Report) OK() bool { return r.Errors() == 0 }

// Payload runs every pass over a JSON or YAML pipeline tree. An error is
// returned only when the document cannot be read at all; a payload that
// fails to build a graph is reported as a graph finding.
func Payload(data []byte) (Report, error) {
	var doc any
	trimmed := bytes.TrimSpace(data)
	var err error
	if len(trimmed) > 0 && trimmed[0] == '{' {
		err = json.Unmarshal(trimmed, &doc)
	} else {
		err = yaml.Unmarshal(trimmed, &doc)
	}
	if err != nil {
		return Report{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read pipeline tree")
	}

	var r Report
	shape, err := Shape(stringKeys(doc))
	if err != nil {
		return Report{}, errors.Wrap(errors.ErrCodeInternal, err, "schema check")
	}
	r.Findings = append(r.Findings, shape...)

	g, err := flow.Parse(data)
	if err != nil {
		r.Findings = append(r.Findings, Finding{
			Severity: SeverityError,
			Pass:     PassGraph,
			Path:     "/",
			Message:  errors.UserMessage(err),
		})
		return r, nil
	}
	r.Findings = append(r.Findings, Graph(g)...)
	return r, nil
}

// stringKeys rewrites YAML mappings with non-string keys, such as numeric
// flow ids, into string-keyed maps so they encode as JSON objects. Keys
// are formatted the way the graph decoder reads them.
func stringKeys(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, e := range v {
			v[k] = stringKeys(e)
		}
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[fmt.Sprint(k)] = stringKeys(e)
		}
		return out
	case []any:
		for i, e := range v {
			v[i] = stringKeys(e)
		}
		return v
	default:
		return v
	}
}

// Graph runs the condition and structural passes over a decoded graph,
// including the graphs of sub-workflows.
func Graph(g *flow.Graph) []Finding {
	return graphFindings(g, "")
}

func graphFindings(g *flow.Graph, prefix string) []Finding {
	var out []Finding
	for _, f := range Conditions(g) {
		f.Path = prefix + f.Path
		out = append(out, f)
	}
	for _, f := range Structure(g) {
		f.Path = prefix + f.Path
		out = append(out, f)
	}
	for _, n := range g.Nodes() {
		if n.IsSubWorkflow() && n.Pipeline != nil {
			out = append(out, graphFindings(n.Pipeline, prefix+n.ID+"/")...)
		}
	}
	return out
}
