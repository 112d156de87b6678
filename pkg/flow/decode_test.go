package flow_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/flowtower/pkg/errors"
	"github.com/matzehuels/flowtower/pkg/flow"
)

const branchJSON = `{
  "start_event": {"id": "start", "type": "EmptyStartEvent", "incoming": "", "outgoing": "f1"},
  "end_event": {"id": "end", "type": "EmptyEndEvent", "incoming": ["f5", "f6"], "outgoing": ""},
  "activities": {
    "task_b": {"id": "task_b", "name": "Second", "type": "ServiceActivity", "incoming": ["f3"], "outgoing": "f5",
               "component": {"code": "sleep_timer"}},
    "task_a": {"id": "task_a", "name": "First", "type": "ServiceActivity", "incoming": "f2", "outgoing": ["f6"],
               "component": {"code": "job_execute"}}
  },
  "gateways": {
    "gw": {"id": "gw", "type": "ExclusiveGateway", "incoming": "f1", "outgoing": ["f3", "f2"],
           "conditions": {
             "f2": {"name": "yes", "evaluate": "${x} == 1", "tag": "branch_gw_task_a"},
             "f3": {"name": "no", "evaluate": "${x} != 1", "tag": "branch_gw_task_b"}
           }}
  },
  "flows": {
    "f1": {"id": "f1", "source": "start", "target": "gw", "is_default": false},
    "f2": {"id": "f2", "source": "gw", "target": "task_a", "is_default": false},
    "f3": {"id": "f3", "source": "gw", "target": "task_b", "is_default": false},
    "f5": {"id": "f5", "source": "task_b", "target": "end", "is_default": false},
    "f6": {"id": "f6", "source": "task_a", "target": "end", "is_default": false}
  }
}`

func TestParseJSON(t *testing.T) {
	g, err := flow.Parse([]byte(branchJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var ids []string
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	if want := []string{"start", "task_b", "task_a", "gw", "end"}; !slices.Equal(ids, want) {
		t.Errorf("node order = %v, want %v", ids, want)
	}

	if got := g.Start().Outgoing; !slices.Equal(got, []string{"f1"}) {
		t.Errorf("start outgoing = %v", got)
	}
	if got := g.Start().Incoming; len(got) != 0 {
		t.Errorf("start incoming = %v, want empty", got)
	}
	if got := g.Node("task_a").Incoming; !slices.Equal(got, []string{"f2"}) {
		t.Errorf("task_a incoming = %v", got)
	}

	gw := g.Node("gw")
	if gw.Kind != flow.KindExclusiveGateway {
		t.Fatalf("gw kind = %v", gw.Kind)
	}
	var conds []string
	for _, c := range gw.Conditions {
		conds = append(conds, c.FlowID)
	}
	if want := []string{"f3", "f2"}; !slices.Equal(conds, want) {
		t.Errorf("conditions = %v, want outgoing order %v", conds, want)
	}
	if c := gw.Condition("f2"); c == nil || c.Evaluate != "${x} == 1" || c.Tag != "branch_gw_task_a" {
		t.Errorf("Condition(f2) = %+v", c)
	}
	if g.Node("task_b").Component != "sleep_timer" {
		t.Errorf("component = %q", g.Node("task_b").Component)
	}
}

const subprocessYAML = `
start_event: {id: s, outgoing: f1}
end_event: {id: e, incoming: f2}
activities:
  sub:
    id: sub
    name: Nested
    type: ServiceActivity
    incoming: f1
    outgoing: f2
    component:
      code: subprocess_plugin
      data:
        subprocess:
          value:
            pipeline:
              start_event: {id: inner_s, outgoing: g1}
              end_event: {id: inner_e, incoming: [g2]}
              activities:
                inner_t: {id: inner_t, name: Inner, type: ServiceActivity, incoming: g1, outgoing: g2}
              flows:
                g1: {id: g1, source: inner_s, target: inner_t}
                g2: {id: g2, source: inner_t, target: inner_e}
flows:
  f1: {id: f1, source: s, target: sub}
  f2: {id: f2, source: sub, target: e}
`

func TestParseYAMLSubprocess(t *testing.T) {
	g, err := flow.Parse([]byte(subprocessYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sub := g.Node("sub")
	if !sub.IsSubWorkflow() {
		t.Fatalf("sub kind = %v, want SubProcess", sub.Kind)
	}
	if sub.Pipeline == nil {
		t.Fatal("sub.Pipeline = nil")
	}
	if got := sub.Pipeline.Start().ID; got != "inner_s" {
		t.Errorf("inner start = %q", got)
	}
	if sub.Pipeline.Node("inner_t") == nil {
		t.Error("inner task missing")
	}
	if g.Node("inner_t") != nil {
		t.Error("inner task leaked into the outer graph")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code errors.Code
	}{
		{"not a document", `{"flows": [`, errors.ErrCodeInvalidFormat},
		{"missing start", `{"end_event": {"id": "e"}}`, errors.ErrCodeInvalidGraph},
		{"missing end", `{"start_event": {"id": "s"}}`, errors.ErrCodeInvalidGraph},
		{"unknown gateway", `{"start_event": {"id": "s"}, "end_event": {"id": "e"},
			"gateways": {"g": {"id": "g", "type": "InclusiveGateway"}}}`, errors.ErrCodeInvalidGraph},
		{"duplicate id", `{"start_event": {"id": "s"}, "end_event": {"id": "s"}}`, errors.ErrCodeInvalidGraph},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := flow.Parse([]byte(tt.data))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestParseDanglingFlow(t *testing.T) {
	data := `{"start_event": {"id": "s", "outgoing": "f1"}, "end_event": {"id": "e"},
		"flows": {"f1": {"id": "f1", "source": "s", "target": "ghost"}}}`
	g, err := flow.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g.Flow("f1") == nil {
		t.Error("dangling flow dropped")
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.json")
	if err := os.WriteFile(path, []byte(branchJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err := flow.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if g.NodeCount() != 5 || g.FlowCount() != 5 {
		t.Errorf("counts = %d nodes, %d flows", g.NodeCount(), g.FlowCount())
	}

	_, err = flow.ReadFile(filepath.Join(dir, "missing.yaml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]flow.Format{
		"a.json":     flow.FormatJSON,
		"a.YAML":     flow.FormatYAML,
		"a.yml":      flow.FormatYAML,
		"a.pipeline": flow.FormatAuto,
	}
	for path, want := range tests {
		if got := flow.FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}
