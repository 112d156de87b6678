package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/flowtower/pkg/graph"
)

const diamondYAML = `
start_event: {id: s, outgoing: f1}
end_event: {id: e, incoming: f6}
activities:
  a: {id: a, name: Alpha, type: ServiceActivity, incoming: f2, outgoing: f4}
  b: {id: b, name: Beta, type: ServiceActivity, incoming: f3, outgoing: f5}
gateways:
  pg: {id: pg, type: ParallelGateway, incoming: f1, outgoing: [f2, f3]}
  cg: {id: cg, type: ConvergeGateway, incoming: [f4, f5], outgoing: f6}
flows:
  f1: {id: f1, source: s, target: pg}
  f2: {id: f2, source: pg, target: a}
  f3: {id: f3, source: pg, target: b}
  f4: {id: f4, source: a, target: cg}
  f5: {id: f5, source: b, target: cg}
  f6: {id: f6, source: cg, target: e}
`

// testEnv isolates config and cache directories and writes the diamond
// pipeline into a temp dir.
func testEnv(t *testing.T) (dir, input string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	input = filepath.Join(dir, "order.yaml")
	if err := os.WriteFile(input, []byte(diamondYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, input
}

// execute runs the root command with args and returns what it wrote to
// the CLI's stdout.
func execute(t *testing.T, c *CLI, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c.Stdout = &out
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func newTestCLI() *CLI {
	c := New(io.Discard, LogInfo)
	c.Status = io.Discard
	return c
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
}

func TestLayoutCommand(t *testing.T) {
	dir, input := testEnv(t)

	if _, err := execute(t, newTestCLI(), "layout", input, "--horizontal-spacing", "60"); err != nil {
		t.Fatal(err)
	}
	var l graph.Layout
	readJSON(t, filepath.Join(dir, "order.layout.json"), &l)
	if len(l.Locations) != 6 || len(l.Lines) != 6 {
		t.Fatalf("got %d locations and %d lines, want 6 and 6", len(l.Locations), len(l.Lines))
	}
	s, _ := l.Location("s")
	pg, _ := l.Location("pg")
	if gap := pg.X - s.Right(); gap != 60 {
		t.Errorf("gap after start = %v, want 60", gap)
	}
}

func TestLayoutStdio(t *testing.T) {
	testEnv(t)
	c := newTestCLI()
	c.Stdin = strings.NewReader(diamondYAML)

	out, err := execute(t, c, "layout", "-", "--no-cache")
	if err != nil {
		t.Fatal(err)
	}
	l, err := graph.UnmarshalLayout([]byte(out))
	if err != nil {
		t.Fatalf("stdout is not a layout: %v\n%s", err, out)
	}
	if len(l.Locations) != 6 {
		t.Errorf("got %d locations, want 6", len(l.Locations))
	}
}

func TestCellsCommand(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		groups bool
	}{
		{"horizontal", nil, false},
		{"vertical", []string{"--mode", "vertical"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, input := testEnv(t)
			args := append([]string{"cells", input, "-o", "-"}, tt.args...)
			out, err := execute(t, newTestCLI(), args...)
			if err != nil {
				t.Fatal(err)
			}
			cells, err := graph.UnmarshalCells([]byte(out))
			if err != nil {
				t.Fatal(err)
			}
			groups := 0
			for i := range cells {
				if cells[i].IsGroup() {
					groups++
				}
			}
			if (groups > 0) != tt.groups {
				t.Errorf("got %d groups, want groups = %v", groups, tt.groups)
			}
		})
	}
}

func TestCellsCommandBadMode(t *testing.T) {
	_, input := testEnv(t)
	if _, err := execute(t, newTestCLI(), "cells", input, "--mode", "diagonal"); err == nil {
		t.Fatal("expected an error for an unknown mode")
	}
}

func TestTreeCommand(t *testing.T) {
	_, input := testEnv(t)
	out, err := execute(t, newTestCLI(), "tree", input, "-o", "-", "--start-label", "Begin")
	if err != nil {
		t.Fatal(err)
	}
	tree, err := graph.UnmarshalTree([]byte(out))
	if err != nil {
		t.Fatal(err)
	}
	if len(tree) != 3 {
		t.Fatalf("top level has %d entries, want 3", len(tree))
	}
	if tree[0].Title != "Begin" {
		t.Errorf("start title = %q, want Begin", tree[0].Title)
	}
	if tree[1].ID != "pg" || len(tree[1].Children) != 3 {
		t.Errorf("want pg with two branches and its converge gateway, got %q with %d children",
			tree[1].ID, len(tree[1].Children))
	}
}

func TestRenderCommandDOT(t *testing.T) {
	dir, input := testEnv(t)
	if _, err := execute(t, newTestCLI(), "render", input, "-f", "dot"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "order.dot"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"pg" -> "a"`) {
		t.Errorf("dot preview missing edge:\n%s", data)
	}
}

func TestRenderCommandBadFormat(t *testing.T) {
	_, input := testEnv(t)
	if _, err := execute(t, newTestCLI(), "render", input, "-f", "gif"); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestBuildCommand(t *testing.T) {
	dir, input := testEnv(t)
	out := filepath.Join(dir, "dist")
	if _, err := execute(t, newTestCLI(), "build", input, "-o", out, "-f", "dot", "--mode", "vertical"); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"order.layout.json", "order.cells.json", "order.tree.json", "order.dot"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	var cells []graph.Cell
	readJSON(t, filepath.Join(out, "order.cells.json"), &cells)
	groups := 0
	for i := range cells {
		if cells[i].IsGroup() {
			groups++
		}
	}
	if groups == 0 {
		t.Error("--mode vertical should produce group cells")
	}
	if _, err := os.Stat(filepath.Join(out, "order.svg")); err == nil {
		t.Error("only the requested formats should be drawn")
	}

	if _, err := execute(t, newTestCLI(), "build", "-"); err == nil {
		t.Error("build from stdin should be rejected")
	}
}

func TestCheckCommand(t *testing.T) {
	dir, input := testEnv(t)

	out, err := execute(t, newTestCLI(), "check", input, "--json")
	if err != nil {
		t.Fatalf("clean pipeline failed the check: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"findings": []`) {
		t.Errorf("want an empty findings list, got %s", out)
	}

	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(broken, []byte("flows: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, newTestCLI(), "check", broken, "--json"); err == nil {
		t.Error("a pipeline without events should fail the check")
	}
}

func TestConfigFile(t *testing.T) {
	dir, input := testEnv(t)
	cfg := filepath.Join(dir, "flowtower.toml")
	conf := "[render]\nmode = \"vertical\"\n\n[tree]\nstart = \"Go\"\n"
	if err := os.WriteFile(cfg, []byte(conf), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, newTestCLI(), "--config", cfg, "tree", input, "-o", "-")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"title": "Go"`) {
		t.Errorf("config label not applied:\n%s", out)
	}

	out, err = execute(t, newTestCLI(), "--config", cfg, "cells", input, "-o", "-")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"group"`) {
		t.Error("config mode not applied: no lane groups in output")
	}

	// Flags override the file.
	out, err = execute(t, newTestCLI(), "--config", cfg, "cells", input, "-o", "-", "--mode", "horizontal")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, `"group"`) {
		t.Error("--mode should override the config file")
	}
}

func TestConfigFileErrors(t *testing.T) {
	dir, input := testEnv(t)
	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[render]\nmode = \"diagonal\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, newTestCLI(), "--config", bad, "layout", input); err == nil {
		t.Error("invalid config should fail")
	}
	if _, err := execute(t, newTestCLI(), "--config", filepath.Join(dir, "missing.toml"), "layout", input); err == nil {
		t.Error("an explicit missing config should fail")
	}
}

func TestCacheCommands(t *testing.T) {
	dir, input := testEnv(t)
	cacheDir := filepath.Join(dir, "cache", appName)

	out, err := execute(t, newTestCLI(), "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != cacheDir {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), cacheDir)
	}

	if _, err := execute(t, newTestCLI(), "tree", input); err != nil {
		t.Fatal(err)
	}
	entries, _ := filepath.Glob(filepath.Join(cacheDir, "*", "*.json"))
	if len(entries) == 0 {
		t.Fatal("tree run left no cache entries")
	}

	var status bytes.Buffer
	c := newTestCLI()
	c.Status = &status
	if _, err := execute(t, c, "cache", "info"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(status.String(), fmt.Sprintf("%d entries", len(entries))) {
		t.Errorf("cache info = %q, want %d entries", status.String(), len(entries))
	}

	if _, err := execute(t, newTestCLI(), "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	entries, _ = filepath.Glob(filepath.Join(cacheDir, "*", "*.json"))
	if len(entries) != 0 {
		t.Errorf("%d entries left after clear", len(entries))
	}
}

func TestMissingInput(t *testing.T) {
	dir, _ := testEnv(t)
	if _, err := execute(t, newTestCLI(), "layout", filepath.Join(dir, "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing input file")
	}
}
