package layout

import (
	"reflect"
	"slices"
	"strconv"
	"testing"

	"github.com/matzehuels/flowtower/pkg/flow"
	"github.com/matzehuels/flowtower/pkg/flow/flowtest"
	"github.com/matzehuels/flowtower/pkg/graph"
)

func linear() *flow.Graph {
	return flowtest.New().Start("start").Task("A").End("end").
		Chain("start", "A", "end").MustBuild()
}

func diamond() *flow.Graph {
	return flowtest.New().
		Start("start").Parallel("PG").Task("A").Task("B").Converge("CG").End("end").
		Chain("start", "PG").
		Chain("PG", "A", "CG").
		Chain("PG", "B", "CG").
		Chain("CG", "end").
		MustBuild()
}

func nested() *flow.Graph {
	return flowtest.New().
		Start("s").Parallel("P1").Task("A").Parallel("P2").Task("B").Task("C").
		Converge("C2").Task("D").Converge("C1").End("e").
		Chain("s", "P1").
		Chain("P1", "A", "P2").Chain("P2", "B", "C2").Chain("P2", "C", "C2").Chain("C2", "C1").
		Chain("P1", "D", "C1").
		Chain("C1", "e").
		MustBuild()
}

func retry() *flow.Graph {
	return flowtest.New().
		Start("s").Task("T").Exclusive("X").Converge("C").End("e").
		Link("f1", "s", "T").Link("f2", "T", "X").
		When("ok", "X", "C", "ok", "${ok} == True").
		When("again", "X", "T", "retry", "${ok} == False").
		Link("f3", "C", "e").
		MustBuild()
}

func threeWay() *flow.Graph {
	return flowtest.New().
		Start("s").Parallel("P").Task("A").Task("A2").Task("B").Converge("C").End("e").
		Chain("s", "P").
		Link("direct", "P", "C").
		Chain("P", "B", "C").
		Chain("P", "A", "A2", "C").
		Chain("C", "e").
		MustBuild()
}

func locations(l graph.Layout) map[string]graph.Location {
	m := make(map[string]graph.Location, len(l.Locations))
	for _, loc := range l.Locations {
		m[loc.ID] = loc
	}
	return m
}

func centre(l graph.Location) float64 { return l.Y + l.Height/2 }

func TestComputeLinear(t *testing.T) {
	l := Compute(linear())
	if len(l.Locations) != 3 || len(l.Lines) != 2 {
		t.Fatalf("got %d locations, %d lines; want 3, 2", len(l.Locations), len(l.Lines))
	}
	for i := 1; i < len(l.Locations); i++ {
		prev, cur := l.Locations[i-1], l.Locations[i]
		if cur.X <= prev.X {
			t.Errorf("%s.X = %v, not right of %s.X = %v", cur.ID, cur.X, prev.ID, prev.X)
		}
		if centre(cur) != centre(prev) {
			t.Errorf("%s centre = %v, want %v", cur.ID, centre(cur), centre(prev))
		}
	}

	want := []graph.Location{
		{ID: "start", X: 40, Y: 134, Width: 34, Height: 34, Type: flow.VisualStart},
		{ID: "A", X: 120, Y: 124, Width: 154, Height: 54, Type: flow.VisualTask, Name: "A"},
		{ID: "end", X: 320, Y: 134, Width: 34, Height: 34, Type: flow.VisualEnd},
	}
	if !reflect.DeepEqual(l.Locations, want) {
		t.Errorf("Locations = %+v\nwant %+v", l.Locations, want)
	}
	for _, ln := range l.Lines {
		if ln.Source.Arrow != graph.ArrowRight || ln.Target.Arrow != graph.ArrowLeft {
			t.Errorf("line %s ports = %s/%s, want Right/Left", ln.ID, ln.Source.Arrow, ln.Target.Arrow)
		}
	}
}

func TestComputeParallelDiamond(t *testing.T) {
	l := Compute(diamond())
	m := locations(l)

	want := map[string][2]float64{
		"start": {40, 134},
		"PG":    {120, 134},
		"A":     {200, 124},
		"B":     {200, 224},
		"CG":    {400, 134},
		"end":   {480, 134},
	}
	for id, xy := range want {
		loc, ok := m[id]
		if !ok {
			t.Errorf("%s not placed", id)
			continue
		}
		if loc.X != xy[0] || loc.Y != xy[1] {
			t.Errorf("%s at (%v,%v), want (%v,%v)", id, loc.X, loc.Y, xy[0], xy[1])
		}
	}

	if m["A"].Y == m["B"].Y || m["A"].X != m["B"].X {
		t.Errorf("A and B not stacked in one column: %+v %+v", m["A"], m["B"])
	}
	if m["CG"].X <= m["A"].Right() || m["CG"].X <= m["B"].Right() {
		t.Errorf("CG at x=%v not right of both branches", m["CG"].X)
	}

	ports := map[string][2]graph.Arrow{}
	for _, ln := range l.Lines {
		ports[ln.Source.ID+">"+ln.Target.ID] = [2]graph.Arrow{ln.Source.Arrow, ln.Target.Arrow}
	}
	checks := map[string][2]graph.Arrow{
		"PG>A":   {graph.ArrowRight, graph.ArrowLeft},
		"PG>B":   {graph.ArrowBottom, graph.ArrowLeft},
		"A>CG":   {graph.ArrowRight, graph.ArrowLeft},
		"B>CG":   {graph.ArrowRight, graph.ArrowBottom},
		"CG>end": {graph.ArrowRight, graph.ArrowLeft},
	}
	for edge, want := range checks {
		if got := ports[edge]; got != want {
			t.Errorf("%s ports = %v, want %v", edge, got, want)
		}
	}
}

func TestComputeDeterministic(t *testing.T) {
	for name, build := range map[string]func() *flow.Graph{
		"linear": linear, "diamond": diamond, "nested": nested, "retry": retry, "threeWay": threeWay,
	} {
		t.Run(name, func(t *testing.T) {
			g := build()
			first := Compute(g)
			for i := 0; i < 5; i++ {
				if got := Compute(g); !reflect.DeepEqual(got, first) {
					t.Fatalf("run %d differs:\n%+v\n%+v", i, got, first)
				}
			}
			if got := Compute(build()); !reflect.DeepEqual(got, first) {
				t.Fatal("rebuilt graph yields different layout")
			}
		})
	}
}

func TestComputeNoOverlap(t *testing.T) {
	for name, build := range map[string]func() *flow.Graph{
		"diamond": diamond, "nested": nested, "retry": retry, "threeWay": threeWay,
	} {
		t.Run(name, func(t *testing.T) {
			l := Compute(build())
			for i, a := range l.Locations {
				for _, b := range l.Locations[i+1:] {
					if a.Overlaps(b) {
						t.Errorf("%s %+v overlaps %s %+v", a.ID, a, b.ID, b)
					}
				}
			}
		})
	}
}

func TestComputeUniqueLocations(t *testing.T) {
	l := Compute(nested())
	seen := map[string]bool{}
	for _, loc := range l.Locations {
		if seen[loc.ID] {
			t.Errorf("%s placed twice", loc.ID)
		}
		seen[loc.ID] = true
	}
	if len(seen) != 10 {
		t.Errorf("placed %d nodes, want 10", len(seen))
	}
}

func TestComputeNested(t *testing.T) {
	m := locations(Compute(nested()))
	if m["C1"].X <= m["C2"].X {
		t.Errorf("outer converge C1.X = %v not right of inner C2.X = %v", m["C1"].X, m["C2"].X)
	}
	if m["D"].Y <= m["C"].Bottom() {
		t.Errorf("D.Y = %v, want below nested branch C (bottom %v)", m["D"].Y, m["C"].Bottom())
	}
	if centre(m["e"]) != centre(m["s"]) {
		t.Errorf("end not on the start line: %v vs %v", centre(m["e"]), centre(m["s"]))
	}
}

func TestComputeBranchOrder(t *testing.T) {
	m := locations(Compute(threeWay()))
	// A -> A2 is the deepest branch, then B, then the direct flow.
	if !(m["A"].Y < m["B"].Y) {
		t.Errorf("deepest branch A (y=%v) not above B (y=%v)", m["A"].Y, m["B"].Y)
	}
	if m["C"].X <= m["A2"].Right() {
		t.Errorf("converge C.X = %v, want right of A2 (%v)", m["C"].X, m["A2"].Right())
	}
}

func TestSortBranchesStable(t *testing.T) {
	g := flowtest.New().
		Start("s").Parallel("P").Task("x").Task("y").Task("z").Converge("C").End("e").
		Chain("s", "P").
		Link("to-z", "P", "z").Link("to-x", "P", "x").Link("to-y", "P", "y").
		Chain("x", "C").Chain("y", "C").Chain("z", "C").Chain("C", "e").
		MustBuild()
	s := newState(g, DefaultConfig())
	var ids []string
	for _, f := range s.sortBranches(g.OutgoingFlows("P")) {
		ids = append(ids, f.ID)
	}
	if want := []string{"to-z", "to-x", "to-y"}; !slices.Equal(ids, want) {
		t.Errorf("equal depths reordered: %v, want %v", ids, want)
	}
}

func TestBranchDepth(t *testing.T) {
	s := newState(threeWay(), DefaultConfig())
	tests := []struct {
		from    string
		depth   int
		visited []string
	}{
		{"A", 3, []string{"A", "A2", "C", "e"}},
		{"B", 2, []string{"B", "C", "e"}},
		{"C", 1, []string{"C", "e"}},
		{"e", 0, []string{"e"}},
		{"missing", 0, []string{"missing"}},
	}
	for _, tt := range tests {
		d, visited := s.branchDepth(tt.from)
		if d != tt.depth || !slices.Equal(visited, tt.visited) {
			t.Errorf("branchDepth(%s) = %d %v, want %d %v", tt.from, d, visited, tt.depth, tt.visited)
		}
	}
}

func TestFindConvergenceNode(t *testing.T) {
	g := diamond()
	s := newState(g, DefaultConfig())
	edges := s.sortBranches(g.OutgoingFlows("PG"))
	if got := s.findConvergenceNode(edges); got != "CG" {
		t.Errorf("findConvergenceNode = %q, want CG", got)
	}
	if got := s.findConvergenceNode(nil); got != "" {
		t.Errorf("findConvergenceNode(nil) = %q", got)
	}
}

func TestAdjustMovesCollidingBranch(t *testing.T) {
	g := diamond()
	s := newState(g, DefaultConfig())
	s.place("start", 40, 134, "")

	// Pull B up onto A, then let collision correction push it back down.
	b := s.pos["B"]
	b.Y = s.pos["A"].Y
	s.pos["B"] = b
	s.adjust(s.sortBranches(g.OutgoingFlows("PG")))

	if got, want := s.pos["B"].Y, s.pos["A"].Bottom()+DefaultConfig().VerticalSpacing; got != want {
		t.Errorf("B.Y = %v, want %v", got, want)
	}
	if s.pos["B"].Overlaps(s.pos["A"]) {
		t.Error("B still overlaps A")
	}
}

func TestComputeLoops(t *testing.T) {
	t.Run("retry", func(t *testing.T) {
		l := Compute(retry())
		m := locations(l)
		for _, id := range []string{"s", "T", "X", "C", "e"} {
			if _, ok := m[id]; !ok {
				t.Errorf("%s not placed", id)
			}
		}
		if len(l.Locations) != 5 {
			t.Errorf("got %d locations, want 5", len(l.Locations))
		}
		if m["C"].X != m["X"].Right()+DefaultConfig().BranchOffset {
			t.Errorf("C.X = %v, want branch offset after X", m["C"].X)
		}
		again, _ := l.Line("again")
		if again.Target.Arrow != graph.ArrowBottom {
			t.Errorf("loop line enters %s, want Bottom", again.Target.Arrow)
		}
	})

	t.Run("self loop", func(t *testing.T) {
		g := flowtest.New().Start("s").Task("A").Exclusive("X").End("e").
			Chain("s", "A", "X").
			When("stay", "X", "X", "stay", "1 == 1").
			When("go", "X", "e", "go", "1 == 0").
			MustBuild()
		l := Compute(g)
		if len(l.Locations) != 4 {
			t.Errorf("got %d locations, want 4", len(l.Locations))
		}
	})
}

func TestComputeDegradesGracefully(t *testing.T) {
	t.Run("nil graph", func(t *testing.T) {
		l := Compute(nil)
		if len(l.Locations) != 0 || len(l.Lines) != 0 {
			t.Errorf("Compute(nil) = %+v", l)
		}
	})

	t.Run("dangling branch", func(t *testing.T) {
		// The second branch never reaches the converge gateway.
		g := flowtest.New().
			Start("s").Parallel("P").Task("A").Task("B").Converge("C").End("e").
			Chain("s", "P").
			Chain("P", "A", "C").
			Chain("P", "B").
			Link("ghost", "B", "nowhere").
			Chain("C", "e").
			MustBuild()
		l := Compute(g)
		m := locations(l)
		if _, ok := m["C"]; !ok {
			t.Error("C should be placed: its only incoming flow arrived")
		}
		ghost, ok := l.Line("ghost")
		if !ok || ghost.Source.Arrow != "" || ghost.Target.Arrow != "" {
			t.Errorf("dangling line = %+v, want empty arrows", ghost)
		}
	})

	t.Run("converge never settles", func(t *testing.T) {
		g := flowtest.New().
			Start("s").Task("A").Task("orphan").Converge("C").End("e").
			Chain("s", "A", "C", "e").
			Chain("orphan", "C").
			MustBuild()
		m := locations(Compute(g))
		if _, ok := m["C"]; ok {
			t.Error("C placed although one branch never arrived")
		}
		if _, ok := m["e"]; ok {
			t.Error("end placed behind an unsettled converge")
		}
	})
}

func TestComputeFreshState(t *testing.T) {
	first := Compute(diamond())
	_ = Compute(nested())
	if again := Compute(diamond()); !reflect.DeepEqual(first, again) {
		t.Error("layout depends on a previous call")
	}
}

func TestComputeDeepChain(t *testing.T) {
	b := flowtest.New().Start("s").End("e")
	prev := "s"
	for i := 0; i < 5000; i++ {
		id := "t" + strconv.Itoa(i)
		b.Task(id).Edge(prev, id)
		prev = id
	}
	b.Edge(prev, "e")
	l := Compute(b.MustBuild())
	if len(l.Locations) != 5002 {
		t.Errorf("got %d locations, want 5002", len(l.Locations))
	}
}

func TestOptions(t *testing.T) {
	l := Compute(linear(), WithOrigin(0, 0), WithSpacing(10, 20))
	m := locations(l)
	if m["start"].X != 0 || m["start"].Y != 0 {
		t.Errorf("start at (%v,%v), want origin", m["start"].X, m["start"].Y)
	}
	if m["A"].X != 34+10 {
		t.Errorf("A.X = %v, want 44", m["A"].X)
	}

	cfg := DefaultConfig()
	WithConfig(Config{BranchOffset: 200})(&cfg)
	if cfg.BranchOffset != 200 || cfg.BaseX != 40 {
		t.Errorf("WithConfig = %+v", cfg)
	}
	WithBranchOffset(99)(&cfg)
	if cfg.BranchOffset != 99 {
		t.Errorf("WithBranchOffset = %v", cfg.BranchOffset)
	}
}
