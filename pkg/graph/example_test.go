package graph_test

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/matzehuels/flowtower/pkg/graph"
)

func ExampleMarshalLayout() {
	l := graph.Layout{
		Locations: []graph.Location{
			{ID: "start", X: 40, Y: 134, Width: 34, Height: 34, Type: "startpoint"},
		},
		Lines: []graph.Line{},
	}
	data, err := graph.MarshalLayout(l)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println(string(data))
	// Output:
	// {
	//   "locations": [
	//     {
	//       "id": "start",
	//       "x": 40,
	//       "y": 134,
	//       "width": 34,
	//       "height": 34,
	//       "type": "startpoint"
	//     }
	//   ],
	//   "lines": []
	// }
}

func ExampleReadLayoutFile() {
	dir, _ := os.MkdirTemp("", "layout-example")
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "layout.json")

	_ = graph.WriteLayoutFile(graph.Layout{
		Locations: []graph.Location{
			{ID: "start", X: 40, Y: 134, Width: 34, Height: 34, Type: "startpoint"},
			{ID: "task", X: 120, Y: 124, Width: 154, Height: 54, Type: "tasknode"},
		},
		Lines: []graph.Line{{
			ID:     "f1",
			Source: graph.Endpoint{ID: "start", Arrow: graph.ArrowRight},
			Target: graph.Endpoint{ID: "task", Arrow: graph.ArrowLeft},
		}},
	}, path)

	l, err := graph.ReadLayoutFile(path)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	for _, ln := range l.Lines {
		fmt.Printf("%s: %s.%s -> %s.%s\n", ln.ID, ln.Source.ID, ln.Source.Arrow.Port(), ln.Target.ID, ln.Target.Arrow.Port())
	}
	// Output:
	// f1: start.port_right -> task.port_left
}

func ExampleWalk() {
	tree := []*graph.TreeNode{
		{ID: "start", Title: "Start"},
		{ID: "pg", Title: "Parallel Gateway", Children: []*graph.TreeNode{
			{Title: "Parallel", Name: "Parallel 1", ConditionType: graph.ConditionTypeParallel,
				Children: []*graph.TreeNode{{ID: "a", Title: "Task A"}}},
		}},
		{ID: "end", Title: "End"},
	}
	graph.Walk(tree, func(n *graph.TreeNode, depth int) bool {
		fmt.Printf("%*s%s\n", depth*2, "", n.Title)
		return true
	})
	// Output:
	// Start
	// Parallel Gateway
	//   Parallel
	//     Task A
	// End
}
