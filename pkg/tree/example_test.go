package tree_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/flowtower/pkg/flow/flowtest"
	"github.com/matzehuels/flowtower/pkg/graph"
	"github.com/matzehuels/flowtower/pkg/tree"
)

func ExampleBuild() {
	g := flowtest.New().
		Start("s").Parallel("PG").Task("A").Task("B").Converge("CG").End("e").
		Chain("s", "PG").
		Chain("PG", "A", "CG").
		Chain("PG", "B", "CG").
		Chain("CG", "e").
		MustBuild()

	graph.Walk(tree.Build(g), func(n *graph.TreeNode, depth int) bool {
		fmt.Println(strings.Repeat("  ", depth) + n.Name)
		return true
	})
	// Output:
	// Start
	// Parallel Gateway
	//   Parallel 1
	//     A
	//   Parallel 2
	//     B
	//   Converge Gateway
	// End
}
