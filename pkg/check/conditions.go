package check

import (
	"regexp"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/matzehuels/flowtower/pkg/flow"
)

var placeholderRe = regexp.MustCompile(`\$\{\s*([^}]*?)\s*\}`)

// Normalize rewrites ${var} placeholders into identifiers the expression
// parser accepts. Characters that cannot appear in an identifier become
// underscores, and a leading digit gets an underscore prefix.
func Normalize(expression string) string {
	return placeholderRe.ReplaceAllStringFunc(expression, func(m string) string {
		name := placeholderRe.FindStringSubmatch(m)[1]
		var b strings.Builder
		for i, r := range name {
			switch {
			case r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
				b.WriteRune(r)
			case r >= '0' && r <= '9':
				if i == 0 {
					b.WriteByte('_')
				}
				b.WriteRune(r)
			default:
				b.WriteByte('_')
			}
		}
		if b.Len() == 0 {
			return "_"
		}
		return b.String()
	})
}

// Lint compiles a condition expression and returns the compile error, if
// any. Variables are unknown at check time, so any name is accepted; the
// expression must still produce a boolean when its type is known.
func Lint(expression string) error {
	_, err := expr.Compile(Normalize(expression),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	return err
}

// Conditions lints every explicit condition of the graph's conditional
// gateways. Default conditions carry no expression and are skipped.
func Conditions(g *flow.Graph) []Finding {
	var out []Finding
	for _, n := range g.Nodes() {
		if !n.Kind.IsConditional() {
			continue
		}
		for _, c := range n.Conditions {
			path := n.ID + "/" + c.FlowID
			if strings.TrimSpace(c.Evaluate) == "" {
				out = append(out, Finding{
					Severity: SeverityWarning,
					Pass:     PassCondition,
					Path:     path,
					Message:  "condition has no expression",
				})
				continue
			}
			if err := Lint(c.Evaluate); err != nil {
				out = append(out, Finding{
					Severity: SeverityError,
					Pass:     PassCondition,
					Path:     path,
					Message:  firstLine(err.Error()),
				})
			}
		}
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
