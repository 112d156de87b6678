package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/pkg/check"
)

// checkCommand creates the check command for linting pipeline trees.
func (c *CLI) checkCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check [pipeline.yaml]",
		Short: "Lint a pipeline tree",
		Long: `Lint a pipeline tree.

The payload is validated against the pipeline tree schema, every condition
expression is compiled, and the graph is checked for unreachable nodes and
unpaired gateways. The command fails when any error is found; warnings are
reported only.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.readSource(args[0])
			if err != nil {
				return err
			}
			report, err := check.Payload(data)
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("check complete", "findings", len(report.Findings))

			if asJSON {
				if report.Findings == nil {
					report.Findings = []check.Finding{}
				}
				if err := c.writeResult(stdio, report); err != nil {
					return err
				}
			} else {
				printReport(c.ui(), args[0], report)
			}
			if !report.OK() {
				return fmt.Errorf("%s: %d error(s)", args[0], report.Errors())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

// printReport prints findings grouped by severity.
func printReport(ui console, input string, r check.Report) {
	if len(r.Findings) == 0 {
		ui.ok("%s looks good", input)
		return
	}
	for _, f := range r.Findings {
		msg := fmt.Sprintf("%s %s", StyleHighlight.Render(f.Path), f.Message)
		if f.Severity == check.SeverityError {
			ui.fail("[%s] %s", f.Pass, msg)
		} else {
			ui.warn("[%s] %s", f.Pass, msg)
		}
	}
	warnings := len(r.Findings) - r.Errors()
	ui.line("")
	ui.detail("%d error(s), %d warning(s)", r.Errors(), warnings)
}
