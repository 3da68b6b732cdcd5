package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kmathys/orgcanvas/pkg/chart"
	"github.com/kmathys/orgcanvas/pkg/forest"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [chart.json]",
		Short: "Check a chart file against the hierarchy invariants",
		Long: `Check a chart file against the hierarchy invariants.

The validate command loads a chart.json file and verifies that it forms a
well-formed forest: every node has at most one manager, every edge references
existing nodes, and no reporting chain loops back on itself. Cycles are
reported with the full path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(args[0])
		},
	}
}

func (c *CLI) runValidate(input string) error {
	doc, err := chart.Import(input)
	if err != nil {
		return fmt.Errorf("load chart %s: %w", input, err)
	}

	f, _, err := chart.ToForest(doc)
	if err != nil {
		var cerr *forest.CycleError
		if errors.As(err, &cerr) {
			printError("Cycle detected: %s", strings.Join(cerr.Path, " "+iconArrow+" "))
			return err
		}
		printError("%v", err)
		return err
	}

	printSuccess("Chart is valid")
	printStats(f.NodeCount(), f.EdgeCount())
	fmt.Printf("%s %s\n",
		styleIconInfo.Render(iconInfo),
		StyleDim.Render(fmt.Sprintf("%d roots, %d free nodes", len(f.Roots()), len(f.FreeIDs()))))
	return nil
}
