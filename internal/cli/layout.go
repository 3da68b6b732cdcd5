package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kmathys/orgcanvas/pkg/chart"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "layout [chart.json]",
		Short: "Apply the deterministic layout to a chart",
		Long: `Apply the deterministic layout to a chart.

The layout command loads a chart.json file, aligns every root on the root
line, stacks subtrees level by level, packs free nodes into a grid below the
forest, and writes the repositioned chart back out. Running it twice produces
identical output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	return cmd
}

func (c *CLI) runLayout(input, output string) error {
	doc, err := chart.Import(input)
	if err != nil {
		return fmt.Errorf("load chart %s: %w", input, err)
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	ed, err := c.newEditor(cfg, nil)
	if err != nil {
		return err
	}
	if err := ed.Load(doc); err != nil {
		return fmt.Errorf("load chart %s: %w", input, err)
	}

	prog := newProgress(c.Logger)
	ed.ApplyLayout()
	prog.done(fmt.Sprintf("Laid out %d nodes", ed.Forest().NodeCount()))

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	if err := chart.Export(ed.Chart(), outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(ed.Forest().NodeCount(), ed.Forest().EdgeCount())
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)
	return nil
}
