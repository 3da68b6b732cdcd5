package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kmathys/orgcanvas/pkg/chart"
	"github.com/kmathys/orgcanvas/pkg/render"
)

// Supported render formats.
const (
	formatSVG = "svg"
	formatPNG = "png"
	formatDOT = "dot"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output   string
		format   string
		showMeta bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "render [chart.json]",
		Short: "Generate SVG, PNG, or DOT output from a chart",
		Long: `Generate SVG, PNG, or DOT output from a chart.

The render command converts a chart.json file to Graphviz DOT and rasterizes
it with the embedded Graphviz engine. Free nodes are drawn with dashed grey
boxes so unplaced people stand out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], output, format, showMeta, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", formatSVG, "output format: svg (default), png, dot")
	cmd.Flags().BoolVar(&showMeta, "meta", false, "include node metadata in labels")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the render cache")
	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input, output, format string, showMeta, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	doc, err := chart.Import(input)
	if err != nil {
		return fmt.Errorf("load chart %s: %w", input, err)
	}

	dot := render.ToDOT(doc, render.Options{ShowMeta: showMeta})

	renderer, err := c.newRenderer(cfg, noCache)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	var data []byte
	switch format {
	case formatDOT:
		data = []byte(dot)
	case formatSVG:
		data, err = renderer.SVG(cmd.Context(), dot)
	case formatPNG:
		data, err = renderer.PNG(cmd.Context(), dot)
	default:
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, dot)", format)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	prog.done(fmt.Sprintf("Rendered %d nodes as %s", len(doc.Nodes), format))

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + "." + format
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Render complete")
	printFile(outputPath)
	return nil
}
