// Package cli implements the orgcanvas command-line interface.
//
// This package provides commands for validating chart files, running the
// deterministic layout pass, rendering charts as images, managing the chart
// store, serving the HTTP API, and an interactive terminal demo of the drag
// engine. The CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - validate: Check a chart file against the hierarchy invariants
//   - layout: Apply the deterministic layout to a chart file
//   - render: Generate SVG, PNG, or DOT output from a chart
//   - store: Save, load, list, and delete charts in the configured backend
//   - serve: Run the HTTP API
//   - demo: Interactive terminal playground for the drag engine
//
// # Example
//
//	import "github.com/kmathys/orgcanvas/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kmathys/orgcanvas/pkg/buildinfo"
	"github.com/kmathys/orgcanvas/pkg/cache"
	"github.com/kmathys/orgcanvas/pkg/chart"
	"github.com/kmathys/orgcanvas/pkg/config"
	"github.com/kmathys/orgcanvas/pkg/editor"
	"github.com/kmathys/orgcanvas/pkg/render"
)

// appName is the application name used for directories and display.
const appName = "orgcanvas"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag value, consumed by loadConfig.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Orgcanvas edits org charts on an interactive canvas",
		Long:         `Orgcanvas is a drag-and-drop engine for org charts: a strict multi-root hierarchy with rubber-band dragging, snap-out detachment, drop-target attachment, and a deterministic layout. The CLI validates, lays out, renders, stores, and serves chart files.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a TOML tunables file")

	// Register all subcommands
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.demoCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the --config file, or the defaults when the flag is unset.
func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// newEditor builds an editor from the loaded tunables.
func (c *CLI) newEditor(cfg config.Config, onChange func(chart.Chart)) (*editor.Editor, error) {
	return editor.New(editor.Options{
		Drag:              cfg.DragConfig(),
		Layout:            cfg.LayoutConfig(),
		Viewport:          cfg.ViewportConfig(),
		Logger:            c.Logger,
		OnHierarchyChange: onChange,
	})
}

// newRenderer builds the caching renderer from the loaded tunables.
func (c *CLI) newRenderer(cfg config.Config, noCache bool) (*render.Renderer, error) {
	if noCache {
		return render.NewRenderer(cache.NewNullCache(), 0), nil
	}
	rc, err := cfg.OpenCache()
	if err != nil {
		return nil, err
	}
	return render.NewRenderer(rc, cfg.CacheTTL()), nil
}
