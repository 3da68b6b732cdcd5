// Package editor wires the interaction engine into a single embeddable
// facade.
//
// This package assembles the forest, the canvas, the drag engine, the
// layout pass, and the viewport controller so that the CLI, the TUI demo,
// and the HTTP shell share one gesture behavior.
//
// # Usage
//
// Create an Editor and feed it host events:
//
//	ed, err := editor.New(editor.Options{Width: 800, Height: 600})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := ed.Load(myChart); err != nil {
//	    log.Fatal(err)
//	}
//	ed.ApplyLayout()
//	ed.FitView()
//
//	// Pointer events arrive in screen coordinates.
//	ed.DragStart("alice", geom.Point{X: 120, Y: 80})
//	ed.DragMove("alice", geom.Point{X: 140, Y: 95})
//	ed.DragEnd("alice", geom.Point{X: 140, Y: 95})
package editor

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kmathys/orgcanvas/pkg/apperr"
	"github.com/kmathys/orgcanvas/pkg/canvas"
	"github.com/kmathys/orgcanvas/pkg/chart"
	"github.com/kmathys/orgcanvas/pkg/drag"
	"github.com/kmathys/orgcanvas/pkg/forest"
	"github.com/kmathys/orgcanvas/pkg/geom"
	"github.com/kmathys/orgcanvas/pkg/layout"
	"github.com/kmathys/orgcanvas/pkg/observability"
	"github.com/kmathys/orgcanvas/pkg/viewport"
)

// Default container dimensions when the host does not report a size.
const (
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
)

// Options configures an Editor. Zero-valued engine configs are replaced by
// their package defaults.
type Options struct {
	Drag     drag.Config
	Layout   layout.Config
	Viewport viewport.Config

	// Width and Height are the initial container dimensions in pixels.
	Width  float64
	Height float64

	// OnHierarchyChange is invoked once per gesture that mutates the
	// hierarchy, with the chart in its post-gesture state. Optional.
	OnHierarchyChange func(chart.Chart)

	// Logger receives structured interaction logs. Defaults to a discard
	// logger.
	Logger *log.Logger

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Drag == (drag.Config{}) {
		o.Drag = drag.DefaultConfig()
	}
	if o.Layout == (layout.Config{}) {
		o.Layout = layout.DefaultConfig()
	}
	if o.Viewport == (viewport.Config{}) {
		o.Viewport = viewport.DefaultConfig()
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	if err := o.Drag.Validate(); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "drag config")
	}
	if err := o.Viewport.Validate(); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "viewport config")
	}
	o.validated = true
	return nil
}

// Editor owns one chart and all interaction state over it.
// Not safe for concurrent use - drive it from a single event loop.
type Editor struct {
	logger *log.Logger

	f      *forest.Forest
	canvas *canvas.Memory
	engine *drag.Engine
	view   *viewport.Controller

	layoutCfg layout.Config
	onChange  func(chart.Chart)
	name      string
}

// New creates an empty editor.
func New(opts Options) (*Editor, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	e := &Editor{
		logger:    opts.Logger,
		canvas:    canvas.NewMemory(),
		layoutCfg: opts.Layout,
		onChange:  opts.OnHierarchyChange,
	}

	view, err := viewport.New(e.canvas, opts.Viewport, opts.Width, opts.Height)
	if err != nil {
		return nil, err
	}
	e.view = view

	if err := e.install(forest.New(), opts.Drag); err != nil {
		return nil, err
	}
	return e, nil
}

// install swaps in a forest and rebuilds the drag engine around it.
func (e *Editor) install(f *forest.Forest, cfg drag.Config) error {
	engine, err := drag.New(f, e.canvas, cfg, e.hierarchyChanged)
	if err != nil {
		return err
	}
	e.f = f
	e.engine = engine
	return nil
}

func (e *Editor) hierarchyChanged() {
	c := e.Chart()
	e.logger.Debug("hierarchy changed", "nodes", len(c.Nodes), "edges", len(c.Edges))
	if e.onChange != nil {
		e.onChange(c)
	}
}

// Load replaces the editor's content with a chart. Nodes keep their stored
// positions; call [Editor.ApplyLayout] afterwards to normalize them.
func (e *Editor) Load(c chart.Chart) error {
	f, positions, err := chart.ToForest(c)
	if err != nil {
		return err
	}

	e.canvas.Clear()
	for id, pos := range positions {
		e.canvas.Place(id, pos)
	}
	for _, edge := range f.Edges() {
		e.canvas.AddEdge(edge)
	}

	if err := e.install(f, e.engine.Config()); err != nil {
		return err
	}
	e.name = c.Name
	e.logger.Info("chart loaded", "name", c.Name, "nodes", f.NodeCount(), "edges", f.EdgeCount())
	return nil
}

// Chart returns the current content in its serializable form.
func (e *Editor) Chart() chart.Chart {
	c := chart.FromForest(e.f, e.canvas)
	c.Name = e.name
	return c
}

// Name returns the loaded chart's name, if any.
func (e *Editor) Name() string { return e.name }

// SetName sets the chart name used for persistence.
func (e *Editor) SetName(name string) { e.name = name }

// Forest exposes the hierarchy for read access.
func (e *Editor) Forest() *forest.Forest { return e.f }

// Canvas exposes the canvas for read access and host rendering.
func (e *Editor) Canvas() *canvas.Memory { return e.canvas }

// Viewport exposes the camera controller.
func (e *Editor) Viewport() *viewport.Controller { return e.view }

// AddNode adds a node at a canvas position.
func (e *Editor) AddNode(n forest.Node, pos geom.Point) error {
	if err := e.f.AddNode(n); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "add node %s", n.ID)
	}
	e.canvas.Place(n.ID, pos)
	return nil
}

// AddEdge attaches child under parent, mirrored to the canvas.
func (e *Editor) AddEdge(parent, child string) error {
	edge := forest.Edge{From: parent, To: child}
	if err := e.f.AddEdge(edge); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidEdge, err, "add edge %s->%s", parent, child)
	}
	e.canvas.AddEdge(edge)
	return nil
}

// RemoveNode deletes a node. Its children are detached and become free
// nodes; they keep their positions.
func (e *Editor) RemoveNode(id string) error {
	if _, ok := e.f.Node(id); !ok {
		return apperr.New(apperr.ErrCodeNodeNotFound, "node %s does not exist", id)
	}
	e.f.Remove(id)
	e.canvas.Remove(id)
	return nil
}

// Validate checks the hierarchy invariants.
func (e *Editor) Validate() error {
	return e.f.Validate()
}

// ApplyLayout runs a deterministic layout pass and applies the resulting
// positions to the canvas.
func (e *Editor) ApplyLayout() layout.Result {
	observability.Layout().OnLayoutStart(e.f.NodeCount())
	start := time.Now()

	res := layout.Compute(e.f, e.canvas.Positions(), e.layoutCfg)
	updates := make([]forest.PositionUpdate, 0, len(res.Positions))
	for id, pos := range res.Positions {
		updates = append(updates, forest.PositionUpdate{ID: id, Pos: pos})
	}
	e.canvas.SetPositions(updates)

	elapsed := time.Since(start)
	observability.Layout().OnLayoutComplete(e.f.NodeCount(), elapsed)
	e.logger.Debug("layout applied", "nodes", e.f.NodeCount(), "duration", elapsed)
	return res
}

// FitView picks an initial zoom so the current content fits the container.
func (e *Editor) FitView() {
	ids := e.f.NodeIDs()
	if len(ids) == 0 {
		return
	}
	bounds := e.canvas.BoundingBox(ids[0])
	for _, id := range ids[1:] {
		bounds = bounds.Union(e.canvas.BoundingBox(id))
	}
	e.view.Fit(bounds)
}

// =============================================================================
// Pointer Events
// =============================================================================
//
// Hosts deliver pointer events in screen coordinates; the editor converts
// them to canvas space before feeding the drag engine.

// DragStart begins a gesture on a node.
func (e *Editor) DragStart(id string, screen geom.Point) {
	e.engine.DragStart(id, e.canvas.ScreenToCanvas(screen))
}

// DragMove continues the active gesture.
func (e *Editor) DragMove(id string, screen geom.Point) {
	e.engine.DragMove(id, e.canvas.ScreenToCanvas(screen))
}

// DragEnd finishes the active gesture.
func (e *Editor) DragEnd(id string, screen geom.Point) {
	e.engine.DragEnd(id, e.canvas.ScreenToCanvas(screen))
}

// Dragging reports the active gesture's node, if any.
func (e *Editor) Dragging() (string, bool) { return e.engine.Dragging() }

// Target reports the current drop target, if any.
func (e *Editor) Target() (string, bool) { return e.engine.Target() }

// OverRootBand reports whether the active gesture has armed root creation.
func (e *Editor) OverRootBand() bool { return e.engine.OverRootBand() }

// =============================================================================
// Camera Events
// =============================================================================

// Pan shifts the camera by a screen-space delta.
func (e *Editor) Pan(dx, dy float64) { e.view.Pan(dx, dy) }

// Zoom multiplies the camera scale by factor.
func (e *Editor) Zoom(factor float64) { e.view.Zoom(factor) }

// Resize handles a container size change.
func (e *Editor) Resize(width, height float64) { e.view.Resize(width, height) }

// =============================================================================
// Host Read Model
// =============================================================================

// ScreenNode is a node projected into screen coordinates for drawing.
type ScreenNode struct {
	ID          string
	Label       string
	Pos         geom.Point // Center, screen coordinates
	Box         geom.Rect  // Bounding box, screen coordinates
	Root        bool
	Free        bool
	Highlighted bool
}

// ScreenNodes returns every node projected through the current camera,
// sorted by ID.
func (e *Editor) ScreenNodes() []ScreenNode {
	highlight := e.canvas.Highlighted()
	ids := e.f.NodeIDs()
	out := make([]ScreenNode, 0, len(ids))
	for _, id := range ids {
		n, _ := e.f.Node(id)
		box := e.canvas.BoundingBox(id)
		tl := e.canvas.CanvasToScreen(geom.Point{X: box.Left, Y: box.Top})
		br := e.canvas.CanvasToScreen(geom.Point{X: box.Right, Y: box.Bottom})
		out = append(out, ScreenNode{
			ID:          id,
			Label:       n.DisplayLabel(),
			Pos:         e.canvas.CanvasToScreen(e.canvas.Position(id)),
			Box:         geom.Rect{Top: tl.Y, Left: tl.X, Right: br.X, Bottom: br.Y},
			Root:        n.Root,
			Free:        e.f.IsFree(id),
			Highlighted: id == highlight,
		})
	}
	return out
}
