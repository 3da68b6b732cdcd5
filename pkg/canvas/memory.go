// Package canvas provides an in-memory reference implementation of the
// rendering-collaborator surface the engine consumes: node positions and
// bounding boxes, batched position commands, edge mirroring, drop-target
// highlighting, viewport state, and coordinate conversion.
//
// Production hosts embed a real drawing library behind the same interfaces;
// this implementation backs the test suites, the terminal demo, and the HTTP
// shell, where no graphical renderer exists.
package canvas

import (
	"slices"

	"github.com/kmathys/orgcanvas/pkg/forest"
	"github.com/kmathys/orgcanvas/pkg/geom"
	"github.com/kmathys/orgcanvas/pkg/viewport"
)

// Default node box extents, used when the host never set an explicit size.
const (
	DefaultNodeWidth  = 120.0
	DefaultNodeHeight = 48.0
)

// Memory is an in-memory canvas. Positions are node centers; bounding boxes
// are derived from per-node sizes. Not safe for concurrent use - the engine
// contract is a single event loop.
type Memory struct {
	positions map[string]geom.Point
	sizes     map[string]geom.Point // X = width, Y = height
	edges     []forest.Edge
	highlight string
	view      viewport.View
}

// NewMemory creates an empty canvas with scale 1.
func NewMemory() *Memory {
	return &Memory{
		positions: make(map[string]geom.Point),
		sizes:     make(map[string]geom.Point),
		view:      viewport.View{Scale: 1},
	}
}

// Clear removes every node, edge, and highlight. The viewport is kept so a
// reloaded document does not jump the camera.
func (m *Memory) Clear() {
	m.positions = make(map[string]geom.Point)
	m.sizes = make(map[string]geom.Point)
	m.edges = nil
	m.highlight = ""
}

// Place puts a node at a position, creating it if needed.
func (m *Memory) Place(id string, pos geom.Point) {
	m.positions[id] = pos
}

// SetSize overrides the bounding-box extents of a node.
func (m *Memory) SetSize(id string, width, height float64) {
	m.sizes[id] = geom.Point{X: width, Y: height}
}

// Remove drops a node and every edge touching it.
func (m *Memory) Remove(id string) {
	delete(m.positions, id)
	delete(m.sizes, id)
	m.edges = slices.DeleteFunc(m.edges, func(e forest.Edge) bool {
		return e.From == id || e.To == id
	})
	if m.highlight == id {
		m.highlight = ""
	}
}

// Position returns the node's position, or the zero point when the node has
// not been placed yet.
func (m *Memory) Position(id string) geom.Point { return m.positions[id] }

// Positions returns a copy of all node positions.
func (m *Memory) Positions() map[string]geom.Point {
	out := make(map[string]geom.Point, len(m.positions))
	for id, p := range m.positions {
		out[id] = p
	}
	return out
}

// SetPositions applies one batch of position updates.
func (m *Memory) SetPositions(updates []forest.PositionUpdate) {
	for _, u := range updates {
		m.positions[u.ID] = u.Pos
	}
}

// BoundingBox returns the node's box centered on its position. Unknown nodes
// report a default-sized box at the origin.
func (m *Memory) BoundingBox(id string) geom.Rect {
	pos := m.positions[id]
	size, ok := m.sizes[id]
	if !ok {
		size = geom.Point{X: DefaultNodeWidth, Y: DefaultNodeHeight}
	}
	return geom.Rect{
		Top:    pos.Y - size.Y/2,
		Left:   pos.X - size.X/2,
		Right:  pos.X + size.X/2,
		Bottom: pos.Y + size.Y/2,
	}
}

// AddEdge mirrors a hierarchy edge into the drawing.
func (m *Memory) AddEdge(e forest.Edge) { m.edges = append(m.edges, e) }

// RemoveEdge removes the mirrored edge from→to if present.
func (m *Memory) RemoveEdge(from, to string) {
	m.edges = slices.DeleteFunc(m.edges, func(e forest.Edge) bool {
		return e.From == from && e.To == to
	})
}

// Edges returns a copy of the mirrored edge set.
func (m *Memory) Edges() []forest.Edge { return slices.Clone(m.edges) }

// SetHighlight marks id as the active drop target, replacing any previous
// highlight in the same call. An empty id clears it.
func (m *Memory) SetHighlight(id string) { m.highlight = id }

// Highlighted returns the currently highlighted node, or "".
func (m *Memory) Highlighted() string { return m.highlight }

// Viewport returns the current camera transform.
func (m *Memory) Viewport() viewport.View { return m.view }

// SetViewport replaces the camera transform.
func (m *Memory) SetViewport(v viewport.View) { m.view = v }

// Scale returns the current zoom level.
func (m *Memory) Scale() float64 { return m.view.Scale }

// CanvasToScreen converts a canvas point to screen pixels under the current
// camera transform.
func (m *Memory) CanvasToScreen(p geom.Point) geom.Point {
	return geom.Point{
		X: (p.X - m.view.X) * m.view.Scale,
		Y: (p.Y - m.view.Y) * m.view.Scale,
	}
}

// ScreenToCanvas converts screen pixels back to a canvas point.
func (m *Memory) ScreenToCanvas(p geom.Point) geom.Point {
	if m.view.Scale == 0 {
		return geom.Point{}
	}
	return geom.Point{
		X: p.X/m.view.Scale + m.view.X,
		Y: p.Y/m.view.Scale + m.view.Y,
	}
}
