package drag

import (
	"errors"
	"fmt"
	"math"

	"github.com/kmathys/orgcanvas/pkg/forest"
	"github.com/kmathys/orgcanvas/pkg/geom"
	"github.com/kmathys/orgcanvas/pkg/observability"
)

// Canvas is the rendering-collaborator surface the engine consumes. The
// collaborator owns coordinates, bounding boxes, and the visual edge set; the
// engine owns the hierarchy and issues batched commands.
//
// Missing nodes report zero values rather than errors - the collaborator
// guarantees consistency after its own stabilization event.
type Canvas interface {
	// Position returns the current canvas position of a node.
	Position(id string) geom.Point

	// Positions returns the positions of all nodes. The returned map is a
	// copy the caller may keep.
	Positions() map[string]geom.Point

	// BoundingBox returns the axis-aligned bounding box of a node.
	BoundingBox(id string) geom.Rect

	// SetPositions applies one batch of position updates atomically.
	SetPositions(updates []forest.PositionUpdate)

	// AddEdge and RemoveEdge mirror hierarchy mutations into the drawing.
	AddEdge(e forest.Edge)
	RemoveEdge(from, to string)

	// SetHighlight marks id as the active drop target, resetting any
	// previous highlight in the same call. An empty id clears it.
	SetHighlight(id string)
}

// Config holds the drag tunables, supplied once at construction and never
// read back out of the rendering collaborator.
type Config struct {
	// SnapOutThreshold is the vertical pointer displacement beyond which an
	// attached node detaches from its parent.
	SnapOutThreshold float64

	// RubberBandFactor damps vertical movement while an attached drag stays
	// within the threshold. Must be in (0, 1).
	RubberBandFactor float64

	// RootBandBottom is the canvas-space lower boundary of the root band.
	// A free-dragged node whose bounding-box top edge rises above this line
	// arms root creation.
	RootBandBottom float64

	// RootY is the canonical vertical anchor for roots, used when the first
	// root is created.
	RootY float64

	// LevelSeparation is the vertical gap between a parent and a freshly
	// attached child.
	LevelSeparation float64

	// SiblingSpacing is the horizontal gap used when placing a new child to
	// the right of existing children, or a new root to the right of
	// existing roots.
	SiblingSpacing float64
}

// DefaultConfig returns the interaction defaults.
func DefaultConfig() Config {
	return Config{
		SnapOutThreshold: 80,
		RubberBandFactor: 0.3,
		RootBandBottom:   60,
		RootY:            0,
		LevelSeparation:  120,
		SiblingSpacing:   160,
	}
}

// Validate checks config sanity.
func (c Config) Validate() error {
	if c.SnapOutThreshold <= 0 {
		return errors.New("snap-out threshold must be positive")
	}
	if c.RubberBandFactor <= 0 || c.RubberBandFactor >= 1 {
		return fmt.Errorf("rubber-band factor %v outside (0, 1)", c.RubberBandFactor)
	}
	if c.LevelSeparation <= 0 {
		return errors.New("level separation must be positive")
	}
	if c.SiblingSpacing <= 0 {
		return errors.New("sibling spacing must be positive")
	}
	return nil
}

// mode is the per-gesture state. An attached drag past the threshold is
// irreversible within the gesture: the node behaves as free even if the
// pointer moves back inside the threshold.
type mode int

const (
	modeFree mode = iota
	modeAttachedWithin
	modeAttachedPast
)

// session is the transient per-gesture state. Created on drag start, mutated
// on every move, destroyed on drag end. Exactly one session is ever active;
// events for any other node are ignored as stale.
type session struct {
	id           string
	start        geom.Point // node position at drag start
	pointerStart geom.Point // pointer position at drag start
	grabOffset   geom.Point // node-center minus pointer, set on first move
	calibrated   bool
	mode         mode
	parent       string // original parent, when attached at start
	hadParent    bool
	wasRoot      bool
	snap         forest.Snapshot
	preDrag      map[string]geom.Point // every node's position at drag start
	target       string                // currently highlighted drop target
	overRootBand bool
	changed      bool // a structural mutation happened this gesture
}

// Engine is the drag interaction state machine. It consumes pointer-drag
// lifecycle events, applies free movement, rubber-band constraint, and
// threshold-triggered detachment, and commits structural mutations on drop.
//
// Engine is single-threaded by contract: pointer events arrive as a strictly
// ordered sequence, and each handler call produces one synchronous batch of
// updates before the next event is processed.
type Engine struct {
	f        *forest.Forest
	canvas   Canvas
	cfg      Config
	onChange func()
	active   *session
}

// New creates an engine over a forest and its rendering collaborator.
// onChange fires after any gesture that mutated the hierarchy - exactly once
// per such gesture, and never for gestures that end without a structural
// change. It may be nil.
func New(f *forest.Forest, canvas Canvas, cfg Config, onChange func()) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("drag config: %w", err)
	}
	return &Engine{f: f, canvas: canvas, cfg: cfg, onChange: onChange}, nil
}

// Config returns the engine's tunables.
func (e *Engine) Config() Config { return e.cfg }

// Dragging reports whether a gesture is in progress and, if so, which node.
func (e *Engine) Dragging() (string, bool) {
	if e.active == nil {
		return "", false
	}
	return e.active.id, true
}

// Target returns the currently highlighted drop target, if any.
func (e *Engine) Target() (string, bool) {
	if e.active == nil || e.active.target == "" {
		return "", false
	}
	return e.active.target, true
}

// OverRootBand reports whether the current gesture has armed root creation.
func (e *Engine) OverRootBand() bool {
	return e.active != nil && e.active.overRootBand
}

// DragStart begins a gesture on the given node. A second gesture while one
// is active, or a start on an unknown node, is ignored - multi-touch and
// stale events must never corrupt state.
func (e *Engine) DragStart(id string, pointer geom.Point) {
	if e.active != nil {
		return
	}
	if _, ok := e.f.Node(id); !ok {
		return
	}

	snap, err := forest.CaptureSubtree(e.f, canvasPositions{e.canvas}, id)
	if err != nil {
		// Unreachable on a validated forest; refuse the gesture rather
		// than drag a corrupt subtree.
		return
	}

	s := &session{
		id:           id,
		start:        e.canvas.Position(id),
		pointerStart: pointer,
		snap:         snap,
		preDrag:      e.canvas.Positions(),
	}
	if parent, ok := e.f.Parent(id); ok {
		s.parent = parent
		s.hadParent = true
	}
	if n, _ := e.f.Node(id); n.Root {
		s.wasRoot = true
	}
	if e.f.IsFree(id) {
		s.mode = modeFree
	} else {
		s.mode = modeAttachedWithin
	}

	e.active = s
	observability.Drag().OnSessionStart(id, s.mode != modeFree)
}

// DragMove advances the gesture. Events whose node does not match the active
// session are ignored.
func (e *Engine) DragMove(id string, pointer geom.Point) {
	s := e.active
	if s == nil || s.id != id {
		return
	}

	// First-move calibration: remember where inside the node the user
	// grabbed it, so the node doesn't jump to center itself under an
	// off-center click.
	if !s.calibrated {
		s.grabOffset = s.start.Sub(s.pointerStart)
		s.calibrated = true
	}

	if s.mode == modeAttachedWithin {
		disp := pointer.Y - s.pointerStart.Y
		if math.Abs(disp) <= e.cfg.SnapOutThreshold {
			e.moveRubberBand(s, pointer, disp)
			return
		}
		e.detach(s)
		// Fall through: the node is free for the rest of the gesture.
	}

	e.moveFree(s, pointer)
}

// DragEnd finishes the gesture and commits at most one structural mutation:
// reattach via snap-back (no mutation), create-root, or attach-as-child.
func (e *Engine) DragEnd(id string, pointer geom.Point) {
	s := e.active
	if s == nil || s.id != id {
		return
	}

	switch {
	case s.mode == modeAttachedWithin:
		// Never snapped out: restore the vertical position, keep whatever
		// horizontal position the drag achieved.
		cur := e.canvas.Position(s.id)
		e.canvas.SetPositions(s.snap.MoveTo(cur.X, s.start.Y))

	case s.target != "":
		e.attachToTarget(s)

	case s.overRootBand:
		e.createRoot(s)
	}
	// A free drop in open space leaves the subtree where the pointer
	// released it.

	e.canvas.SetHighlight("")
	changed := s.changed
	e.active = nil
	observability.Drag().OnSessionEnd(id, changed)
	if changed && e.onChange != nil {
		e.onChange()
	}
}

// =============================================================================
// Move handling
// =============================================================================

// moveRubberBand applies the damped transform while an attached drag stays
// within the threshold: vertical position is start + displacement * factor,
// horizontal tracks the pointer exactly.
func (e *Engine) moveRubberBand(s *session, pointer geom.Point, disp float64) {
	x := pointer.X + s.grabOffset.X
	y := s.start.Y + disp*e.cfg.RubberBandFactor
	e.canvas.SetPositions(s.snap.MoveTo(x, y))
}

// detach removes the dragged node's single incoming edge and clears its root
// flag. Descendants' edges are untouched, so the subtree detaches as a unit.
// All nodes outside the subtree are restored to their pre-drag positions,
// undoing any speculative movement by the collaborator's own layout. Fires
// at most once per gesture.
func (e *Engine) detach(s *session) {
	if s.hadParent {
		e.f.RemoveEdge(s.parent, s.id)
		e.canvas.RemoveEdge(s.parent, s.id)
	}
	if s.wasRoot {
		e.f.SetRoot(s.id, false)
	}

	restore := make([]forest.PositionUpdate, 0, len(s.preDrag))
	for nid, p := range s.preDrag {
		if s.snap.Contains(nid) {
			continue
		}
		restore = append(restore, forest.PositionUpdate{ID: nid, Pos: p})
	}
	e.canvas.SetPositions(restore)

	s.mode = modeAttachedPast
	s.changed = true
	observability.Drag().OnDetach(s.id, s.parent)
}

// moveFree translates the subtree rigidly under the pointer and re-evaluates
// drop targets.
func (e *Engine) moveFree(s *session, pointer geom.Point) {
	target := pointer.Add(s.grabOffset)
	e.canvas.SetPositions(s.snap.MoveTo(target.X, target.Y))
	e.updateDropTarget(s)
}

// updateDropTarget scans in-hierarchy nodes outside the dragged subtree for
// bounding-box overlap with the dragged node. Overlap with a node takes
// priority over the root band; at most one target is highlighted at a time,
// and highlight swaps are atomic per move event.
func (e *Engine) updateDropTarget(s *session) {
	dragged := e.canvas.BoundingBox(s.id)

	found := ""
	for _, id := range e.f.NodeIDs() {
		if s.snap.Contains(id) || !e.f.InHierarchy(id) {
			continue
		}
		if dragged.Intersects(e.canvas.BoundingBox(id)) {
			found = id
			break
		}
	}

	if found != s.target {
		s.target = found
		e.canvas.SetHighlight(found)
	}

	if found != "" {
		s.overRootBand = false
		return
	}
	// Root-band arming uses the bounding-box top edge, not the center, so
	// first contact arms it.
	s.overRootBand = dragged.Top <= e.cfg.RootBandBottom
}

// =============================================================================
// Drop mutations
// =============================================================================

// attachToTarget adds the edge target→dragged and parks the subtree one
// level below the target, to the right of its existing children.
func (e *Engine) attachToTarget(s *session) {
	target := s.target
	targetPos := e.canvas.Position(target)

	x := targetPos.X
	if siblings := e.f.Children(target); len(siblings) > 0 {
		rightmost := math.Inf(-1)
		for _, sib := range siblings {
			rightmost = math.Max(rightmost, e.canvas.Position(sib).X)
		}
		x = rightmost + e.cfg.SiblingSpacing
	}
	y := targetPos.Y + e.cfg.LevelSeparation

	if err := e.f.AddEdge(forest.Edge{From: target, To: s.id}); err != nil {
		// The candidate filter excludes the subtree and the dragged node
		// has no parent, so this cannot fail on a validated forest; drop
		// the attach rather than corrupt state.
		return
	}
	e.canvas.AddEdge(forest.Edge{From: target, To: s.id})
	e.canvas.SetPositions(s.snap.MoveTo(x, y))

	s.changed = true
	observability.Drag().OnAttach(target, s.id)
}

// createRoot anchors the dragged node in the root band. Placement keeps the
// node's current X unless that overlaps an existing root, in which case it
// shifts right of the rightmost root. Re-rooting an existing root only moves
// it horizontally; the Root flag is idempotent.
func (e *Engine) createRoot(s *session) {
	wasAlreadyRoot := false
	if n, ok := e.f.Node(s.id); ok {
		wasAlreadyRoot = n.Root
	}

	y := e.cfg.RootY
	var others []string
	for _, r := range e.f.Roots() {
		if r != s.id {
			others = append(others, r)
		}
	}
	if len(others) > 0 {
		y = e.canvas.Position(others[0]).Y
	}

	x := e.canvas.Position(s.id).X
	if overlapsAnyRoot(e.canvas, others, s.id, x, y) {
		rightmost := math.Inf(-1)
		for _, r := range others {
			rightmost = math.Max(rightmost, e.canvas.Position(r).X)
		}
		x = rightmost + e.cfg.SiblingSpacing
	}

	e.f.SetRoot(s.id, true)
	e.canvas.SetPositions(s.snap.MoveTo(x, y))

	if !wasAlreadyRoot {
		s.changed = true
		observability.Drag().OnRootCreated(s.id)
	}
}

// overlapsAnyRoot reports whether the dragged node's box, recentered at
// (x, y), would intersect any existing root's box.
func overlapsAnyRoot(c Canvas, roots []string, id string, x, y float64) bool {
	box := c.BoundingBox(id)
	halfW := box.Width() / 2
	halfH := box.Height() / 2
	moved := geom.Rect{Top: y - halfH, Left: x - halfW, Right: x + halfW, Bottom: y + halfH}
	for _, r := range roots {
		if moved.Intersects(c.BoundingBox(r)) {
			return true
		}
	}
	return false
}

// canvasPositions adapts Canvas to forest.PositionSource.
type canvasPositions struct{ c Canvas }

func (p canvasPositions) Position(id string) geom.Point { return p.c.Position(id) }
