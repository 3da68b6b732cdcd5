package forest

import (
	"fmt"

	"github.com/kmathys/orgcanvas/pkg/geom"
)

// PositionSource supplies the current canvas position of a node. Missing
// nodes report the zero point; the rendering collaborator guarantees
// eventual consistency after its stabilization event, so a transiently
// unpositioned node is not an error.
type PositionSource interface {
	Position(id string) geom.Point
}

// PositionUpdate is one entry of a batch position command for the rendering
// collaborator.
type PositionUpdate struct {
	ID  string
	Pos geom.Point
}

// Snapshot is an immutable capture of a node and all of its descendants as a
// rigid body. Offsets are relative to the root's position at capture time,
// so the subtree can only translate - never rotate, scale, or drift.
//
// Lifecycle: created at drag start, consulted on every drag move, consumed
// once at drag end, then discarded.
type Snapshot struct {
	RootID  string
	Order   []string              // Descendant IDs in breadth-first order
	Offsets map[string]geom.Point // Descendant ID -> offset from the root
}

// CaptureSubtree walks the child edges breadth-first from id, recording each
// descendant's offset from the root's current position.
//
// A revisited ID fails with an error. Under a validated forest this is
// unreachable, but the guard turns a corrupted child map into an explicit
// programming-error signal instead of a silent infinite loop.
func CaptureSubtree(f *Forest, positions PositionSource, id string) (Snapshot, error) {
	if _, ok := f.Node(id); !ok {
		return Snapshot{}, fmt.Errorf("capture subtree: %w: %s", ErrUnknownSourceNode, id)
	}

	rootPos := positions.Position(id)
	snap := Snapshot{
		RootID:  id,
		Offsets: make(map[string]geom.Point),
	}

	visited := map[string]bool{id: true}
	queue := append([]string(nil), f.Children(id)...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			return Snapshot{}, fmt.Errorf("capture subtree of %s: node %s visited twice", id, cur)
		}
		visited[cur] = true
		snap.Order = append(snap.Order, cur)
		snap.Offsets[cur] = positions.Position(cur).Sub(rootPos)
		queue = append(queue, f.Children(cur)...)
	}
	return snap, nil
}

// Contains reports whether id is the snapshot root or one of its descendants.
func (s Snapshot) Contains(id string) bool {
	if id == s.RootID {
		return true
	}
	_, ok := s.Offsets[id]
	return ok
}

// Size returns the number of nodes in the snapshot, root included.
func (s Snapshot) Size() int { return 1 + len(s.Order) }

// MoveTo returns the position batch that places the root at (x, y) and every
// descendant at root plus its captured offset. The root is always the first
// update, descendants follow in capture order.
func (s Snapshot) MoveTo(x, y float64) []PositionUpdate {
	updates := make([]PositionUpdate, 0, s.Size())
	updates = append(updates, PositionUpdate{ID: s.RootID, Pos: geom.Point{X: x, Y: y}})
	for _, id := range s.Order {
		off := s.Offsets[id]
		updates = append(updates, PositionUpdate{ID: id, Pos: geom.Point{X: x + off.X, Y: y + off.Y}})
	}
	return updates
}
