// Package layout computes canonical target positions for an org-chart
// forest: every root aligned to one horizontal band, each tree's vertical
// levels preserved, and unconnected nodes packed into a grid beneath the
// forest.
//
// Compute is a pure function of the forest and the current positions. It
// never mutates its inputs and recomputes the whole result on every pass, so
// running it twice on its own output yields identical positions. Sibling
// ordering and horizontal placement inside a tree are owned by the rendering
// collaborator's layout primitive; this engine only normalizes vertically and
// packs the free grid.
package layout

import (
	"math"
	"slices"

	"github.com/kmathys/orgcanvas/pkg/forest"
	"github.com/kmathys/orgcanvas/pkg/geom"
)

// Config holds the layout tunables. The host supplies these once at
// construction; nothing is read back out of the rendering collaborator.
type Config struct {
	// RootY is the canonical Y coordinate every root is shifted onto.
	RootY float64

	// LevelSeparation is the vertical distance between hierarchy tiers.
	// The drag engine uses it when placing a freshly attached child.
	LevelSeparation float64

	// GridSpacingX and GridSpacingY are the free-node grid cell sizes.
	GridSpacingX float64
	GridSpacingY float64

	// GridTopMargin is the gap between the forest's lowest node and the
	// first grid row.
	GridTopMargin float64
}

// DefaultConfig returns the layout defaults used when the host supplies no
// overrides.
func DefaultConfig() Config {
	return Config{
		RootY:           0,
		LevelSeparation: 120,
		GridSpacingX:    160,
		GridSpacingY:    100,
		GridTopMargin:   150,
	}
}

// Result is one wholesale layout pass: final positions, the IDs classified
// as roots, and the bounding box of everything positioned. It is never
// mutated incrementally.
type Result struct {
	Positions map[string]geom.Point
	Roots     []string
	Bounds    geom.Rect
}

// Compute derives canonical positions for every node in the forest.
//
// Connected nodes (declared roots or anything touching an edge) keep their
// horizontal position; each root's entire reachable tree receives its own
// uniform vertical shift so the root lands exactly on cfg.RootY. The shift is
// per root, not global: a three-level tree and a one-level tree still align
// their roots even though their vertical extents differ.
//
// Free nodes are packed into a grid below the lowest connected node, centered
// horizontally at x = 0 regardless of where the forest sits. The viewport
// controller re-centers the camera separately, so the simplification is
// invisible to the user.
//
// Nodes missing from pos are treated as sitting at the origin; the rendering
// collaborator guarantees real positions after its next stabilization.
func Compute(f *forest.Forest, pos map[string]geom.Point, cfg Config) Result {
	res := Result{
		Positions: make(map[string]geom.Point, f.NodeCount()),
		Roots:     f.Roots(),
	}

	for _, root := range res.Roots {
		shift := cfg.RootY - pos[root].Y
		res.Positions[root] = geom.Point{X: pos[root].X, Y: cfg.RootY}
		for _, id := range f.Descendants(root) {
			p := pos[id]
			res.Positions[id] = geom.Point{X: p.X, Y: p.Y + shift}
		}
	}

	// Connected non-root leftovers: nodes with an edge but unreachable from
	// any root cannot exist in a validated forest, so everything remaining
	// is free.
	placeFreeGrid(f.FreeIDs(), &res, cfg)

	res.Bounds = boundsOf(res.Positions)
	return res
}

// placeFreeGrid packs ids into rows below the connected forest. The column
// count is as square as possible while preferring width over height
// (cols ≥ rows), favoring horizontal scrolling over vertical.
func placeFreeGrid(ids []string, res *Result, cfg Config) {
	n := len(ids)
	if n == 0 {
		return
	}

	top := cfg.RootY + cfg.GridTopMargin
	if bounds, ok := connectedBounds(res.Positions); ok {
		top = bounds.Bottom + cfg.GridTopMargin
	}

	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rowWidth := float64(cols-1) * cfg.GridSpacingX
	startX := -rowWidth / 2 // grid centered at x = 0

	for i, id := range ids {
		row := i / cols
		col := i % cols
		res.Positions[id] = geom.Point{
			X: startX + float64(col)*cfg.GridSpacingX,
			Y: top + float64(row)*cfg.GridSpacingY,
		}
	}
}

func connectedBounds(positions map[string]geom.Point) (geom.Rect, bool) {
	pts := make([]geom.Point, 0, len(positions))
	for _, p := range positions {
		pts = append(pts, p)
	}
	return geom.BoundsOf(pts)
}

func boundsOf(positions map[string]geom.Point) geom.Rect {
	ids := make([]string, 0, len(positions))
	for id := range positions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	pts := make([]geom.Point, 0, len(ids))
	for _, id := range ids {
		pts = append(pts, positions[id])
	}
	r, _ := geom.BoundsOf(pts)
	return r
}
