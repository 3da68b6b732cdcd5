package drag_test

import (
	"math"
	"testing"

	"github.com/kmathys/orgcanvas/pkg/canvas"
	"github.com/kmathys/orgcanvas/pkg/drag"
	"github.com/kmathys/orgcanvas/pkg/forest"
	"github.com/kmathys/orgcanvas/pkg/geom"
)

const tol = 1e-9

// fixture is the scenario forest: A→B, A→C with A a declared root, plus the
// free node D. Positions sit well below the root band so free drags don't
// accidentally arm root creation.
type fixture struct {
	f       *forest.Forest
	canvas  *canvas.Memory
	engine  *drag.Engine
	changes int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{f: forest.New(), canvas: canvas.NewMemory()}

	nodes := []forest.Node{
		{ID: "A", Root: true}, {ID: "B"}, {ID: "C"}, {ID: "D"},
	}
	for _, n := range nodes {
		if err := fx.f.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}
	for _, e := range []forest.Edge{{From: "A", To: "B"}, {From: "A", To: "C"}} {
		if err := fx.f.AddEdge(e); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
		fx.canvas.AddEdge(e)
	}

	fx.canvas.Place("A", geom.Point{X: 0, Y: 300})
	fx.canvas.Place("B", geom.Point{X: -200, Y: 420})
	fx.canvas.Place("C", geom.Point{X: 200, Y: 420})
	fx.canvas.Place("D", geom.Point{X: 0, Y: 700})

	eng, err := drag.New(fx.f, fx.canvas, drag.DefaultConfig(), func() { fx.changes++ })
	if err != nil {
		t.Fatalf("drag.New: %v", err)
	}
	fx.engine = eng
	return fx
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*drag.Config)
		wantErr bool
	}{
		{name: "Defaults", mutate: func(*drag.Config) {}},
		{name: "ZeroThreshold", mutate: func(c *drag.Config) { c.SnapOutThreshold = 0 }, wantErr: true},
		{name: "FactorOne", mutate: func(c *drag.Config) { c.RubberBandFactor = 1 }, wantErr: true},
		{name: "NegativeFactor", mutate: func(c *drag.Config) { c.RubberBandFactor = -0.5 }, wantErr: true},
		{name: "ZeroLevelSep", mutate: func(c *drag.Config) { c.LevelSeparation = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := drag.DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFreeDragTracksPointerWithCalibration(t *testing.T) {
	fx := newFixture(t)

	// Grab D off-center: pointer 30 right and 10 below the node center.
	fx.engine.DragStart("D", geom.Point{X: 30, Y: 710})
	fx.engine.DragMove("D", geom.Point{X: 30, Y: 710})

	// The node must not jump to center itself under the cursor.
	if got := fx.canvas.Position("D"); got != (geom.Point{X: 0, Y: 700}) {
		t.Fatalf("D jumped to %+v on calibration move", got)
	}

	fx.engine.DragMove("D", geom.Point{X: 130, Y: 760})
	want := geom.Point{X: 100, Y: 750} // pointer minus the grab offset
	if got := fx.canvas.Position("D"); got != want {
		t.Errorf("D = %+v, want %+v", got, want)
	}

	fx.engine.DragEnd("D", geom.Point{X: 130, Y: 760})
	if fx.changes != 0 {
		t.Errorf("free drop in open space fired %d change notifications", fx.changes)
	}
}

func TestRubberBandLaw(t *testing.T) {
	fx := newFixture(t)
	cfg := drag.DefaultConfig()

	fx.engine.DragStart("B", geom.Point{X: -200, Y: 420})

	for _, disp := range []float64{10, -25, cfg.SnapOutThreshold} {
		fx.engine.DragMove("B", geom.Point{X: -180, Y: 420 + disp})
		got := fx.canvas.Position("B")
		wantY := 420 + disp*cfg.RubberBandFactor
		if math.Abs(got.Y-wantY) > tol {
			t.Errorf("disp %v: Y = %v, want %v", disp, got.Y, wantY)
		}
		if math.Abs(got.X-(-180)) > tol {
			t.Errorf("disp %v: X = %v, want -180 (horizontal tracks pointer)", disp, got.X)
		}
	}

	// Still attached at exactly the threshold.
	if _, ok := fx.f.Parent("B"); !ok {
		t.Fatal("B detached at |disp| == threshold; detach requires |disp| > threshold")
	}
}

func TestSnapBackRestoresVerticalKeepsHorizontal(t *testing.T) {
	fx := newFixture(t)

	fx.engine.DragStart("B", geom.Point{X: -200, Y: 420})
	fx.engine.DragMove("B", geom.Point{X: -50, Y: 460})
	fx.engine.DragEnd("B", geom.Point{X: -50, Y: 460})

	got := fx.canvas.Position("B")
	if got.Y != 420 {
		t.Errorf("B.Y = %v, want 420 (vertical restored)", got.Y)
	}
	if got.X != -50 {
		t.Errorf("B.X = %v, want -50 (horizontal preserved)", got.X)
	}
	if fx.changes != 0 {
		t.Errorf("snap-back fired %d change notifications, want 0", fx.changes)
	}
	if p, _ := fx.f.Parent("B"); p != "A" {
		t.Errorf("B parent = %q, want A", p)
	}
}

func TestDetachFiresOnceAndSticks(t *testing.T) {
	fx := newFixture(t)
	cfg := drag.DefaultConfig()

	fx.engine.DragStart("B", geom.Point{X: -200, Y: 420})
	fx.engine.DragMove("B", geom.Point{X: -200, Y: 420 + cfg.SnapOutThreshold + 1})

	if _, ok := fx.f.Parent("B"); ok {
		t.Fatal("B still attached after crossing the threshold")
	}
	if fx.f.EdgeCount() != 1 {
		t.Fatalf("edges = %d, want 1 (only A→C)", fx.f.EdgeCount())
	}

	// Moving back inside the threshold never re-attaches.
	fx.engine.DragMove("B", geom.Point{X: -200, Y: 425})
	if _, ok := fx.f.Parent("B"); ok {
		t.Error("edge re-added after pointer returned within threshold")
	}

	fx.engine.DragEnd("B", geom.Point{X: -200, Y: 425})
	if fx.changes != 1 {
		t.Errorf("change notifications = %d, want exactly 1", fx.changes)
	}
}

func TestDetachKeepsDescendantsAndRestoresOthers(t *testing.T) {
	fx := newFixture(t)
	cfg := drag.DefaultConfig()

	// Give B a child so the detached subtree has internal structure.
	if err := fx.f.AddNode(forest.Node{ID: "B1"}); err != nil {
		t.Fatal(err)
	}
	if err := fx.f.AddEdge(forest.Edge{From: "B", To: "B1"}); err != nil {
		t.Fatal(err)
	}
	fx.canvas.Place("B1", geom.Point{X: -200, Y: 540})

	fx.engine.DragStart("B", geom.Point{X: -200, Y: 420})

	// Simulate the collaborator speculatively nudging an unrelated node
	// mid-drag; detach must undo it.
	fx.canvas.Place("C", geom.Point{X: 999, Y: 999})

	fx.engine.DragMove("B", geom.Point{X: -200, Y: 420 + cfg.SnapOutThreshold + 50})

	if p, _ := fx.f.Parent("B1"); p != "B" {
		t.Errorf("B1 parent = %q, want B (descendant edges untouched)", p)
	}
	if got := fx.canvas.Position("C"); got != (geom.Point{X: 200, Y: 420}) {
		t.Errorf("C = %+v, want pre-drag position {200 420}", got)
	}

	// The subtree stays rigid through the detach.
	b := fx.canvas.Position("B")
	b1 := fx.canvas.Position("B1")
	if off := b1.Sub(b); off != (geom.Point{X: 0, Y: 120}) {
		t.Errorf("B→B1 offset = %+v, want {0 120}", off)
	}
}

func TestRootDetachClearsFlag(t *testing.T) {
	fx := newFixture(t)
	cfg := drag.DefaultConfig()

	fx.engine.DragStart("A", geom.Point{X: 0, Y: 300})
	fx.engine.DragMove("A", geom.Point{X: 0, Y: 300 + cfg.SnapOutThreshold + 1})

	n, _ := fx.f.Node("A")
	if n.Root {
		t.Error("A.Root still set after snapping out of the root band")
	}
	// A had no incoming edge; its outgoing edges survive.
	if fx.f.EdgeCount() != 2 {
		t.Errorf("edges = %d, want 2", fx.f.EdgeCount())
	}
	fx.engine.DragEnd("A", geom.Point{X: 0, Y: 500})
	if fx.changes != 1 {
		t.Errorf("change notifications = %d, want 1", fx.changes)
	}
}

func TestDropTargetHighlight(t *testing.T) {
	fx := newFixture(t)

	fx.engine.DragStart("D", geom.Point{X: 0, Y: 700})
	fx.engine.DragMove("D", geom.Point{X: 0, Y: 700})

	// Hover D over C: boxes overlap once centers are within half-extents.
	fx.engine.DragMove("D", geom.Point{X: 180, Y: 430})
	if got, _ := fx.engine.Target(); got != "C" {
		t.Fatalf("target = %q, want C", got)
	}
	if fx.canvas.Highlighted() != "C" {
		t.Fatalf("highlight = %q, want C", fx.canvas.Highlighted())
	}

	// Swap to A: previous highlight is replaced, not stacked.
	fx.engine.DragMove("D", geom.Point{X: 10, Y: 310})
	if got, _ := fx.engine.Target(); got != "A" {
		t.Fatalf("target = %q, want A", got)
	}
	if fx.canvas.Highlighted() != "A" {
		t.Fatalf("highlight = %q, want A", fx.canvas.Highlighted())
	}

	// Away from everything: highlight clears.
	fx.engine.DragMove("D", geom.Point{X: 900, Y: 900})
	if _, ok := fx.engine.Target(); ok {
		t.Error("target still set away from all candidates")
	}
	if fx.canvas.Highlighted() != "" {
		t.Errorf("highlight = %q, want cleared", fx.canvas.Highlighted())
	}
}

func TestFreeNodeIsNotADropTarget(t *testing.T) {
	fx := newFixture(t)
	if err := fx.f.AddNode(forest.Node{ID: "E"}); err != nil {
		t.Fatal(err)
	}
	fx.canvas.Place("E", geom.Point{X: 400, Y: 700})

	fx.engine.DragStart("D", geom.Point{X: 0, Y: 700})
	fx.engine.DragMove("D", geom.Point{X: 390, Y: 705})

	if tgt, ok := fx.engine.Target(); ok {
		t.Errorf("free node E became drop target %q", tgt)
	}
}

func TestAttachAsChild(t *testing.T) {
	fx := newFixture(t)
	cfg := drag.DefaultConfig()

	fx.engine.DragStart("D", geom.Point{X: 0, Y: 700})
	fx.engine.DragMove("D", geom.Point{X: 180, Y: 430})
	fx.engine.DragEnd("D", geom.Point{X: 180, Y: 430})

	if p, _ := fx.f.Parent("D"); p != "C" {
		t.Fatalf("D parent = %q, want C", p)
	}
	got := fx.canvas.Position("D")
	want := geom.Point{X: 200, Y: 420 + cfg.LevelSeparation}
	if got != want {
		t.Errorf("D = %+v, want %+v (one level below C)", got, want)
	}
	if fx.changes != 1 {
		t.Errorf("change notifications = %d, want 1", fx.changes)
	}
	if fx.canvas.Highlighted() != "" {
		t.Error("highlight not cleared after drop")
	}
}

func TestAttachPlacesRightOfExistingChildren(t *testing.T) {
	fx := newFixture(t)
	cfg := drag.DefaultConfig()

	// A already has children B (x=-200) and C (x=200).
	fx.engine.DragStart("D", geom.Point{X: 0, Y: 700})
	fx.engine.DragMove("D", geom.Point{X: 10, Y: 310})
	fx.engine.DragEnd("D", geom.Point{X: 10, Y: 310})

	if p, _ := fx.f.Parent("D"); p != "A" {
		t.Fatalf("D parent = %q, want A", p)
	}
	got := fx.canvas.Position("D")
	want := geom.Point{X: 200 + cfg.SiblingSpacing, Y: 300 + cfg.LevelSeparation}
	if got != want {
		t.Errorf("D = %+v, want %+v (right of rightmost child)", got, want)
	}
}

func TestAttachMovesSubtreeRigidly(t *testing.T) {
	fx := newFixture(t)

	// D supervises D1; attaching D carries D1 along.
	if err := fx.f.AddNode(forest.Node{ID: "D1"}); err != nil {
		t.Fatal(err)
	}
	if err := fx.f.AddEdge(forest.Edge{From: "D", To: "D1"}); err != nil {
		t.Fatal(err)
	}
	fx.canvas.Place("D1", geom.Point{X: 40, Y: 820})

	fx.engine.DragStart("D", geom.Point{X: 0, Y: 700})
	fx.engine.DragMove("D", geom.Point{X: 180, Y: 430})
	fx.engine.DragEnd("D", geom.Point{X: 180, Y: 430})

	d := fx.canvas.Position("D")
	d1 := fx.canvas.Position("D1")
	if off := d1.Sub(d); off != (geom.Point{X: 40, Y: 120}) {
		t.Errorf("D→D1 offset = %+v, want {40 120}", off)
	}
}

func TestRootBandArmingUsesTopEdge(t *testing.T) {
	fx := newFixture(t)
	cfg := drag.DefaultConfig()

	fx.engine.DragStart("D", geom.Point{X: 0, Y: 700})
	fx.engine.DragMove("D", geom.Point{X: 500, Y: 700})

	// Node center still below the band, but the box top touches it:
	// center = bandBottom + halfHeight puts the top edge exactly on the line.
	centerY := cfg.RootBandBottom + canvas.DefaultNodeHeight/2
	fx.engine.DragMove("D", geom.Point{X: 500, Y: centerY})
	if !fx.engine.OverRootBand() {
		t.Fatal("band not armed on first bounding-box contact")
	}

	fx.engine.DragMove("D", geom.Point{X: 500, Y: centerY + 1})
	if fx.engine.OverRootBand() {
		t.Fatal("band armed while the box top is below the boundary")
	}
}

func TestCreateRoot(t *testing.T) {
	fx := newFixture(t)

	fx.engine.DragStart("D", geom.Point{X: 0, Y: 700})
	fx.engine.DragMove("D", geom.Point{X: 500, Y: 40})
	fx.engine.DragEnd("D", geom.Point{X: 500, Y: 40})

	n, _ := fx.f.Node("D")
	if !n.Root {
		t.Fatal("D.Root not set after root-band drop")
	}
	got := fx.canvas.Position("D")
	// Existing roots sit at Y=300 in the fixture; new roots join their level.
	if got.Y != 300 {
		t.Errorf("D.Y = %v, want 300 (level of existing roots)", got.Y)
	}
	if got.X != 500 {
		t.Errorf("D.X = %v, want 500 (no overlap, X preserved)", got.X)
	}
	if fx.changes != 1 {
		t.Errorf("change notifications = %d, want 1", fx.changes)
	}
}

func TestCreateRootAvoidsOverlap(t *testing.T) {
	fx := newFixture(t)
	cfg := drag.DefaultConfig()

	// Drop D into the band directly above the existing root A (x≈0).
	fx.engine.DragStart("D", geom.Point{X: 0, Y: 700})
	fx.engine.DragMove("D", geom.Point{X: 20, Y: 40})
	fx.engine.DragEnd("D", geom.Point{X: 20, Y: 40})

	got := fx.canvas.Position("D")
	want := geom.Point{X: 0 + cfg.SiblingSpacing, Y: 300}
	if got != want {
		t.Errorf("D = %+v, want %+v (shifted right of rightmost root)", got, want)
	}
}

func TestCreateFirstRootUsesCanonicalAnchor(t *testing.T) {
	f := forest.New()
	c := canvas.NewMemory()
	for _, id := range []string{"X", "Y"} {
		if err := f.AddNode(forest.Node{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	c.Place("X", geom.Point{X: 0, Y: 500})
	c.Place("Y", geom.Point{X: 300, Y: 500})
	cfg := drag.DefaultConfig()
	eng, err := drag.New(f, c, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	eng.DragStart("X", geom.Point{X: 0, Y: 500})
	eng.DragMove("X", geom.Point{X: 0, Y: 30})
	eng.DragEnd("X", geom.Point{X: 0, Y: 30})

	if got := c.Position("X").Y; got != cfg.RootY {
		t.Errorf("first root Y = %v, want canonical anchor %v", got, cfg.RootY)
	}
}

func TestNodeOverlapBeatsRootBand(t *testing.T) {
	fx := newFixture(t)

	// Park A inside the band so a hover over A is also a band hover.
	fx.canvas.Place("A", geom.Point{X: 0, Y: 40})

	fx.engine.DragStart("D", geom.Point{X: 0, Y: 700})
	fx.engine.DragMove("D", geom.Point{X: 10, Y: 50})

	if got, _ := fx.engine.Target(); got != "A" {
		t.Fatalf("target = %q, want A", got)
	}
	if fx.engine.OverRootBand() {
		t.Error("band armed while a node overlap takes priority")
	}
}

func TestStaleAndConcurrentEventsIgnored(t *testing.T) {
	fx := newFixture(t)

	// Events with no active session are no-ops.
	fx.engine.DragMove("B", geom.Point{X: 0, Y: 0})
	fx.engine.DragEnd("B", geom.Point{X: 0, Y: 0})

	fx.engine.DragStart("B", geom.Point{X: -200, Y: 420})

	// A second finger touching another node is ignored.
	fx.engine.DragStart("C", geom.Point{X: 200, Y: 420})
	if id, _ := fx.engine.Dragging(); id != "B" {
		t.Fatalf("active session = %q, want B", id)
	}

	// Moves and ends for the wrong node are ignored.
	before := fx.canvas.Position("C")
	fx.engine.DragMove("C", geom.Point{X: 0, Y: 0})
	if got := fx.canvas.Position("C"); got != before {
		t.Errorf("stale move displaced C to %+v", got)
	}
	fx.engine.DragEnd("C", geom.Point{X: 0, Y: 0})
	if _, ok := fx.engine.Dragging(); !ok {
		t.Fatal("session destroyed by stale drag-end")
	}

	fx.engine.DragEnd("B", geom.Point{X: -200, Y: 420})
	if _, ok := fx.engine.Dragging(); ok {
		t.Error("session survived its own drag-end")
	}
}

func TestDragStartUnknownNodeIgnored(t *testing.T) {
	fx := newFixture(t)
	fx.engine.DragStart("ghost", geom.Point{})
	if _, ok := fx.engine.Dragging(); ok {
		t.Error("session created for unknown node")
	}
}

func TestDetachThenAttachSingleNotification(t *testing.T) {
	fx := newFixture(t)
	cfg := drag.DefaultConfig()

	// One gesture: snap B out of A, drag it over C, drop.
	fx.engine.DragStart("B", geom.Point{X: -200, Y: 420})
	fx.engine.DragMove("B", geom.Point{X: -200, Y: 420 + cfg.SnapOutThreshold + 10})
	fx.engine.DragMove("B", geom.Point{X: 180, Y: 430})
	fx.engine.DragEnd("B", geom.Point{X: 180, Y: 430})

	if p, _ := fx.f.Parent("B"); p != "C" {
		t.Fatalf("B parent = %q, want C", p)
	}
	if fx.changes != 1 {
		t.Errorf("change notifications = %d, want exactly 1 per gesture", fx.changes)
	}
}
