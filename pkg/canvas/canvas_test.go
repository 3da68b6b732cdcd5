package canvas_test

import (
	"testing"

	"github.com/kmathys/orgcanvas/pkg/canvas"
	"github.com/kmathys/orgcanvas/pkg/forest"
	"github.com/kmathys/orgcanvas/pkg/geom"
	"github.com/kmathys/orgcanvas/pkg/viewport"
)

func TestBoundingBoxDefaults(t *testing.T) {
	c := canvas.NewMemory()
	c.Place("a", geom.Point{X: 100, Y: 200})

	box := c.BoundingBox("a")
	if got := box.Width(); got != canvas.DefaultNodeWidth {
		t.Errorf("width = %v, want %v", got, canvas.DefaultNodeWidth)
	}
	if got := box.Height(); got != canvas.DefaultNodeHeight {
		t.Errorf("height = %v, want %v", got, canvas.DefaultNodeHeight)
	}
	if got := box.Center(); got != (geom.Point{X: 100, Y: 200}) {
		t.Errorf("center = %v, want the placed position", got)
	}
}

func TestBoundingBoxCustomSize(t *testing.T) {
	c := canvas.NewMemory()
	c.Place("a", geom.Point{X: 0, Y: 0})
	c.SetSize("a", 200, 100)

	box := c.BoundingBox("a")
	if box.Width() != 200 || box.Height() != 100 {
		t.Errorf("box = %+v, want 200x100", box)
	}
}

func TestSetPositionsBatch(t *testing.T) {
	c := canvas.NewMemory()
	c.Place("a", geom.Point{})
	c.Place("b", geom.Point{})

	c.SetPositions([]forest.PositionUpdate{
		{ID: "a", Pos: geom.Point{X: 10, Y: 20}},
		{ID: "b", Pos: geom.Point{X: 30, Y: 40}},
	})
	if got := c.Position("a"); got != (geom.Point{X: 10, Y: 20}) {
		t.Errorf("a = %v", got)
	}
	if got := c.Position("b"); got != (geom.Point{X: 30, Y: 40}) {
		t.Errorf("b = %v", got)
	}
}

func TestPositionsReturnsCopy(t *testing.T) {
	c := canvas.NewMemory()
	c.Place("a", geom.Point{X: 1, Y: 2})

	snap := c.Positions()
	snap["a"] = geom.Point{X: 99, Y: 99}
	if got := c.Position("a"); got != (geom.Point{X: 1, Y: 2}) {
		t.Errorf("mutating the snapshot leaked into the canvas: %v", got)
	}
}

func TestEdgesAndRemove(t *testing.T) {
	c := canvas.NewMemory()
	c.Place("a", geom.Point{})
	c.Place("b", geom.Point{})
	c.AddEdge(forest.Edge{From: "a", To: "b"})

	c.RemoveEdge("a", "b")
	if got := len(c.Edges()); got != 0 {
		t.Errorf("edges after removal = %d, want 0", got)
	}

	c.AddEdge(forest.Edge{From: "a", To: "b"})
	c.Remove("b")
	if got := len(c.Edges()); got != 0 {
		t.Errorf("edges after removing endpoint = %d, want 0", got)
	}
	if _, ok := c.Positions()["b"]; ok {
		t.Error("removed node still has a position")
	}
}

func TestHighlight(t *testing.T) {
	c := canvas.NewMemory()
	c.SetHighlight("a")
	if got := c.Highlighted(); got != "a" {
		t.Errorf("highlight = %q", got)
	}
	c.SetHighlight("")
	if got := c.Highlighted(); got != "" {
		t.Errorf("highlight after clear = %q", got)
	}
}

func TestScreenCanvasRoundTrip(t *testing.T) {
	c := canvas.NewMemory()
	c.SetViewport(viewport.View{X: 100, Y: -80, Scale: 2})

	p := geom.Point{X: 250, Y: 120}
	screen := c.CanvasToScreen(p)
	if want := (geom.Point{X: 300, Y: 400}); screen != want {
		t.Errorf("screen = %v, want %v", screen, want)
	}
	if back := c.ScreenToCanvas(screen); back != p {
		t.Errorf("round trip = %v, want %v", back, p)
	}
}
