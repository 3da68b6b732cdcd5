// Package geom provides the 2D primitives shared by the layout engine,
// the drag state machine, and the viewport controller.
//
// All coordinates live in the canvas coordinate space owned by the rendering
// collaborator. Y grows downward, matching the screen convention used by the
// collaborator's coordinate conversion functions.
package geom

import "math"

// Point is a position in canvas coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the point translated by d.
func (p Point) Add(d Point) Point { return Point{X: p.X + d.X, Y: p.Y + d.Y} }

// Sub returns the offset from q to p.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Rect is an axis-aligned bounding box. Top < Bottom because Y grows
// downward.
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: (r.Left + r.Right) / 2, Y: (r.Top + r.Bottom) / 2}
}

// Intersects reports whether r and o overlap. Touching edges count as an
// overlap: a drop target should highlight as soon as any edge makes contact,
// not only once one rectangle penetrates the other.
func (r Rect) Intersects(o Rect) bool {
	return r.Left <= o.Right && o.Left <= r.Right &&
		r.Top <= o.Bottom && o.Top <= r.Bottom
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Top:    math.Min(r.Top, o.Top),
		Left:   math.Min(r.Left, o.Left),
		Right:  math.Max(r.Right, o.Right),
		Bottom: math.Max(r.Bottom, o.Bottom),
	}
}

// BoundsOf returns the bounding box of a set of points.
// Returns the zero Rect and false for an empty input.
func BoundsOf(points []Point) (Rect, bool) {
	if len(points) == 0 {
		return Rect{}, false
	}
	r := Rect{Top: points[0].Y, Left: points[0].X, Right: points[0].X, Bottom: points[0].Y}
	for _, p := range points[1:] {
		r.Top = math.Min(r.Top, p.Y)
		r.Left = math.Min(r.Left, p.X)
		r.Right = math.Max(r.Right, p.X)
		r.Bottom = math.Max(r.Bottom, p.Y)
	}
	return r, true
}
