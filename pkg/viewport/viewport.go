// Package viewport manages the camera transform over the rendering
// collaborator's pan and zoom primitives.
//
// The controller is independent of graph structure: it clamps vertical
// panning so the user can never scroll above the root band, bounds zoom to a
// configured range while anchoring it at the top of the viewport, and
// preserves the user's chosen zoom level exactly across container resizes.
// All screen-offset math multiplies by scale, because the reserved root band
// visually scales with zoom.
package viewport

import (
	"errors"
	"fmt"
	"math"

	"github.com/kmathys/orgcanvas/pkg/geom"
)

// View is the camera transform: (X, Y) is the canvas point shown at the
// viewport's top-left corner, Scale is canvas-to-screen magnification.
// Screen position of a canvas point p is (p - {X,Y}) * Scale.
type View struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// Ops is the collaborator surface the controller drives.
type Ops interface {
	Viewport() View
	SetViewport(v View)
}

// Config holds the camera tunables.
type Config struct {
	// MinScale and MaxScale bound zooming.
	MinScale float64
	MaxScale float64

	// RootY is the canonical canvas Y of the root line.
	RootY float64

	// RootScreenOffset is where the root line should sit below the top of
	// the screen, expressed in canvas units. The on-screen distance is
	// RootScreenOffset * scale, so the band grows and shrinks with zoom.
	RootScreenOffset float64
}

// DefaultConfig returns the camera defaults.
func DefaultConfig() Config {
	return Config{
		MinScale:         0.25,
		MaxScale:         3.0,
		RootY:            0,
		RootScreenOffset: 80,
	}
}

// Validate checks config sanity.
func (c Config) Validate() error {
	if c.MinScale <= 0 {
		return errors.New("min scale must be positive")
	}
	if c.MaxScale < c.MinScale {
		return fmt.Errorf("max scale %v below min scale %v", c.MaxScale, c.MinScale)
	}
	if c.RootScreenOffset < 0 {
		return errors.New("root screen offset must not be negative")
	}
	return nil
}

// Controller enforces the camera constraints. It remembers the container
// size and the scale the user last chose explicitly, so resizes never
// silently change zoom.
type Controller struct {
	ops       Ops
	cfg       Config
	width     float64
	height    float64
	userScale float64
}

// New creates a controller over the collaborator's viewport primitives.
func New(ops Ops, cfg Config, width, height float64) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("viewport config: %w", err)
	}
	c := &Controller{ops: ops, cfg: cfg, width: width, height: height}
	c.userScale = c.clampScale(ops.Viewport().Scale)
	return c, nil
}

// minY is the pan limit: with the root line pinned RootScreenOffset canvas
// units below the viewport top, the top-left canvas Y can never go below
// RootY - RootScreenOffset. The screen-space pin distance is
// RootScreenOffset * scale, which cancels against the camera scale, so the
// limit itself is scale-independent.
func (c *Controller) minY() float64 {
	return c.cfg.RootY - c.cfg.RootScreenOffset
}

func (c *Controller) clampScale(s float64) float64 {
	if s < c.cfg.MinScale {
		return c.cfg.MinScale
	}
	if s > c.cfg.MaxScale {
		return c.cfg.MaxScale
	}
	return s
}

// Pan shifts the camera by a screen-space delta. The horizontal axis is
// unconstrained; the vertical axis clamps at the root-band pin line.
func (c *Controller) Pan(dxScreen, dyScreen float64) {
	v := c.ops.Viewport()
	if v.Scale <= 0 {
		return
	}
	v.X += dxScreen / v.Scale
	v.Y = math.Max(v.Y+dyScreen/v.Scale, c.minY())
	c.ops.SetViewport(v)
}

// Zoom multiplies the scale by factor, clamped to [MinScale, MaxScale]. The
// canvas position at the top of the viewport stays fixed, so content zooms
// "from the top"; when the view is pinned at the vertical limit it stays
// pinned. Horizontally the zoom is anchored on the viewport center. The
// resulting scale becomes the user's chosen zoom level.
func (c *Controller) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	v := c.ops.Viewport()
	if v.Scale <= 0 {
		return
	}
	newScale := c.clampScale(v.Scale * factor)
	if newScale == v.Scale {
		return
	}

	centerX := v.X + c.width/(2*v.Scale)
	v.X = centerX - c.width/(2*newScale)
	// v.Y is the top-of-viewport canvas position; keeping it untouched is
	// exactly the "zoom from the top" anchor, and the pin limit is
	// scale-independent so a pinned view stays pinned.
	v.Y = math.Max(v.Y, c.minY())
	v.Scale = newScale
	c.ops.SetViewport(v)

	c.userScale = newScale
}

// Scale returns the user's explicitly chosen zoom level.
func (c *Controller) Scale() float64 { return c.userScale }

// Resize handles a container size change. Zero-sized and no-op notifications
// are ignored to avoid feedback loops with the collaborator's own re-layout.
// The user's zoom level is preserved exactly; only the vertical position is
// recomputed so the root line sits at its pinned offset at the new height.
func (c *Controller) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	if width == c.width && height == c.height {
		return
	}

	v := c.ops.Viewport()
	if v.Scale <= 0 {
		return
	}
	centerX := v.X + c.width/(2*v.Scale)

	c.width = width
	c.height = height

	v.Scale = c.userScale
	v.X = centerX - width/(2*v.Scale)
	v.Y = c.minY()
	c.ops.SetViewport(v)
}

// Fit chooses an initial zoom so the given content bounds fit the container,
// clamped to the scale range, centers the content horizontally, and pins the
// camera at the root line. Call it once after the first layout pass.
func (c *Controller) Fit(bounds geom.Rect) {
	scale := c.cfg.MaxScale
	if bounds.Width() > 0 {
		scale = math.Min(scale, c.width/bounds.Width())
	}
	if bounds.Height() > 0 {
		scale = math.Min(scale, c.height/bounds.Height())
	}
	scale = c.clampScale(scale)

	v := View{
		X:     bounds.Center().X - c.width/(2*scale),
		Y:     c.minY(),
		Scale: scale,
	}
	c.ops.SetViewport(v)
	c.userScale = scale
}
