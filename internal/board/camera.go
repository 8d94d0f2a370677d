package board

import "math"

// Zoom limits applied by Viewport.
const (
	MinZoom = 0.1
	MaxZoom = 8.0
)

// Wheel zoom factors per discrete scroll tick.
const (
	WheelZoomIn  = 1.1
	WheelZoomOut = 0.9
)

// Viewport maps world coordinates to screen coordinates:
//
//	screen = world*Zoom + Offset
type Viewport struct {
	Zoom    float64
	OffsetX float64
	OffsetY float64
}

// NewViewport returns an identity viewport.
func NewViewport() Viewport {
	return Viewport{Zoom: 1}
}

// ToScreen converts a world point to screen space.
func (v Viewport) ToScreen(w Point) Point {
	return Point{X: w.X*v.Zoom + v.OffsetX, Y: w.Y*v.Zoom + v.OffsetY}
}

// ToWorld converts a screen point to world space.
func (v Viewport) ToWorld(s Point) Point {
	return Point{X: (s.X - v.OffsetX) / v.Zoom, Y: (s.Y - v.OffsetY) / v.Zoom}
}

// Pan shifts the offset by (dx, dy) screen pixels.
func (v *Viewport) Pan(dx, dy float64) {
	v.OffsetX += dx
	v.OffsetY += dy
}

// ZoomAt multiplies the zoom by factor, clamped to [MinZoom, MaxZoom], and
// moves the offset so the world point under focal stays under focal.
// Non-positive and non-finite factors are ignored.
func (v *Viewport) ZoomAt(focal Point, factor float64) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return
	}
	if v.Zoom <= 0 {
		v.Zoom = 1
	}
	w := v.ToWorld(focal)
	z := v.Zoom * factor
	if z < MinZoom {
		z = MinZoom
	}
	if z > MaxZoom {
		z = MaxZoom
	}
	v.Zoom = z
	v.OffsetX = focal.X - w.X*z
	v.OffsetY = focal.Y - w.Y*z
}

// WheelFactor maps a wheel delta to a zoom factor. Positive deltas zoom in.
func WheelFactor(delta float64) float64 {
	switch {
	case delta > 0:
		return WheelZoomIn
	case delta < 0:
		return WheelZoomOut
	}
	return 1
}
