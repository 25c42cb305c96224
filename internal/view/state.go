// Package view owns the pan/zoom transform of a single photo viewer and the
// gesture state machine that mutates it.
package view

import "math"

const (
	MinScale = 1.0
	MaxScale = 16.0

	// DoubleTapScale is the zoom applied by a double click from scale 1.
	DoubleTapScale = 3.0
)

// State is the pan/zoom of one viewer. Offsets are in screen pixels relative
// to the viewport center.
type State struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// Identity is the state of a freshly shown photo.
var Identity = State{Scale: 1}

// ClampScale limits s to [MinScale, MaxScale]. NaN collapses to MinScale.
func ClampScale(s float64) float64 {
	if math.IsNaN(s) || s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}

// Geometry is the viewport and the rotation-adjusted image size a State is
// interpreted against.
type Geometry struct {
	ViewportW, ViewportH float64
	ImageW, ImageH       float64
}

// Ready reports whether every dimension is positive.
func (g Geometry) Ready() bool {
	return g.ViewportW > 0 && g.ViewportH > 0 && g.ImageW > 0 && g.ImageH > 0
}

// FitScale is the scale at which the image exactly fits the viewport.
func (g Geometry) FitScale() (float64, bool) {
	if !g.Ready() {
		return 0, false
	}
	return math.Min(g.ViewportW/g.ImageW, g.ViewportH/g.ImageH), true
}

// ScaledSize is the on-screen image size at scale.
func (g Geometry) ScaledSize(scale float64) (w, h float64, ok bool) {
	fit, ok := g.FitScale()
	if !ok {
		return 0, 0, false
	}
	return g.ImageW * fit * scale, g.ImageH * fit * scale, true
}

// MaxOffset is the largest offset magnitude per axis that keeps the image
// covering as much of the viewport as it can.
func (g Geometry) MaxOffset(scale float64) (x, y float64) {
	w, h, ok := g.ScaledSize(scale)
	if !ok {
		return 0, 0
	}
	return math.Max(0, (w-g.ViewportW)/2), math.Max(0, (h-g.ViewportH)/2)
}

// Clamp bounds the scale and then each offset axis independently.
func (g Geometry) Clamp(s State) State {
	s.Scale = ClampScale(s.Scale)
	mx, my := g.MaxOffset(s.Scale)
	s.OffsetX = clamp(s.OffsetX, -mx, mx)
	s.OffsetY = clamp(s.OffsetY, -my, my)
	return s
}

// ZoomAt multiplies the scale by ratio while keeping the viewport point
// (px, py) visually fixed. The result is clamped.
func (g Geometry) ZoomAt(s State, px, py, ratio float64) State {
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return g.Clamp(s)
	}
	next := ClampScale(s.Scale * ratio)
	r := next / s.Scale
	dx := px - g.ViewportW/2
	dy := py - g.ViewportH/2
	return g.Clamp(State{
		Scale:   next,
		OffsetX: (s.OffsetX-dx)*r + dx,
		OffsetY: (s.OffsetY-dy)*r + dy,
	})
}

// Pan moves the offset by (dx, dy) and clamps.
func (g Geometry) Pan(s State, dx, dy float64) State {
	s.OffsetX += dx
	s.OffsetY += dy
	return g.Clamp(s)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
