// Package layer computes where and how the base image of a viewer is drawn
// and tracks its loading indicator and fade-in.
package layer

import (
	"github.com/electronjoe/deepframe/internal/bbox"
	"github.com/electronjoe/deepframe/internal/view"
)

// DimmedOpacity is the base image opacity while tiles are drawn over it.
const DimmedOpacity = 0.6

// Placement is the on-screen box of the unrotated image element. The
// rotation is applied around (CenterX, CenterY).
type Placement struct {
	CenterX, CenterY float64
	Width, Height    float64
	Rotation         int
}

// Left is the x coordinate of the unrotated element.
func (p Placement) Left() float64 { return p.CenterX - p.Width/2 }

// Top is the y coordinate of the unrotated element.
func (p Placement) Top() float64 { return p.CenterY - p.Height/2 }

// Rotated returns w, h swapped when rot is a quarter or three-quarter turn.
func Rotated(w, h float64, rot int) (float64, float64) {
	if r := bbox.Normalize(rot); r == 90 || r == 270 {
		return h, w
	}
	return w, h
}

// Base places an image of natural size natW x natH, displayed with rotation
// rot, in a viewport at view state s. It reports false when there is
// nothing to draw yet.
func Base(natW, natH float64, rot int, viewportW, viewportH float64, s view.State) (Placement, bool) {
	rw, rh := Rotated(natW, natH, rot)
	g := view.Geometry{ViewportW: viewportW, ViewportH: viewportH, ImageW: rw, ImageH: rh}
	fit, ok := g.FitScale()
	if !ok {
		return Placement{}, false
	}
	return Placement{
		CenterX:  viewportW/2 + s.OffsetX,
		CenterY:  viewportH/2 + s.OffsetY,
		Width:    natW * fit * s.Scale,
		Height:   natH * fit * s.Scale,
		Rotation: bbox.Normalize(rot),
	}, true
}

// Opacity is the base layer alpha given whether tiles are active and loaded.
func Opacity(tilesActive, tilesLoaded bool) float64 {
	if tilesActive && tilesLoaded {
		return DimmedOpacity
	}
	return 1
}
