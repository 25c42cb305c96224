// Package resolution picks the base-image tier for the current display.
package resolution

import (
	"fmt"
	"math"
)

// Tier is a base-image resolution tier served by the thumbnailer.
type Tier int

const (
	Standard Tier = iota
	High
)

// Threshold is the effective pixel size above which the high tier is used.
const Threshold = 1920.0

// Edge returns the square edge length of the tier in pixels.
func (t Tier) Edge() int {
	if t == High {
		return 3840
	}
	return 1920
}

// Size returns the tier as used in thumbnailer paths, e.g. "1920x1920".
func (t Tier) Size() string {
	return fmt.Sprintf("%dx%d", t.Edge(), t.Edge())
}

func (t Tier) String() string {
	if t == High {
		return "high"
	}
	return "standard"
}

// Select returns High when max(w, h) * pixelRatio is strictly greater than
// Threshold, Standard otherwise.
func Select(viewportW, viewportH, pixelRatio float64) Tier {
	if Effective(viewportW, viewportH, pixelRatio) > Threshold {
		return High
	}
	return Standard
}

// Effective is the largest viewport side in device pixels.
func Effective(viewportW, viewportH, pixelRatio float64) float64 {
	return math.Max(viewportW, viewportH) * pixelRatio
}

// Selector remembers the last inputs so resize and display changes can be
// detected by the render loop.
type Selector struct {
	w, h, ratio float64
	tier        Tier
	primed      bool
}

// Update recomputes the tier and reports whether it differs from the
// previous result. The first call always reports a change.
func (s *Selector) Update(viewportW, viewportH, pixelRatio float64) (Tier, bool) {
	if s.primed && s.w == viewportW && s.h == viewportH && s.ratio == pixelRatio {
		return s.tier, false
	}
	s.w, s.h, s.ratio = viewportW, viewportH, pixelRatio
	next := Select(viewportW, viewportH, pixelRatio)
	changed := !s.primed || next != s.tier
	s.tier = next
	s.primed = true
	return next, changed
}

// Tier returns the last selected tier.
func (s *Selector) Tier() Tier { return s.tier }
