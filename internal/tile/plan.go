// Package tile addresses the square tile pyramid of a photo and schedules
// which tiles to fetch for the current view.
package tile

import (
	"fmt"
	"math"
	"sort"

	"github.com/electronjoe/deepframe/internal/view"
)

const (
	// Size is the nominal edge of one tile in display pixels.
	Size = 256
	// MaxLevel is the deepest pyramid level requested.
	MaxLevel = 5
	// ActivationScale is the view scale from which tiles are drawn over the
	// base image.
	ActivationScale = 1.5
)

// maxShift keeps 1<<Z inside an int.
const maxShift = 30

// Coord identifies one tile. X and Y are in [0, 2^Z).
type Coord struct {
	Z, X, Y int
}

func (c Coord) String() string {
	return fmt.Sprintf("%d/%d/%d", c.Z, c.X, c.Y)
}

// Valid reports whether the coordinate lies inside its level.
func (c Coord) Valid() bool {
	if c.Z < 0 || c.Z > maxShift || c.X < 0 || c.Y < 0 {
		return false
	}
	n := 1 << c.Z
	return c.X < n && c.Y < n
}

// Active reports whether tiles are drawn at scale.
func Active(scale float64) bool {
	return scale >= ActivationScale
}

// Input is everything a plan depends on. Image dimensions are already
// rotation adjusted.
type Input struct {
	State                view.State
	ImageW, ImageH       float64
	ViewportW, ViewportH float64
	// MaxLevel overrides the package MaxLevel when positive.
	MaxLevel int
}

func (in Input) geometry() view.Geometry {
	return view.Geometry{ViewportW: in.ViewportW, ViewportH: in.ViewportH, ImageW: in.ImageW, ImageH: in.ImageH}
}

func (in Input) maxLevel() int {
	if in.MaxLevel > 0 {
		return in.MaxLevel
	}
	return MaxLevel
}

// Rect is a screen-space rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Visible reports whether r intersects a viewport of the given size.
func (r Rect) Visible(viewportW, viewportH float64) bool {
	return r.X < viewportW && r.Y < viewportH && r.X+r.W > 0 && r.Y+r.H > 0
}

// Plan is the pyramid laid out on screen for one view state.
type Plan struct {
	Level int
	// GridSize is the on-screen edge of the whole square pyramid.
	GridSize float64
	// Left and Top are the screen position of the pyramid's corner.
	Left, Top float64
	// Tiles holds every coordinate of Level, nearest to the viewport
	// center first.
	Tiles []Coord
}

// GridSize returns the on-screen size of the square pyramid.
func GridSize(in Input) (float64, bool) {
	fit, ok := in.geometry().FitScale()
	if !ok {
		return 0, false
	}
	return math.Max(in.ImageW, in.ImageH) * fit * in.State.Scale, true
}

// Level picks the smallest level whose tiles are not upscaled on screen.
func Level(in Input) (int, bool) {
	grid, ok := GridSize(in)
	if !ok || grid <= 0 {
		return 0, false
	}
	z := int(math.Ceil(math.Log2(grid / Size)))
	if z < 0 {
		z = 0
	}
	if limit := in.maxLevel(); z > limit {
		z = limit
	}
	return z, true
}

// NewPlan lays out the pyramid for in. It reports false when the viewport
// or image has no area.
func NewPlan(in Input) (Plan, bool) {
	z, ok := Level(in)
	if !ok {
		return Plan{}, false
	}
	grid, _ := GridSize(in)
	p := Plan{
		Level:    z,
		GridSize: grid,
		Left:     in.ViewportW/2 + in.State.OffsetX - grid/2,
		Top:      in.ViewportH/2 + in.State.OffsetY - grid/2,
	}

	n := 1 << z
	p.Tiles = make([]Coord, 0, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			p.Tiles = append(p.Tiles, Coord{Z: z, X: x, Y: y})
		}
	}

	cx, cy := in.ViewportW/2, in.ViewportH/2
	dist := func(c Coord) float64 {
		r := p.Rect(c)
		return math.Hypot(r.X+r.W/2-cx, r.Y+r.H/2-cy)
	}
	sort.SliceStable(p.Tiles, func(i, j int) bool {
		return dist(p.Tiles[i]) < dist(p.Tiles[j])
	})
	return p, true
}

// Rect returns the screen rectangle of c on this plan's grid. Coordinates of
// other levels are placed on the same grid.
func (p Plan) Rect(c Coord) Rect {
	cell := p.GridSize / float64(int(1)<<c.Z)
	return Rect{
		X: p.Left + float64(c.X)*cell,
		Y: p.Top + float64(c.Y)*cell,
		W: cell,
		H: cell,
	}
}
