package viewer

import (
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/electronjoe/deepframe/internal/bbox"
	"github.com/electronjoe/deepframe/internal/layer"
	"github.com/electronjoe/deepframe/internal/tile"
)

var (
	faceColor     = color.RGBA{0x4f, 0xc3, 0xf7, 0xff}
	objectColor   = color.RGBA{0xff, 0xb7, 0x4d, 0xff}
	verifiedColor = color.RGBA{0x81, 0xc7, 0x84, 0xff}
	spinnerColor  = color.RGBA{0xff, 0xff, 0xff, 0xc0}
)

// DrawOptions select the overlays of one frame.
type DrawOptions struct {
	// OriginX is the screen x of the viewer's left edge.
	OriginX  float64
	Boxes    bool
	// Selected is the id of the highlighted tag.
	Selected string
	Now      time.Time
}

func radians(deg int) float64 { return float64(deg) * math.Pi / 180 }

// Draw renders the viewer into dst, which is clipped to the viewer's
// viewport.
func (v *Viewer) Draw(dst *ebiten.Image, o DrawOptions) {
	if !v.mounted {
		return
	}
	s := v.ctrl.State()
	p, ok := layer.Base(v.natW, v.natH, v.rotation, v.viewport.w, v.viewport.h, s)
	if !ok {
		if v.loading.Indicator(o.Now) {
			v.drawSpinner(dst, o)
		}
		return
	}

	active := tile.Active(s.Scale)
	opacity := layer.Opacity(active, v.engine.HasLoaded())
	if v.base != nil {
		alpha := 1.0
		if v.baseKey == v.loading.URL() && !v.swapped {
			alpha = v.loading.Alpha(o.Now)
		}
		tw, th := v.base.Size()
		var geo ebiten.GeoM
		geo.Translate(-float64(tw)/2, -float64(th)/2)
		geo.Scale(p.Width/float64(tw), p.Height/float64(th))
		geo.Rotate(radians(p.Rotation))
		geo.Translate(o.OriginX+p.CenterX, p.CenterY)
		v.base.Draw(dst, geo, float32(opacity*alpha))
	}

	if active {
		v.drawTiles(dst, o)
	}
	if o.Boxes {
		v.drawBoxes(dst, p, o)
	}
	if v.loading.Indicator(o.Now) {
		v.drawSpinner(dst, o)
	}
}

func (v *Viewer) drawTiles(dst *ebiten.Image, o DrawOptions) {
	plan, ok := v.engine.Plan()
	if !ok {
		return
	}
	for _, lt := range v.engine.Loaded() {
		img, ok := v.tiles[lt.Coord]
		if !ok {
			continue
		}
		r := plan.Rect(lt.Coord)
		if !r.Visible(v.viewport.w, v.viewport.h) {
			continue
		}
		b := img.Bounds()
		op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
		op.GeoM.Scale(r.W/float64(b.Dx()), r.H/float64(b.Dy()))
		op.GeoM.Translate(o.OriginX+r.X, r.Y)
		dst.DrawImage(img, op)
	}
}

// drawBoxes outlines each tag on the unrotated element and rotates the
// outline with it. Labels are counter-rotated to stay upright.
func (v *Viewer) drawBoxes(dst *ebiten.Image, p layer.Placement, o DrawOptions) {
	if !v.HasTags() {
		return
	}
	var elem ebiten.GeoM
	elem.Rotate(radians(p.Rotation))
	elem.Translate(o.OriginX+p.CenterX, p.CenterY)

	face := basicfont.Face7x13
	for _, t := range v.tags {
		r := bbox.Place(bbox.Transform(t.Box, v.rotation))
		x0 := r.Left/100*p.Width - p.Width/2
		y0 := r.Top/100*p.Height - p.Height/2
		x1 := x0 + r.Width/100*p.Width
		y1 := y0 + r.Height/100*p.Height

		clr := color.Color(objectColor)
		switch {
		case t.Verified:
			clr = verifiedColor
		case t.Kind == bbox.Face:
			clr = faceColor
		}
		width := float32(2)
		if t.ID == o.Selected {
			width = 5
		}
		corners := [4][2]float64{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
		for i := range corners {
			ax, ay := elem.Apply(corners[i][0], corners[i][1])
			bx, by := elem.Apply(corners[(i+1)%4][0], corners[(i+1)%4][1])
			vector.StrokeLine(dst, float32(ax), float32(ay), float32(bx), float32(by), width, clr, true)
		}

		if t.Label == "" {
			continue
		}
		// Anchor at the corner that appears top-left once rotated.
		ax, ay := x0, y0
		switch p.Rotation {
		case 90:
			ax, ay = x0, y1
		case 180:
			ax, ay = x1, y1
		case 270:
			ax, ay = x1, y0
		}
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(2, -4)
		op.GeoM.Rotate(radians(bbox.LabelRotation(p.Rotation)))
		op.GeoM.Translate(ax, ay)
		op.GeoM.Concat(elem)
		op.ColorScale.ScaleWithColor(clr)
		text.DrawWithOptions(dst, t.Label, face, op)
	}
}

// drawSpinner draws three dots orbiting the viewport center.
func (v *Viewer) drawSpinner(dst *ebiten.Image, o DrawOptions) {
	cx := float32(o.OriginX + v.viewport.w/2)
	cy := float32(v.viewport.h / 2)
	phase := float64(o.Now.UnixMilli()%1000) / 1000 * 2 * math.Pi
	for i := 0; i < 3; i++ {
		a := phase + float64(i)*2*math.Pi/3
		x := cx + float32(18*math.Cos(a))
		y := cy + float32(18*math.Sin(a))
		vector.DrawFilledCircle(dst, x, y, 5, spinnerColor, true)
	}
}
