package viewer

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// maxPartSize bounds each GPU image a texture is split into.
const maxPartSize = 2048

// Texture holds one decoded image that may be split into several ebiten
// images if its dimensions exceed maxPartSize.
type Texture struct {
	parts  []part
	width  int
	height int
}

type part struct {
	img  *ebiten.Image
	x, y int
}

// NewTexture uploads src, chopping it into parts no larger than maxPartSize.
func NewTexture(src image.Image) *Texture {
	b := src.Bounds()
	t := &Texture{width: b.Dx(), height: b.Dy()}
	sub, canSub := src.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if !canSub || (t.width <= maxPartSize && t.height <= maxPartSize) {
		t.parts = []part{{img: ebiten.NewImageFromImage(src)}}
		return t
	}
	for y := 0; y < t.height; y += maxPartSize {
		for x := 0; x < t.width; x += maxPartSize {
			r := image.Rect(
				b.Min.X+x,
				b.Min.Y+y,
				b.Min.X+min(x+maxPartSize, t.width),
				b.Min.Y+min(y+maxPartSize, t.height),
			)
			t.parts = append(t.parts, part{img: ebiten.NewImageFromImage(sub.SubImage(r)), x: x, y: y})
		}
	}
	return t
}

// Size returns the pixel size of the whole texture.
func (t *Texture) Size() (int, int) { return t.width, t.height }

// Draw draws the texture with its top-left corner at the origin of geo.
func (t *Texture) Draw(dst *ebiten.Image, geo ebiten.GeoM, alpha float32) {
	for _, p := range t.parts {
		op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
		op.GeoM.Translate(float64(p.x), float64(p.y))
		op.GeoM.Concat(geo)
		op.ColorScale.ScaleAlpha(alpha)
		dst.DrawImage(p.img, op)
	}
}

// Dispose releases the GPU images.
func (t *Texture) Dispose() {
	for _, p := range t.parts {
		p.img.Deallocate()
	}
	t.parts = nil
}
