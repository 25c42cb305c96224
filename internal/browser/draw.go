package browser

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/electronjoe/deepframe/internal/tile"
	"github.com/electronjoe/deepframe/internal/viewer"
)

// Draw is called every frame. We render each mounted slide at its carousel
// position, plus any overlays.
func (b *Browser) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	if b.store.Len() == 0 {
		drawDebugString(screen, "No photos found.")
		return
	}

	now := b.clock.Now()
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	for pos, id := range b.carousel.Window() {
		slot, ok := b.carousel.SlotOf(id)
		if !ok {
			continue
		}
		x := b.carousel.Offset(pos)
		if x <= -float64(w) || x >= float64(w) {
			continue
		}
		clip := image.Rect(int(x), 0, int(x)+w, h).Intersect(screen.Bounds())
		dst := screen.SubImage(clip).(*ebiten.Image)
		b.viewers[slot].Draw(dst, viewer.DrawOptions{OriginX: x, Boxes: b.showBoxes, Selected: b.selectedTag, Now: now})
	}

	cur, _ := b.store.Current()
	if b.opts.DateOverlay && !cur.TakenTime.IsZero() {
		drawDateOverlayLeft(screen, cur.TakenTime)
	}
	if b.showInfo {
		b.drawInfo(screen)
	}
	if b.paused && b.opts.Interval > 0 {
		drawPauseIndicator(screen)
	}
}

// drawInfo prints the position, zoom and tile level of the current photo.
func (b *Browser) drawInfo(screen *ebiten.Image) {
	cur, _ := b.store.Current()
	msg := fmt.Sprintf("%d / %d  %s  rot %d°  tier %s",
		b.store.Index()+1, b.store.Len(), cur.ID, cur.Rotation, b.selector.Tier())
	if cur.Latitude != 0 || cur.Longitude != 0 {
		msg += fmt.Sprintf("  %.5f,%.5f", cur.Latitude, cur.Longitude)
	}
	if v := b.currentViewer(); v != nil {
		s := v.State()
		msg += fmt.Sprintf("\nscale %.2f  offset %.0f,%.0f  tiles %v", s.Scale, s.OffsetX, s.OffsetY, tile.Active(s.Scale))
	}
	if b.lastErr != nil {
		msg += "\nlast error: " + b.lastErr.Error()
	}
	ebitenutil.DebugPrintAt(screen, msg, 10, 10)
}

// drawDebugString prints text in the top-left corner of the screen.
func drawDebugString(screen *ebiten.Image, msg string) {
	ebitenutil.DebugPrint(screen, msg)
}

// drawDateOverlayLeft places the photo timestamp in the bottom-left corner.
func drawDateOverlayLeft(screen *ebiten.Image, takenTime time.Time) {
	face := basicfont.Face7x13
	sh := screen.Bounds().Dy()
	dateStr := takenTime.Format("2006-01-02 15:04:05")
	text.Draw(screen, dateStr, face, 20, sh-20, color.White)
}

// drawPauseIndicator draws two bars in the top-right corner.
func drawPauseIndicator(screen *ebiten.Image) {
	sw := float32(screen.Bounds().Dx())
	vector.DrawFilledRect(screen, sw-40, 20, 6, 20, color.White, false)
	vector.DrawFilledRect(screen, sw-28, 20, 6, 20, color.White, false)
}
