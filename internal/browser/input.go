package browser

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/electronjoe/deepframe/internal/bbox"
	"github.com/electronjoe/deepframe/internal/cec"
	"github.com/electronjoe/deepframe/internal/view"
)

const (
	mousePointer = -1
	// wheelPixels converts one wheel notch into scroll pixels.
	wheelPixels = 100
	// keyZoom is the zoom step of the keyboard and remote.
	keyZoom = 1.25
)

type point struct{ x, y float64 }

// pointerState follows pointers between frames. A single-pointer drag the
// viewer does not capture scrolls the carousel instead.
type pointerState struct {
	touches  map[ebiten.TouchID]point
	mouse    point
	mouseOn  bool
	swiping  bool
	touchIDs []ebiten.TouchID
}

// handleKeys applies keyboard shortcuts. ESC exits.
func (b *Browser) handleKeys(now time.Time) error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		b.store.Prev(false)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		b.store.Next(false)
	case inpututil.IsKeyJustPressed(ebiten.KeyB):
		b.showBoxes = !b.showBoxes
	case inpututil.IsKeyJustPressed(ebiten.KeyI):
		b.showInfo = !b.showInfo
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		b.rotateCurrent()
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		if v := b.currentViewer(); v != nil {
			b.selectedTag = bbox.Next(v.Tags(), b.selectedTag)
			b.showBoxes = true
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyV):
		b.editSelectedTag(false)
	case inpututil.IsKeyJustPressed(ebiten.KeyDelete), inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		b.editSelectedTag(true)
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		b.paused = !b.paused
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd):
		b.zoomCurrent(keyZoom, now)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract):
		b.zoomCurrent(1/keyZoom, now)
	case inpututil.IsKeyJustPressed(ebiten.KeyDigit0), inpututil.IsKeyJustPressed(ebiten.KeyHome):
		if v := b.currentViewer(); v != nil {
			v.ResetView(now)
		}
	}
	return nil
}

// handleRemoteCommand adjusts the browser based on remote input.
func (b *Browser) handleRemoteCommand(cmd cec.Command, now time.Time) {
	switch cmd {
	case cec.Left:
		b.store.Prev(true)
	case cec.Right:
		b.store.Next(true)
	case cec.Up:
		b.zoomCurrent(keyZoom, now)
	case cec.Down:
		b.zoomCurrent(1/keyZoom, now)
	case cec.Select:
		b.showInfo = !b.showInfo
	case cec.Back:
		if v := b.currentViewer(); v != nil && v.Zoomed() {
			v.ResetView(now)
			return
		}
		b.paused = !b.paused
	}
}

func (b *Browser) zoomCurrent(ratio float64, now time.Time) {
	if v := b.currentViewer(); v != nil {
		v.ZoomBy(ratio, now)
	}
}

// routePointers turns this frame's touch, mouse and wheel input into events
// for the current viewer, and hands uncaptured swipes to the carousel.
func (b *Browser) routePointers(now time.Time) {
	p := &b.pointers
	if p.touches == nil {
		p.touches = make(map[ebiten.TouchID]point)
	}
	v := b.currentViewer()
	if v == nil {
		return
	}
	offset := b.carousel.Offset(b.carousel.CurrentPosition())
	send := func(kind view.Kind, id int, touch bool, at point, dx float64) {
		r := v.Handle(view.Event{Kind: kind, ID: id, Touch: touch, X: at.x - offset, Y: at.y, At: now})
		b.swipe(kind, r, dx, now)
	}

	p.touchIDs = inpututil.AppendJustPressedTouchIDs(p.touchIDs[:0])
	for _, id := range p.touchIDs {
		x, y := ebiten.TouchPosition(id)
		at := point{float64(x), float64(y)}
		p.touches[id] = at
		send(view.PointerDown, int(id), true, at, 0)
	}
	for id, last := range p.touches {
		if inpututil.IsTouchJustReleased(id) {
			continue
		}
		x, y := ebiten.TouchPosition(id)
		at := point{float64(x), float64(y)}
		if at != last {
			p.touches[id] = at
			send(view.PointerMove, int(id), true, at, at.x-last.x)
		}
	}
	p.touchIDs = inpututil.AppendJustReleasedTouchIDs(p.touchIDs[:0])
	for _, id := range p.touchIDs {
		last, ok := p.touches[id]
		if !ok {
			continue
		}
		delete(p.touches, id)
		send(view.PointerUp, int(id), true, last, 0)
	}

	cx, cy := ebiten.CursorPosition()
	cursor := point{float64(cx), float64(cy)}
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		p.mouseOn = true
		p.mouse = cursor
		send(view.PointerDown, mousePointer, false, cursor, 0)
	case p.mouseOn && inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		p.mouseOn = false
		send(view.PointerUp, mousePointer, false, cursor, 0)
	case p.mouseOn && cursor != p.mouse:
		dx := cursor.x - p.mouse.x
		p.mouse = cursor
		send(view.PointerMove, mousePointer, false, cursor, dx)
	}

	if wx, wy := ebiten.Wheel(); wy != 0 {
		v.Handle(view.Event{Kind: view.Wheel, X: cursor.x - offset, Y: cursor.y, DeltaY: -wy * wheelPixels, At: now})
	} else if wx != 0 {
		b.carousel.Scroller().ScrollBy(-wx*wheelPixels/2, now)
	}
}

// swipe forwards an uncaptured single-pointer drag to the carousel.
func (b *Browser) swipe(kind view.Kind, r view.Result, dx float64, now time.Time) {
	s := b.carousel.Scroller()
	p := &b.pointers
	switch kind {
	case view.PointerMove:
		if r.Captured || len(p.touches) > 1 {
			if p.swiping {
				p.swiping = false
				s.EndDrag(now)
			}
			return
		}
		if !p.swiping {
			p.swiping = true
			s.BeginDrag()
		}
		s.ScrollBy(-dx, now)
	case view.PointerUp:
		if p.swiping && len(p.touches) == 0 && !p.mouseOn {
			p.swiping = false
			s.EndDrag(now)
		}
	}
}
