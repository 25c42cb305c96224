package carousel

import (
	"math"
	"time"

	"github.com/electronjoe/deepframe/internal/timer"
)

const (
	// SettleDelay is the quiet period after the last scroll movement before
	// the nearest slide becomes current.
	SettleDelay = 100 * time.Millisecond
	// snapRate is the fraction of the remaining distance covered per 60Hz
	// frame while snapping.
	snapRate = 0.25
)

// Scroller models the horizontal scroll container that hosts the slides.
type Scroller struct {
	slideWidth float64
	slides     int
	scrollLeft float64
	position   int

	dragging  bool
	snapping  bool
	snapTo    float64
	lastFrame time.Time

	settle *timer.Debouncer
}

// NewScroller returns a Scroller with no slides.
func NewScroller() *Scroller {
	return &Scroller{settle: timer.NewDebouncer(SettleDelay)}
}

// ScrollLeft is the current horizontal scroll offset in pixels.
func (s *Scroller) ScrollLeft() float64 { return s.scrollLeft }

// Position is the slide considered current.
func (s *Scroller) Position() int { return s.position }

// SlideWidth returns the width of one slide.
func (s *Scroller) SlideWidth() float64 { return s.slideWidth }

// Layout sets the slide count, slide width and current position and jumps
// there without animation.
func (s *Scroller) Layout(slides int, slideWidth float64, position int) {
	s.slides = slides
	s.slideWidth = slideWidth
	s.JumpTo(position)
}

// JumpTo scrolls instantly to a slide and cancels any snap or pending settle.
func (s *Scroller) JumpTo(position int) {
	s.position = position
	s.scrollLeft = float64(position) * s.slideWidth
	s.snapping = false
	s.settle.Stop()
}

func (s *Scroller) maxScroll() float64 {
	return math.Max(0, float64(s.slides-1)*s.slideWidth)
}

// ScrollBy moves the container by dx pixels, as a trackpad or a drag does.
func (s *Scroller) ScrollBy(dx float64, now time.Time) {
	next := math.Max(0, math.Min(s.maxScroll(), s.scrollLeft+dx))
	if next == s.scrollLeft {
		return
	}
	s.scrollLeft = next
	s.settle.Reset(now)
}

// BeginDrag starts a touch or mouse drag.
func (s *Scroller) BeginDrag() {
	s.dragging = true
	s.snapping = false
}

// Dragging reports whether a drag is in progress.
func (s *Scroller) Dragging() bool { return s.dragging }

// EndDrag releases the drag and snaps to the nearest slide boundary.
func (s *Scroller) EndDrag(now time.Time) {
	s.dragging = false
	s.startSnap(now)
}

func (s *Scroller) nearest() int {
	if s.slideWidth <= 0 {
		return s.position
	}
	return int(math.Round(s.scrollLeft / s.slideWidth))
}

func (s *Scroller) startSnap(now time.Time) {
	target := float64(s.nearest()) * s.slideWidth
	if target == s.scrollLeft {
		return
	}
	s.snapTo = target
	s.snapping = true
	s.lastFrame = now
}

// Tick advances a snap animation and checks for settle. When the scroll
// settles on a different slide it returns that position and true, once.
func (s *Scroller) Tick(now time.Time) (int, bool) {
	if s.snapping {
		frames := now.Sub(s.lastFrame).Seconds() * 60
		s.lastFrame = now
		remaining := s.snapTo - s.scrollLeft
		step := remaining * (1 - math.Pow(1-snapRate, frames))
		if math.Abs(remaining) < 0.5 || math.Abs(step) >= math.Abs(remaining) {
			s.scrollLeft = s.snapTo
			s.snapping = false
		} else {
			s.scrollLeft += step
		}
		s.settle.Reset(now)
		return s.position, false
	}
	if s.dragging || !s.settle.Fire(now) {
		return s.position, false
	}

	pos := s.nearest()
	if pos != s.position {
		s.position = pos
		return pos, true
	}
	s.startSnap(now)
	return s.position, false
}
