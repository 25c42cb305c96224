package view

import (
	"math"
	"time"

	"github.com/electronjoe/deepframe/internal/timer"
)

const (
	// DoubleClickWindow separates a click from a double click.
	DoubleClickWindow = 250 * time.Millisecond
	// DragThreshold is how far a pointer may travel and still count as a click.
	DragThreshold = 3.0
	// WheelZoomSpeed converts wheel delta pixels into an exponential zoom ratio.
	WheelZoomSpeed = 0.002
)

// Mode is the interaction state of a Controller.
type Mode int

const (
	Idle Mode = iota
	Panning
	Pinching
)

func (m Mode) String() string {
	switch m {
	case Panning:
		return "panning"
	case Pinching:
		return "pinching"
	}
	return "idle"
}

// Kind is the type of an input Event.
type Kind int

const (
	PointerDown Kind = iota
	PointerMove
	PointerUp
	Wheel
)

// Event is one pointer, touch or wheel input in viewport coordinates.
type Event struct {
	Kind  Kind
	ID    int
	Touch bool
	X, Y  float64
	// DeltaY is the wheel delta in pixels; positive scrolls down (zooms out).
	DeltaY float64
	At     time.Time
}

// Result describes what an Event or Tick did.
type Result struct {
	// Captured is false when the input should fall through to the carousel.
	Captured bool
	Changed  bool
	// Tap is a confirmed single click (the double-click window expired).
	Tap       bool
	DoubleTap bool
	State     State
}

type point struct{ x, y float64 }

// Controller interprets input into State transitions for one viewer.
type Controller struct {
	geo   Geometry
	state State
	mode  Mode

	pointers map[int]point
	order    []int

	down     point
	moved    bool
	suppress bool

	pinchDist float64
	pinchMid  point

	click *timer.Debouncer
}

// NewController returns a Controller at Identity.
func NewController() *Controller {
	return &Controller{
		state:    Identity,
		pointers: make(map[int]point),
		click:    timer.NewDebouncer(DoubleClickWindow),
	}
}

// State returns the current transform.
func (c *Controller) State() State { return c.state }

// Mode returns the current interaction state.
func (c *Controller) Mode() Mode { return c.mode }

// Geometry returns the geometry the state is clamped against.
func (c *Controller) Geometry() Geometry { return c.geo }

// Gesturing reports whether a multi-touch gesture is in progress.
func (c *Controller) Gesturing() bool { return c.mode == Pinching }

// SetGeometry updates viewport and image size and re-clamps the state.
func (c *Controller) SetGeometry(g Geometry) {
	c.geo = g
	if g.Ready() {
		c.state = g.Clamp(c.state)
	}
}

// SetState replaces the transform, clamped.
func (c *Controller) SetState(s State) {
	c.state = c.geo.Clamp(s)
}

// Reset returns to Identity and drops any gesture in progress.
func (c *Controller) Reset() {
	c.state = Identity
	c.mode = Idle
	c.pointers = make(map[int]point)
	c.order = nil
	c.moved = false
	c.suppress = false
	c.click.Stop()
}

// Handle applies one input event.
func (c *Controller) Handle(ev Event) Result {
	switch ev.Kind {
	case PointerDown:
		return c.pointerDown(ev)
	case PointerMove:
		return c.pointerMove(ev)
	case PointerUp:
		return c.pointerUp(ev)
	case Wheel:
		return c.wheel(ev)
	}
	return c.result(false, false)
}

// Tick reports a pending single click once the double-click window expired.
func (c *Controller) Tick(now time.Time) Result {
	r := c.result(false, false)
	if c.click.Fire(now) {
		r.Tap = true
	}
	return r
}

func (c *Controller) pointerDown(ev Event) Result {
	if _, ok := c.pointers[ev.ID]; !ok {
		c.order = append(c.order, ev.ID)
	}
	c.pointers[ev.ID] = point{ev.X, ev.Y}

	switch len(c.pointers) {
	case 1:
		c.down = point{ev.X, ev.Y}
		c.moved = false
		if c.state.Scale > MinScale {
			c.mode = Panning
			return c.result(true, false)
		}
		c.mode = Idle
		return c.result(false, false)
	case 2:
		if !ev.Touch {
			return c.result(c.mode != Idle, false)
		}
		c.mode = Pinching
		c.suppress = true
		c.pinchDist, c.pinchMid = c.pinch()
		return c.result(true, false)
	}
	return c.result(c.mode != Idle, false)
}

func (c *Controller) pointerMove(ev Event) Result {
	prev, ok := c.pointers[ev.ID]
	if !ok {
		return c.result(false, false)
	}
	cur := point{ev.X, ev.Y}
	c.pointers[ev.ID] = cur
	if math.Hypot(cur.x-c.down.x, cur.y-c.down.y) > DragThreshold {
		c.moved = true
	}

	switch c.mode {
	case Panning:
		if !c.geo.Ready() {
			return c.result(true, false)
		}
		before := c.state
		c.state = c.geo.Pan(c.state, cur.x-prev.x, cur.y-prev.y)
		return c.result(true, c.state != before)
	case Pinching:
		if !c.geo.Ready() {
			return c.result(true, false)
		}
		dist, mid := c.pinch()
		before := c.state
		if c.pinchDist > 0 && dist > 0 {
			c.state = c.geo.ZoomAt(c.state, mid.x, mid.y, dist/c.pinchDist)
		}
		c.state = c.geo.Pan(c.state, mid.x-c.pinchMid.x, mid.y-c.pinchMid.y)
		c.pinchDist, c.pinchMid = dist, mid
		return c.result(true, c.state != before)
	}
	return c.result(false, false)
}

func (c *Controller) pointerUp(ev Event) Result {
	if _, ok := c.pointers[ev.ID]; !ok {
		return c.result(false, false)
	}
	delete(c.pointers, ev.ID)
	for i, id := range c.order {
		if id == ev.ID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}

	captured := c.mode != Idle
	switch len(c.pointers) {
	case 0:
		c.mode = Idle
		double, tap := false, false
		if !c.moved && !c.suppress {
			double, tap = c.click1(ev.At)
		}
		r := c.result(captured, double)
		r.DoubleTap = double
		r.Tap = tap
		c.suppress = false
		return r
	case 1:
		if c.mode == Pinching {
			if c.state.Scale > MinScale {
				c.mode = Panning
			} else {
				c.mode = Idle
			}
		}
	}
	return c.result(captured, false)
}

// click1 registers a completed click. It reports whether the click confirmed
// a double click (which toggles the zoom) and whether an earlier click whose
// window had already expired is still owed as a tap.
func (c *Controller) click1(at time.Time) (double, tap bool) {
	if c.click.Pending() {
		if !c.click.Fire(at) {
			c.click.Stop()
			if c.state.Scale > MinScale {
				c.state = Identity
			} else {
				c.state = c.geo.Clamp(State{Scale: DoubleTapScale})
			}
			return true, false
		}
		tap = true
	}
	c.click.Reset(at)
	return false, tap
}

func (c *Controller) wheel(ev Event) Result {
	if !c.geo.Ready() || ev.DeltaY == 0 {
		return c.result(true, false)
	}
	before := c.state
	c.state = c.geo.ZoomAt(c.state, ev.X, ev.Y, math.Exp(-ev.DeltaY*WheelZoomSpeed))
	return c.result(true, c.state != before)
}

// pinch returns the distance and midpoint of the first two pointers.
func (c *Controller) pinch() (float64, point) {
	if len(c.order) < 2 {
		return 0, point{}
	}
	a, b := c.pointers[c.order[0]], c.pointers[c.order[1]]
	return math.Hypot(b.x-a.x, b.y-a.y), point{(a.x + b.x) / 2, (a.y + b.y) / 2}
}

func (c *Controller) result(captured, changed bool) Result {
	return Result{Captured: captured, Changed: changed, State: c.state}
}
