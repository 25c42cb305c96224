package view

import (
	"testing"
	"time"
)

var t0 = time.Unix(1700000000, 0)

func newTestController() *Controller {
	c := NewController()
	c.SetGeometry(Geometry{ViewportW: 1000, ViewportH: 800, ImageW: 1000, ImageH: 800})
	return c
}

func at(ms int) time.Time { return t0.Add(time.Duration(ms) * time.Millisecond) }

func TestSingleDragAtScaleOneFallsThrough(t *testing.T) {
	c := newTestController()

	if r := c.Handle(Event{Kind: PointerDown, ID: 1, Touch: true, X: 500, Y: 400, At: at(0)}); r.Captured {
		t.Error("pointer down at scale 1 was captured")
	}
	if r := c.Handle(Event{Kind: PointerMove, ID: 1, Touch: true, X: 300, Y: 400, At: at(10)}); r.Captured || r.Changed {
		t.Errorf("horizontal drag at scale 1 = %+v", r)
	}
	if c.Mode() != Idle {
		t.Errorf("Mode() = %v", c.Mode())
	}
	r := c.Handle(Event{Kind: PointerUp, ID: 1, Touch: true, X: 300, Y: 400, At: at(20)})
	if r.Tap || r.DoubleTap {
		t.Error("a swipe was reported as a click")
	}
	if r := c.Tick(at(1000)); r.Tap {
		t.Error("a swipe produced a delayed tap")
	}
}

func TestPanWhenZoomed(t *testing.T) {
	c := newTestController()
	c.SetState(State{Scale: 2})

	if r := c.Handle(Event{Kind: PointerDown, ID: 1, X: 500, Y: 400, At: at(0)}); !r.Captured {
		t.Fatal("pointer down when zoomed not captured")
	}
	if c.Mode() != Panning {
		t.Fatalf("Mode() = %v, want panning", c.Mode())
	}
	r := c.Handle(Event{Kind: PointerMove, ID: 1, X: 540, Y: 380, At: at(10)})
	if !r.Changed || r.State.OffsetX != 40 || r.State.OffsetY != -20 {
		t.Errorf("pan result = %+v", r)
	}
	c.Handle(Event{Kind: PointerMove, ID: 1, X: 5000, Y: 380, At: at(20)})
	if got := c.State().OffsetX; got != 500 {
		t.Errorf("OffsetX = %v, want clamp at 500", got)
	}
	r = c.Handle(Event{Kind: PointerUp, ID: 1, X: 5000, Y: 380, At: at(30)})
	if c.Mode() != Idle || r.Tap || r.DoubleTap {
		t.Errorf("after up: mode %v result %+v", c.Mode(), r)
	}
	if r := c.Tick(at(500)); r.Tap {
		t.Error("drag beyond threshold produced a tap")
	}
}

func TestPinchStateMachine(t *testing.T) {
	c := newTestController()

	c.Handle(Event{Kind: PointerDown, ID: 1, Touch: true, X: 400, Y: 400, At: at(0)})
	r := c.Handle(Event{Kind: PointerDown, ID: 2, Touch: true, X: 600, Y: 400, At: at(5)})
	if !r.Captured || c.Mode() != Pinching || !c.Gesturing() {
		t.Fatalf("second finger: mode %v result %+v", c.Mode(), r)
	}

	// spread from 200px to 400px around the center: scale doubles
	c.Handle(Event{Kind: PointerMove, ID: 1, Touch: true, X: 300, Y: 400, At: at(10)})
	r = c.Handle(Event{Kind: PointerMove, ID: 2, Touch: true, X: 700, Y: 400, At: at(15)})
	if !r.Changed {
		t.Fatal("pinch did not change the state")
	}
	if got := c.State().Scale; got < 1.99 || got > 2.01 {
		t.Errorf("Scale = %v, want ~2", got)
	}

	c.Handle(Event{Kind: PointerUp, ID: 2, Touch: true, X: 700, Y: 400, At: at(20)})
	if c.Mode() != Panning {
		t.Errorf("one finger lifted: mode %v, want panning", c.Mode())
	}
	r = c.Handle(Event{Kind: PointerUp, ID: 1, Touch: true, X: 300, Y: 400, At: at(25)})
	if c.Mode() != Idle {
		t.Errorf("both lifted: mode %v", c.Mode())
	}
	if r.Tap || r.DoubleTap {
		t.Error("pinch release registered as a click")
	}
}

func TestPinchBackToScaleOneEndsIdle(t *testing.T) {
	c := newTestController()
	c.Handle(Event{Kind: PointerDown, ID: 1, Touch: true, X: 400, Y: 400, At: at(0)})
	c.Handle(Event{Kind: PointerDown, ID: 2, Touch: true, X: 600, Y: 400, At: at(1)})
	c.Handle(Event{Kind: PointerMove, ID: 2, Touch: true, X: 500, Y: 400, At: at(2)})
	if got := c.State().Scale; got != MinScale {
		t.Fatalf("pinch in below min: Scale = %v", got)
	}
	c.Handle(Event{Kind: PointerUp, ID: 2, Touch: true, X: 500, Y: 400, At: at(3)})
	if c.Mode() != Idle {
		t.Errorf("mode %v, want idle at scale 1", c.Mode())
	}
}

func TestWheelZoomsTowardCursor(t *testing.T) {
	c := newTestController()
	r := c.Handle(Event{Kind: Wheel, X: 500, Y: 400, DeltaY: -300, At: at(0)})
	if !r.Captured || !r.Changed {
		t.Fatalf("wheel result = %+v", r)
	}
	if r.State.Scale <= 1 || r.State.OffsetX != 0 || r.State.OffsetY != 0 {
		t.Errorf("zoom at center = %+v", r.State)
	}
	for i := 0; i < 50; i++ {
		c.Handle(Event{Kind: Wheel, X: 10, Y: 10, DeltaY: -500, At: at(i)})
	}
	if got := c.State().Scale; got != MaxScale {
		t.Errorf("Scale = %v, want %v", got, MaxScale)
	}
}

func click(c *Controller, ms int) Result {
	c.Handle(Event{Kind: PointerDown, ID: 1, X: 500, Y: 400, At: at(ms)})
	return c.Handle(Event{Kind: PointerUp, ID: 1, X: 500, Y: 400, At: at(ms + 20)})
}

func TestDoubleClickToggles(t *testing.T) {
	c := newTestController()

	click(c, 0)
	r := click(c, 100)
	if !r.DoubleTap || c.State() != (State{Scale: DoubleTapScale}) {
		t.Fatalf("double click: result %+v state %+v", r, c.State())
	}
	if r := c.Tick(at(1000)); r.Tap {
		t.Error("double click also produced a single tap")
	}

	c.SetState(State{Scale: 3, OffsetX: 200, OffsetY: 100})
	click(c, 2000)
	if r := click(c, 2150); !r.DoubleTap || c.State() != Identity {
		t.Errorf("second double click: result %+v state %+v", r, c.State())
	}
}

func TestSingleClickConfirmedAfterWindow(t *testing.T) {
	c := newTestController()
	if r := click(c, 0); r.Tap {
		t.Fatal("tap reported before the window expired")
	}
	if r := c.Tick(at(200)); r.Tap {
		t.Fatal("tap reported inside the window")
	}
	if r := c.Tick(at(270)); !r.Tap {
		t.Fatal("tap not reported after the window")
	}
	if r := c.Tick(at(400)); r.Tap {
		t.Error("tap reported twice")
	}
}

func TestSlowSecondClickIsTwoTaps(t *testing.T) {
	c := newTestController()
	click(c, 0)
	r := click(c, 600)
	if r.DoubleTap {
		t.Fatal("clicks 600ms apart were a double click")
	}
	if !r.Tap {
		t.Error("expired first click was not reported")
	}
	if r := c.Tick(at(900)); !r.Tap {
		t.Error("second click was not reported")
	}
}

func TestReset(t *testing.T) {
	c := newTestController()
	c.SetState(State{Scale: 5, OffsetX: 10})
	c.Handle(Event{Kind: PointerDown, ID: 1, X: 1, Y: 1, At: at(0)})
	c.Reset()
	if c.State() != Identity || c.Mode() != Idle {
		t.Errorf("after Reset: %+v %v", c.State(), c.Mode())
	}
}
