package tile

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/electronjoe/deepframe/internal/timer"
	"github.com/electronjoe/deepframe/internal/view"
)

func newTestEngine(clk *timer.Fake) *Engine {
	e := NewEngine(0)
	e.Reset("p1", 0, 4000, 3000)
	e.SetViewport(1000, 1000, clk.Now())
	return e
}

func TestDebounceRequestsOnlyFinalLevel(t *testing.T) {
	clk := timer.NewFake(time.Unix(0, 0))
	e := newTestEngine(clk)

	// levels 3, 4, 5, 4, 3 inside one quiet period
	for _, s := range []float64{1.6, 2.5, 4.5, 3, 2} {
		e.Observe(view.State{Scale: s}, clk.Now())
		if reqs := e.Tick(clk.Now()); len(reqs) != 0 {
			t.Fatalf("requests issued mid-zoom at scale %v", s)
		}
		clk.Advance(50 * time.Millisecond)
	}
	if reqs := e.Tick(clk.Now()); len(reqs) != 0 {
		t.Fatal("requests issued before the quiet period")
	}

	clk.Advance(LoadDelay)
	reqs := e.Tick(clk.Now())
	if len(reqs) != 64 {
		t.Fatalf("len(reqs) = %d, want 64", len(reqs))
	}
	for _, r := range reqs {
		if r.Z != 3 {
			t.Fatalf("request for level %d, want only 3", r.Z)
		}
	}
	if e.Level() != 3 {
		t.Errorf("Level() = %d", e.Level())
	}
	if again := e.Tick(clk.Now().Add(time.Second)); len(again) != 0 {
		t.Errorf("debounce fired twice: %d requests", len(again))
	}
}

func TestNoRequestsBelowActivationScale(t *testing.T) {
	clk := timer.NewFake(time.Unix(0, 0))
	e := newTestEngine(clk)
	e.Observe(view.State{Scale: 1.4}, clk.Now())
	clk.Advance(LoadDelay)
	if reqs := e.Tick(clk.Now()); len(reqs) != 0 {
		t.Errorf("%d requests at scale 1.4", len(reqs))
	}
}

func TestGestureSuppressesLoading(t *testing.T) {
	clk := timer.NewFake(time.Unix(0, 0))
	e := newTestEngine(clk)
	e.SetGesturing(true)
	e.Observe(view.State{Scale: 2}, clk.Now())
	clk.Advance(time.Second)
	if reqs := e.Tick(clk.Now()); len(reqs) != 0 {
		t.Fatal("requests issued during a pinch")
	}
	e.SetGesturing(false)
	if reqs := e.Tick(clk.Now()); len(reqs) == 0 {
		t.Error("no requests after the pinch ended")
	}
}

func settle(e *Engine, clk *timer.Fake, s view.State) []Request {
	e.Observe(s, clk.Now())
	clk.Advance(LoadDelay)
	return e.Tick(clk.Now())
}

func TestCompleteAndStaleness(t *testing.T) {
	clk := timer.NewFake(time.Unix(0, 0))
	e := newTestEngine(clk)
	img := image.NewRGBA(image.Rect(0, 0, 256, 256))

	reqs := settle(e, clk, view.State{Scale: 2})
	if !e.Complete(reqs[0], img, nil) {
		t.Fatal("fresh completion rejected")
	}
	if !e.Complete(reqs[1], nil, errors.New("404")) {
		t.Fatal("fresh failure rejected")
	}
	if !e.HasLoaded() || len(e.Loaded()) != 1 {
		t.Fatalf("Loaded() = %d tiles", len(e.Loaded()))
	}

	// same level, small pan: nothing loaded, absent or in flight is asked again
	again := settle(e, clk, view.State{Scale: 2.01})
	if len(again) != 0 {
		t.Errorf("re-requested %d tiles at the same level", len(again))
	}

	// level change discards the old tiles
	deeper := settle(e, clk, view.State{Scale: 4.5})
	if e.Level() != 5 || e.HasLoaded() {
		t.Fatalf("after level change: level %d loaded %v", e.Level(), e.HasLoaded())
	}
	if len(deeper) != 1024 {
		t.Errorf("len(deeper) = %d, want 1024", len(deeper))
	}
	if e.Complete(reqs[2], img, nil) {
		t.Error("completion tagged with the old level was accepted")
	}
	if e.HasLoaded() {
		t.Error("stale tile became drawable")
	}

	// a new photo invalidates everything in flight
	e.Reset("p2", 90, 3000, 4000)
	if !e.Stale(deeper[0]) || e.Complete(deeper[0], img, nil) {
		t.Error("completion for the previous photo was accepted")
	}
}

func TestRequestsCarryPhotoAndRotation(t *testing.T) {
	clk := timer.NewFake(time.Unix(0, 0))
	e := NewEngine(0)
	e.Reset("abc", 270, 3000, 4000)
	e.SetViewport(800, 600, clk.Now())
	reqs := settle(e, clk, view.State{Scale: 2})
	if len(reqs) == 0 {
		t.Fatal("no requests")
	}
	if r := reqs[0]; r.PhotoID != "abc" || r.Rotation != 270 {
		t.Errorf("request = %+v", r)
	}
}
