package tile

import (
	"image"
	"sort"
	"time"

	"github.com/electronjoe/deepframe/internal/timer"
	"github.com/electronjoe/deepframe/internal/view"
)

// LoadDelay is the quiet period after the last view change before tiles are
// requested.
const LoadDelay = 400 * time.Millisecond

// Request asks for one tile. Level and Generation tag it so late results can
// be recognized.
type Request struct {
	Coord
	PhotoID    string
	Rotation   int
	Generation uint64
}

// Loaded is a tile ready to draw.
type Loaded struct {
	Coord
	Image image.Image
}

// Engine decides which tiles to request for one viewer. It is a plain state
// machine: the owner feeds it view states and ticks it from the UI loop.
type Engine struct {
	photoID  string
	rotation int
	gen      uint64

	imageW, imageH       float64
	viewportW, viewportH float64
	maxLevel             int

	live     view.State
	stable   view.State
	observed bool

	level    int
	loaded   map[Coord]image.Image
	absent   map[Coord]bool
	inflight map[Coord]bool

	gesturing bool
	debounce  *timer.Debouncer
}

// NewEngine returns an empty Engine. maxLevel <= 0 selects MaxLevel.
func NewEngine(maxLevel int) *Engine {
	e := &Engine{
		maxLevel: maxLevel,
		debounce: timer.NewDebouncer(LoadDelay),
	}
	e.clear()
	return e
}

func (e *Engine) clear() {
	e.level = -1
	e.loaded = make(map[Coord]image.Image)
	e.absent = make(map[Coord]bool)
	e.inflight = make(map[Coord]bool)
}

// Reset points the engine at a new photo. Everything loaded or in flight for
// the previous photo becomes stale.
func (e *Engine) Reset(photoID string, rotation int, imageW, imageH float64) {
	e.gen++
	e.photoID = photoID
	e.rotation = rotation
	e.imageW, e.imageH = imageW, imageH
	e.live, e.stable = view.Identity, view.Identity
	e.observed = false
	e.gesturing = false
	e.debounce.Stop()
	e.clear()
}

// SetViewport updates the viewport size. A change restarts the quiet period.
func (e *Engine) SetViewport(w, h float64, now time.Time) {
	if w == e.viewportW && h == e.viewportH {
		return
	}
	e.viewportW, e.viewportH = w, h
	e.debounce.Reset(now)
}

// SetGesturing suppresses requests while a multi-touch gesture is active.
func (e *Engine) SetGesturing(on bool) { e.gesturing = on }

// Observe records the live view state. Any change restarts the quiet period.
func (e *Engine) Observe(s view.State, now time.Time) {
	if e.observed && s == e.live {
		return
	}
	e.live = s
	e.observed = true
	e.debounce.Reset(now)
}

func (e *Engine) input(s view.State) Input {
	return Input{
		State:     s,
		ImageW:    e.imageW,
		ImageH:    e.imageH,
		ViewportW: e.viewportW,
		ViewportH: e.viewportH,
		MaxLevel:  e.maxLevel,
	}
}

// Target is the level the live state would load.
func (e *Engine) Target() (int, bool) {
	return Level(e.input(e.live))
}

// Level is the level of the loaded tiles, or -1.
func (e *Engine) Level() int { return e.level }

// Stable is the view state tiles were last planned for.
func (e *Engine) Stable() view.State { return e.stable }

// Plan lays out the pyramid for the live state, for drawing.
func (e *Engine) Plan() (Plan, bool) {
	return NewPlan(e.input(e.live))
}

// Tick returns new requests once the quiet period after the last change has
// passed. Requests are ordered nearest to the viewport center first.
func (e *Engine) Tick(now time.Time) []Request {
	if e.gesturing || e.photoID == "" {
		return nil
	}
	if !e.debounce.Fire(now) {
		return nil
	}
	e.stable = e.live
	if !Active(e.stable.Scale) {
		return nil
	}
	plan, ok := NewPlan(e.input(e.stable))
	if !ok {
		return nil
	}
	if plan.Level != e.level {
		e.clear()
		e.level = plan.Level
	}

	var reqs []Request
	for _, c := range plan.Tiles {
		if _, ok := e.loaded[c]; ok || e.absent[c] || e.inflight[c] {
			continue
		}
		e.inflight[c] = true
		reqs = append(reqs, Request{Coord: c, PhotoID: e.photoID, Rotation: e.rotation, Generation: e.gen})
	}
	return reqs
}

// Stale reports whether a request no longer matches the engine's target.
func (e *Engine) Stale(r Request) bool {
	return r.Generation != e.gen || r.PhotoID != e.photoID || r.Z != e.level
}

// Complete records the result of a request. Stale results are dropped and
// false is returned. A failed request leaves its cell blank.
func (e *Engine) Complete(r Request, img image.Image, err error) bool {
	if e.Stale(r) {
		return false
	}
	delete(e.inflight, r.Coord)
	if err != nil || img == nil {
		e.absent[r.Coord] = true
		return true
	}
	e.loaded[r.Coord] = img
	return true
}

// HasLoaded reports whether any tile is ready to draw.
func (e *Engine) HasLoaded() bool { return len(e.loaded) > 0 }

// Pending is the number of requests still in flight.
func (e *Engine) Pending() int { return len(e.inflight) }

// Loaded returns the drawable tiles in row-major order.
func (e *Engine) Loaded() []Loaded {
	out := make([]Loaded, 0, len(e.loaded))
	for c, img := range e.loaded {
		out = append(out, Loaded{Coord: c, Image: img})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}
