// Package viewer renders one photo of the carousel: the base image, the
// tiles drawn over it when zoomed and the detection boxes.
package viewer

import (
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"k8s.io/klog/v2"

	"github.com/electronjoe/deepframe/internal/bbox"
	"github.com/electronjoe/deepframe/internal/imagecache"
	"github.com/electronjoe/deepframe/internal/layer"
	"github.com/electronjoe/deepframe/internal/photo"
	"github.com/electronjoe/deepframe/internal/resolution"
	"github.com/electronjoe/deepframe/internal/thumbnailer"
	"github.com/electronjoe/deepframe/internal/tile"
	"github.com/electronjoe/deepframe/internal/view"
)

// Fetcher starts asynchronous loads whose results come back through
// Deliver.
type Fetcher interface {
	FetchBase(owner int, req thumbnailer.BaseRequest)
	FetchTile(owner int, req tile.Request)
}

// Options configure a Viewer.
type Options struct {
	// Slot is the carousel slot, used to route fetch results back.
	Slot    int
	Fetcher Fetcher
	Dims    *imagecache.Cache
	// Key returns the cache key of a base image.
	Key      func(photoID string, tier resolution.Tier) string
	MaxLevel int
}

// Viewer shows one photo.
type Viewer struct {
	opts Options

	entry    photo.Entry
	tier     resolution.Tier
	natW     float64
	natH     float64
	viewport struct{ w, h float64 }

	ctrl    *view.Controller
	engine  *tile.Engine
	loading layer.Loading

	base     *Texture
	baseKey  string
	swapped  bool
	tiles    map[tile.Coord]*ebiten.Image
	tileLvl  int
	tags     []bbox.Tag
	tagsFor  string
	mounted  bool
	rotation int
}

// New returns an empty Viewer.
func New(opts Options) *Viewer {
	return &Viewer{
		opts:    opts,
		ctrl:    view.NewController(),
		engine:  tile.NewEngine(opts.MaxLevel),
		tiles:   make(map[tile.Coord]*ebiten.Image),
		tileLvl: -1,
	}
}

// PhotoID is the id of the photo shown, or "".
func (v *Viewer) PhotoID() string { return v.entry.ID }

// State is the live view state.
func (v *Viewer) State() view.State { return v.ctrl.State() }

// Zoomed reports whether the photo is magnified.
func (v *Viewer) Zoomed() bool { return v.ctrl.State().Scale > view.MinScale }

// Show points the viewer at e. A different photo resets the view state and
// everything loaded; the same photo only picks up rotation and tier changes.
func (v *Viewer) Show(e photo.Entry, tier resolution.Tier, now time.Time) {
	if v.mounted && e.ID == v.entry.ID {
		if bbox.Normalize(e.Rotation) != v.rotation {
			v.entry = e
			v.setRotation(e.Rotation, now)
		}
		v.SetTier(tier, now)
		return
	}
	v.releaseBase()
	v.swapped = false
	v.entry = e
	v.mounted = true
	v.rotation = bbox.Normalize(e.Rotation)
	v.tier = tier
	v.natW, v.natH = float64(e.Width), float64(e.Height)
	v.tags, v.tagsFor = nil, ""
	v.ctrl.Reset()
	v.resetTiles()
	v.loadBase(now)
}

// Clear unmounts the photo and releases its images.
func (v *Viewer) Clear() {
	v.releaseBase()
	v.disposeTiles()
	v.entry = photo.Entry{}
	v.mounted = false
	v.ctrl.Reset()
	v.engine.Reset("", 0, 0, 0)
}

// SetTier reloads the base image at tier. The current image stays up until
// the new one arrives.
func (v *Viewer) SetTier(tier resolution.Tier, now time.Time) {
	if !v.mounted || tier == v.tier {
		return
	}
	v.tier = tier
	v.loadBase(now)
}

func (v *Viewer) setRotation(rot int, now time.Time) {
	v.rotation = bbox.Normalize(rot)
	v.ctrl.Reset()
	v.resetTiles()
	v.engine.Observe(v.ctrl.State(), now)
}

// Resize updates the viewport.
func (v *Viewer) Resize(w, h float64, now time.Time) {
	if w == v.viewport.w && h == v.viewport.h {
		return
	}
	v.viewport.w, v.viewport.h = w, h
	v.ctrl.SetGeometry(v.geometry())
	v.engine.SetViewport(w, h, now)
	v.engine.Observe(v.ctrl.State(), now)
}

func (v *Viewer) geometry() view.Geometry {
	rw, rh := layer.Rotated(v.natW, v.natH, v.rotation)
	return view.Geometry{ViewportW: v.viewport.w, ViewportH: v.viewport.h, ImageW: rw, ImageH: rh}
}

// resetTiles starts a new tile generation for the current photo, rotation
// and dimensions.
func (v *Viewer) resetTiles() {
	v.disposeTiles()
	rw, rh := layer.Rotated(v.natW, v.natH, v.rotation)
	v.engine.Reset(v.entry.ID, v.rotation, rw, rh)
	v.ctrl.SetGeometry(v.geometry())
}

func (v *Viewer) loadBase(now time.Time) {
	key := v.opts.Key(v.entry.ID, v.tier)
	if v.natW == 0 || v.natH == 0 {
		if d, ok := v.opts.Dims.Get(key); ok {
			v.applyDims(d)
		}
	}
	v.loading.Start(key, v.opts.Dims.Has(key), now)
	v.opts.Fetcher.FetchBase(v.opts.Slot, thumbnailer.BaseRequest{Key: key, PhotoID: v.entry.ID, Tier: v.tier})
}

// DimsChanged picks up dimensions learned by another viewer.
func (v *Viewer) DimsChanged(key string) {
	if !v.mounted || v.natW > 0 || key != v.loading.URL() {
		return
	}
	if d, ok := v.opts.Dims.Get(key); ok {
		v.applyDims(d)
	}
}

func (v *Viewer) applyDims(d imagecache.Dims) {
	v.natW, v.natH = float64(d.Width), float64(d.Height)
	v.resetTiles()
}

// SetTags replaces the detection boxes of photoID.
func (v *Viewer) SetTags(photoID string, tags []bbox.Tag) {
	if photoID != v.entry.ID {
		return
	}
	v.tags, v.tagsFor = tags, photoID
}

// Tags returns the detection boxes of the shown photo.
func (v *Viewer) Tags() []bbox.Tag { return v.tags }

// HasTags reports whether tags of the shown photo were delivered.
func (v *Viewer) HasTags() bool { return v.mounted && v.tagsFor == v.entry.ID }

// Handle applies one input event.
func (v *Viewer) Handle(ev view.Event) view.Result {
	r := v.ctrl.Handle(ev)
	v.engine.SetGesturing(v.ctrl.Gesturing())
	if r.Changed {
		v.engine.Observe(r.State, ev.At)
	}
	return r
}

// ZoomBy zooms around the viewport center.
func (v *Viewer) ZoomBy(ratio float64, now time.Time) {
	g := v.ctrl.Geometry()
	v.ctrl.SetState(g.ZoomAt(v.ctrl.State(), g.ViewportW/2, g.ViewportH/2, ratio))
	v.engine.Observe(v.ctrl.State(), now)
}

// ResetView returns to the fitted, unzoomed view.
func (v *Viewer) ResetView(now time.Time) {
	v.ctrl.SetState(view.Identity)
	v.engine.Observe(v.ctrl.State(), now)
}

// Update advances timers and issues tile requests. The returned result
// carries a confirmed single tap.
func (v *Viewer) Update(now time.Time) view.Result {
	r := v.ctrl.Tick(now)
	if r.Changed {
		v.engine.Observe(r.State, now)
	}
	if !v.mounted {
		return r
	}
	for _, req := range v.engine.Tick(now) {
		v.opts.Fetcher.FetchTile(v.opts.Slot, req)
	}
	if lvl := v.engine.Level(); lvl != v.tileLvl {
		v.disposeTiles()
		v.tileLvl = lvl
	}
	return r
}

// Deliver applies a finished fetch. Results for other photos, tiers or
// tile generations are dropped.
func (v *Viewer) Deliver(r thumbnailer.Result, now time.Time) {
	switch {
	case r.Base != nil:
		v.deliverBase(r, now)
	case r.Tile != nil:
		v.deliverTile(r)
	}
}

func (v *Viewer) deliverBase(r thumbnailer.Result, now time.Time) {
	if r.Base.PhotoID != v.entry.ID || !v.loading.Finish(r.Base.Key, r.Err, now) {
		return
	}
	if r.Err != nil {
		klog.Warningf("base image of %s: %v", r.Base.PhotoID, r.Err)
		return
	}
	b := r.Image.Bounds()
	v.opts.Dims.Put(r.Base.Key, imagecache.Dims{Width: b.Dx(), Height: b.Dy()})
	if v.natW == 0 || v.natH == 0 {
		v.applyDims(imagecache.Dims{Width: b.Dx(), Height: b.Dy()})
	}
	// a higher tier replacing a shown image does not fade in again
	swapped := v.base != nil
	v.releaseBase()
	v.base = NewTexture(r.Image)
	v.baseKey = r.Base.Key
	v.swapped = swapped
}

func (v *Viewer) deliverTile(r thumbnailer.Result) {
	if !v.engine.Complete(*r.Tile, r.Image, r.Err) {
		klog.V(2).Infof("dropped stale tile %s of %s", r.Tile.Coord, r.Tile.PhotoID)
		return
	}
	if r.Err != nil {
		if !errors.Is(r.Err, thumbnailer.ErrTileAbsent) {
			klog.V(2).Infof("tile %s of %s: %v", r.Tile.Coord, r.Tile.PhotoID, r.Err)
		}
		return
	}
	v.tiles[r.Tile.Coord] = ebiten.NewImageFromImage(r.Image)
}

func (v *Viewer) releaseBase() {
	if v.base != nil {
		v.base.Dispose()
		v.base = nil
	}
	v.baseKey = ""
}

func (v *Viewer) disposeTiles() {
	for c, img := range v.tiles {
		img.Deallocate()
		delete(v.tiles, c)
	}
}

// Dispose releases all GPU images.
func (v *Viewer) Dispose() {
	v.releaseBase()
	v.disposeTiles()
}
