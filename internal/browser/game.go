// Package browser is the ebiten game that shows the photo list as a
// horizontally scrolling carousel of zoomable viewers.
package browser

import (
	"context"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"k8s.io/klog/v2"

	"github.com/electronjoe/deepframe/internal/bbox"
	"github.com/electronjoe/deepframe/internal/carousel"
	"github.com/electronjoe/deepframe/internal/cec"
	"github.com/electronjoe/deepframe/internal/imagecache"
	"github.com/electronjoe/deepframe/internal/photo"
	"github.com/electronjoe/deepframe/internal/resolution"
	"github.com/electronjoe/deepframe/internal/thumbnailer"
	"github.com/electronjoe/deepframe/internal/timer"
	"github.com/electronjoe/deepframe/internal/viewer"
)

// Options wire a Browser to its collaborators. Tags, Mutator, Remote and
// Reloads may be nil.
type Options struct {
	Store   *photo.Store
	Tags    photo.TagSource
	Mutator photo.Mutator
	Backend thumbnailer.Backend
	// Key returns the cache key of a base image.
	Key func(photoID string, tier resolution.Tier) string

	DimsCacheSize int
	MaxLevel      int
	DateOverlay   bool
	// Interval advances the slideshow; zero disables it.
	Interval time.Duration

	Clock   timer.Clock
	Remote  <-chan cec.Command
	Reloads <-chan []photo.Entry
}

type tagResult struct {
	photoID string
	tags    []bbox.Tag
	err     error
}

type editResult struct {
	photoID string
	// tag is set for tag edits, which refetch the photo's tags.
	tag     bool
	prevRot int
	err     error
}

// Browser holds the state of the photo browser.
type Browser struct {
	ctx  context.Context
	opts Options

	store    *photo.Store
	carousel *carousel.Carousel
	viewers  [carousel.Slots]*viewer.Viewer
	fetcher  *thumbnailer.Fetcher
	dims     *imagecache.Cache
	selector resolution.Selector
	clock    timer.Clock

	width, height int
	dirty         bool

	tagResults  chan tagResult
	editResults chan editResult
	tagLoads    carousel.TagLoads
	shownID     string
	selectedTag string

	pointers pointerState

	showBoxes bool
	showInfo  bool
	paused    bool
	switchAt  time.Time
	lastErr   error
}

// New creates a Browser over opts.Store.
func New(ctx context.Context, opts Options) *Browser {
	if opts.Clock == nil {
		opts.Clock = timer.System{}
	}
	b := &Browser{
		ctx:         ctx,
		opts:        opts,
		store:       opts.Store,
		carousel:    carousel.New(),
		fetcher:     thumbnailer.NewFetcher(ctx, opts.Backend, 64),
		dims:        imagecache.New(opts.DimsCacheSize),
		clock:       opts.Clock,
		tagResults:  make(chan tagResult, 8),
		editResults: make(chan editResult, 8),
		showBoxes:   true,
		dirty:       true,
	}
	for i := range b.viewers {
		b.viewers[i] = viewer.New(viewer.Options{
			Slot:     i,
			Fetcher:  b.fetcher,
			Dims:     b.dims,
			Key:      opts.Key,
			MaxLevel: opts.MaxLevel,
		})
	}
	b.store.Subscribe(func() { b.dirty = true })
	b.dims.Subscribe(func(key string) {
		for _, v := range b.viewers {
			v.DimsChanged(key)
		}
	})
	b.switchAt = b.clock.Now().Add(opts.Interval)
	return b
}

// Update is called by Ebiten ~60 times/sec. We read remote commands and
// fetch results, route input, and advance timers.
func (b *Browser) Update() error {
	now := b.clock.Now()

	if err := b.handleKeys(now); err != nil {
		return err
	}
	b.drainChannels(now)
	b.updateTier(now)
	b.routePointers(now)

	for _, v := range b.viewers {
		r := v.Update(now)
		if r.Tap && v.PhotoID() == b.currentID() {
			b.showInfo = !b.showInfo
		}
	}

	if id, as, changed := b.carousel.Tick(now); changed {
		klog.V(1).Infof("carousel settled on %s", id)
		b.forgetMounted(carousel.NewTransition(as, id, id))
		b.store.SetCurrentID(id)
	}

	if b.opts.Interval > 0 && !b.paused && now.After(b.switchAt) {
		if v := b.currentViewer(); v == nil || !v.Zoomed() {
			b.store.Next(true)
		}
		b.switchAt = now.Add(b.opts.Interval)
	}

	if b.dirty {
		b.sync(now)
	}
	return nil
}

// drainChannels applies everything posted by background goroutines without
// blocking.
func (b *Browser) drainChannels(now time.Time) {
readLoop:
	for {
		select {
		case r := <-b.fetcher.Results():
			b.viewers[r.Owner].Deliver(r, now)
		case cmd := <-b.opts.Remote:
			b.handleRemoteCommand(cmd, now)
		case entries := <-b.opts.Reloads:
			klog.Infof("album changed: %d photos", len(entries))
			b.store.SetPhotos(entries)
		case t := <-b.tagResults:
			b.tagLoads.Done(t.photoID, t.err == nil)
			if t.err != nil {
				klog.Warningf("tags of %s: %v", t.photoID, t.err)
				continue
			}
			for _, v := range b.viewers {
				v.SetTags(t.photoID, t.tags)
			}
		case e := <-b.editResults:
			b.finishEdit(e)
		default:
			break readLoop
		}
	}
}

// updateTier re-evaluates the resolution tier from the window size and
// device pixel ratio.
func (b *Browser) updateTier(now time.Time) {
	if b.width == 0 || b.height == 0 {
		return
	}
	ratio := 1.0
	if m := ebiten.Monitor(); m != nil {
		ratio = m.DeviceScaleFactor()
	}
	tier, changed := b.selector.Update(float64(b.width), float64(b.height), ratio)
	if !changed {
		return
	}
	klog.V(1).Infof("resolution tier %s", tier)
	for _, v := range b.viewers {
		v.SetTier(tier, now)
	}
}

// sync mounts the window of photos around the current one into slots.
func (b *Browser) sync(now time.Time) {
	b.dirty = false
	cur, ok := b.store.Current()
	if !ok {
		for _, v := range b.viewers {
			v.Clear()
		}
		b.carousel.Show(nil, "")
		return
	}
	as := b.carousel.Show(b.store.IDs(), cur.ID)
	tr := carousel.NewTransition(as, b.shownID, cur.ID)
	b.forgetMounted(tr)
	used := make(map[int]bool, carousel.Slots)
	for _, a := range as {
		used[a.Slot] = true
		e, _ := b.store.Entry(a.PhotoID)
		v := b.viewers[a.Slot]
		v.Show(e, b.selector.Tier(), now)
		v.Resize(float64(b.width), float64(b.height), now)
	}
	for slot, v := range b.viewers {
		if !used[slot] && v.PhotoID() != "" {
			v.Clear()
		}
	}
	for _, slot := range tr.Reset {
		b.viewers[slot].ResetView(now)
	}
	if cur.ID != b.shownID {
		b.shownID = cur.ID
		b.selectedTag = ""
	}
	b.switchAt = now.Add(b.opts.Interval)
	b.requestTags(cur.ID)
}

// forgetMounted drops tag state of photos whose slot was just (re)assigned.
func (b *Browser) forgetMounted(tr carousel.Transition) {
	for _, id := range tr.Mounted {
		b.tagLoads.Forget(id)
	}
}

func (b *Browser) requestTags(photoID string) {
	if b.opts.Tags == nil || !b.tagLoads.Want(photoID) {
		return
	}
	go func() {
		tags, err := b.opts.Tags.Tags(b.ctx, photoID)
		select {
		case b.tagResults <- tagResult{photoID: photoID, tags: tags, err: err}:
		case <-b.ctx.Done():
		}
	}()
}

// rotateCurrent turns the current photo a quarter clockwise and hands the
// edit to the mutator.
func (b *Browser) rotateCurrent() {
	cur, ok := b.store.Current()
	if !ok {
		return
	}
	rot := bbox.Normalize(cur.Rotation + 90)
	b.store.SetRotation(cur.ID, rot)
	if b.opts.Mutator == nil {
		return
	}
	go func() {
		err := b.opts.Mutator.SetRotation(b.ctx, cur.ID, rot)
		select {
		case b.editResults <- editResult{photoID: cur.ID, prevRot: cur.Rotation, err: err}:
		case <-b.ctx.Done():
		}
	}()
}

// editSelectedTag hands an edit of the selected tag of the current photo to
// the mutator: remove deletes it, otherwise its verified flag is toggled.
// The photo's tags are refetched once the edit completes.
func (b *Browser) editSelectedTag(remove bool) {
	v := b.currentViewer()
	if v == nil || b.opts.Mutator == nil || !v.HasTags() {
		return
	}
	tag, ok := bbox.Find(v.Tags(), b.selectedTag)
	if !ok {
		return
	}
	photoID := v.PhotoID()
	m := b.opts.Mutator
	var edit func(ctx context.Context) error
	switch {
	case remove:
		b.selectedTag = ""
		edit = func(ctx context.Context) error { return m.DeleteTag(ctx, photoID, tag.ID) }
	case tag.Verified:
		tag.Verified = false
		edit = func(ctx context.Context) error { return m.EditTag(ctx, photoID, tag) }
	default:
		edit = func(ctx context.Context) error { return m.VerifyTag(ctx, photoID, tag.ID) }
	}
	go func() {
		err := edit(b.ctx)
		select {
		case b.editResults <- editResult{photoID: photoID, tag: true, err: err}:
		case <-b.ctx.Done():
		}
	}()
}

// finishEdit applies the outcome of a mutation. A failed rotation is
// reverted; tag edits refetch the tags whatever the outcome.
func (b *Browser) finishEdit(e editResult) {
	if e.err != nil {
		klog.Warningf("saving edit of %s: %v", e.photoID, e.err)
		b.lastErr = e.err
	}
	if e.tag {
		b.tagLoads.Forget(e.photoID)
		b.requestTags(e.photoID)
		return
	}
	if e.err != nil {
		b.store.SetRotation(e.photoID, e.prevRot)
	}
}

func (b *Browser) currentID() string {
	cur, _ := b.store.Current()
	return cur.ID
}

func (b *Browser) currentViewer() *viewer.Viewer {
	slot, ok := b.carousel.SlotOf(b.currentID())
	if !ok {
		return nil
	}
	return b.viewers[slot]
}

// Layout follows the window size.
func (b *Browser) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != b.width || outsideHeight != b.height {
		b.width, b.height = outsideWidth, outsideHeight
		b.carousel.Resize(float64(outsideWidth))
		now := b.clock.Now()
		for _, v := range b.viewers {
			v.Resize(float64(outsideWidth), float64(outsideHeight), now)
		}
	}
	return outsideWidth, outsideHeight
}
