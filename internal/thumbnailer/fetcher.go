package thumbnailer

import (
	"context"
	"image"

	"github.com/electronjoe/deepframe/internal/resolution"
	"github.com/electronjoe/deepframe/internal/tile"
)

// Result is one finished fetch. Exactly one of Base or Tile is set.
type Result struct {
	// Owner is the caller's tag, e.g. the carousel slot.
	Owner int
	Base  *BaseRequest
	Tile  *tile.Request
	Image image.Image
	Err   error
}

// BaseRequest identifies a base image fetch.
type BaseRequest struct {
	// Key is the cache key the caller tracks loading state by.
	Key     string
	PhotoID string
	Tier    resolution.Tier
}

// Fetcher runs backend calls on goroutines and posts the outcomes to a
// channel the UI loop drains.
type Fetcher struct {
	ctx     context.Context
	backend Backend
	results chan Result
}

// NewFetcher returns a Fetcher whose goroutines stop posting once ctx is
// done.
func NewFetcher(ctx context.Context, b Backend, buffer int) *Fetcher {
	return &Fetcher{ctx: ctx, backend: b, results: make(chan Result, buffer)}
}

// Results delivers finished fetches.
func (f *Fetcher) Results() <-chan Result { return f.results }

// FetchBase loads a base image.
func (f *Fetcher) FetchBase(owner int, req BaseRequest) {
	go func() {
		img, err := f.backend.Base(f.ctx, req.PhotoID, req.Tier)
		f.post(Result{Owner: owner, Base: &req, Image: img, Err: err})
	}()
}

// FetchTile loads one tile.
func (f *Fetcher) FetchTile(owner int, req tile.Request) {
	go func() {
		img, err := f.backend.Tile(f.ctx, req.PhotoID, req.Coord, req.Rotation)
		f.post(Result{Owner: owner, Tile: &req, Image: img, Err: err})
	}()
}

func (f *Fetcher) post(r Result) {
	select {
	case f.results <- r:
	case <-f.ctx.Done():
	}
}
