package thumbnailer

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
	"k8s.io/klog/v2"

	"github.com/electronjoe/deepframe/internal/resolution"
	"github.com/electronjoe/deepframe/internal/tile"
)

const (
	// DefaultCacheSize is the number of decoded images kept in memory.
	DefaultCacheSize = 256
	// DefaultConcurrency bounds the requests in flight to the server.
	DefaultConcurrency = 6
	requestTimeout     = 30 * time.Second
)

// HTTPOptions configure an HTTPBackend. Zero values select defaults.
type HTTPOptions struct {
	Quality     int
	Fit         Fit
	CacheSize   int
	Concurrency int
	Client      *http.Client
}

// HTTPBackend fetches images from a thumbnailer server. Concurrent requests
// for one URL share a single round trip and decoded images are kept in an
// LRU keyed by URL.
type HTTPBackend struct {
	server  string
	quality int
	fit     Fit
	client  *http.Client

	group singleflight.Group
	sem   *semaphore.Weighted
	cache *lru.Cache
}

// statusError is a non-2xx response.
type statusError struct {
	url  string
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("get %s: %d %s", e.url, e.code, http.StatusText(e.code))
}

// NewHTTPBackend returns a backend for the server at base URL server.
func NewHTTPBackend(server string, opts HTTPOptions) (*HTTPBackend, error) {
	if server == "" {
		return nil, errors.New("thumbnailer server not configured")
	}
	if opts.Quality <= 0 {
		opts.Quality = DefaultQuality
	}
	if opts.Fit == "" {
		opts.Fit = Contain
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: requestTimeout}
	}
	cache, err := lru.New(opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create image cache: %w", err)
	}
	return &HTTPBackend{
		server:  strings.TrimSuffix(server, "/"),
		quality: opts.Quality,
		fit:     opts.Fit,
		client:  opts.Client,
		sem:     semaphore.NewWeighted(int64(opts.Concurrency)),
		cache:   cache,
	}, nil
}

// BaseURL is the resolved URL of a base image.
func (b *HTTPBackend) BaseURL(photoID string, tier resolution.Tier) string {
	return b.server + BasePath(photoID, tier, b.fit, b.quality)
}

// TileURL is the resolved URL of a tile.
func (b *HTTPBackend) TileURL(photoID string, c tile.Coord, rotation int) string {
	return b.server + TilePath(photoID, c, rotation, b.quality)
}

// Cached reports whether url is decoded in memory.
func (b *HTTPBackend) Cached(url string) bool {
	return b.cache.Contains(url)
}

// Base fetches the base image of a photo at tier.
func (b *HTTPBackend) Base(ctx context.Context, photoID string, tier resolution.Tier) (image.Image, error) {
	return b.get(ctx, b.BaseURL(photoID, tier))
}

// Tile fetches one tile. Any error response is reported as ErrTileAbsent.
func (b *HTTPBackend) Tile(ctx context.Context, photoID string, c tile.Coord, rotation int) (image.Image, error) {
	img, err := b.get(ctx, b.TileURL(photoID, c, rotation))
	var se *statusError
	if errors.As(err, &se) {
		return nil, fmt.Errorf("tile %s of %s: %w", c, photoID, ErrTileAbsent)
	}
	return img, err
}

func (b *HTTPBackend) get(ctx context.Context, url string) (image.Image, error) {
	if v, ok := b.cache.Get(url); ok {
		return v.(image.Image), nil
	}
	v, err, shared := b.group.Do(url, func() (interface{}, error) {
		img, err := b.fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		b.cache.Add(url, img)
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		klog.V(2).Infof("shared fetch of %s", url)
	}
	return v.(image.Image), nil
}

func (b *HTTPBackend) fetch(ctx context.Context, url string) (image.Image, error) {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer b.sem.Release(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	start := time.Now()
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{url: url, code: resp.StatusCode}
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	klog.V(2).Infof("fetched %s (%v) in %s", url, img.Bounds().Size(), time.Since(start))
	return img, nil
}
