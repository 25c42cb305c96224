package thumbnailer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/image/draw"
	"golang.org/x/sync/singleflight"
	"k8s.io/klog/v2"

	"github.com/electronjoe/deepframe/internal/bbox"
	"github.com/electronjoe/deepframe/internal/photo"
	"github.com/electronjoe/deepframe/internal/resolution"
	"github.com/electronjoe/deepframe/internal/tile"
)

// Resolver maps photo ids to files.
type Resolver interface {
	Path(id string) (string, bool)
}

// sourceCacheSize is the number of full-resolution decoded photos kept.
const sourceCacheSize = 4

// LocalBackend renders base images and tiles from local files. Tiles cut a
// square grid sized to the longer side of the rotated photo, with the
// shorter side centered; cells outside the photo are absent.
type LocalBackend struct {
	files Resolver

	group   singleflight.Group
	sources *lru.Cache
}

// NewLocalBackend returns a backend reading the files of r.
func NewLocalBackend(r Resolver) *LocalBackend {
	sources, _ := lru.New(sourceCacheSize)
	return &LocalBackend{files: r, sources: sources}
}

// Base scales the photo, unrotated, to tier with Contain fit.
func (b *LocalBackend) Base(ctx context.Context, photoID string, tier resolution.Tier) (image.Image, error) {
	return b.Render(ctx, photoID, tier, Contain)
}

// Render scales the photo to fit (Contain) or fill (Cover) the tier's square.
// Photos are never scaled up.
func (b *LocalBackend) Render(ctx context.Context, photoID string, tier resolution.Tier, fit Fit) (image.Image, error) {
	src, err := b.source(ctx, photoID, 0)
	if err != nil {
		return nil, err
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	edge := float64(tier.Edge())
	scale := math.Min(edge/float64(w), edge/float64(h))
	if fit == Cover {
		scale = math.Max(edge/float64(w), edge/float64(h))
	}
	scale = math.Min(scale, 1)
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))
	var out image.Image = src
	if nw != w || nh != h {
		out = transform.Resize(src, nw, nh, transform.Linear)
	}
	if fit == Cover {
		cw, ch := min(nw, tier.Edge()), min(nh, tier.Edge())
		x0, y0 := (nw-cw)/2, (nh-ch)/2
		out = transform.Crop(out, image.Rect(x0, y0, x0+cw, y0+ch))
	}
	return out, nil
}

// Tile renders one Size x Size tile of the photo rotated clockwise by
// rotation degrees.
func (b *LocalBackend) Tile(ctx context.Context, photoID string, c tile.Coord, rotation int) (image.Image, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("tile %s: %w", c, ErrTileAbsent)
	}
	src, err := b.source(ctx, photoID, bbox.Normalize(rotation))
	if err != nil {
		return nil, err
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	cell, rect, ok := cellRect(w, h, c)
	if !ok {
		return nil, fmt.Errorf("tile %s of %s: %w", c, photoID, ErrTileAbsent)
	}

	// Pixels of the cell that fall inside the photo, in cell coordinates.
	padX := float64(max(w, h)-w) / 2
	padY := float64(max(w, h)-h) / 2
	cellX := float64(c.X)*cell - padX
	cellY := float64(c.Y)*cell - padY
	k := tile.Size / cell
	dst := image.Rect(
		int(math.Floor((float64(rect.Min.X)-cellX)*k)),
		int(math.Floor((float64(rect.Min.Y)-cellY)*k)),
		int(math.Ceil((float64(rect.Max.X)-cellX)*k)),
		int(math.Ceil((float64(rect.Max.Y)-cellY)*k)),
	).Intersect(image.Rect(0, 0, tile.Size, tile.Size))
	if dst.Empty() {
		return nil, fmt.Errorf("tile %s of %s: %w", c, photoID, ErrTileAbsent)
	}

	out := image.NewRGBA(image.Rect(0, 0, tile.Size, tile.Size))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.ApproxBiLinear.Scale(out, dst, src, rect, draw.Src, nil)
	return out, nil
}

// cellRect returns the edge of one cell in photo pixels and the part of the
// photo it covers.
func cellRect(w, h int, c tile.Coord) (float64, image.Rectangle, bool) {
	n := 1 << c.Z
	side := max(w, h)
	cell := float64(side) / float64(n)
	padX := float64(side-w) / 2
	padY := float64(side-h) / 2
	r := image.Rect(
		int(math.Floor(float64(c.X)*cell-padX)),
		int(math.Floor(float64(c.Y)*cell-padY)),
		int(math.Ceil(float64(c.X+1)*cell-padX)),
		int(math.Ceil(float64(c.Y+1)*cell-padY)),
	).Intersect(image.Rect(0, 0, w, h))
	return cell, r, !r.Empty()
}

type sourceKey struct {
	id       string
	rotation int
}

// source decodes the photo and applies rotation, sharing work between
// concurrent tile requests.
func (b *LocalBackend) source(ctx context.Context, photoID string, rotation int) (image.Image, error) {
	key := sourceKey{photoID, rotation}
	if v, ok := b.sources.Get(key); ok {
		return v.(image.Image), nil
	}
	v, err, _ := b.group.Do(fmt.Sprintf("%s@%d", photoID, rotation), func() (interface{}, error) {
		path, ok := b.files.Path(photoID)
		if !ok {
			return nil, fmt.Errorf("photo %s: %w", photoID, photo.ErrNotFound)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := imgio.Open(path)
		if err != nil {
			return nil, fmt.Errorf("imgio.Open: %w", err)
		}
		img = rotate(img, rotation)
		klog.V(1).Infof("decoded %s at %d°: %v", path, rotation, img.Bounds().Size())
		b.sources.Add(key, img)
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

// rotate turns img clockwise by a quarter-turn multiple.
func rotate(img image.Image, deg int) image.Image {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	switch deg {
	case 180:
		return transform.FlipV(transform.FlipH(img))
	case 90, 270:
		r := transform.Rotate(img, float64(deg), &transform.RotationOptions{ResizeBounds: true})
		if r.Bounds().Dx() != h || r.Bounds().Dy() != w {
			// float bounds can overshoot by a pixel
			return transform.Crop(r, image.Rect(0, 0, h, w))
		}
		return r
	}
	return img
}
