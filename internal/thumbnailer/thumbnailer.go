// Package thumbnailer fetches base images and tiles from the thumbnailer
// service, and renders the same URL contract from local files.
package thumbnailer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/electronjoe/deepframe/internal/resolution"
	"github.com/electronjoe/deepframe/internal/tile"
)

// ErrTileAbsent is returned for tiles that have no pixels, e.g. past the
// image edge in the padded square grid.
var ErrTileAbsent = errors.New("tile absent")

// DefaultQuality is the JPEG quality requested when none is configured.
const DefaultQuality = 85

// Fit selects how a base image fills its resolution tier.
type Fit string

const (
	Contain Fit = "contain"
	Cover   Fit = "cover"
)

// ParseFit accepts "contain" or "cover"; empty selects Contain.
func ParseFit(s string) (Fit, error) {
	switch Fit(s) {
	case "", Contain:
		return Contain, nil
	case Cover:
		return Cover, nil
	}
	return "", fmt.Errorf("unknown fit mode %q", s)
}

// Backend supplies decoded base images and tiles.
type Backend interface {
	Base(ctx context.Context, photoID string, tier resolution.Tier) (image.Image, error)
	Tile(ctx context.Context, photoID string, c tile.Coord, rotation int) (image.Image, error)
}

// BasePath is the request path of a base image.
func BasePath(photoID string, tier resolution.Tier, fit Fit, quality int) string {
	return fmt.Sprintf("/thumbnailer/photo/%s_%s_q%d/%s/", tier.Size(), fit, quality, photoID)
}

// TilePath is the request path of one tile, rendered at rotation.
func TilePath(photoID string, c tile.Coord, rotation, quality int) string {
	return fmt.Sprintf("/thumbnailer/tile/%s/%d/%d/%d.jpg?rotation=%d&q=%d", photoID, c.Z, c.X, c.Y, rotation, quality)
}

// BaseSpec is the decoded size segment of a base image path.
type BaseSpec struct {
	Tier    resolution.Tier
	Fit     Fit
	Quality int
}

// ParseBaseSpec decodes a "{W}x{H}_{fit}_q{quality}" path segment.
func ParseBaseSpec(s string) (BaseSpec, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 3 || !strings.HasPrefix(parts[2], "q") {
		return BaseSpec{}, fmt.Errorf("malformed size %q", s)
	}
	var spec BaseSpec
	switch parts[0] {
	case resolution.Standard.Size():
		spec.Tier = resolution.Standard
	case resolution.High.Size():
		spec.Tier = resolution.High
	default:
		return BaseSpec{}, fmt.Errorf("unsupported resolution %q", parts[0])
	}
	fit, err := ParseFit(parts[1])
	if err != nil {
		return BaseSpec{}, err
	}
	spec.Fit = fit
	q, err := strconv.Atoi(parts[2][1:])
	if err != nil || q < 1 || q > 100 {
		return BaseSpec{}, fmt.Errorf("bad quality %q", parts[2])
	}
	spec.Quality = q
	return spec, nil
}
