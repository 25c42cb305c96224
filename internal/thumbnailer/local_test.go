package thumbnailer

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/electronjoe/deepframe/internal/photo"
	"github.com/electronjoe/deepframe/internal/resolution"
	"github.com/electronjoe/deepframe/internal/tile"
)

type files map[string]string

func (f files) Path(id string) (string, bool) {
	p, ok := f[id]
	return p, ok
}

var red = color.RGBA{R: 255, A: 255}

// writePhoto writes a solid red PNG.
func writePhoto(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, red)
		}
	}
	path := filepath.Join(t.TempDir(), "p.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func isRed(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r > 0xf000 && g < 0x1000 && b < 0x1000
}

func isBlack(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r < 0x1000 && g < 0x1000 && b < 0x1000
}

func TestLocalTile(t *testing.T) {
	ctx := context.Background()
	b := NewLocalBackend(files{"wide": writePhoto(t, 40, 10)})

	// 40x10 sits in a 40x40 grid with 15 rows of padding above and below.
	tests := []struct {
		name     string
		c        tile.Coord
		rotation int
		absent   bool
	}{
		{name: "whole grid", c: tile.Coord{Z: 0}},
		{name: "top padding", c: tile.Coord{Z: 2, X: 1, Y: 0}, absent: true},
		{name: "bottom padding", c: tile.Coord{Z: 2, X: 1, Y: 3}, absent: true},
		{name: "upper edge", c: tile.Coord{Z: 2, X: 1, Y: 1}},
		{name: "lower edge", c: tile.Coord{Z: 2, X: 3, Y: 2}},
		{name: "rotated left padding", c: tile.Coord{Z: 2, X: 0, Y: 1}, rotation: 90, absent: true},
		{name: "rotated column", c: tile.Coord{Z: 2, X: 1, Y: 0}, rotation: 90},
		{name: "out of range", c: tile.Coord{Z: 1, X: 2, Y: 0}, absent: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := b.Tile(ctx, "wide", tt.c, tt.rotation)
			if tt.absent {
				if !errors.Is(err, ErrTileAbsent) {
					t.Fatalf("Tile(%s) err = %v, want ErrTileAbsent", tt.c, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Tile(%s): %v", tt.c, err)
			}
			if got := img.Bounds().Size(); got != image.Pt(tile.Size, tile.Size) {
				t.Errorf("size = %v", got)
			}
		})
	}
}

func TestLocalTilePadding(t *testing.T) {
	b := NewLocalBackend(files{"wide": writePhoto(t, 40, 10)})
	img, err := b.Tile(context.Background(), "wide", tile.Coord{Z: 2, X: 1, Y: 1}, 0)
	if err != nil {
		t.Fatal(err)
	}
	// The cell spans photo rows -5..5: the upper half is padding.
	if c := img.At(128, 40); !isBlack(c) {
		t.Errorf("padding pixel = %v, want black", c)
	}
	if c := img.At(128, 200); !isRed(c) {
		t.Errorf("photo pixel = %v, want red", c)
	}
}

func TestLocalRender(t *testing.T) {
	ctx := context.Background()
	b := NewLocalBackend(files{"big": writePhoto(t, 2000, 1000), "small": writePhoto(t, 40, 10)})

	tests := []struct {
		id   string
		tier resolution.Tier
		fit  Fit
		want image.Point
	}{
		{"big", resolution.Standard, Contain, image.Pt(1920, 960)},
		{"big", resolution.Standard, Cover, image.Pt(1920, 1000)},
		{"big", resolution.High, Contain, image.Pt(2000, 1000)},
		{"small", resolution.Standard, Contain, image.Pt(40, 10)},
	}
	for _, tt := range tests {
		img, err := b.Render(ctx, tt.id, tt.tier, tt.fit)
		if err != nil {
			t.Fatalf("Render(%s, %s, %s): %v", tt.id, tt.tier, tt.fit, err)
		}
		if got := img.Bounds().Size(); got != tt.want {
			t.Errorf("Render(%s, %s, %s) size = %v, want %v", tt.id, tt.tier, tt.fit, got, tt.want)
		}
	}
}

func TestLocalUnknownPhoto(t *testing.T) {
	b := NewLocalBackend(files{})
	if _, err := b.Base(context.Background(), "nope", resolution.Standard); !errors.Is(err, photo.ErrNotFound) {
		t.Errorf("Base err = %v, want ErrNotFound", err)
	}
}
