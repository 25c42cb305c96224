// Package bbox maps detection boxes from the rotation-corrected image space
// they are produced in into the unrotated space of the displayed pixels.
package bbox

// Box is a center+size rectangle normalized to [0,1].
type Box struct {
	PosX  float64 `json:"positionX" yaml:"positionX"`
	PosY  float64 `json:"positionY" yaml:"positionY"`
	SizeX float64 `json:"sizeX" yaml:"sizeX"`
	SizeY float64 `json:"sizeY" yaml:"sizeY"`
}

// Kind distinguishes faces from other detected objects.
type Kind string

const (
	Face   Kind = "face"
	Object Kind = "object"
)

// Tag is a detection box with its metadata.
type Tag struct {
	ID       string `json:"id" yaml:"id"`
	Label    string `json:"label" yaml:"label"`
	Kind     Kind   `json:"kind" yaml:"kind"`
	Verified bool   `json:"verified" yaml:"verified"`
	Box      `yaml:",inline"`
}

// Rect is a top-left anchored rectangle in percent of the displayed image.
type Rect struct {
	Left, Top, Width, Height float64
}

// Normalize folds any degree value into {0, 90, 180, 270}. Values that are
// not a multiple of 90 are rounded down to the previous quarter turn.
func Normalize(rot int) int {
	r := ((rot % 360) + 360) % 360
	return r - r%90
}

// Transform converts a box produced against the rotated image into the
// coordinate space of the unrotated image.
func Transform(b Box, rot int) Box {
	switch Normalize(rot) {
	case 90:
		return Box{PosX: b.PosY, PosY: 1 - b.PosX, SizeX: b.SizeY, SizeY: b.SizeX}
	case 180:
		return Box{PosX: 1 - b.PosX, PosY: 1 - b.PosY, SizeX: b.SizeX, SizeY: b.SizeY}
	case 270:
		return Box{PosX: 1 - b.PosY, PosY: b.PosX, SizeX: b.SizeY, SizeY: b.SizeX}
	}
	return b
}

// Place returns the rectangle of an already transformed box.
func Place(b Box) Rect {
	return Rect{
		Left:   (b.PosX - b.SizeX/2) * 100,
		Top:    (b.PosY - b.SizeY/2) * 100,
		Width:  b.SizeX * 100,
		Height: b.SizeY * 100,
	}
}

// LabelRotation is the counter-rotation that keeps a label upright on an
// image displayed with rotation rot.
func LabelRotation(rot int) int {
	return (360 - Normalize(rot)) % 360
}

// Find returns the tag with id.
func Find(tags []Tag, id string) (Tag, bool) {
	for _, t := range tags {
		if t.ID == id {
			return t, true
		}
	}
	return Tag{}, false
}

// Next returns the id of the tag after id, wrapping around. An unknown or
// empty id selects the first tag; no tags yield "".
func Next(tags []Tag, id string) string {
	if len(tags) == 0 {
		return ""
	}
	for i, t := range tags {
		if t.ID == id {
			return tags[(i+1)%len(tags)].ID
		}
	}
	return tags[0].ID
}
