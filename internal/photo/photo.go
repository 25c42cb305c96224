// Package photo holds the list of photos being browsed and the sources it is
// filled from.
package photo

import (
	"context"
	"errors"
	"time"

	"github.com/electronjoe/deepframe/internal/bbox"
)

// ErrNotFound is returned for unknown photo or tag ids.
var ErrNotFound = errors.New("not found")

// Entry is one photo of the list. Width and Height are the natural size of
// the stored pixels, before rotation.
type Entry struct {
	ID        string    `json:"id" yaml:"id"`
	Rotation  int       `json:"rotation" yaml:"rotation"`
	Width     int       `json:"width,omitempty" yaml:"width,omitempty"`
	Height    int       `json:"height,omitempty" yaml:"height,omitempty"`
	TakenTime time.Time `json:"takenTime,omitempty" yaml:"takenTime,omitempty"`
	// Latitude and Longitude come from EXIF GPS tags when present.
	Latitude  float64   `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude float64   `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	FilePath  string    `json:"-" yaml:"-"`
}

// Source supplies the ordered photo list.
type Source interface {
	Photos(ctx context.Context) ([]Entry, error)
}

// TagSource supplies the detection boxes of one photo.
type TagSource interface {
	Tags(ctx context.Context, photoID string) ([]bbox.Tag, error)
}

// Mutator receives edits made in the viewer. Each call is handed to the
// application that owns the data; callers refetch afterwards.
type Mutator interface {
	SetRotation(ctx context.Context, photoID string, deg int) error
	VerifyTag(ctx context.Context, photoID, tagID string) error
	EditTag(ctx context.Context, photoID string, tag bbox.Tag) error
	DeleteTag(ctx context.Context, photoID, tagID string) error
}
