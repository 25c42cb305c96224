package photo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"

	"github.com/electronjoe/deepframe/internal/bbox"
)

// CatalogPhoto is one photo record of a catalog file.
type CatalogPhoto struct {
	Entry `yaml:",inline"`
	Tags  []bbox.Tag `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// catalogFile is the on-disk layout of a catalog.
type catalogFile struct {
	Photos []CatalogPhoto `json:"photos" yaml:"photos"`
}

// Catalog is a photo list with detection tags exported by the library
// service. It serves as Source, TagSource and Mutator; edits are written
// back to the file.
type Catalog struct {
	path string

	mu     sync.RWMutex
	photos []CatalogPhoto
}

// OpenCatalog reads a JSON or YAML catalog file.
func OpenCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var f catalogFile
	if isYAML(path) {
		err = yaml.Unmarshal(data, &f)
	} else {
		err = json.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	klog.V(1).Infof("catalog %s: %d photos", path, len(f.Photos))
	return &Catalog{path: path, photos: f.Photos}, nil
}

// WriteCatalog writes entries as a new catalog without tags.
func WriteCatalog(path string, entries []Entry) error {
	c := &Catalog{path: path, photos: make([]CatalogPhoto, len(entries))}
	for i, e := range entries {
		c.photos[i] = CatalogPhoto{Entry: e}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Photos returns the photos in catalog order.
func (c *Catalog) Photos(ctx context.Context) ([]Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, len(c.photos))
	for i, p := range c.photos {
		out[i] = p.Entry
	}
	return out, nil
}

// Tags returns the detection tags of a photo.
func (c *Catalog) Tags(ctx context.Context, photoID string) ([]bbox.Tag, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := c.find(photoID)
	if i < 0 {
		return nil, fmt.Errorf("photo %s: %w", photoID, ErrNotFound)
	}
	out := make([]bbox.Tag, len(c.photos[i].Tags))
	copy(out, c.photos[i].Tags)
	return out, nil
}

// SetRotation stores a rotation edit.
func (c *Catalog) SetRotation(ctx context.Context, photoID string, deg int) error {
	return c.update(photoID, func(p *CatalogPhoto) error {
		p.Rotation = bbox.Normalize(deg)
		return nil
	})
}

// VerifyTag marks a tag as confirmed by the user.
func (c *Catalog) VerifyTag(ctx context.Context, photoID, tagID string) error {
	return c.update(photoID, func(p *CatalogPhoto) error {
		for i := range p.Tags {
			if p.Tags[i].ID == tagID {
				p.Tags[i].Verified = true
				return nil
			}
		}
		return fmt.Errorf("tag %s: %w", tagID, ErrNotFound)
	})
}

// EditTag replaces the tag with the same id.
func (c *Catalog) EditTag(ctx context.Context, photoID string, tag bbox.Tag) error {
	return c.update(photoID, func(p *CatalogPhoto) error {
		for i := range p.Tags {
			if p.Tags[i].ID == tag.ID {
				p.Tags[i] = tag
				return nil
			}
		}
		return fmt.Errorf("tag %s: %w", tag.ID, ErrNotFound)
	})
}

// DeleteTag removes a tag.
func (c *Catalog) DeleteTag(ctx context.Context, photoID, tagID string) error {
	return c.update(photoID, func(p *CatalogPhoto) error {
		for i := range p.Tags {
			if p.Tags[i].ID == tagID {
				p.Tags = append(p.Tags[:i], p.Tags[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("tag %s: %w", tagID, ErrNotFound)
	})
}

func (c *Catalog) find(photoID string) int {
	for i := range c.photos {
		if c.photos[i].ID == photoID {
			return i
		}
	}
	return -1
}

func (c *Catalog) update(photoID string, fn func(p *CatalogPhoto) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.find(photoID)
	if i < 0 {
		return fmt.Errorf("photo %s: %w", photoID, ErrNotFound)
	}
	if err := fn(&c.photos[i]); err != nil {
		return err
	}
	return c.saveLocked()
}

func (c *Catalog) saveLocked() error {
	f := catalogFile{Photos: c.photos}
	var (
		data []byte
		err  error
	)
	if isYAML(c.path) {
		data, err = yaml.Marshal(&f)
	} else {
		data, err = json.MarshalIndent(&f, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	return writeFileAtomic(c.path, data)
}
