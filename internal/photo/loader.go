package photo

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/karrick/godirwalk"
	"github.com/rwcarlsen/goexif/exif"
	"k8s.io/klog/v2"
)

// AlbumSource lists the images found under local album directories.
type AlbumSource struct {
	Albums []string
	// CachePath is the metadata cache file; empty disables caching.
	CachePath string

	mu    sync.RWMutex
	paths map[string]string
}

// NewAlbumSource returns a source over albums using the default cache file.
func NewAlbumSource(albums []string) *AlbumSource {
	path, err := metadataCachePath()
	if err != nil {
		klog.Warningf("metadata cache disabled: %v", err)
	}
	return &AlbumSource{Albums: albums, CachePath: path}
}

// Photos walks each album directory, gathering metadata for each image file.
// Photos are ordered by the time they were taken.
func (s *AlbumSource) Photos(ctx context.Context) ([]Entry, error) {
	cache := newMetadataCache()
	if s.CachePath != "" {
		c, err := loadMetadataCache(s.CachePath)
		if err != nil {
			klog.Warningf("ignoring metadata cache: %v", err)
		} else {
			cache = c
		}
	}

	var photos []Entry
	seen := make(map[string]struct{})
	for _, albumDir := range s.Albums {
		err := godirwalk.Walk(albumDir, &godirwalk.Options{
			Unsorted: true,
			Callback: func(path string, de *godirwalk.Dirent) error {
				if err := ctx.Err(); err != nil {
					return err
				}
				if strings.HasPrefix(filepath.Base(path), ".") && path != albumDir {
					return godirwalk.SkipThis
				}
				if de.IsDir() || !isImageFile(path) {
					return nil
				}
				info, err := os.Stat(path)
				if err != nil {
					klog.Warningf("stat %s: %v", path, err)
					return nil
				}
				seen[path] = struct{}{}
				if p, ok := cache.get(path, info.ModTime()); ok {
					photos = append(photos, p)
					return nil
				}
				p, err := extractMetadata(path, info.ModTime())
				if err != nil {
					// Not critical; just log a warning and skip this file
					klog.Warningf("could not extract metadata for %s: %v", path, err)
					return nil
				}
				cache.set(path, info.ModTime(), p)
				photos = append(photos, p)
				return nil
			},
			ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
				klog.Warningf("error accessing %s: %v", path, err)
				return godirwalk.SkipNode
			},
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// one bad directory shouldn't break the entire load
			klog.Errorf("error walking directory %s: %v", albumDir, err)
		}
	}

	if s.CachePath != "" {
		cache.prune(seen)
		if err := saveMetadataCache(s.CachePath, cache); err != nil {
			klog.Warningf("saving metadata cache: %v", err)
		}
	}

	sort.SliceStable(photos, func(i, j int) bool {
		return photos[i].TakenTime.Before(photos[j].TakenTime)
	})

	paths := make(map[string]string, len(photos))
	for _, p := range photos {
		paths[p.ID] = p.FilePath
	}
	s.mu.Lock()
	s.paths = paths
	s.mu.Unlock()

	klog.V(1).Infof("found %d photos in %d albums", len(photos), len(s.Albums))
	return photos, nil
}

// Path returns the file backing a photo id from the last Photos call.
func (s *AlbumSource) Path(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.paths[id]
	return p, ok
}

// IDForPath derives the stable photo id used in thumbnailer URLs.
func IDForPath(path string) string {
	sum := sha1.Sum([]byte(filepath.Clean(path)))
	return hex.EncodeToString(sum[:10])
}

// isImageFile checks for common image file extensions.
func isImageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	}
	return false
}

// extractMetadata obtains the photo's timestamp (from EXIF or file mod
// time), EXIF orientation, GPS position and dimensions.
func extractMetadata(path string, modTime time.Time) (Entry, error) {
	width, height, err := extractDimensions(path)
	if err != nil {
		return Entry{}, err
	}
	p := Entry{
		ID:        IDForPath(path),
		FilePath:  path,
		Width:     width,
		Height:    height,
		TakenTime: modTime,
	}

	f, err := os.Open(path)
	if err != nil {
		return Entry{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil || x == nil {
		klog.V(2).Infof("no exif in %s: %v", path, err)
		return p, nil
	}
	if t, err := x.DateTime(); err == nil {
		p.TakenTime = t
	}
	if tag, err := x.Get(exif.Orientation); err == nil {
		if o, err := tag.Int(0); err == nil {
			p.Rotation = OrientationRotation(o)
		}
	}
	if lat, long, err := x.LatLong(); err == nil {
		p.Latitude, p.Longitude = lat, long
	}
	return p, nil
}

// OrientationRotation converts an EXIF orientation into the clockwise
// rotation that displays the image upright. Mirrored orientations map to the
// rotation of their unmirrored counterpart.
func OrientationRotation(orientation int) int {
	switch orientation {
	case 3, 4:
		return 180
	case 5, 6:
		return 90
	case 7, 8:
		return 270
	}
	return 0
}

// extractDimensions uses image.DecodeConfig to get width and height without decoding the full image.
func extractDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open file for dimensions: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode config failed for %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}
