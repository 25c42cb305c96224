package photo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	configDirName         = ".deepframe"
	metadataCacheFileName = "photo_metadata_cache.json"
	metadataCacheVersion  = 3
)

type metadataCache struct {
	Version int                           `json:"version"`
	Entries map[string]metadataCacheEntry `json:"entries"`
}

type metadataCacheEntry struct {
	ModTime   int64     `json:"modTime"`
	ID        string    `json:"id"`
	TakenTime time.Time `json:"takenTime"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Rotation  int       `json:"rotation"`
	Latitude  float64   `json:"latitude,omitempty"`
	Longitude float64   `json:"longitude,omitempty"`
}

func loadMetadataCache(path string) (*metadataCache, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return newMetadataCache(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read metadata cache: %w", err)
	}

	cache := newMetadataCache()
	if err := json.Unmarshal(data, cache); err != nil {
		return nil, fmt.Errorf("unmarshal metadata cache: %w", err)
	}

	// older layouts are rebuilt from scratch
	if cache.Version != metadataCacheVersion || cache.Entries == nil {
		return newMetadataCache(), nil
	}
	return cache, nil
}

func saveMetadataCache(path string, cache *metadataCache) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata cache: %w", err)
	}
	return writeFileAtomic(path, data)
}

// writeFileAtomic replaces path through a temporary sibling file.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func metadataCachePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine user home: %w", err)
	}
	return filepath.Join(homeDir, configDirName, metadataCacheFileName), nil
}

func newMetadataCache() *metadataCache {
	return &metadataCache{
		Version: metadataCacheVersion,
		Entries: make(map[string]metadataCacheEntry),
	}
}

func (c *metadataCache) get(path string, modTime time.Time) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	entry, ok := c.Entries[path]
	if !ok || entry.ModTime != modTime.UnixNano() {
		return Entry{}, false
	}
	return Entry{
		ID:        entry.ID,
		FilePath:  path,
		TakenTime: entry.TakenTime,
		Width:     entry.Width,
		Height:    entry.Height,
		Rotation:  entry.Rotation,
		Latitude:  entry.Latitude,
		Longitude: entry.Longitude,
	}, true
}

func (c *metadataCache) set(path string, modTime time.Time, p Entry) {
	if c == nil {
		return
	}
	c.Entries[path] = metadataCacheEntry{
		ModTime:   modTime.UnixNano(),
		ID:        p.ID,
		TakenTime: p.TakenTime,
		Width:     p.Width,
		Height:    p.Height,
		Rotation:  p.Rotation,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
	}
}

func (c *metadataCache) prune(validPaths map[string]struct{}) bool {
	if c == nil {
		return false
	}
	changed := false
	for path := range c.Entries {
		if _, ok := validPaths[path]; !ok {
			delete(c.Entries, path)
			changed = true
		}
	}
	return changed
}
