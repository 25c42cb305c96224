package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = ".deepframe/config.json"

	// EnvServer and EnvQuality override the file values.
	EnvServer  = "DEEPFRAME_SERVER"
	EnvQuality = "DEEPFRAME_QUALITY"
)

// Config represents the config file structure.
type Config struct {
	// Albums are local photo directories. Used when Catalog is empty.
	Albums []string `json:"albums" yaml:"albums"`
	// Catalog is a JSON or YAML photo catalog with detection tags.
	Catalog string `json:"catalog" yaml:"catalog"`
	// Server is the thumbnailer base URL. Empty renders from local files.
	Server  string `json:"server" yaml:"server"`
	Quality int    `json:"quality" yaml:"quality"`
	Fit     string `json:"fit" yaml:"fit"`
	// Listen is the address of `deepframe serve`.
	Listen string `json:"listen" yaml:"listen"`

	DimsCacheSize  int `json:"dimsCacheSize" yaml:"dimsCacheSize"`
	ImageCacheSize int `json:"imageCacheSize" yaml:"imageCacheSize"`
	MaxLevel       int `json:"maxLevel" yaml:"maxLevel"`

	DateOverlay bool `json:"dateOverlay" yaml:"dateOverlay"`
	// Interval is the slideshow period in seconds; Slideshow enables it.
	Slideshow bool `json:"slideshow" yaml:"slideshow"`
	Interval  int  `json:"interval" yaml:"interval"`
	Randomize bool `json:"randomize" yaml:"randomize"`
	// Watch reloads the album list when files change.
	Watch bool `json:"watch" yaml:"watch"`

	// CEC reads remote buttons from cec-client; PowerOnTV wakes the TV at start.
	CEC       bool `json:"cec" yaml:"cec"`
	PowerOnTV bool `json:"powerOnTV" yaml:"powerOnTV"`
	// HDMIInput, when set, is announced as the active source at start.
	HDMIInput int `json:"hdmiInput" yaml:"hdmiInput"`
}

// Read retrieves and parses the config from ~/.deepframe/config.json.
func Read() (Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("failed to get user home directory: %w", err)
	}
	return Load(filepath.Join(homeDir, DefaultConfigPath))
}

// Load parses the config at path; .yaml and .yml files are read as YAML.
// Environment overrides and defaults are applied.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file at %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// Default is the configuration used when no config file exists.
func Default() (Config, error) {
	var cfg Config
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyEnv copies DEEPFRAME_* variables over the file values.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvServer); v != "" {
		c.Server = v
	}
	if v := os.Getenv(EnvQuality); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvQuality, err)
		}
		c.Quality = q
	}
	return nil
}

// ApplyDefaults fills unset or invalid fields.
func (c *Config) ApplyDefaults() {
	if c.Quality <= 0 || c.Quality > 100 {
		c.Quality = 85
	}
	if c.Fit == "" {
		c.Fit = "contain"
	}
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.DimsCacheSize <= 0 {
		c.DimsCacheSize = 20
	}
	if c.ImageCacheSize <= 0 {
		c.ImageCacheSize = 256
	}
	if c.MaxLevel <= 0 {
		c.MaxLevel = 5
	}
	// Default interval if not set or invalid
	if c.Interval <= 0 {
		c.Interval = 10
	}
}
