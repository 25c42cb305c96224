package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/electronjoe/deepframe/internal/browser"
	"github.com/electronjoe/deepframe/internal/cec"
	"github.com/electronjoe/deepframe/internal/config"
	"github.com/electronjoe/deepframe/internal/photo"
	"github.com/electronjoe/deepframe/internal/resolution"
	"github.com/electronjoe/deepframe/internal/thumbnailer"
)

// watchQuiet is how long album changes must settle before a reload.
const watchQuiet = 2 * time.Second

func newViewCmd(configPath *string) *cobra.Command {
	var (
		catalog  string
		server   string
		windowed bool
	)

	cmd := &cobra.Command{
		Use:   "view [album...]",
		Short: "Open the photo browser",
		Long: `Opens the full-screen photo browser. Photos come from --catalog, or from the
album directories given as arguments or in the config file.

Keys: left/right navigate, +/- zoom, 0 resets zoom, B toggles boxes,
I toggles info, R rotates, Tab selects the next box, V toggles its
verified flag, Delete removes it, space pauses the slideshow, Esc quits.`,
		Example: `  # Browse local albums, rendering tiles locally
  deepframe view ~/Pictures/2024

  # Browse a catalog served by a thumbnailer
  deepframe view --catalog photos.yaml --server http://nas:8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.Albums = args
			}
			if catalog != "" {
				cfg.Catalog = catalog
			}
			if server != "" {
				cfg.Server = server
			}
			return runView(cmd.Context(), cfg, windowed)
		},
	}

	cmd.Flags().StringVar(&catalog, "catalog", "", "JSON or YAML photo catalog")
	cmd.Flags().StringVar(&server, "server", "", "thumbnailer base URL")
	cmd.Flags().BoolVar(&windowed, "windowed", false, "run in a resizable window instead of full screen")
	return cmd
}

// sources bundles what a photo source provides.
type sources struct {
	photos   photo.Source
	tags     photo.TagSource
	mutator  photo.Mutator
	resolver thumbnailer.Resolver
}

func openSources(cfg config.Config) (sources, error) {
	if cfg.Catalog != "" {
		c, err := photo.OpenCatalog(cfg.Catalog)
		if err != nil {
			return sources{}, err
		}
		return sources{photos: c, tags: c, mutator: c}, nil
	}
	if len(cfg.Albums) == 0 {
		return sources{}, errors.New("no albums configured and no catalog given")
	}
	a := photo.NewAlbumSource(cfg.Albums)
	return sources{photos: a, resolver: a}, nil
}

// newBackend picks the thumbnailer server when configured and local
// rendering otherwise.
func newBackend(cfg config.Config, src sources) (thumbnailer.Backend, func(string, resolution.Tier) string, error) {
	fit, err := thumbnailer.ParseFit(cfg.Fit)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Server != "" {
		b, err := thumbnailer.NewHTTPBackend(cfg.Server, thumbnailer.HTTPOptions{
			Quality:   cfg.Quality,
			Fit:       fit,
			CacheSize: cfg.ImageCacheSize,
		})
		if err != nil {
			return nil, nil, err
		}
		return b, b.BaseURL, nil
	}
	if src.resolver == nil {
		return nil, nil, errors.New("a catalog needs a thumbnailer server")
	}
	key := func(id string, tier resolution.Tier) string {
		return thumbnailer.BasePath(id, tier, thumbnailer.Contain, cfg.Quality)
	}
	return thumbnailer.NewLocalBackend(src.resolver), key, nil
}

func runView(ctx context.Context, cfg config.Config, windowed bool) error {
	src, err := openSources(cfg)
	if err != nil {
		return err
	}
	photos, err := src.photos.Photos(ctx)
	if err != nil {
		return fmt.Errorf("load photos: %w", err)
	}
	if len(photos) == 0 {
		klog.Info("No photos found. Exiting.")
		return nil
	}
	if cfg.Randomize {
		rand.Shuffle(len(photos), func(i, j int) {
			photos[i], photos[j] = photos[j], photos[i]
		})
	}
	store := photo.NewStore()
	store.SetPhotos(photos)

	backend, key, err := newBackend(cfg, src)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var remote chan cec.Command
	if cfg.CEC {
		remote = make(chan cec.Command, 10)
		go func() {
			if err := cec.Listen(ctx, remote); err != nil {
				klog.Warningf("CEC listener: %v", err)
			}
		}()
	}
	if cfg.PowerOnTV {
		if err := cec.PowerOnTV(ctx); err != nil {
			klog.Warningf("power on TV: %v", err)
		}
	}
	if cfg.HDMIInput > 0 {
		if err := cec.SwitchToHDMI(ctx, cfg.HDMIInput); err != nil {
			klog.Warningf("switch to HDMI %d: %v", cfg.HDMIInput, err)
		}
	}

	var reloads chan []photo.Entry
	if cfg.Watch && cfg.Catalog == "" {
		reloads = make(chan []photo.Entry, 1)
		go watchAlbums(ctx, cfg.Albums, src.photos, reloads)
	}

	interval := time.Duration(0)
	if cfg.Slideshow {
		interval = time.Duration(cfg.Interval) * time.Second
	}
	game := browser.New(ctx, browser.Options{
		Store:         store,
		Tags:          src.tags,
		Mutator:       src.mutator,
		Backend:       backend,
		Key:           key,
		DimsCacheSize: cfg.DimsCacheSize,
		MaxLevel:      cfg.MaxLevel,
		DateOverlay:   cfg.DateOverlay,
		Interval:      interval,
		Remote:        remote,
		Reloads:       reloads,
	})

	ebiten.SetWindowTitle("deepframe")
	if windowed {
		ebiten.SetWindowSize(1280, 800)
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	} else {
		ebiten.SetFullscreen(true)
	}
	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("ebiten run: %w", err)
	}
	return nil
}

// watchAlbums reloads the photo list whenever the albums change.
func watchAlbums(ctx context.Context, albums []string, src photo.Source, out chan<- []photo.Entry) {
	err := photo.Watch(ctx, albums, watchQuiet, func() {
		photos, err := src.Photos(ctx)
		if err != nil {
			klog.Warningf("reload albums: %v", err)
			return
		}
		select {
		case out <- photos:
		case <-ctx.Done():
		}
	})
	if err != nil && ctx.Err() == nil {
		klog.Warningf("album watch stopped: %v", err)
	}
}
