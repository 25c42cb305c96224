package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/electronjoe/deepframe/internal/photo"
	"github.com/electronjoe/deepframe/internal/thumbnailer"
)

func newServeCmd(configPath *string) *cobra.Command {
	var (
		listen      string
		logRequests bool
	)

	cmd := &cobra.Command{
		Use:   "serve [album...]",
		Short: "Serve base images and tiles of local albums",
		Long: `Serves the thumbnailer URL contract from local album directories:

  GET /thumbnailer/photo/{W}x{H}_{fit}_q{quality}/{photoId}/
  GET /thumbnailer/tile/{photoId}/{z}/{x}/{y}.jpg?rotation={deg}&q={quality}

Photo ids are derived from file paths, so a viewer pointed at this server
needs a catalog built from the same albums.`,
		Example: `  deepframe serve --listen :8080 ~/Pictures`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.Albums = args
			}
			if listen != "" {
				cfg.Listen = listen
			}
			if len(cfg.Albums) == 0 {
				return errors.New("no albums to serve")
			}

			ctx := cmd.Context()
			albums := photo.NewAlbumSource(cfg.Albums)
			photos, err := albums.Photos(ctx)
			if err != nil {
				return fmt.Errorf("load photos: %w", err)
			}
			klog.Infof("serving %d photos from %v", len(photos), cfg.Albums)
			if cfg.Watch {
				go func() {
					err := photo.Watch(ctx, cfg.Albums, watchQuiet, func() {
						if _, err := albums.Photos(ctx); err != nil {
							klog.Warningf("reload albums: %v", err)
						}
					})
					if err != nil && ctx.Err() == nil {
						klog.Warningf("album watch stopped: %v", err)
					}
				}()
			}

			srv := thumbnailer.NewServer(thumbnailer.NewLocalBackend(albums), logRequests)
			serverErr := make(chan error, 1)
			go func() {
				serverErr <- srv.Listen(cfg.Listen)
			}()

			select {
			case <-ctx.Done():
				klog.Info("Shutting down server...")
				if err := srv.Shutdown(); err != nil {
					return fmt.Errorf("shutdown: %w", err)
				}
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "address to listen on (default :8080)")
	cmd.Flags().BoolVar(&logRequests, "log-requests", false, "log every request")
	return cmd
}
