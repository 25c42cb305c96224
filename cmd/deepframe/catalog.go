package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/electronjoe/deepframe/internal/photo"
)

func newCatalogCmd(configPath *string) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "catalog [album...]",
		Short: "Write a catalog of local albums",
		Long: `Scans album directories and writes their photos, with ids, sizes,
rotation, capture time and GPS position, to a catalog file. The format is
YAML when the file ends in .yaml or .yml and JSON otherwise.

A viewer started with --catalog and --server reads the same ids that
"deepframe serve" derives from these albums.`,
		Example: `  deepframe catalog --out photos.yaml ~/Pictures/2024 ~/Pictures/2025`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.Albums = args
			}
			if len(cfg.Albums) == 0 {
				return errors.New("no albums to catalog")
			}
			if out == "" {
				out = cfg.Catalog
			}
			if out == "" {
				return errors.New("no output file, pass --out")
			}

			photos, err := photo.NewAlbumSource(cfg.Albums).Photos(cmd.Context())
			if err != nil {
				return fmt.Errorf("load photos: %w", err)
			}
			if err := photo.WriteCatalog(out, photos); err != nil {
				return fmt.Errorf("write catalog: %w", err)
			}
			klog.Infof("wrote %d photos to %s", len(photos), out)
			fmt.Fprintf(cmd.OutOrStdout(), "%d photos written to %s\n", len(photos), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "catalog file to write (default: config catalog)")
	return cmd
}
