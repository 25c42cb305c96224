package main

import (
	"errors"
	"flag"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/electronjoe/deepframe/internal/config"
)

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "deepframe",
		Short: "Photo frame with deep zoom",
		Long: `deepframe shows photos full screen in a swipeable carousel. Photos can be
zoomed far past screen resolution; tiles are loaded progressively from a
thumbnailer server, or rendered from local albums.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	cmd.PersistentFlags().AddGoFlagSet(klogFlags)
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file, JSON or YAML (default ~/"+config.DefaultConfigPath+")")

	cmd.AddCommand(newViewCmd(&configPath))
	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newPlanCmd())
	cmd.AddCommand(newCatalogCmd(&configPath))
	cmd.AddCommand(newRemoteCmd())
	return cmd
}

// loadConfig reads path, or the default config file when path is empty.
// A missing default file yields the defaults.
func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg, err := config.Read()
	if errors.Is(err, fs.ErrNotExist) {
		klog.V(1).Infof("no config file, using defaults")
		return config.Default()
	}
	return cfg, err
}
