package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/samirrijal/trackmap/internal/bootstrap"
	"github.com/samirrijal/trackmap/internal/core/usecases"
	"github.com/samirrijal/trackmap/internal/pkg/config"
	"github.com/samirrijal/trackmap/internal/pkg/logging"
)

// app is built once per invocation, after flags are parsed.
type app struct {
	cfg    *config.Config
	render *usecases.RenderService
	storms *usecases.StormService
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		logLevel string
		basin    string
		a        = &app{}
	)

	rootCmd := &cobra.Command{
		Use:   "trackmap",
		Short: "Frame and render ship and hurricane tracks",
		Long: `trackmap loads ship tracks from CSV files and hurricane best tracks
from HURDAT2, frames them (including tracks that cross the antimeridian)
and writes an interactive HTML map and a static PNG or SVG image.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupCLI(logLevel)
			cfg, err := config.Load("trackmap-cli")
			if err != nil {
				return err
			}
			if basin != "" {
				cfg.Render.Basin = basin
				cfg.Storms.Basin = basin
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			a.cfg = cfg

			if a.render, err = bootstrap.RenderService(cfg, nil, nil); err != nil {
				return err
			}
			a.storms, err = bootstrap.StormService(cfg, nil)
			return err
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&basin, "basin", "", "Storm basin: atlantic, pacific or indian (default from config)")

	rootCmd.AddCommand(
		newRenderCmd(a),
		newFrameCmd(a),
		newStormsCmd(a),
		newExportCmd(a),
		newCleanCmd(),
	)
	return rootCmd
}
