package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/samirrijal/trackmap/internal/adapters/shipcsv"
	"github.com/samirrijal/trackmap/internal/core/domain"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		shipsDir      string
		noShips       bool
		storm         string
		year          int
		format        string
		outDir        string
		noInteractive bool
		noStatic      bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render ship tracks and/or a storm to HTML and an image",
		Example: `  trackmap render --ships ship_data
  trackmap render --no-ships --storm milton --year 2024 --format svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if noShips && storm == "" {
				return fmt.Errorf("nothing to render: give --storm or drop --no-ships")
			}
			imgFormat, err := domain.ParseImageFormat(format)
			if err != nil {
				return err
			}
			if shipsDir == "" {
				shipsDir = a.cfg.Ships.DataDir
			}
			if outDir == "" {
				outDir = a.cfg.Output.Dir
			}
			ctx := cmd.Context()

			var (
				coll    domain.TrackCollection
				skipped domain.SkipReport
			)
			if !noShips {
				ships, shipSkips, err := shipcsv.LoadDir(shipsDir, shipcsv.NewPalette(a.cfg.Ships.Seed))
				if err != nil {
					return err
				}
				coll.Tracks = append(coll.Tracks, ships.Tracks...)
				skipped.Merge(shipSkips)
			}
			if storm != "" {
				t, err := a.storms.FindOrSample(ctx, storm, year)
				if err != nil {
					return err
				}
				coll.Tracks = append(coll.Tracks, *t)
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			var event *domain.RenderEvent
			if !noInteractive {
				var buf bytes.Buffer
				if event, err = a.render.RenderInteractive(ctx, coll, &buf); err != nil {
					return err
				}
				path := filepath.Join(outDir, a.cfg.Output.InteractiveFile)
				if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
					return err
				}
				cmd.Printf("Interactive map saved to %s\n", path)
			}
			if !noStatic {
				var buf bytes.Buffer
				if event, err = a.render.RenderStatic(ctx, coll, imgFormat, &buf); err != nil {
					return err
				}
				path := filepath.Join(outDir, a.cfg.Output.StaticFile+"."+string(imgFormat))
				if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
					return err
				}
				cmd.Printf("Static map saved to %s\n", path)
			}

			if event != nil {
				cmd.Printf("%d tracks, %d points, %d skipped, crosses antimeridian: %t\n",
					event.Tracks, event.Points, event.Skipped+skipped.Count, event.Crossing)
			}
			for _, s := range skipped.Items {
				cmd.PrintErrf("skipped %s[%d]: %s\n", s.Track, s.Index, s.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&shipsDir, "ships", "", "Directory of ship CSV files (default ships.data_dir)")
	cmd.Flags().BoolVar(&noShips, "no-ships", false, "Do not load ship tracks")
	cmd.Flags().StringVar(&storm, "storm", "", "Storm name to overlay")
	cmd.Flags().IntVar(&year, "year", 2024, "Storm season")
	cmd.Flags().StringVarP(&format, "format", "f", "png", "Static image format (png or svg)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default output.dir)")
	cmd.Flags().BoolVar(&noInteractive, "no-interactive", false, "Skip the HTML map")
	cmd.Flags().BoolVar(&noStatic, "no-static", false, "Skip the static image")
	return cmd
}
