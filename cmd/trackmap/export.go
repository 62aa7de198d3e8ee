package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/samirrijal/trackmap/internal/adapters/geojsonio"
	"github.com/samirrijal/trackmap/internal/adapters/shipcsv"
)

func newExportCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [DIR]",
		Short: "Convert a directory of ship CSV files to GeoJSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.cfg.Ships.DataDir
			if len(args) == 1 {
				dir = args[0]
			}
			coll, skipped, err := shipcsv.LoadDir(dir, shipcsv.NewPalette(a.cfg.Ships.Seed))
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := json.NewEncoder(w).Encode(geojsonio.Encode(coll, a.render.Classifier())); err != nil {
				return err
			}
			cmd.PrintErrf("%d tracks exported, %d items skipped\n", coll.Len(), skipped.Count)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}
