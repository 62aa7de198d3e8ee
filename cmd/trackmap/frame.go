package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/samirrijal/trackmap/internal/adapters/geojsonio"
	"github.com/samirrijal/trackmap/internal/core/domain"
)

type frameOutput struct {
	Frame       domain.BoundingFrame   `json:"frame"`
	Interactive domain.InteractiveView `json:"interactive"`
	Static      domain.StaticView      `json:"static"`
	Skipped     domain.SkipReport      `json:"skipped"`
}

func newFrameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "frame FILE",
		Short: "Print the bounding frame of a GeoJSON FeatureCollection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			coll, skipped, err := geojsonio.Decode(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			frame, more := a.render.Frame(cmd.Context(), coll)
			skipped.Merge(more)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(frameOutput{
				Frame:       frame,
				Interactive: frame.Interactive(),
				Static:      frame.Static(),
				Skipped:     skipped,
			})
		},
	}
}
