package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/samirrijal/trackmap/internal/adapters/geojsonio"
	"github.com/samirrijal/trackmap/internal/core/domain"
)

func newStormsCmd(a *app) *cobra.Command {
	var year int

	stormsCmd := &cobra.Command{
		Use:   "storms",
		Short: "Look up storms in the best-track archive",
	}
	stormsCmd.PersistentFlags().IntVar(&year, "year", 2024, "Storm season")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the storms of one season",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			storms, err := a.storms.ListByYear(cmd.Context(), year)
			if err != nil {
				return err
			}
			if len(storms) == 0 {
				cmd.Printf("No storms found for %d.\n", year)
				return nil
			}
			for _, s := range storms {
				cmd.Printf("%-10s %-12s %3d points\n", s.ID, s.Name, s.Points)
			}
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Print one storm's track as GeoJSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storm, err := a.storms.FindOrSample(cmd.Context(), args[0], year)
			if err != nil {
				return err
			}
			fc := geojsonio.Encode(domain.TrackCollection{Tracks: []domain.Track{*storm}}, a.render.Classifier())
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(fc)
		},
	}

	stormsCmd.AddCommand(listCmd, showCmd)
	return stormsCmd
}
