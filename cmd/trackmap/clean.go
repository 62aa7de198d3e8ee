package main

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/samirrijal/trackmap/internal/adapters/shipcsv"
)

// newCleanCmd prepares exported CSV files for the reader.
func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean-csv DIR",
		Short: "Strip sep= and blank lines from ship CSV files in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := shipcsv.CleanDir(args[0])
			if err != nil {
				return err
			}
			files := make([]string, 0, len(removed))
			for f := range removed {
				files = append(files, f)
			}
			sort.Strings(files)
			for _, f := range files {
				cmd.Printf("%s: %d lines removed\n", f, removed[f])
			}
			cmd.Printf("%d files cleaned\n", len(files))
			return nil
		},
	}
}
