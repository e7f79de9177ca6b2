package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/samirrijal/geogrid/internal/core/usecases"
)

func newFormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "format VALUE...",
		Short:   "Render decimal degrees as label text",
		Example: `  gridctl format 45.5 -- -0.5`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, a := range args {
				v, err := strconv.ParseFloat(a, 64)
				if err != nil {
					return fmt.Errorf("parse %q: %w", a, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), usecases.FormatDegrees(v))
			}
			return nil
		},
	}
}
