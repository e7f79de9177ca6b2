package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/samirrijal/geogrid/internal/core/usecases"
	"github.com/samirrijal/geogrid/internal/pkg/geospatial"
)

func newDensityCmd() *cobra.Command {
	var (
		from, to int
		latitude float64
		display  outputOptions
	)
	cmd := &cobra.Command{
		Use:   "density",
		Short: "Show the grid spacing for each zoom level",
		RunE: func(cmd *cobra.Command, args []string) error {
			if from > to {
				return fmt.Errorf("--from %d is above --to %d", from, to)
			}
			t := display.newTable(cmd.OutOrStdout(), table.Row{"Zoom", "Degrees", "Label", "Meters"})
			for z := from; z <= to; z++ {
				d := usecases.DefaultDensity(z)
				meters := geospatial.Haversine(latitude, 0, latitude, d)
				t.AppendRow(table.Row{z, d, usecases.FormatDegrees(d), fmt.Sprintf("%.0f", meters)})
			}
			display.render(t)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&from, "from", 0, "first zoom level")
	f.IntVar(&to, "to", 22, "last zoom level")
	f.Float64Var(&latitude, "lat", 0, "latitude at which meridian spacing is measured")
	display.register(cmd)
	return cmd
}
