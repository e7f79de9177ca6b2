package main

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"

	"github.com/samirrijal/geogrid/internal/core/domain"
	"github.com/samirrijal/geogrid/internal/core/usecases"
)

func newLinesCmd() *cobra.Command {
	var (
		bounds  domain.Bounds
		zoom    float64
		asJSON  bool
		asGeo   bool
		display outputOptions
	)
	cmd := &cobra.Command{
		Use:   "lines",
		Short: "List the parallels and meridians inside a bounding box",
		Example: `  gridctl lines --west -10 --south 35 --east 5 --north 45 --zoom 5
  gridctl lines --west -180 --south -85 --east 180 --north 85 --geojson`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := usecases.NewGridService(nil, nil, nil)
			lines, err := svc.Lines(cmd.Context(), bounds, zoom)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case asGeo:
				fc := geojson.NewFeatureCollection()
				for _, l := range append(lines.Parallels, lines.Meridians...) {
					f := geojson.NewFeature(orb.LineString{{l.From.Lng, l.From.Lat}, {l.To.Lng, l.To.Lat}})
					f.Properties["kind"] = string(l.Kind)
					f.Properties["value"] = l.Value
					f.Properties["label"] = svc.Format(l.Value)
					fc.Append(f)
				}
				data, err := fc.MarshalJSON()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			case asJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(lines)
			}

			t := display.newTable(out, table.Row{"Kind", "Value", "Label", "From", "To"})
			for _, l := range append(lines.Parallels, lines.Meridians...) {
				t.AppendRow(table.Row{
					l.Kind, l.Value, svc.Format(l.Value),
					fmt.Sprintf("%.4f,%.4f", l.From.Lng, l.From.Lat),
					fmt.Sprintf("%.4f,%.4f", l.To.Lng, l.To.Lat),
				})
			}
			t.AppendFooter(table.Row{"", "", "", "density", fmt.Sprintf("%g° (~%.0f m)", lines.Density, lines.SpacingMeters)})
			display.render(t)
			return nil
		},
	}

	f := cmd.Flags()
	f.Float64Var(&bounds.West, "west", -180, "western longitude")
	f.Float64Var(&bounds.South, "south", -85, "southern latitude")
	f.Float64Var(&bounds.East, "east", 180, "eastern longitude")
	f.Float64Var(&bounds.North, "north", 85, "northern latitude")
	f.Float64Var(&zoom, "zoom", 0, "zoom level used to pick the density")
	f.BoolVar(&asJSON, "json", false, "print JSON")
	f.BoolVar(&asGeo, "geojson", false, "print a GeoJSON FeatureCollection")
	cmd.MarkFlagsMutuallyExclusive("json", "geojson")
	display.register(cmd)
	return cmd
}
