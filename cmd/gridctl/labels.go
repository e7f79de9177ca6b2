package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/samirrijal/geogrid/internal/adapters/headless"
	"github.com/samirrijal/geogrid/internal/core/domain"
	"github.com/samirrijal/geogrid/internal/core/usecases"
)

func newLabelsCmd() *cobra.Command {
	var (
		camera     domain.Camera
		viewport   domain.Size
		projection string
		display    outputOptions
	)
	cmd := &cobra.Command{
		Use:     "labels",
		Short:   "Place edge labels for a viewport on a headless map",
		Example: `  gridctl labels --lng -2.93 --lat 43.26 --zoom 6 --projection globe`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := domain.ProjectionMode(projection)
			if !mode.Valid() {
				return fmt.Errorf("%w: %q", usecases.ErrInvalidProjection, projection)
			}
			if viewport.Width <= 0 || viewport.Height <= 0 {
				return usecases.ErrInvalidViewport
			}

			m := headless.New(headless.Config{}, camera, viewport, mode)
			density := usecases.DefaultDensity(usecases.ZoomBucket(camera.Zoom))
			placement := usecases.NewLabelPlacer(usecases.FormatDegrees).Place(m, density)

			t := display.newTable(cmd.OutOrStdout(), table.Row{"Anchor", "Value", "Text", "X", "Y"})
			for _, l := range placement.Labels {
				t.AppendRow(table.Row{l.Anchor, l.Value, l.Text,
					fmt.Sprintf("%.1f", l.ScreenX), fmt.Sprintf("%.1f", l.ScreenY)})
			}
			suppressed := 0
			for _, n := range placement.Suppressed {
				suppressed += n
			}
			t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d placed", len(placement.Labels)), "suppressed", suppressed})
			display.render(t)
			return nil
		},
	}

	f := cmd.Flags()
	f.Float64Var(&camera.Center.Lng, "lng", 0, "camera centre longitude")
	f.Float64Var(&camera.Center.Lat, "lat", 0, "camera centre latitude")
	f.Float64Var(&camera.Zoom, "zoom", 2, "camera zoom")
	f.Float64Var(&viewport.Width, "width", 1024, "viewport width in pixels")
	f.Float64Var(&viewport.Height, "height", 768, "viewport height in pixels")
	f.StringVar(&projection, "projection", string(domain.ProjectionMercator), "mercator or globe")
	display.register(cmd)
	return cmd
}
