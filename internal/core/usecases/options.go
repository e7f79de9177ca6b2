package usecases

import (
	"errors"
	"log/slog"

	"github.com/samirrijal/geogrid/internal/core/domain"
	"github.com/samirrijal/geogrid/internal/core/ports"
)

// ErrMapRequired is returned when a grid is constructed without a map.
var ErrMapRequired = errors.New(`geogrid: "map" option is required`)

// Source and layer identifiers used on the host map.
const (
	idPrefix          = "geo-grid"
	ParallelsLayerID  = idPrefix + "_parallels"
	ParallelsSourceID = idPrefix + "_parallels_source"
	MeridiansLayerID  = idPrefix + "_meridians"
	MeridiansSourceID = idPrefix + "_meridians_source"
	defaultLineColor  = "#000000"
	defaultLineWidth  = 1.0
	defaultMinZoom    = 0.0
	defaultMaxZoom    = 22.0
)

// Options configures a GeoGrid. Zero values fall back to defaults.
type Options struct {
	// BeforeLayerID is the layer the grid layers are inserted before.
	// Empty places the grid on top of every layer.
	BeforeLayerID string
	Style         domain.LineStyle
	// ZoomLevelRange is the zoom interval within which the grid is shown.
	ZoomLevelRange *domain.ZoomRange
	GridDensity    DensityFunc
	FormatLabels   FormatFunc
	// Observers receive a snapshot after every reconcile cycle.
	Observers []ports.GridObserver
	Logger    *slog.Logger
}

// config is the resolved, read-only form of Options.
type config struct {
	beforeLayerID string
	style         domain.LineStyle
	zoomRange     domain.ZoomRange
	density       DensityFunc
	format        FormatFunc
	observers     []ports.GridObserver
	logger        *slog.Logger
}

// resolve fills defaults. An inverted zoom range is replaced by the default one.
func (o Options) resolve() config {
	c := config{
		beforeLayerID: o.BeforeLayerID,
		style:         o.Style,
		zoomRange:     domain.ZoomRange{Min: defaultMinZoom, Max: defaultMaxZoom},
		density:       o.GridDensity,
		format:        o.FormatLabels,
		observers:     append([]ports.GridObserver(nil), o.Observers...),
		logger:        o.Logger,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.style.Color == "" {
		c.style.Color = defaultLineColor
	}
	if c.style.Width <= 0 {
		c.style.Width = defaultLineWidth
	}
	if r := o.ZoomLevelRange; r != nil {
		if r.Min <= r.Max {
			c.zoomRange = *r
		} else {
			c.logger.Warn("ignoring inverted zoom level range", "min", r.Min, "max", r.Max)
		}
	}
	if c.density == nil {
		c.density = DefaultDensity
	}
	if c.format == nil {
		c.format = FormatDegrees
	}
	return c
}

// DefaultZoomRange returns the zoom range used when none is configured.
func DefaultZoomRange() domain.ZoomRange {
	return domain.ZoomRange{Min: defaultMinZoom, Max: defaultMaxZoom}
}
