package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/samirrijal/geogrid/internal/core/domain"
	"github.com/samirrijal/geogrid/internal/core/ports"
	"github.com/samirrijal/geogrid/internal/pkg/geospatial"
)

// GridLines is the grid geometry for a bounding box at a zoom level.
type GridLines struct {
	ZoomBucket int               `json:"zoom_bucket"`
	Density    float64           `json:"density"`
	Bounds     domain.Bounds     `json:"bounds"`
	Parallels  []domain.GridLine `json:"parallels"`
	Meridians  []domain.GridLine `json:"meridians"`
	// SpacingMeters is the ground distance between adjacent parallels.
	SpacingMeters float64 `json:"spacing_meters"`
}

// GridService answers stateless grid queries.
type GridService struct {
	density DensityFunc
	format  FormatFunc
	cache   ports.CacheService
}

// NewGridService creates a new GridService. Nil functions fall back to the defaults.
func NewGridService(density DensityFunc, format FormatFunc, cache ports.CacheService) *GridService {
	if density == nil {
		density = DefaultDensity
	}
	if format == nil {
		format = FormatDegrees
	}
	return &GridService{density: density, format: format, cache: cache}
}

// maxBoundsLongitude is the widest longitude a query may reach, one and a half turns either way.
const maxBoundsLongitude = 540

// ValidateBounds checks that bounds are finite, latitudes lie on the globe and
// longitudes stay within ±540.
// Degenerate bounds are valid and produce an empty grid.
func ValidateBounds(b domain.Bounds) error {
	for _, v := range []float64{b.West, b.South, b.East, b.North} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: coordinates must be finite", ErrInvalidBounds)
		}
	}
	if b.South < domain.MinLatitude || b.North > domain.MaxLatitude {
		return fmt.Errorf("%w: latitudes must lie within [-90, 90]", ErrInvalidBounds)
	}
	if math.Abs(b.West) > maxBoundsLongitude || math.Abs(b.East) > maxBoundsLongitude {
		return fmt.Errorf("%w: longitudes must lie within [-540, 540]", ErrInvalidBounds)
	}
	return nil
}

// Lines returns the parallels and meridians visible in bounds at zoom.
func (s *GridService) Lines(ctx context.Context, bounds domain.Bounds, zoom float64) (*GridLines, error) {
	if err := ValidateBounds(bounds); err != nil {
		return nil, err
	}
	bucket := ZoomBucket(zoom)

	// Try cache
	cacheKey := fmt.Sprintf("grid:lines:%d:%.6f:%.6f:%.6f:%.6f", bucket, bounds.West, bounds.South, bounds.East, bounds.North)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var lines GridLines
			if err := json.Unmarshal(data, &lines); err == nil {
				return &lines, nil
			}
		}
	}

	density := s.density(bucket)
	lines := &GridLines{
		ZoomBucket:    bucket,
		Density:       density,
		Bounds:        bounds,
		Parallels:     Parallels(density, bounds),
		Meridians:     Meridians(density, bounds),
		SpacingMeters: spacingMeters(density, bounds.Center()),
	}

	// Geometry is a pure function of the key, so cache for an hour
	if s.cache != nil {
		if data, err := json.Marshal(lines); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 3600)
		}
	}

	return lines, nil
}

// LinesAround returns the grid covering a circle of radiusMeters around center.
func (s *GridService) LinesAround(ctx context.Context, center domain.LngLat, radiusMeters, zoom float64) (*GridLines, error) {
	if radiusMeters <= 0 || math.IsNaN(radiusMeters) || math.IsInf(radiusMeters, 0) {
		return nil, fmt.Errorf("%w: radius must be positive", ErrInvalidBounds)
	}
	minLat, minLng, maxLat, maxLng := geospatial.BoundingBox(center.Lat, center.Lng, radiusMeters)
	if minLat <= domain.MinLatitude || maxLat >= domain.MaxLatitude || maxLng-minLng >= 360 {
		// The circle reaches a pole, so it covers every longitude.
		minLng, maxLng = center.Lng-180, center.Lng+180
	}
	return s.Lines(ctx, domain.Bounds{
		West:  minLng,
		South: math.Max(minLat, domain.MinLatitude),
		East:  maxLng,
		North: math.Min(maxLat, domain.MaxLatitude),
	}, zoom)
}

// Density returns the grid spacing in degrees for zoom.
func (s *GridService) Density(zoom float64) float64 {
	return s.density(ZoomBucket(zoom))
}

// Format renders degrees as label text.
func (s *GridService) Format(degrees float64) string {
	return s.format(degrees)
}

// spacingMeters measures one density step northward from center, clamped to the pole.
func spacingMeters(density float64, center domain.LngLat) float64 {
	if !validDensity(density) {
		return 0
	}
	lat := center.Lat
	next := math.Min(lat+density, domain.MaxLatitude)
	if next == lat {
		next = lat - density
	}
	return geospatial.Haversine(lat, center.Lng, next, center.Lng)
}
