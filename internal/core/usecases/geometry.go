package usecases

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/samirrijal/geogrid/internal/core/domain"
)

// validDensity reports whether d can be used to step through a coordinate range.
func validDensity(d float64) bool {
	return d > 0 && !math.IsInf(d, 0) && !math.IsNaN(d)
}

// maxGridValues bounds the number of lines generated for one axis.
const maxGridValues = 1 << 16

// gridValues returns every multiple of d in [ceil(lo/d)*d, hi), at most maxGridValues of them.
// Values are computed as k*d rather than accumulated to avoid drift.
func gridValues(d, lo, hi float64) []float64 {
	if !validDensity(d) || lo >= hi {
		return nil
	}
	var values []float64
	for k := math.Ceil(lo / d); len(values) < maxGridValues; k++ {
		if k+1 == k {
			// k is past float64 integer precision and can no longer advance.
			break
		}
		v := k * d
		if v >= hi {
			break
		}
		if v == 0 {
			v = 0 // no negative zero
		}
		values = append(values, v)
	}
	return values
}

// ParallelValues returns the latitudes of the parallels visible within bounds.
func ParallelValues(density float64, bounds domain.Bounds) []float64 {
	return gridValues(density, bounds.South, bounds.North)
}

// MeridianValues returns the longitudes of the meridians visible within bounds.
func MeridianValues(density float64, bounds domain.Bounds) []float64 {
	return gridValues(density, bounds.West, bounds.East)
}

// Parallels returns one world-spanning segment per visible parallel.
func Parallels(density float64, bounds domain.Bounds) []domain.GridLine {
	values := ParallelValues(density, bounds)
	lines := make([]domain.GridLine, 0, len(values))
	for _, lat := range values {
		lines = append(lines, domain.GridLine{
			Kind:  domain.Parallel,
			Value: lat,
			From:  domain.LngLat{Lng: domain.MinLongitude, Lat: lat},
			To:    domain.LngLat{Lng: domain.MaxLongitude, Lat: lat},
		})
	}
	return lines
}

// Meridians returns one pole-to-pole segment per visible meridian.
func Meridians(density float64, bounds domain.Bounds) []domain.GridLine {
	values := MeridianValues(density, bounds)
	lines := make([]domain.GridLine, 0, len(values))
	for _, lng := range values {
		lines = append(lines, domain.GridLine{
			Kind:  domain.Meridian,
			Value: lng,
			From:  domain.LngLat{Lng: lng, Lat: domain.MinLatitude},
			To:    domain.LngLat{Lng: lng, Lat: domain.MaxLatitude},
		})
	}
	return lines
}

// MultiLineString converts grid lines into the geometry fed to a line source.
func MultiLineString(lines []domain.GridLine) orb.MultiLineString {
	mls := make(orb.MultiLineString, 0, len(lines))
	for _, l := range lines {
		mls = append(mls, orb.LineString{
			{l.From.Lng, l.From.Lat},
			{l.To.Lng, l.To.Lat},
		})
	}
	return mls
}
