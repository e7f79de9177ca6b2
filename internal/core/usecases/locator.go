package usecases

import (
	"github.com/samirrijal/geogrid/internal/core/domain"
	"github.com/samirrijal/geogrid/internal/core/ports"
)

const (
	// edgeSearchStep is the angular step of the edge-crossing search, in degrees.
	edgeSearchStep = 1.0
	// edgeSearchMaxSteps bounds the edge-crossing search; some lines never reach the edge.
	edgeSearchMaxSteps = 180

	// longitudeScanStep and longitudeScanRange drive the occlusion scan along a parallel.
	longitudeScanStep  = 0.5
	longitudeScanRange = 90.0

	// latitudeScanLimit is the pole-side bound of the occlusion scan along a meridian.
	latitudeScanLimit = 85.0
	// Above fineScanZoom the latitude scan uses fine steps.
	fineScanZoom       = 12.0
	fineLatitudeStep   = 0.01
	coarseLatitudeStep = 1.0
)

// EdgeLocator finds where grid lines meet the visible screen edges on a globe.
type EdgeLocator struct {
	view ports.MapView
}

// NewEdgeLocator creates an EdgeLocator reading from view.
func NewEdgeLocator(view ports.MapView) *EdgeLocator {
	return &EdgeLocator{view: view}
}

// LeftEdgeLongitude walks west from the centre along the parallel at latitude and
// returns the first longitude whose projection reaches the left edge (x <= 0).
func (l *EdgeLocator) LeftEdgeLongitude(latitude float64) (float64, bool) {
	return l.walk(l.view.Center().Lng, -edgeSearchStep, nil, func(v float64) bool {
		return l.view.Project(domain.LngLat{Lng: v, Lat: latitude}).X <= 0
	})
}

// RightEdgeLongitude walks east from the centre along the parallel at latitude and
// returns the first longitude whose projection reaches the right edge (x >= width).
func (l *EdgeLocator) RightEdgeLongitude(latitude float64) (float64, bool) {
	width := l.view.ViewportSize().Width
	return l.walk(l.view.Center().Lng, edgeSearchStep, nil, func(v float64) bool {
		return l.view.Project(domain.LngLat{Lng: v, Lat: latitude}).X >= width
	})
}

// TopEdgeLatitude walks north from the centre along the meridian at longitude and
// returns the first latitude whose projection reaches the top edge (y <= 0).
func (l *EdgeLocator) TopEdgeLatitude(longitude float64) (float64, bool) {
	return l.walk(l.view.Center().Lat, edgeSearchStep, onGlobe, func(v float64) bool {
		return l.view.Project(domain.LngLat{Lng: longitude, Lat: v}).Y <= 0
	})
}

// BottomEdgeLatitude walks south from the centre along the meridian at longitude and
// returns the first latitude whose projection reaches the bottom edge (y >= height).
func (l *EdgeLocator) BottomEdgeLatitude(longitude float64) (float64, bool) {
	height := l.view.ViewportSize().Height
	return l.walk(l.view.Center().Lat, -edgeSearchStep, onGlobe, func(v float64) bool {
		return l.view.Project(domain.LngLat{Lng: longitude, Lat: v}).Y >= height
	})
}

// onGlobe reports whether latitude v exists; walks along a meridian stop at the pole.
func onGlobe(v float64) bool {
	return v >= domain.MinLatitude && v <= domain.MaxLatitude
}

// walk steps from start by step until crossed reports true or the budget runs out.
// A non-nil valid ends the walk early once it rejects a candidate.
func (l *EdgeLocator) walk(start, step float64, valid, crossed func(v float64) bool) (float64, bool) {
	v := start
	for i := 0; i < edgeSearchMaxSteps; i++ {
		v += step
		if valid != nil && !valid(v) {
			return 0, false
		}
		if crossed(v) {
			return v, true
		}
	}
	return 0, false
}

// WestmostVisibleLongitude scans the parallel at latitude westward from the centre
// and returns the most western sample that is not occluded. The scan does not stop
// at the first occluded sample.
func (l *EdgeLocator) WestmostVisibleLongitude(latitude float64) (float64, bool) {
	center := l.view.Center().Lng
	return l.scan(center, -longitudeScanStep, func(v float64) bool { return v > center-longitudeScanRange },
		func(v float64) domain.LngLat { return domain.LngLat{Lng: v, Lat: latitude} })
}

// EastmostVisibleLongitude is the eastward counterpart of WestmostVisibleLongitude.
func (l *EdgeLocator) EastmostVisibleLongitude(latitude float64) (float64, bool) {
	center := l.view.Center().Lng
	return l.scan(center, longitudeScanStep, func(v float64) bool { return v < center+longitudeScanRange },
		func(v float64) domain.LngLat { return domain.LngLat{Lng: v, Lat: latitude} })
}

// NorthmostVisibleLatitude scans the meridian at longitude northward from the
// centre and returns the most northern sample that is not occluded.
func (l *EdgeLocator) NorthmostVisibleLatitude(longitude float64) (float64, bool) {
	return l.scan(l.view.Center().Lat, l.latitudeStep(), func(v float64) bool { return v < latitudeScanLimit },
		func(v float64) domain.LngLat { return domain.LngLat{Lng: longitude, Lat: v} })
}

// SouthmostVisibleLatitude is the southward counterpart of NorthmostVisibleLatitude.
func (l *EdgeLocator) SouthmostVisibleLatitude(longitude float64) (float64, bool) {
	return l.scan(l.view.Center().Lat, -l.latitudeStep(), func(v float64) bool { return v > -latitudeScanLimit },
		func(v float64) domain.LngLat { return domain.LngLat{Lng: longitude, Lat: v} })
}

func (l *EdgeLocator) latitudeStep() float64 {
	if l.view.Zoom() > fineScanZoom {
		return fineLatitudeStep
	}
	return coarseLatitudeStep
}

// scan samples from start while inRange holds and keeps the last unoccluded sample.
func (l *EdgeLocator) scan(start, step float64, inRange func(v float64) bool, at func(v float64) domain.LngLat) (float64, bool) {
	var (
		result float64
		found  bool
	)
	for i := 0; ; i++ {
		v := start + float64(i)*step
		if !inRange(v) {
			break
		}
		if !l.view.IsLocationOccluded(at(v)) {
			result, found = v, true
		}
	}
	return result, found
}

// ScreenPointOccluded reports whether the location under the viewport pixel p is
// hidden behind the horizon.
func (l *EdgeLocator) ScreenPointOccluded(p domain.ScreenPoint) bool {
	return l.view.IsLocationOccluded(l.view.Unproject(p))
}
