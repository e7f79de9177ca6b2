package usecases

import (
	"math"

	"github.com/samirrijal/geogrid/internal/core/domain"
	"github.com/samirrijal/geogrid/internal/core/ports"
)

// Placement is the label set produced for one viewport.
type Placement struct {
	Labels []domain.LabelDescriptor
	// Suppressed counts, per anchor, the labels dropped by occlusion checks.
	Suppressed map[domain.Anchor]int
}

// LabelPlacer positions coordinate labels along the viewport edges.
type LabelPlacer struct {
	format FormatFunc
}

// NewLabelPlacer creates a LabelPlacer using format for label text.
func NewLabelPlacer(format FormatFunc) *LabelPlacer {
	if format == nil {
		format = FormatDegrees
	}
	return &LabelPlacer{format: format}
}

// Place computes labels for every grid line visible in view at the given density.
// Label coordinates are viewport pixels: left labels sit at x=0, right labels at
// x=width, top labels at y=0 and bottom labels at y=height.
func (p *LabelPlacer) Place(view ports.MapView, density float64) Placement {
	bounds := view.Bounds()
	parallels := ParallelValues(density, bounds)
	meridians := MeridianValues(density, bounds)

	if view.Projection() == domain.ProjectionGlobe {
		return p.placeGlobe(view, bounds, parallels, meridians)
	}
	return p.placePlanar(view, parallels, meridians)
}

func (p *LabelPlacer) label(value float64, anchor domain.Anchor, x, y float64) domain.LabelDescriptor {
	return domain.LabelDescriptor{
		Value:   value,
		Anchor:  anchor,
		ScreenX: x,
		ScreenY: y,
		Text:    p.format(value),
	}
}

func (p *LabelPlacer) placePlanar(view ports.MapView, parallels, meridians []float64) Placement {
	size := view.ViewportSize()
	labels := make([]domain.LabelDescriptor, 0, 2*(len(parallels)+len(meridians)))

	for _, lat := range parallels {
		y := view.Project(domain.LngLat{Lng: 0, Lat: lat}).Y
		labels = append(labels,
			p.label(lat, domain.AnchorLeft, 0, y),
			p.label(lat, domain.AnchorRight, size.Width, y),
		)
	}
	for _, lng := range meridians {
		x := view.Project(domain.LngLat{Lng: lng, Lat: 0}).X
		labels = append(labels,
			p.label(lng, domain.AnchorTop, x, 0),
			p.label(lng, domain.AnchorBottom, x, size.Height),
		)
	}
	return Placement{Labels: labels, Suppressed: map[domain.Anchor]int{}}
}

func (p *LabelPlacer) placeGlobe(view ports.MapView, bounds domain.Bounds, parallels, meridians []float64) Placement {
	loc := NewEdgeLocator(view)
	size := view.ViewportSize()
	out := Placement{Suppressed: map[domain.Anchor]int{}}

	emit := func(anchor domain.Anchor, l domain.LabelDescriptor, ok bool) {
		if !ok {
			out.Suppressed[anchor]++
			return
		}
		out.Labels = append(out.Labels, l)
	}

	for _, lat := range parallels {
		l, ok := p.parallelLabel(view, loc, lat, domain.AnchorLeft, 0)
		emit(domain.AnchorLeft, l, ok)
		l, ok = p.parallelLabel(view, loc, lat, domain.AnchorRight, size.Width)
		emit(domain.AnchorRight, l, ok)
	}
	for _, lng := range meridians {
		l, ok := p.meridianLabel(view, loc, bounds, lng, domain.AnchorTop, 0)
		emit(domain.AnchorTop, l, ok)
		l, ok = p.meridianLabel(view, loc, bounds, lng, domain.AnchorBottom, size.Height)
		emit(domain.AnchorBottom, l, ok)
	}
	return out
}

// parallelLabel places the left or right label of the parallel at lat.
func (p *LabelPlacer) parallelLabel(view ports.MapView, loc *EdgeLocator, lat float64, anchor domain.Anchor, x float64) (domain.LabelDescriptor, bool) {
	visible, edge := loc.WestmostVisibleLongitude, loc.LeftEdgeLongitude
	if anchor == domain.AnchorRight {
		visible, edge = loc.EastmostVisibleLongitude, loc.RightEdgeLongitude
	}

	if _, ok := visible(lat); !ok {
		return domain.LabelDescriptor{}, false
	}
	lng, ok := edge(lat)
	if !ok {
		return domain.LabelDescriptor{}, false
	}
	y := view.Project(domain.LngLat{Lng: lng, Lat: lat}).Y
	if loc.ScreenPointOccluded(domain.ScreenPoint{X: x, Y: y}) {
		return domain.LabelDescriptor{}, false
	}
	return p.label(lat, anchor, x, y), true
}

// meridianLabel places the top or bottom label of the meridian at lng.
func (p *LabelPlacer) meridianLabel(view ports.MapView, loc *EdgeLocator, bounds domain.Bounds, lng float64, anchor domain.Anchor, y float64) (domain.LabelDescriptor, bool) {
	extreme, ok := loc.NorthmostVisibleLatitude(lng)
	if anchor == domain.AnchorBottom {
		extreme, ok = loc.SouthmostVisibleLatitude(lng)
	}
	if !ok {
		return domain.LabelDescriptor{}, false
	}

	// When the screen edge lies beyond the pole the meridian bends back on
	// itself and the label would be pinned to the wrong side of the globe.
	if anchor == domain.AnchorTop && math.Mod(extreme, 90) < bounds.North {
		return domain.LabelDescriptor{}, false
	}
	if anchor == domain.AnchorBottom && math.Mod(extreme, -90) > bounds.South {
		return domain.LabelDescriptor{}, false
	}

	edge := loc.TopEdgeLatitude
	if anchor == domain.AnchorBottom {
		edge = loc.BottomEdgeLatitude
	}
	lat, ok := edge(lng)
	if !ok {
		return domain.LabelDescriptor{}, false
	}
	x := view.Project(domain.LngLat{Lng: lng, Lat: lat}).X
	if loc.ScreenPointOccluded(domain.ScreenPoint{X: x, Y: y}) {
		return domain.LabelDescriptor{}, false
	}
	return p.label(lng, anchor, x, y), true
}
