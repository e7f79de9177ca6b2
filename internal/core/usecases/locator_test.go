package usecases_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/geogrid/internal/core/domain"
	"github.com/samirrijal/geogrid/internal/core/usecases"
)

func TestEdgeLocator_HorizontalEdges(t *testing.T) {
	v := newFlatView(10, domain.Size{Width: 400, Height: 300})
	loc := usecases.NewEdgeLocator(v)

	lng, ok := loc.LeftEdgeLongitude(0)
	require.True(t, ok)
	assert.Equal(t, -20.0, lng)

	lng, ok = loc.RightEdgeLongitude(0)
	require.True(t, ok)
	assert.Equal(t, 20.0, lng)
}

func TestEdgeLocator_VerticalEdges(t *testing.T) {
	v := newFlatView(10, domain.Size{Width: 400, Height: 300})
	loc := usecases.NewEdgeLocator(v)

	lat, ok := loc.TopEdgeLatitude(0)
	require.True(t, ok)
	assert.Equal(t, 15.0, lat)

	lat, ok = loc.BottomEdgeLatitude(0)
	require.True(t, ok)
	assert.Equal(t, -15.0, lat)
}

func TestEdgeLocator_StopsAtPole(t *testing.T) {
	v := newFlatView(1, domain.Size{Width: 400, Height: 1000})
	v.center = domain.LngLat{Lat: 80}
	loc := usecases.NewEdgeLocator(v)

	_, ok := loc.TopEdgeLatitude(0)
	assert.False(t, ok)
}

func TestEdgeLocator_GivesUpAfterBudget(t *testing.T) {
	v := newFlatView(0.1, domain.Size{Width: 400, Height: 300})
	loc := usecases.NewEdgeLocator(v)

	_, ok := loc.LeftEdgeLongitude(0)
	assert.False(t, ok, "edge 2000 degrees away must not be found")
}

func TestEdgeLocator_WestmostKeepsLastVisibleSample(t *testing.T) {
	v := newFlatView(10, domain.Size{Width: 400, Height: 300})
	// A band near the centre is hidden; the scan must continue past it.
	v.occluded = func(p domain.LngLat) bool {
		return p.Lng < -30 || (p.Lng > -10 && p.Lng < -5)
	}
	loc := usecases.NewEdgeLocator(v)

	lng, ok := loc.WestmostVisibleLongitude(0)
	require.True(t, ok)
	assert.Equal(t, -30.0, lng)

	lng, ok = loc.EastmostVisibleLongitude(0)
	require.True(t, ok)
	assert.Equal(t, 89.5, lng)
}

func TestEdgeLocator_NothingVisible(t *testing.T) {
	v := newFlatView(10, domain.Size{Width: 400, Height: 300})
	v.occluded = func(domain.LngLat) bool { return true }
	loc := usecases.NewEdgeLocator(v)

	_, ok := loc.WestmostVisibleLongitude(0)
	assert.False(t, ok)
	_, ok = loc.NorthmostVisibleLatitude(0)
	assert.False(t, ok)
}

func TestEdgeLocator_LatitudeScanStep(t *testing.T) {
	v := newFlatView(10, domain.Size{Width: 400, Height: 300})
	v.occluded = func(p domain.LngLat) bool { return p.Lat > 40.005 || p.Lat < -40.005 }
	loc := usecases.NewEdgeLocator(v)

	v.zoom = 12
	lat, ok := loc.NorthmostVisibleLatitude(0)
	require.True(t, ok)
	assert.Equal(t, 40.0, lat)

	v.zoom = 12.5
	lat, ok = loc.SouthmostVisibleLatitude(0)
	require.True(t, ok)
	assert.InDelta(t, -40.0, lat, 1e-9)
}

func TestEdgeLocator_LatitudeScanLimit(t *testing.T) {
	v := newFlatView(10, domain.Size{Width: 400, Height: 300})
	loc := usecases.NewEdgeLocator(v)

	lat, ok := loc.NorthmostVisibleLatitude(0)
	require.True(t, ok)
	assert.Equal(t, 84.0, lat)
}

func TestEdgeLocator_ScreenPointOccluded(t *testing.T) {
	v := newFlatView(10, domain.Size{Width: 400, Height: 300})
	v.occluded = func(p domain.LngLat) bool { return p.Lng > 0 }
	loc := usecases.NewEdgeLocator(v)

	assert.False(t, loc.ScreenPointOccluded(domain.ScreenPoint{X: 0, Y: 150}))
	assert.True(t, loc.ScreenPointOccluded(domain.ScreenPoint{X: 400, Y: 150}))
}
