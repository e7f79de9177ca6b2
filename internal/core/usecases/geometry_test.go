package usecases_test

import (
	"math"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/geogrid/internal/core/domain"
	"github.com/samirrijal/geogrid/internal/core/usecases"
)

func TestParallels_CountMatchesFormula(t *testing.T) {
	cases := []struct {
		density float64
		bounds  domain.Bounds
	}{
		{10, domain.Bounds{West: -50, South: -45, East: 50, North: 45}},
		{7.5, domain.Bounds{West: -3, South: -12.3, East: 7, North: 33.1}},
		{0.25, domain.Bounds{West: 2.1, South: 41.05, East: 2.9, North: 41.9}},
		{30, domain.Bounds{West: -180, South: -85, East: 180, North: 85}},
	}
	for _, c := range cases {
		want := int(math.Ceil(c.bounds.North/c.density) - math.Ceil(c.bounds.South/c.density))
		assert.Len(t, usecases.Parallels(c.density, c.bounds), want, "density %v bounds %+v", c.density, c.bounds)
		want = int(math.Ceil(c.bounds.East/c.density) - math.Ceil(c.bounds.West/c.density))
		assert.Len(t, usecases.Meridians(c.density, c.bounds), want, "density %v bounds %+v", c.density, c.bounds)
	}
}

func TestParallels_SpanTheWorld(t *testing.T) {
	lines := usecases.Parallels(10, domain.Bounds{West: -5, South: -15, East: 5, North: 15})
	require.Len(t, lines, 3)
	for i, want := range []float64{-10, 0, 10} {
		l := lines[i]
		assert.Equal(t, domain.Parallel, l.Kind)
		assert.Equal(t, want, l.Value)
		assert.Equal(t, domain.LngLat{Lng: -180, Lat: want}, l.From)
		assert.Equal(t, domain.LngLat{Lng: 180, Lat: want}, l.To)
	}
}

func TestMeridians_SpanPoleToPole(t *testing.T) {
	lines := usecases.Meridians(15, domain.Bounds{West: -20, South: 0, East: 31, North: 1})
	require.Len(t, lines, 4)
	for i, want := range []float64{-15, 0, 15, 30} {
		assert.Equal(t, domain.Meridian, lines[i].Kind)
		assert.Equal(t, domain.LngLat{Lng: want, Lat: -90}, lines[i].From)
		assert.Equal(t, domain.LngLat{Lng: want, Lat: 90}, lines[i].To)
	}
}

func TestGridValues_AreMultiplesWithoutDrift(t *testing.T) {
	values := usecases.ParallelValues(0.025, domain.Bounds{South: 40, North: 41})
	require.Len(t, values, 40)
	for i, v := range values {
		assert.Equal(t, float64(1600+i)*0.025, v)
	}
}

func TestGridValues_UpperBoundExclusive(t *testing.T) {
	values := usecases.MeridianValues(1, domain.Bounds{West: -1, East: 1})
	assert.Equal(t, []float64{-1, 0}, values)
}

func TestGridValues_DegenerateAndInvalid(t *testing.T) {
	flat := domain.Bounds{West: 5, South: 5, East: 5, North: 5}
	assert.Empty(t, usecases.Parallels(1, flat))
	assert.Empty(t, usecases.Meridians(1, flat))

	b := domain.Bounds{West: -10, South: -10, East: 10, North: 10}
	for _, d := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		assert.Empty(t, usecases.Parallels(d, b), "density %v", d)
		assert.Empty(t, usecases.Meridians(d, b), "density %v", d)
	}
}

func TestGridValues_StopAtFloatPrecision(t *testing.T) {
	done := make(chan []float64, 1)
	go func() {
		done <- usecases.MeridianValues(30, domain.Bounds{West: 1e18, East: 1e18 + 1024})
	}()
	select {
	case values := <-done:
		assert.LessOrEqual(t, len(values), 1<<16)
	case <-time.After(2 * time.Second):
		t.Fatal("MeridianValues did not return for bounds beyond float64 integer precision")
	}
}

func TestGridValues_CountIsCapped(t *testing.T) {
	values := usecases.ParallelValues(1e-6, domain.Bounds{South: 0, North: 1})
	require.Len(t, values, 1<<16)
	assert.Equal(t, 0.0, values[0])
}

func TestMultiLineString(t *testing.T) {
	lines := usecases.Parallels(45, domain.Bounds{South: -10, North: 50})
	mls := usecases.MultiLineString(lines)
	assert.Equal(t, orb.MultiLineString{
		{{-180, 0}, {180, 0}},
		{{-180, 45}, {180, 45}},
	}, mls)
	assert.Empty(t, usecases.MultiLineString(nil))
}
