package usecases_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/geogrid/internal/core/domain"
	"github.com/samirrijal/geogrid/internal/core/usecases"
)

func TestGridService_Lines(t *testing.T) {
	svc := usecases.NewGridService(nil, nil, nil)
	bounds := domain.Bounds{West: -10, South: -10, East: 10, North: 10}

	lines, err := svc.Lines(context.Background(), bounds, 2.7)
	require.NoError(t, err)
	assert.Equal(t, 2, lines.ZoomBucket)
	assert.Equal(t, 10.0, lines.Density)
	assert.Len(t, lines.Parallels, 2)
	assert.Len(t, lines.Meridians, 2)
	// 10 degrees of latitude is roughly 1112 km.
	assert.InDelta(t, 1_111_949, lines.SpacingMeters, 1000)
}

func TestGridService_LinesUsesCache(t *testing.T) {
	cache := newMemCache()
	calls := 0
	svc := usecases.NewGridService(func(int) float64 { calls++; return 5 }, nil, cache)
	bounds := domain.Bounds{West: 0, South: 0, East: 20, North: 20}

	first, err := svc.Lines(context.Background(), bounds, 4)
	require.NoError(t, err)
	second, err := svc.Lines(context.Background(), bounds, 4.5)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, first, second)
}

func TestGridService_InvalidBounds(t *testing.T) {
	svc := usecases.NewGridService(nil, nil, nil)
	for _, b := range []domain.Bounds{
		{West: math.NaN(), South: 0, East: 1, North: 1},
		{West: 0, South: -91, East: 1, North: 1},
		{West: 0, South: 0, East: math.Inf(1), North: 1},
		{West: -1e8, South: 0, East: 1e8, North: 1},
		{West: 0, South: 0, East: 541, North: 1},
	} {
		_, err := svc.Lines(context.Background(), b, 3)
		assert.ErrorIs(t, err, usecases.ErrInvalidBounds)
	}
}

func TestGridService_WideLongitudesReturnPromptly(t *testing.T) {
	svc := usecases.NewGridService(nil, nil, nil)
	lines, err := svc.Lines(context.Background(), domain.Bounds{West: -540, South: 0, East: 540, North: 1}, 14)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(lines.Meridians), 1<<16)
}

func TestGridService_LinesAroundPole(t *testing.T) {
	svc := usecases.NewGridService(nil, nil, nil)
	lines, err := svc.LinesAround(context.Background(), domain.LngLat{Lng: 10, Lat: 89.9999}, 50_000, 2)
	require.NoError(t, err)
	assert.Equal(t, -170.0, lines.Bounds.West)
	assert.Equal(t, 190.0, lines.Bounds.East)
	assert.Equal(t, domain.MaxLatitude, lines.Bounds.North)
}

func TestGridService_DegenerateBoundsAreEmpty(t *testing.T) {
	svc := usecases.NewGridService(nil, nil, nil)
	lines, err := svc.Lines(context.Background(), domain.Bounds{West: 3, South: 3, East: 3, North: 3}, 3)
	require.NoError(t, err)
	assert.Empty(t, lines.Parallels)
	assert.Empty(t, lines.Meridians)
}

func TestGridService_LinesAround(t *testing.T) {
	svc := usecases.NewGridService(nil, nil, nil)
	lines, err := svc.LinesAround(context.Background(), domain.LngLat{Lng: 0, Lat: 0}, 1_000_000, 2)
	require.NoError(t, err)
	assert.InDelta(t, -8.98, lines.Bounds.South, 0.01)
	assert.InDelta(t, 8.98, lines.Bounds.North, 0.01)
	assert.Len(t, lines.Parallels, 1)

	_, err = svc.LinesAround(context.Background(), domain.LngLat{}, 0, 2)
	assert.ErrorIs(t, err, usecases.ErrInvalidBounds)
}

func TestGridService_DensityAndFormat(t *testing.T) {
	svc := usecases.NewGridService(nil, nil, nil)
	assert.Equal(t, 0.75, svc.Density(8.99))
	assert.Equal(t, "45° 30′", svc.Format(45.5))
}
