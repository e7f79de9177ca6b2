package usecases

import "math"

// DensityFunc maps an integer zoom level to the distance between grid lines in degrees.
// Implementations must return a positive value.
type DensityFunc func(zoom int) float64

// densityTable holds degrees per line for zoom levels 0 through 14.
var densityTable = [...]float64{
	30, 15, 10, 7.5, 5, 3, 2, 1.5, 0.75, 0.5, 0.25, 0.125, 0.075, 0.05, 0.025,
}

// fallbackDensity is used for zoom levels the table does not cover.
const fallbackDensity = 30

// DefaultDensity returns the grid spacing for zoom. Zoom levels outside 0..14
// fall back to 30 degrees.
func DefaultDensity(zoom int) float64 {
	if zoom < 0 || zoom >= len(densityTable) {
		return fallbackDensity
	}
	return densityTable[zoom]
}

// ZoomBucket floors a fractional zoom to the integer bucket used for density lookup.
func ZoomBucket(zoom float64) int {
	return int(math.Floor(zoom))
}
