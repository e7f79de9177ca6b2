package geospatial

import (
	"math"
	"testing"
)

func TestHaversine_OneDegreeOfLatitude(t *testing.T) {
	got := Haversine(0, 0, 1, 0)
	if math.Abs(got-111195) > 1 {
		t.Errorf("expected ~111195 m, got %v", got)
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	a := Haversine(43.26, -2.93, 41.38, 2.17)
	b := Haversine(41.38, 2.17, 43.26, -2.93)
	if math.Abs(a-b) > 1e-6 {
		t.Errorf("expected symmetric distances, got %v and %v", a, b)
	}
}

func TestBoundingBox(t *testing.T) {
	minLat, minLon, maxLat, maxLon := BoundingBox(0, 0, 111320)
	if math.Abs(minLat+1) > 1e-9 || math.Abs(maxLat-1) > 1e-9 {
		t.Errorf("expected latitude span ±1, got %v..%v", minLat, maxLat)
	}
	if math.Abs(minLon+1) > 1e-9 || math.Abs(maxLon-1) > 1e-9 {
		t.Errorf("expected longitude span ±1 at the equator, got %v..%v", minLon, maxLon)
	}
}
