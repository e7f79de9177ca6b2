package usecases_test

import (
	"testing"

	"github.com/samirrijal/geogrid/internal/core/usecases"
)

func TestDefaultDensity(t *testing.T) {
	want := []float64{30, 15, 10, 7.5, 5, 3, 2, 1.5, 0.75, 0.5, 0.25, 0.125, 0.075, 0.05, 0.025}
	for zoom, d := range want {
		if got := usecases.DefaultDensity(zoom); got != d {
			t.Errorf("zoom %d: expected %v, got %v", zoom, d, got)
		}
	}
}

func TestDefaultDensity_OutOfRange(t *testing.T) {
	for _, zoom := range []int{-1, 15, 22, 100} {
		if got := usecases.DefaultDensity(zoom); got != 30 {
			t.Errorf("zoom %d: expected fallback 30, got %v", zoom, got)
		}
	}
}

func TestZoomBucket(t *testing.T) {
	cases := map[float64]int{0: 0, 0.99: 0, 3.5: 3, 14.999: 14, -0.5: -1}
	for zoom, want := range cases {
		if got := usecases.ZoomBucket(zoom); got != want {
			t.Errorf("zoom %v: expected bucket %d, got %d", zoom, want, got)
		}
	}
}
