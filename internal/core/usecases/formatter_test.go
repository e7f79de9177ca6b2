package usecases_test

import (
	"testing"

	"github.com/samirrijal/geogrid/internal/core/usecases"
)

func TestFormatDegrees(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0°"},
		{10, "10°"},
		{45.5, "45° 30′"},
		{-0.5, "-1° 30′"},
		{-30, "-30°"},
		{7.5, "7° 30′"},
		{0.125, "0° 7′ 1′′"},
		{0.05, "0° 3′"},
		{negativeZero(), "0°"},
	}
	for _, c := range cases {
		if got := usecases.FormatDegrees(c.in); got != c.want {
			t.Errorf("FormatDegrees(%v): expected %q, got %q", c.in, c.want, got)
		}
	}
}

func negativeZero() float64 {
	z := 0.0
	return -z
}
