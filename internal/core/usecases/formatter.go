package usecases

import (
	"math"
	"strconv"
	"strings"
)

// FormatFunc renders a coordinate value in degrees as label text.
type FormatFunc func(degrees float64) string

// FormatDegrees renders degrees as "D°[ M′][ S′′]". Degrees are floored, so
// negative values carry their sign in D and keep a positive minute part:
// -0.5 renders as "-1° 30′". Zero minutes and seconds are omitted.
func FormatDegrees(value float64) string {
	degrees := math.Floor(value)
	if degrees == 0 {
		// normalise negative zero
		degrees = 0
	}
	minutesFloat := (value - degrees) * 60
	minutes := math.Floor(minutesFloat)
	remainder := minutesFloat - minutes
	seconds := math.Round(remainder - math.Floor(remainder))

	var b strings.Builder
	b.WriteString(strconv.FormatFloat(degrees, 'f', -1, 64))
	b.WriteString("°")
	if minutes != 0 {
		b.WriteString(" ")
		b.WriteString(strconv.FormatFloat(minutes, 'f', -1, 64))
		b.WriteString("′")
	}
	if seconds != 0 {
		b.WriteString(" ")
		b.WriteString(strconv.FormatFloat(seconds, 'f', -1, 64))
		b.WriteString("′′")
	}
	return b.String()
}
