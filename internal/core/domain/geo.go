package domain

// LngLat represents a geographic coordinate (WGS 84) in degrees.
type LngLat struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// ScreenPoint is a pixel position relative to the top-left corner of the viewport.
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is the viewport size in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bounds represents the geographic rectangle currently visible on screen.
type Bounds struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// Center returns the midpoint of the bounds.
func (b Bounds) Center() LngLat {
	return LngLat{Lng: (b.West + b.East) / 2, Lat: (b.South + b.North) / 2}
}

// Degenerate reports whether the bounds enclose no area.
func (b Bounds) Degenerate() bool {
	return b.South >= b.North || b.West >= b.East
}

const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)
