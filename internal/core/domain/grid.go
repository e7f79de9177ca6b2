package domain

import "time"

// LineKind distinguishes parallels from meridians.
type LineKind string

const (
	Parallel LineKind = "parallel"
	Meridian LineKind = "meridian"
)

// GridLine is a single parallel or meridian. Regenerated on every recompute.
type GridLine struct {
	Kind  LineKind `json:"kind"`
	Value float64  `json:"value"`
	From  LngLat   `json:"from"`
	To    LngLat   `json:"to"`
}

// Anchor is the screen side a label is pinned to.
type Anchor string

const (
	AnchorLeft   Anchor = "left"
	AnchorRight  Anchor = "right"
	AnchorTop    Anchor = "top"
	AnchorBottom Anchor = "bottom"
)

// Anchors lists every anchor side in placement order.
var Anchors = []Anchor{AnchorLeft, AnchorRight, AnchorTop, AnchorBottom}

// Vertical reports whether the anchor pins a meridian label to the top or bottom edge.
func (a Anchor) Vertical() bool {
	return a == AnchorTop || a == AnchorBottom
}

// CSS class names used by web label containers.
const (
	ClassContainer         = "geogrid"
	ClassContainerOverride = "geogrid-overrides"
	ClassLabel             = "geogrid__label"
)

// LabelDescriptor is one positioned coordinate label.
type LabelDescriptor struct {
	Value   float64 `json:"value"`
	Anchor  Anchor  `json:"anchor"`
	ScreenX float64 `json:"x"`
	ScreenY float64 `json:"y"`
	Text    string  `json:"text"`
}

// Class returns the CSS classes a web client should put on the label element.
func (l LabelDescriptor) Class() string {
	return ClassLabel + " " + ClassLabel + "--" + string(l.Anchor)
}

// ProjectionMode is the renderer's projection family.
type ProjectionMode string

const (
	ProjectionMercator ProjectionMode = "mercator"
	ProjectionGlobe    ProjectionMode = "globe"
)

// Valid reports whether m is a known projection mode.
func (m ProjectionMode) Valid() bool {
	return m == ProjectionMercator || m == ProjectionGlobe
}

// MapEvent names a renderer lifecycle or viewport event.
type MapEvent string

const (
	EventLoad              MapEvent = "load"
	EventMove              MapEvent = "move"
	EventRemove            MapEvent = "remove"
	EventProjectionChanged MapEvent = "projection-changed"
)

// LineStyle is the paint applied to both grid layers.
type LineStyle struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

// ZoomRange is an inclusive [Min, Max] zoom interval.
type ZoomRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether zoom lies inside the range.
func (r ZoomRange) Contains(zoom float64) bool {
	return zoom >= r.Min && zoom <= r.Max
}

// LineLayer describes a line-paint layer bound to a geometry source.
type LineLayer struct {
	ID       string    `json:"id"`
	SourceID string    `json:"source"`
	Style    LineStyle `json:"paint"`
	Zoom     ZoomRange `json:"zoom"`
}

// Camera is a map camera position.
type Camera struct {
	Center  LngLat  `json:"center"`
	Zoom    float64 `json:"zoom"`
	Bearing float64 `json:"bearing"`
}

// CameraUpdate changes selected camera fields; nil fields are left untouched.
type CameraUpdate struct {
	Center  *LngLat  `json:"center,omitempty"`
	Zoom    *float64 `json:"zoom,omitempty"`
	Bearing *float64 `json:"bearing,omitempty"`
}

// GridSnapshot is the immutable outcome of one reconcile cycle.
type GridSnapshot struct {
	Zoom          float64           `json:"zoom"`
	ZoomBucket    int               `json:"zoom_bucket"`
	Density       float64           `json:"density"`
	Bounds        Bounds            `json:"bounds"`
	Projection    ProjectionMode    `json:"projection"`
	Bearing       float64           `json:"bearing"`
	LabelsVisible bool              `json:"labels_visible"`
	Labels        []LabelDescriptor `json:"labels"`
	Suppressed    map[Anchor]int    `json:"suppressed,omitempty"`
	Parallels     int               `json:"parallels"`
	Meridians     int               `json:"meridians"`
	Regenerated   bool              `json:"geometry_regenerated"`
	Duration      time.Duration     `json:"duration_ns"`
}

// Session is a headless map with a grid attached, driven remotely.
type Session struct {
	ID         string         `json:"id"`
	Camera     Camera         `json:"camera"`
	Viewport   Size           `json:"viewport"`
	Projection ProjectionMode `json:"projection"`
	Attached   bool           `json:"attached"`
	CreatedAt  time.Time      `json:"created_at"`
}

// SessionView is a session together with the grid state of its last cycle.
// Grid is nil while no grid is attached.
type SessionView struct {
	Session Session       `json:"session"`
	Grid    *GridSnapshot `json:"grid,omitempty"`
}
