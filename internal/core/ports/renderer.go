package ports

import (
	"github.com/paulmach/orb"

	"github.com/samirrijal/geogrid/internal/core/domain"
)

// Disposer cancels a subscription. Calling it more than once is a no-op.
type Disposer func()

// MapView answers viewport queries against the host renderer.
type MapView interface {
	Zoom() float64
	Bearing() float64
	Center() domain.LngLat
	Bounds() domain.Bounds
	ViewportSize() domain.Size
	Projection() domain.ProjectionMode
	// Project converts a geographic coordinate to viewport pixels.
	Project(p domain.LngLat) domain.ScreenPoint
	// Unproject converts viewport pixels to a geographic coordinate.
	Unproject(p domain.ScreenPoint) domain.LngLat
	// IsLocationOccluded reports whether p lies behind the globe horizon.
	// Always false for planar projections.
	IsLocationOccluded(p domain.LngLat) bool
}

// StyleEditor mutates the renderer's sources and layers.
type StyleEditor interface {
	AddSource(id string, data orb.MultiLineString) error
	SetSourceData(id string, data orb.MultiLineString) error
	RemoveSource(id string) error
	// AddLayer inserts layer before the layer named beforeID, or on top when beforeID is empty.
	AddLayer(layer domain.LineLayer, beforeID string) error
	RemoveLayer(id string) error
}

// EventSource dispatches renderer events.
type EventSource interface {
	On(event domain.MapEvent, handler func()) Disposer
	Once(event domain.MapEvent, handler func()) Disposer
	// Supports reports whether the renderer ever emits event.
	Supports(event domain.MapEvent) bool
}

// LabelContainer holds the label overlay of a map.
type LabelContainer interface {
	// Replace clears every label and renders labels in their place.
	Replace(labels []domain.LabelDescriptor)
	SetVisible(visible bool)
	// Unmount removes the container and its labels from the map.
	Unmount()
}

// Overlay creates and finds label containers on top of the map.
type Overlay interface {
	MountLabelContainer(class string) LabelContainer
	FindLabelContainer(class string) (LabelContainer, bool)
}

// MapRenderer is the narrow capability set the grid needs from a host map.
type MapRenderer interface {
	MapView
	StyleEditor
	EventSource
	Overlay
}

// InteractiveMap is a renderer that can also be driven programmatically.
type InteractiveMap interface {
	MapRenderer
	// Load fires the one-shot load event.
	Load()
	JumpTo(update domain.CameraUpdate)
	SetProjection(mode domain.ProjectionMode)
	Camera() domain.Camera
	// Destroy fires the remove event and releases the map.
	Destroy()
	SourceData(id string) (orb.MultiLineString, bool)
	Labels() (labels []domain.LabelDescriptor, visible bool)
}

// MapFactory builds interactive maps.
type MapFactory interface {
	NewMap(camera domain.Camera, viewport domain.Size, mode domain.ProjectionMode) InteractiveMap
}
