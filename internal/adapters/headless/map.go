// Package headless implements an in-process map renderer. It keeps a camera,
// projects coordinates for Mercator and globe views, stores line sources and
// layers, renders labels into an in-memory overlay and dispatches map events
// synchronously.
//
// A Map is not safe for concurrent use; callers serialise access to it.
package headless

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/samirrijal/geogrid/internal/core/domain"
	"github.com/samirrijal/geogrid/internal/core/ports"
)

// Config controls optional renderer capabilities.
type Config struct {
	// ProjectionEvents makes the map emit "projection-changed".
	ProjectionEvents bool
	// BaseLayers are present on every new map, bottom to top.
	BaseLayers []domain.LineLayer
}

// Factory creates headless maps. It implements ports.MapFactory.
type Factory struct {
	cfg Config
}

// NewFactory creates a Factory.
func NewFactory(cfg Config) *Factory {
	return &Factory{cfg: cfg}
}

// NewMap creates a map; it stays unloaded until Load is called.
func (f *Factory) NewMap(camera domain.Camera, viewport domain.Size, mode domain.ProjectionMode) ports.InteractiveMap {
	return New(f.cfg, camera, viewport, mode)
}

// Map is a headless map renderer.
type Map struct {
	cfg       Config
	camera    domain.Camera
	size      domain.Size
	mode      domain.ProjectionMode
	loaded    bool
	destroyed bool

	events   *eventBus
	style    *style
	overlay  *overlay
	mercator *mercator
	globe    globe
}

var _ ports.InteractiveMap = (*Map)(nil)

// New creates a map with the given camera, viewport size and projection.
func New(cfg Config, camera domain.Camera, viewport domain.Size, mode domain.ProjectionMode) *Map {
	if !mode.Valid() {
		mode = domain.ProjectionMercator
	}
	camera.Bearing = normalizeBearing(camera.Bearing)
	return &Map{
		cfg:      cfg,
		camera:   camera,
		size:     viewport,
		mode:     mode,
		events:   newEventBus(),
		style:    newStyle(cfg.BaseLayers),
		overlay:  newOverlay(),
		mercator: newMercator(),
	}
}

// normalizeBearing brings a bearing into (-180, 180].
func normalizeBearing(b float64) float64 {
	b = math.Mod(b, 360)
	switch {
	case b > 180:
		b -= 360
	case b <= -180:
		b += 360
	}
	if b == 0 {
		return 0
	}
	return b
}

func (m *Map) proj() projection {
	if m.mode == domain.ProjectionGlobe {
		return m.globe
	}
	return m.mercator
}

func (m *Map) Zoom() float64                     { return m.camera.Zoom }
func (m *Map) Bearing() float64                  { return m.camera.Bearing }
func (m *Map) Center() domain.LngLat             { return m.camera.Center }
func (m *Map) Camera() domain.Camera             { return m.camera }
func (m *Map) ViewportSize() domain.Size         { return m.size }
func (m *Map) Projection() domain.ProjectionMode { return m.mode }

func (m *Map) Bounds() domain.Bounds {
	return m.proj().bounds(m.camera, m.size)
}

func (m *Map) Project(p domain.LngLat) domain.ScreenPoint {
	return m.proj().project(m.camera, m.size, p)
}

func (m *Map) Unproject(p domain.ScreenPoint) domain.LngLat {
	return m.proj().unproject(m.camera, m.size, p)
}

func (m *Map) IsLocationOccluded(p domain.LngLat) bool {
	return m.proj().occluded(m.camera, p)
}

func (m *Map) AddSource(id string, data orb.MultiLineString) error {
	return m.style.addSource(id, data)
}

func (m *Map) SetSourceData(id string, data orb.MultiLineString) error {
	return m.style.setSourceData(id, data)
}

func (m *Map) RemoveSource(id string) error {
	return m.style.removeSource(id)
}

func (m *Map) AddLayer(layer domain.LineLayer, beforeID string) error {
	return m.style.addLayer(layer, beforeID)
}

func (m *Map) RemoveLayer(id string) error {
	return m.style.removeLayer(id)
}

// SourceData returns a copy of a source's geometry.
func (m *Map) SourceData(id string) (orb.MultiLineString, bool) {
	data, ok := m.style.sources[id]
	if !ok {
		return nil, false
	}
	return data.Clone(), true
}

// Layers returns the layers bottom to top.
func (m *Map) Layers() []domain.LineLayer {
	return append([]domain.LineLayer(nil), m.style.layers...)
}

// LayerVisible reports whether a layer exists and its zoom range covers the current zoom.
func (m *Map) LayerVisible(id string) bool {
	i := m.style.layerIndex(id)
	return i >= 0 && m.style.layers[i].Zoom.Contains(m.camera.Zoom)
}

func (m *Map) On(event domain.MapEvent, handler func()) ports.Disposer {
	return m.events.subscribe(event, handler, false)
}

func (m *Map) Once(event domain.MapEvent, handler func()) ports.Disposer {
	return m.events.subscribe(event, handler, true)
}

func (m *Map) Supports(event domain.MapEvent) bool {
	if event == domain.EventProjectionChanged {
		return m.cfg.ProjectionEvents
	}
	return true
}

// Handlers returns the number of handlers subscribed to event.
func (m *Map) Handlers(event domain.MapEvent) int {
	return m.events.count(event)
}

func (m *Map) MountLabelContainer(class string) ports.LabelContainer {
	return m.overlay.mount(class)
}

func (m *Map) FindLabelContainer(class string) (ports.LabelContainer, bool) {
	c, ok := m.overlay.find(class)
	if !ok {
		return nil, false
	}
	return c, true
}

// Labels returns the labels of the grid container and whether it is shown.
func (m *Map) Labels() ([]domain.LabelDescriptor, bool) {
	c, ok := m.overlay.find(domain.ClassContainer)
	if !ok {
		return nil, false
	}
	return append([]domain.LabelDescriptor(nil), c.labels...), c.visible
}

// Load fires "load" the first time it is called.
func (m *Map) Load() {
	if m.loaded || m.destroyed {
		return
	}
	m.loaded = true
	m.events.emit(domain.EventLoad)
}

// JumpTo applies a camera update and fires "move".
func (m *Map) JumpTo(update domain.CameraUpdate) {
	if m.destroyed {
		return
	}
	if update.Center != nil {
		m.camera.Center = *update.Center
	}
	if update.Zoom != nil {
		m.camera.Zoom = *update.Zoom
	}
	if update.Bearing != nil {
		m.camera.Bearing = normalizeBearing(*update.Bearing)
	}
	m.events.emit(domain.EventMove)
}

// SetProjection switches projection and, when enabled, fires "projection-changed".
func (m *Map) SetProjection(mode domain.ProjectionMode) {
	if m.destroyed || !mode.Valid() || mode == m.mode {
		return
	}
	m.mode = mode
	if m.cfg.ProjectionEvents {
		m.events.emit(domain.EventProjectionChanged)
	}
}

// Destroy fires "remove" and drops every handler.
func (m *Map) Destroy() {
	if m.destroyed {
		return
	}
	m.events.emit(domain.EventRemove)
	m.events.clear()
	m.destroyed = true
}
