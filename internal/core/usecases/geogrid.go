package usecases

import (
	"errors"
	"fmt"
	"time"

	"github.com/samirrijal/geogrid/internal/core/domain"
	"github.com/samirrijal/geogrid/internal/core/ports"
)

// geometryKey identifies the line set currently held by the grid sources.
// It carries the zoom bucket of the last regeneration.
type geometryKey struct {
	bucket        int
	density       float64
	firstParallel float64
	parallels     int
	firstMeridian float64
	meridians     int
}

// GeoGrid keeps a coordinate grid and its labels in sync with a map viewport.
//
// All methods and event handlers run on the renderer's dispatch goroutine; the
// grid holds no locks of its own.
type GeoGrid struct {
	renderer ports.MapRenderer
	cfg      config
	placer   *LabelPlacer

	pendingLoad ports.Disposer
	disposers   []ports.Disposer
	container   ports.LabelContainer
	labels      []domain.LabelDescriptor

	lastGeometry geometryKey
	hasGeometry  bool
}

// New creates a grid for renderer and attaches it once the map fires "load".
func New(renderer ports.MapRenderer, opts Options) (*GeoGrid, error) {
	if renderer == nil {
		return nil, ErrMapRequired
	}
	cfg := opts.resolve()
	g := &GeoGrid{
		renderer: renderer,
		cfg:      cfg,
		placer:   NewLabelPlacer(cfg.format),
	}
	g.pendingLoad = renderer.Once(domain.EventLoad, g.onLoad)
	return g, nil
}

// Attached reports whether the grid is currently on the map.
func (g *GeoGrid) Attached() bool {
	return g.container != nil
}

// Labels returns a copy of the labels rendered by the last cycle.
func (g *GeoGrid) Labels() []domain.LabelDescriptor {
	return append([]domain.LabelDescriptor(nil), g.labels...)
}

// Add puts the grid on the map. It is a no-op when a grid label container is
// already mounted. You only need to call it after Remove.
func (g *GeoGrid) Add() error {
	if _, ok := g.renderer.FindLabelContainer(domain.ClassContainer); ok {
		return nil
	}

	g.container = g.renderer.MountLabelContainer(domain.ClassContainer)
	g.disposers = append(g.disposers,
		g.renderer.On(domain.EventMove, g.onMove),
		g.renderer.On(domain.EventRemove, g.onRemove),
	)
	if g.renderer.Supports(domain.EventProjectionChanged) {
		g.disposers = append(g.disposers, g.renderer.On(domain.EventProjectionChanged, g.onMove))
	}

	if err := g.addLayersAndSources(); err != nil {
		// Roll back to detached; removal errors for layers never created are expected.
		_ = g.Remove()
		return fmt.Errorf("add grid layers: %w", err)
	}
	g.cfg.logger.Info("geogrid attached",
		"projection", g.renderer.Projection(),
		"before_layer", g.cfg.beforeLayerID,
	)
	g.reconcile(true)
	return nil
}

// Remove takes the grid off the map: handlers are unsubscribed, the label
// container is destroyed and both layers and sources are removed. Calling it on a
// detached grid is a no-op.
func (g *GeoGrid) Remove() error {
	if g.pendingLoad != nil {
		g.pendingLoad()
		g.pendingLoad = nil
	}
	if g.container == nil {
		return nil
	}

	for _, dispose := range g.disposers {
		dispose()
	}
	g.disposers = nil

	g.container.Replace(nil)
	g.container.Unmount()
	g.container = nil
	g.labels = nil
	g.hasGeometry = false

	err := errors.Join(
		g.renderer.RemoveLayer(ParallelsLayerID),
		g.renderer.RemoveLayer(MeridiansLayerID),
		g.renderer.RemoveSource(ParallelsSourceID),
		g.renderer.RemoveSource(MeridiansSourceID),
	)
	if err != nil {
		return fmt.Errorf("remove grid layers: %w", err)
	}
	g.cfg.logger.Info("geogrid detached")
	return nil
}

func (g *GeoGrid) onLoad() {
	g.pendingLoad = nil
	if err := g.Add(); err != nil {
		g.cfg.logger.Error("geogrid attach failed", "error", err)
	}
}

func (g *GeoGrid) onMove() {
	g.reconcile(false)
}

func (g *GeoGrid) onRemove() {
	if err := g.Remove(); err != nil {
		g.cfg.logger.Warn("geogrid teardown on map removal", "error", err)
	}
}

func (g *GeoGrid) addLayersAndSources() error {
	bucket := ZoomBucket(g.renderer.Zoom())
	density := g.cfg.density(bucket)
	bounds := g.renderer.Bounds()
	parallels := Parallels(density, bounds)
	meridians := Meridians(density, bounds)

	if err := g.renderer.AddSource(ParallelsSourceID, MultiLineString(parallels)); err != nil {
		return err
	}
	if err := g.renderer.AddLayer(g.layer(ParallelsLayerID, ParallelsSourceID), g.cfg.beforeLayerID); err != nil {
		return err
	}
	if err := g.renderer.AddSource(MeridiansSourceID, MultiLineString(meridians)); err != nil {
		return err
	}
	if err := g.renderer.AddLayer(g.layer(MeridiansLayerID, MeridiansSourceID), g.cfg.beforeLayerID); err != nil {
		return err
	}

	g.lastGeometry = newGeometryKey(bucket, density, parallels, meridians)
	g.hasGeometry = true
	return nil
}

func (g *GeoGrid) layer(id, source string) domain.LineLayer {
	return domain.LineLayer{
		ID:       id,
		SourceID: source,
		Style:    g.cfg.style,
		Zoom:     g.cfg.zoomRange,
	}
}

func newGeometryKey(bucket int, density float64, parallels, meridians []domain.GridLine) geometryKey {
	k := geometryKey{
		bucket:    bucket,
		density:   density,
		parallels: len(parallels),
		meridians: len(meridians),
	}
	if len(parallels) > 0 {
		k.firstParallel = parallels[0].Value
	}
	if len(meridians) > 0 {
		k.firstMeridian = meridians[0].Value
	}
	return k
}

// reconcile rebuilds labels and grid geometry for the current viewport.
// initial skips the geometry push because the sources were just created.
func (g *GeoGrid) reconcile(initial bool) {
	if g.container == nil {
		return
	}
	start := time.Now()

	zoom := g.renderer.Zoom()
	bearing := g.renderer.Bearing()
	bounds := g.renderer.Bounds()
	bucket := ZoomBucket(zoom)
	density := g.cfg.density(bucket)

	visible := bearing == 0
	g.container.SetVisible(visible)

	placement := Placement{Suppressed: map[domain.Anchor]int{}}
	// Same test the line layers apply, so labels never outlive their lines.
	if g.cfg.zoomRange.Contains(zoom) {
		placement = g.placer.Place(g.renderer, density)
	}
	g.labels = placement.Labels
	g.container.Replace(g.labels)

	parallels := Parallels(density, bounds)
	meridians := Meridians(density, bounds)
	regenerated := false
	if !initial {
		key := newGeometryKey(bucket, density, parallels, meridians)
		if !g.hasGeometry || key != g.lastGeometry {
			if err := g.replaceGeometry(parallels, meridians); err != nil {
				g.cfg.logger.Error("geogrid geometry update failed", "error", err)
			} else {
				g.lastGeometry, g.hasGeometry = key, true
				regenerated = true
			}
		}
	}

	snapshot := domain.GridSnapshot{
		Zoom:          zoom,
		ZoomBucket:    bucket,
		Density:       density,
		Bounds:        bounds,
		Projection:    g.renderer.Projection(),
		Bearing:       bearing,
		LabelsVisible: visible,
		Labels:        g.Labels(),
		Suppressed:    placement.Suppressed,
		Parallels:     len(parallels),
		Meridians:     len(meridians),
		Regenerated:   regenerated || initial,
		Duration:      time.Since(start),
	}
	g.cfg.logger.Debug("geogrid reconciled",
		"zoom", zoom,
		"density", density,
		"labels", len(snapshot.Labels),
		"regenerated", snapshot.Regenerated,
	)
	for _, o := range g.cfg.observers {
		o.GridReconciled(snapshot)
	}
}

func (g *GeoGrid) replaceGeometry(parallels, meridians []domain.GridLine) error {
	if err := g.renderer.SetSourceData(ParallelsSourceID, MultiLineString(parallels)); err != nil {
		return fmt.Errorf("parallels: %w", err)
	}
	if err := g.renderer.SetSourceData(MeridiansSourceID, MultiLineString(meridians)); err != nil {
		return fmt.Errorf("meridians: %w", err)
	}
	return nil
}
