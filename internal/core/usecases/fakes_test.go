package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/samirrijal/geogrid/internal/core/domain"
)

// --- Fake MapView ---

// flatView projects linearly: scale pixels per degree around the camera centre.
type flatView struct {
	center   domain.LngLat
	zoom     float64
	bearing  float64
	size     domain.Size
	scale    float64
	mode     domain.ProjectionMode
	bounds   *domain.Bounds
	occluded func(p domain.LngLat) bool
}

func newFlatView(scale float64, size domain.Size) *flatView {
	return &flatView{size: size, scale: scale, mode: domain.ProjectionMercator}
}

func (v *flatView) Zoom() float64                     { return v.zoom }
func (v *flatView) Bearing() float64                  { return v.bearing }
func (v *flatView) Center() domain.LngLat             { return v.center }
func (v *flatView) ViewportSize() domain.Size         { return v.size }
func (v *flatView) Projection() domain.ProjectionMode { return v.mode }

func (v *flatView) Bounds() domain.Bounds {
	if v.bounds != nil {
		return *v.bounds
	}
	nw := v.Unproject(domain.ScreenPoint{X: 0, Y: 0})
	se := v.Unproject(domain.ScreenPoint{X: v.size.Width, Y: v.size.Height})
	return domain.Bounds{West: nw.Lng, South: se.Lat, East: se.Lng, North: nw.Lat}
}

func (v *flatView) Project(p domain.LngLat) domain.ScreenPoint {
	return domain.ScreenPoint{
		X: v.size.Width/2 + (p.Lng-v.center.Lng)*v.scale,
		Y: v.size.Height/2 - (p.Lat-v.center.Lat)*v.scale,
	}
}

func (v *flatView) Unproject(s domain.ScreenPoint) domain.LngLat {
	return domain.LngLat{
		Lng: v.center.Lng + (s.X-v.size.Width/2)/v.scale,
		Lat: v.center.Lat - (s.Y-v.size.Height/2)/v.scale,
	}
}

func (v *flatView) IsLocationOccluded(p domain.LngLat) bool {
	if v.occluded == nil {
		return false
	}
	return v.occluded(p)
}

// --- Fake CacheService ---

var errCacheMiss = errors.New("cache miss")

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return nil, errCacheMiss
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.sets++
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// --- Fake EventPublisher ---

type recordingPublisher struct {
	mu      sync.Mutex
	updates map[string]int
	closed  []string
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{updates: make(map[string]int)}
}

func (p *recordingPublisher) PublishGridUpdate(ctx context.Context, sessionID string, snapshot *domain.GridSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates[sessionID]++
	return nil
}

func (p *recordingPublisher) PublishSessionClosed(ctx context.Context, sessionID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = append(p.closed, sessionID)
	return nil
}
