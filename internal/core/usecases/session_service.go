package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/paulmach/orb"

	"github.com/samirrijal/geogrid/internal/core/domain"
	"github.com/samirrijal/geogrid/internal/core/ports"
)

const (
	maxCameraZoom   = 24.0
	maxViewportSide = 16384.0
)

// MapSession is a headless map with a grid attached. Its mutex serialises every
// renderer event so handlers run strictly in dispatch order.
type MapSession struct {
	mu        sync.Mutex
	id        string
	createdAt time.Time
	m         ports.InteractiveMap
	grid      *GeoGrid

	last     *domain.GridSnapshot
	watchers map[int]func(domain.GridSnapshot)
	nextW    int
}

// ID returns the session identifier.
func (s *MapSession) ID() string { return s.id }

// GridReconciled records the snapshot and fans it out to watchers.
// It is called with s.mu held, from inside a renderer event.
func (s *MapSession) GridReconciled(snapshot domain.GridSnapshot) {
	s.last = &snapshot
	for _, w := range s.watchers {
		w(snapshot)
	}
}

func (s *MapSession) view() domain.SessionView {
	v := domain.SessionView{
		Session: domain.Session{
			ID:         s.id,
			Camera:     s.m.Camera(),
			Viewport:   s.m.ViewportSize(),
			Projection: s.m.Projection(),
			Attached:   s.grid.Attached(),
			CreatedAt:  s.createdAt,
		},
	}
	if v.Session.Attached && s.last != nil {
		snap := *s.last
		v.Grid = &snap
	}
	return v
}

// CreateSessionRequest describes a new session. Zero viewport falls back to the
// service default and an empty projection to Mercator.
type CreateSessionRequest struct {
	Camera     domain.Camera         `json:"camera"`
	Viewport   domain.Size           `json:"viewport"`
	Projection domain.ProjectionMode `json:"projection"`
}

// SessionService manages headless map sessions with an attached grid.
type SessionService struct {
	maps      ports.MapFactory
	store     ports.SessionStore[*MapSession]
	publisher ports.EventPublisher
	grid      Options
	viewport  domain.Size
	logger    *slog.Logger
}

// NewSessionService creates a new SessionService. grid is applied to every
// session; publisher may be nil.
func NewSessionService(
	maps ports.MapFactory,
	store ports.SessionStore[*MapSession],
	publisher ports.EventPublisher,
	grid Options,
	viewport domain.Size,
) *SessionService {
	logger := grid.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &SessionService{
		maps:      maps,
		store:     store,
		publisher: publisher,
		grid:      grid,
		viewport:  viewport,
		logger:    logger,
	}
	store.OnExpire(func(ms *MapSession) {
		s.logger.Info("session expired", "session", ms.id)
		s.destroy(context.Background(), ms)
	})
	return s
}

func validateCamera(c domain.Camera) error {
	switch {
	case math.IsNaN(c.Zoom) || c.Zoom < 0 || c.Zoom > maxCameraZoom:
		return fmt.Errorf("%w: zoom must lie within [0, %g]", ErrInvalidCamera, maxCameraZoom)
	case math.IsNaN(c.Center.Lat) || c.Center.Lat < domain.MinLatitude || c.Center.Lat > domain.MaxLatitude:
		return fmt.Errorf("%w: latitude must lie within [-90, 90]", ErrInvalidCamera)
	case math.IsNaN(c.Center.Lng) || math.IsInf(c.Center.Lng, 0):
		return fmt.Errorf("%w: longitude must be finite", ErrInvalidCamera)
	case math.IsNaN(c.Bearing) || math.IsInf(c.Bearing, 0):
		return fmt.Errorf("%w: bearing must be finite", ErrInvalidCamera)
	}
	return nil
}

func validateViewport(v domain.Size) error {
	if v.Width <= 0 || v.Height <= 0 || v.Width > maxViewportSide || v.Height > maxViewportSide {
		return fmt.Errorf("%w: width and height must lie within (0, %g]", ErrInvalidViewport, maxViewportSide)
	}
	return nil
}

// CreateSession builds a map, attaches a grid and fires the map's load event.
func (s *SessionService) CreateSession(ctx context.Context, req CreateSessionRequest) (*domain.SessionView, error) {
	if req.Viewport == (domain.Size{}) {
		req.Viewport = s.viewport
	}
	if req.Projection == "" {
		req.Projection = domain.ProjectionMercator
	}
	if !req.Projection.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProjection, req.Projection)
	}
	if err := validateViewport(req.Viewport); err != nil {
		return nil, err
	}
	if err := validateCamera(req.Camera); err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	ms := &MapSession{
		id:        id.String(),
		createdAt: time.Now(),
		m:         s.maps.NewMap(req.Camera, req.Viewport, req.Projection),
		watchers:  make(map[int]func(domain.GridSnapshot)),
	}

	opts := s.grid
	opts.Logger = s.logger.With("session", ms.id)
	opts.Observers = append(append([]ports.GridObserver(nil), s.grid.Observers...), ms, s.publishing(ms.id))

	ms.mu.Lock()
	defer ms.mu.Unlock()

	grid, err := New(ms.m, opts)
	if err != nil {
		return nil, err
	}
	ms.grid = grid
	ms.m.Load()

	s.store.Put(ms)
	s.logger.InfoContext(ctx, "session created",
		"session", ms.id,
		"projection", req.Projection,
		"zoom", req.Camera.Zoom,
	)
	v := ms.view()
	return &v, nil
}

// publishing returns an observer that forwards snapshots to the event publisher.
func (s *SessionService) publishing(id string) ports.GridObserver {
	return ports.GridObserverFunc(func(snapshot domain.GridSnapshot) {
		if s.publisher == nil {
			return
		}
		if err := s.publisher.PublishGridUpdate(context.Background(), id, &snapshot); err != nil {
			s.logger.Debug("publish grid update", "session", id, "error", err)
		}
	})
}

func (s *SessionService) lookup(id string) (*MapSession, error) {
	ms, ok := s.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return ms, nil
}

// withSession runs fn with the session locked and returns the resulting view.
func (s *SessionService) withSession(id string, fn func(ms *MapSession) error) (*domain.SessionView, error) {
	ms, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if fn != nil {
		if err := fn(ms); err != nil {
			return nil, err
		}
	}
	v := ms.view()
	return &v, nil
}

// GetSession returns a session and its latest grid snapshot.
func (s *SessionService) GetSession(ctx context.Context, id string) (*domain.SessionView, error) {
	return s.withSession(id, nil)
}

// ListSessions returns all live sessions ordered by creation time.
func (s *SessionService) ListSessions(ctx context.Context) []domain.Session {
	live := s.store.List()
	out := make([]domain.Session, 0, len(live))
	for _, ms := range live {
		ms.mu.Lock()
		out = append(out, ms.view().Session)
		ms.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Count returns the number of live sessions.
func (s *SessionService) Count() int {
	return s.store.Len()
}

// MoveCamera jumps the camera, which fires a move event on the session's map.
func (s *SessionService) MoveCamera(ctx context.Context, id string, update domain.CameraUpdate) (*domain.SessionView, error) {
	return s.withSession(id, func(ms *MapSession) error {
		next := ms.m.Camera()
		if update.Center != nil {
			next.Center = *update.Center
		}
		if update.Zoom != nil {
			next.Zoom = *update.Zoom
		}
		if update.Bearing != nil {
			next.Bearing = *update.Bearing
		}
		if err := validateCamera(next); err != nil {
			return err
		}
		ms.m.JumpTo(update)
		return nil
	})
}

// SetProjection switches the session's map projection.
func (s *SessionService) SetProjection(ctx context.Context, id string, mode domain.ProjectionMode) (*domain.SessionView, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProjection, mode)
	}
	return s.withSession(id, func(ms *MapSession) error {
		ms.m.SetProjection(mode)
		return nil
	})
}

// AttachGrid puts the grid back on a session's map. Attaching twice is a no-op.
func (s *SessionService) AttachGrid(ctx context.Context, id string) (*domain.SessionView, error) {
	return s.withSession(id, func(ms *MapSession) error {
		return ms.grid.Add()
	})
}

// DetachGrid takes the grid off a session's map. Detaching twice is a no-op.
func (s *SessionService) DetachGrid(ctx context.Context, id string) (*domain.SessionView, error) {
	return s.withSession(id, func(ms *MapSession) error {
		if err := ms.grid.Remove(); err != nil {
			return err
		}
		ms.last = nil
		return nil
	})
}

// Labels returns the labels currently rendered on a session's map.
func (s *SessionService) Labels(ctx context.Context, id string) ([]domain.LabelDescriptor, bool, error) {
	ms, err := s.lookup(id)
	if err != nil {
		return nil, false, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	labels, visible := ms.m.Labels()
	return labels, visible, nil
}

// SourceData returns the geometry held by one of the grid sources.
func (s *SessionService) SourceData(ctx context.Context, id, sourceID string) (orb.MultiLineString, error) {
	if sourceID != ParallelsSourceID && sourceID != MeridiansSourceID {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, sourceID)
	}
	ms, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	data, ok := ms.m.SourceData(sourceID)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not on the map", ErrUnknownSource, sourceID)
	}
	return data, nil
}

// Watch calls fn with every snapshot the session's grid produces until the
// returned cancel function is called. fn runs inside the map's event dispatch
// and must not call back into the service.
func (s *SessionService) Watch(ctx context.Context, id string, fn func(domain.GridSnapshot)) (func(), error) {
	ms, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	ms.mu.Lock()
	key := ms.nextW
	ms.nextW++
	ms.watchers[key] = fn
	ms.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			ms.mu.Lock()
			delete(ms.watchers, key)
			ms.mu.Unlock()
		})
	}, nil
}

// CloseSession destroys a session's map, which tears the grid down.
func (s *SessionService) CloseSession(ctx context.Context, id string) error {
	ms, err := s.lookup(id)
	if err != nil {
		return err
	}
	if !s.store.Delete(id) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.destroy(ctx, ms)
	s.logger.InfoContext(ctx, "session closed", "session", id)
	return nil
}

func (s *SessionService) destroy(ctx context.Context, ms *MapSession) {
	ms.mu.Lock()
	ms.m.Destroy()
	ms.watchers = make(map[int]func(domain.GridSnapshot))
	ms.mu.Unlock()

	if s.publisher != nil {
		if err := s.publisher.PublishSessionClosed(ctx, ms.id); err != nil {
			s.logger.Debug("publish session closed", "session", ms.id, "error", err)
		}
	}
}
