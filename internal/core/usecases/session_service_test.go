package usecases_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/geogrid/internal/adapters/headless"
	"github.com/samirrijal/geogrid/internal/adapters/memstore"
	"github.com/samirrijal/geogrid/internal/core/domain"
	"github.com/samirrijal/geogrid/internal/core/usecases"
)

var defaultViewport = domain.Size{Width: 1024, Height: 768}

func newSessionService(t *testing.T, pub *recordingPublisher) *usecases.SessionService {
	t.Helper()
	store := memstore.New[*usecases.MapSession](time.Hour, 0)
	factory := headless.NewFactory(headless.Config{ProjectionEvents: true})
	opts := usecases.Options{Logger: quietLogger}
	if pub == nil {
		return usecases.NewSessionService(factory, store, nil, opts, defaultViewport)
	}
	return usecases.NewSessionService(factory, store, pub, opts, defaultViewport)
}

func TestSessionService_CreateSession(t *testing.T) {
	pub := newRecordingPublisher()
	svc := newSessionService(t, pub)

	v, err := svc.CreateSession(context.Background(), usecases.CreateSessionRequest{
		Camera: domain.Camera{Center: domain.LngLat{Lng: -2.93, Lat: 43.26}, Zoom: 6},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, v.Session.ID)
	assert.Equal(t, defaultViewport, v.Session.Viewport)
	assert.Equal(t, domain.ProjectionMercator, v.Session.Projection)
	assert.True(t, v.Session.Attached)
	require.NotNil(t, v.Grid)
	assert.Equal(t, 6, v.Grid.ZoomBucket)
	assert.NotEmpty(t, v.Grid.Labels)
	assert.Equal(t, 1, svc.Count())
	assert.Equal(t, 1, pub.updates[v.Session.ID])
}

func TestSessionService_CreateSessionValidation(t *testing.T) {
	svc := newSessionService(t, nil)
	ctx := context.Background()

	_, err := svc.CreateSession(ctx, usecases.CreateSessionRequest{Projection: "cube"})
	assert.ErrorIs(t, err, usecases.ErrInvalidProjection)

	_, err = svc.CreateSession(ctx, usecases.CreateSessionRequest{Viewport: domain.Size{Width: -1, Height: 10}})
	assert.ErrorIs(t, err, usecases.ErrInvalidViewport)

	_, err = svc.CreateSession(ctx, usecases.CreateSessionRequest{Camera: domain.Camera{Zoom: 30}})
	assert.ErrorIs(t, err, usecases.ErrInvalidCamera)

	_, err = svc.CreateSession(ctx, usecases.CreateSessionRequest{Camera: domain.Camera{Center: domain.LngLat{Lat: 95}}})
	assert.ErrorIs(t, err, usecases.ErrInvalidCamera)

	assert.Equal(t, 0, svc.Count())
}

func TestSessionService_MoveCamera(t *testing.T) {
	svc := newSessionService(t, nil)
	ctx := context.Background()
	v, err := svc.CreateSession(ctx, usecases.CreateSessionRequest{Camera: domain.Camera{Zoom: 3}})
	require.NoError(t, err)

	moved, err := svc.MoveCamera(ctx, v.Session.ID, domain.CameraUpdate{Zoom: ptr(8.4)})
	require.NoError(t, err)
	assert.Equal(t, 8.4, moved.Session.Camera.Zoom)
	assert.Equal(t, 8, moved.Grid.ZoomBucket)
	assert.Equal(t, 0.75, moved.Grid.Density)

	_, err = svc.MoveCamera(ctx, v.Session.ID, domain.CameraUpdate{Zoom: ptr(-1.0)})
	assert.ErrorIs(t, err, usecases.ErrInvalidCamera)

	rotated, err := svc.MoveCamera(ctx, v.Session.ID, domain.CameraUpdate{Bearing: ptr(45.0)})
	require.NoError(t, err)
	assert.False(t, rotated.Grid.LabelsVisible)
	_, visible, err := svc.Labels(ctx, v.Session.ID)
	require.NoError(t, err)
	assert.False(t, visible)
}

func TestSessionService_SetProjection(t *testing.T) {
	svc := newSessionService(t, nil)
	ctx := context.Background()
	v, err := svc.CreateSession(ctx, usecases.CreateSessionRequest{Camera: domain.Camera{Zoom: 2}})
	require.NoError(t, err)

	got, err := svc.SetProjection(ctx, v.Session.ID, domain.ProjectionGlobe)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectionGlobe, got.Session.Projection)
	assert.Equal(t, domain.ProjectionGlobe, got.Grid.Projection)

	_, err = svc.SetProjection(ctx, v.Session.ID, "cube")
	assert.ErrorIs(t, err, usecases.ErrInvalidProjection)
}

func TestSessionService_DetachAndAttach(t *testing.T) {
	svc := newSessionService(t, nil)
	ctx := context.Background()
	v, err := svc.CreateSession(ctx, usecases.CreateSessionRequest{Camera: domain.Camera{Zoom: 4}})
	require.NoError(t, err)
	id := v.Session.ID

	detached, err := svc.DetachGrid(ctx, id)
	require.NoError(t, err)
	assert.False(t, detached.Session.Attached)
	assert.Nil(t, detached.Grid)
	_, err = svc.SourceData(ctx, id, usecases.ParallelsSourceID)
	assert.ErrorIs(t, err, usecases.ErrUnknownSource)

	_, err = svc.DetachGrid(ctx, id)
	require.NoError(t, err)

	attached, err := svc.AttachGrid(ctx, id)
	require.NoError(t, err)
	assert.True(t, attached.Session.Attached)
	require.NotNil(t, attached.Grid)
	data, err := svc.SourceData(ctx, id, usecases.MeridiansSourceID)
	require.NoError(t, err)
	assert.Len(t, data, attached.Grid.Meridians)

	_, err = svc.SourceData(ctx, id, "roads")
	assert.ErrorIs(t, err, usecases.ErrUnknownSource)
}

func TestSessionService_Watch(t *testing.T) {
	svc := newSessionService(t, nil)
	ctx := context.Background()
	v, err := svc.CreateSession(ctx, usecases.CreateSessionRequest{Camera: domain.Camera{Zoom: 4}})
	require.NoError(t, err)

	var got []domain.GridSnapshot
	cancel, err := svc.Watch(ctx, v.Session.ID, func(s domain.GridSnapshot) { got = append(got, s) })
	require.NoError(t, err)

	_, err = svc.MoveCamera(ctx, v.Session.ID, domain.CameraUpdate{Zoom: ptr(5.0)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 5.0, got[0].Zoom)

	cancel()
	cancel()
	_, err = svc.MoveCamera(ctx, v.Session.ID, domain.CameraUpdate{Zoom: ptr(6.0)})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSessionService_ListAndClose(t *testing.T) {
	pub := newRecordingPublisher()
	svc := newSessionService(t, pub)
	ctx := context.Background()

	a, err := svc.CreateSession(ctx, usecases.CreateSessionRequest{})
	require.NoError(t, err)
	b, err := svc.CreateSession(ctx, usecases.CreateSessionRequest{})
	require.NoError(t, err)

	list := svc.ListSessions(ctx)
	require.Len(t, list, 2)
	assert.ElementsMatch(t, []string{a.Session.ID, b.Session.ID}, []string{list[0].ID, list[1].ID})
	assert.False(t, list[1].CreatedAt.Before(list[0].CreatedAt))

	require.NoError(t, svc.CloseSession(ctx, a.Session.ID))
	assert.ErrorIs(t, svc.CloseSession(ctx, a.Session.ID), usecases.ErrSessionNotFound)
	_, err = svc.GetSession(ctx, a.Session.ID)
	assert.ErrorIs(t, err, usecases.ErrSessionNotFound)
	assert.Equal(t, []string{a.Session.ID}, pub.closed)
	assert.Equal(t, 1, svc.Count())
}

func TestSessionService_ConcurrentCloseClosesOnce(t *testing.T) {
	pub := newRecordingPublisher()
	svc := newSessionService(t, pub)
	ctx := context.Background()

	v, err := svc.CreateSession(ctx, usecases.CreateSessionRequest{})
	require.NoError(t, err)

	const closers = 8
	errs := make(chan error, closers)
	var wg sync.WaitGroup
	for i := 0; i < closers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.CloseSession(ctx, v.Session.ID)
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, usecases.ErrSessionNotFound)
	}
	assert.Equal(t, 1, succeeded)
	pub.mu.Lock()
	defer pub.mu.Unlock()
	assert.Equal(t, []string{v.Session.ID}, pub.closed)
}

func TestSessionService_ExpiredSessionsAreDestroyed(t *testing.T) {
	pub := newRecordingPublisher()
	store := memstore.New[*usecases.MapSession](30*time.Millisecond, 0)
	svc := usecases.NewSessionService(headless.NewFactory(headless.Config{}), store, pub, usecases.Options{Logger: quietLogger}, defaultViewport)
	store.Start()
	defer store.Stop()

	v, err := svc.CreateSession(context.Background(), usecases.CreateSessionRequest{})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		pub.mu.Lock()
		defer pub.mu.Unlock()
		return len(pub.closed) == 1 && pub.closed[0] == v.Session.ID
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, svc.Count())
}
