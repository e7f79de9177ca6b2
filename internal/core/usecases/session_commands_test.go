package usecases_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/geogrid/internal/core/domain"
	"github.com/samirrijal/geogrid/internal/core/usecases"
)

// --- Fake EventSubscriber ---

type capturingSubscriber struct {
	camera     func(ctx context.Context, id string, update domain.CameraUpdate) error
	projection func(ctx context.Context, id string, mode domain.ProjectionMode) error
}

func (s *capturingSubscriber) SubscribeCameraCommands(ctx context.Context, handler func(ctx context.Context, sessionID string, update domain.CameraUpdate) error) error {
	s.camera = handler
	return nil
}

func (s *capturingSubscriber) SubscribeProjectionCommands(ctx context.Context, handler func(ctx context.Context, sessionID string, mode domain.ProjectionMode) error) error {
	s.projection = handler
	return nil
}

func TestListenForCommands(t *testing.T) {
	svc := newSessionService(t, nil)
	ctx := context.Background()
	v, err := svc.CreateSession(ctx, usecases.CreateSessionRequest{Camera: domain.Camera{Zoom: 3}})
	require.NoError(t, err)

	sub := &capturingSubscriber{}
	require.NoError(t, svc.ListenForCommands(ctx, sub))
	require.NotNil(t, sub.camera)
	require.NotNil(t, sub.projection)

	require.NoError(t, sub.camera(ctx, v.Session.ID, domain.CameraUpdate{Zoom: ptr(9.0)}))
	require.NoError(t, sub.projection(ctx, v.Session.ID, domain.ProjectionGlobe))

	got, err := svc.GetSession(ctx, v.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, 9.0, got.Session.Camera.Zoom)
	assert.Equal(t, domain.ProjectionGlobe, got.Session.Projection)

	// Unknown sessions and invalid commands are acknowledged and dropped.
	assert.NoError(t, sub.camera(ctx, "missing", domain.CameraUpdate{Zoom: ptr(1.0)}))
	assert.NoError(t, sub.camera(ctx, v.Session.ID, domain.CameraUpdate{Zoom: ptr(99.0)}))
	assert.NoError(t, sub.projection(ctx, v.Session.ID, "cube"))
}
