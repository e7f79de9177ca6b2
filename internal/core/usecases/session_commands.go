package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/samirrijal/geogrid/internal/core/domain"
	"github.com/samirrijal/geogrid/internal/core/ports"
)

// ListenForCommands applies camera and projection commands arriving on sub to
// the sessions held by this service. Commands for unknown sessions are dropped,
// since another instance may own them; invalid commands are dropped too.
func (s *SessionService) ListenForCommands(ctx context.Context, sub ports.EventSubscriber) error {
	if err := sub.SubscribeCameraCommands(ctx, func(ctx context.Context, id string, update domain.CameraUpdate) error {
		_, err := s.MoveCamera(ctx, id, update)
		return s.commandResult("camera", id, err)
	}); err != nil {
		return fmt.Errorf("camera commands: %w", err)
	}
	if err := sub.SubscribeProjectionCommands(ctx, func(ctx context.Context, id string, mode domain.ProjectionMode) error {
		_, err := s.SetProjection(ctx, id, mode)
		return s.commandResult("projection", id, err)
	}); err != nil {
		return fmt.Errorf("projection commands: %w", err)
	}
	return nil
}

// commandResult decides whether a failed command should be redelivered.
func (s *SessionService) commandResult(kind, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrInvalidCamera),
		errors.Is(err, ErrInvalidProjection):
		s.logger.Debug("dropping session command", "kind", kind, "session", id, "error", err)
		return nil
	default:
		return err
	}
}
