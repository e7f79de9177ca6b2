package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geogrid/internal/core/domain"
	"github.com/samirrijal/geogrid/internal/core/ports"
	"github.com/samirrijal/geogrid/internal/pkg/metrics"
)

// UpdateMessage is the payload of an update subject.
type UpdateMessage struct {
	SessionID string               `json:"session_id"`
	Grid      *domain.GridSnapshot `json:"grid"`
}

// ProjectionCommand is the payload of a projection subject.
type ProjectionCommand struct {
	Projection domain.ProjectionMode `json:"projection"`
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

var _ ports.EventPublisher = (*Publisher)(nil)

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStreams(js); err != nil {
		conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) publish(ctx context.Context, kind, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", kind, err)
	}
	// Snapshots fire on every camera move; do not block the map on acks.
	if _, err := p.js.PublishAsync(SessionSubject(id, kind), data); err != nil {
		return fmt.Errorf("publish %s: %w", kind, err)
	}
	metrics.MessagesPublished.WithLabelValues(kind).Inc()
	return nil
}

func (p *Publisher) PublishGridUpdate(ctx context.Context, sessionID string, snapshot *domain.GridSnapshot) error {
	return p.publish(ctx, KindUpdate, sessionID, UpdateMessage{SessionID: sessionID, Grid: snapshot})
}

func (p *Publisher) PublishSessionClosed(ctx context.Context, sessionID string) error {
	return p.publish(ctx, KindClosed, sessionID, UpdateMessage{SessionID: sessionID})
}

// PublishCameraCommand asks the owner of a session to move its camera.
func (p *Publisher) PublishCameraCommand(ctx context.Context, sessionID string, update domain.CameraUpdate) error {
	return p.publish(ctx, KindCamera, sessionID, update)
}

// PublishProjectionCommand asks the owner of a session to switch projection.
func (p *Publisher) PublishProjectionCommand(ctx context.Context, sessionID string, mode domain.ProjectionMode) error {
	return p.publish(ctx, KindProjection, sessionID, ProjectionCommand{Projection: mode})
}

// Connected reports whether the connection is up.
func (p *Publisher) Connected() bool {
	return p.conn.IsConnected()
}

// Close waits for pending publishes, then drains and closes the connection.
func (p *Publisher) Close() {
	<-p.js.PublishAsyncComplete()
	_ = p.conn.Drain()
}
