package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geogrid/internal/core/domain"
	"github.com/samirrijal/geogrid/internal/core/ports"
	"github.com/samirrijal/geogrid/internal/pkg/metrics"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

var _ ports.EventSubscriber = (*Subscriber)(nil)

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
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
	return &Subscriber{conn: conn, js: js}, nil
}

// consume subscribes a durable work-queue consumer to kind commands. Messages
// that fail to decode are terminated; handler errors are retried.
func (s *Subscriber) consume(ctx context.Context, kind, durable string, handle func(ctx context.Context, id string, data []byte) error) error {
	sub, err := s.js.Subscribe(wildcard(kind), func(msg *nats.Msg) {
		id, _, err := parseSubject(msg.Subject)
		if err != nil {
			metrics.CommandsReceived.WithLabelValues(kind, "malformed").Inc()
			_ = msg.Term()
			return
		}
		if err := handle(ctx, id, msg.Data); err != nil {
			if errors.Is(err, errUndecodable) {
				metrics.CommandsReceived.WithLabelValues(kind, "malformed").Inc()
				_ = msg.Term()
				return
			}
			metrics.CommandsReceived.WithLabelValues(kind, "error").Inc()
			_ = msg.Nak()
			return
		}
		metrics.CommandsReceived.WithLabelValues(kind, "ok").Inc()
		_ = msg.Ack()
	},
		nats.Durable(durable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", kind, err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

func (s *Subscriber) SubscribeCameraCommands(ctx context.Context, handler func(ctx context.Context, sessionID string, update domain.CameraUpdate) error) error {
	return s.consume(ctx, KindCamera, "camera-processor", func(ctx context.Context, id string, data []byte) error {
		var update domain.CameraUpdate
		if err := json.Unmarshal(data, &update); err != nil {
			return fmt.Errorf("%w: %v", errUndecodable, err)
		}
		return handler(ctx, id, update)
	})
}

func (s *Subscriber) SubscribeProjectionCommands(ctx context.Context, handler func(ctx context.Context, sessionID string, mode domain.ProjectionMode) error) error {
	return s.consume(ctx, KindProjection, "projection-processor", func(ctx context.Context, id string, data []byte) error {
		var cmd ProjectionCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return fmt.Errorf("%w: %v", errUndecodable, err)
		}
		return handler(ctx, id, cmd.Projection)
	})
}

// SubscribeGridUpdates follows update and closed messages for one session, or for
// every session when sessionID is "*". It uses an ephemeral consumer that starts
// at the last stored snapshot.
func (s *Subscriber) SubscribeGridUpdates(ctx context.Context, sessionID string, handler func(ctx context.Context, kind string, msg UpdateMessage)) error {
	for _, kind := range []string{KindUpdate, KindClosed} {
		kind := kind
		sub, err := s.js.Subscribe(SessionSubject(sessionID, kind), func(msg *nats.Msg) {
			var um UpdateMessage
			if err := json.Unmarshal(msg.Data, &um); err != nil {
				return
			}
			handler(ctx, kind, um)
		}, nats.DeliverLastPerSubject(), nats.AckNone())
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", kind, err)
		}
		s.subs = append(s.subs, sub)
	}
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
