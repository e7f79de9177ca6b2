package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel/attribute"

	natsadapter "github.com/samirrijal/geogrid/internal/adapters/nats"
	"github.com/samirrijal/geogrid/internal/core/domain"
	"github.com/samirrijal/geogrid/internal/pkg/config"
	"github.com/samirrijal/geogrid/internal/pkg/logging"
	"github.com/samirrijal/geogrid/internal/pkg/telemetry"
)

// command is one line read from stdin, e.g.
//
//	{"session":"<id>","camera":{"zoom":5}}
//	{"session":"<id>","projection":"globe"}
type command struct {
	Session    string                `json:"session"`
	Camera     *domain.CameraUpdate  `json:"camera,omitempty"`
	Projection domain.ProjectionMode `json:"projection,omitempty"`
}

// Relay follows the grid snapshots the API publishes and forwards session
// commands read from stdin. Usage: relay [session-id]; all sessions by default.
func main() {
	cfg, err := config.Load("geogrid-relay")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logs := logging.Setup(cfg.Log.Level, cfg.Log.Format, logging.FileOptions{
		Filename:   cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	defer logs.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	session := "*"
	if len(os.Args) > 1 {
		session = os.Args[1]
	}

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats publisher: %v", err)
	}
	defer pub.Close()

	err = sub.SubscribeGridUpdates(ctx, session, func(ctx context.Context, kind string, msg natsadapter.UpdateMessage) {
		if kind == natsadapter.KindClosed || msg.Grid == nil {
			slog.Info("session closed", "session", msg.SessionID)
			return
		}
		g := msg.Grid
		slog.Info("grid update",
			"session", msg.SessionID,
			"projection", g.Projection,
			"zoom", g.Zoom,
			"density", g.Density,
			"parallels", g.Parallels,
			"meridians", g.Meridians,
			"labels", len(g.Labels),
			"labels_visible", g.LabelsVisible,
			"regenerated", g.Regenerated,
		)
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}
	slog.Info("relay following grid updates", "session", session)

	go forwardCommands(ctx, os.Stdin, pub)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutting down relay", "signal", sig.String())
}

// forwardCommands publishes every command line read from r until r is exhausted.
func forwardCommands(ctx context.Context, r io.Reader, pub *natsadapter.Publisher) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := forward(ctx, line, pub); err != nil {
			slog.Warn("command not forwarded", "error", err)
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		slog.Warn("read commands", "error", err)
	}
}

func forward(ctx context.Context, line []byte, pub *natsadapter.Publisher) error {
	var cmd command
	if err := json.Unmarshal(line, &cmd); err != nil {
		return err
	}
	if cmd.Session == "" {
		return errors.New("session is required")
	}

	ctx, span := telemetry.Start(ctx, telemetry.SpanRelayCommand, attribute.String("session.id", cmd.Session))
	defer span.End()

	switch {
	case cmd.Camera != nil:
		return pub.PublishCameraCommand(ctx, cmd.Session, *cmd.Camera)
	case cmd.Projection != "":
		return pub.PublishProjectionCommand(ctx, cmd.Session, cmd.Projection)
	default:
		return errors.New("camera or projection is required")
	}
}
