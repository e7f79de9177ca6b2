package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/geogrid/internal/core/domain"
	"github.com/samirrijal/geogrid/internal/core/usecases"
	"github.com/samirrijal/geogrid/internal/pkg/metrics"
)

const (
	wsPingInterval = 30 * time.Second
	wsBacklog      = 16
)

// wsMessage is sent from client to drive the watched session.
type wsMessage struct {
	Action     string                `json:"action"` // "camera" | "projection" | "attach" | "detach" | "snapshot"
	Camera     *domain.CameraUpdate  `json:"camera,omitempty"`
	Projection domain.ProjectionMode `json:"projection,omitempty"`
}

// wsEvent is sent from server to client.
type wsEvent struct {
	Type    string               `json:"type"` // "session" | "grid" | "ack" | "error"
	Action  string               `json:"action,omitempty"`
	Session *domain.SessionView  `json:"session,omitempty"`
	Grid    *domain.GridSnapshot `json:"grid,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// WebSocketHandler streams the grid snapshots of one session to a client and
// applies the camera and projection actions the client sends.
// Clients connect to /ws?session=<id> and send JSON such as
// {"action":"camera","camera":{"zoom":4}} or {"action":"projection","projection":"globe"}.
func WebSocketHandler(sessions *usecases.SessionService) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		id := c.Query("session")
		remoteAddr := c.RemoteAddr().String()
		logger := slog.Default().With("session", id, "remote", remoteAddr)

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		ctx := context.Background()
		view, err := sessions.GetSession(ctx, id)
		if err != nil {
			_ = writeJSON(wsEvent{Type: "error", Error: err.Error()})
			return
		}

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()
		logger.Info("ws client connected")

		// Snapshots arrive inside the session's event dispatch; hand them to
		// the writer without blocking and drop them if the client lags.
		snapshots := make(chan domain.GridSnapshot, wsBacklog)
		cancel, err := sessions.Watch(ctx, id, func(s domain.GridSnapshot) {
			select {
			case snapshots <- s:
			default:
				logger.Debug("ws client lagging, snapshot dropped")
			}
		})
		if err != nil {
			_ = writeJSON(wsEvent{Type: "error", Error: err.Error()})
			return
		}
		defer cancel()

		if err := writeJSON(wsEvent{Type: "session", Session: view}); err != nil {
			return
		}

		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(wsPingInterval)
			defer ticker.Stop()
			for {
				select {
				case s := <-snapshots:
					if err := writeJSON(wsEvent{Type: "grid", Grid: &s}); err != nil {
						return
					}
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(wsEvent{Type: "error", Error: "invalid JSON"})
				continue
			}

			var view *domain.SessionView
			switch m.Action {
			case "camera":
				if m.Camera == nil {
					_ = writeJSON(wsEvent{Type: "error", Action: m.Action, Error: "camera is required"})
					continue
				}
				view, err = sessions.MoveCamera(ctx, id, *m.Camera)
			case "projection":
				view, err = sessions.SetProjection(ctx, id, m.Projection)
			case "attach":
				view, err = sessions.AttachGrid(ctx, id)
			case "detach":
				view, err = sessions.DetachGrid(ctx, id)
			case "snapshot":
				view, err = sessions.GetSession(ctx, id)
			default:
				_ = writeJSON(wsEvent{Type: "error", Error: "unknown action: " + m.Action})
				continue
			}
			if err != nil {
				_ = writeJSON(wsEvent{Type: "error", Action: m.Action, Error: err.Error()})
				continue
			}
			_ = writeJSON(wsEvent{Type: "ack", Action: m.Action, Session: view})
		}

		logger.Info("ws client disconnected")
	}
}
