package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/geogrid/internal/adapters/headless"
	"github.com/samirrijal/geogrid/internal/adapters/http"
	"github.com/samirrijal/geogrid/internal/adapters/memstore"
	natsadapter "github.com/samirrijal/geogrid/internal/adapters/nats"
	"github.com/samirrijal/geogrid/internal/adapters/valkey"
	"github.com/samirrijal/geogrid/internal/core/domain"
	"github.com/samirrijal/geogrid/internal/core/ports"
	"github.com/samirrijal/geogrid/internal/core/usecases"
	"github.com/samirrijal/geogrid/internal/pkg/config"
	"github.com/samirrijal/geogrid/internal/pkg/logging"
	"github.com/samirrijal/geogrid/internal/pkg/metrics"
	"github.com/samirrijal/geogrid/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("geogrid-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logs := logging.Setup(cfg.Log.Level, cfg.Log.Format, logging.FileOptions{
		Filename:   cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	defer logs.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	deps := &http.Dependencies{}

	// Cache
	var cache ports.CacheService
	if cfg.Valkey.Enabled {
		vc, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer vc.Close()
			cache = vc
			deps.Cache = vc
		}
	}

	// NATS
	var publisher ports.EventPublisher
	var subscriber *natsadapter.Subscriber
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
			deps.NATS = pub
		}

		subscriber, err = natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats command subscriber unavailable", "error", err)
			subscriber = nil
		} else {
			defer subscriber.Close()
		}
	}

	// Sessions
	store := memstore.New[*usecases.MapSession](cfg.Session.TTL, cfg.Session.Capacity)
	store.Start()
	defer store.Stop()

	gridOpts := usecases.Options{
		BeforeLayerID:  cfg.Grid.BeforeLayerID,
		Style:          domain.LineStyle{Color: cfg.Grid.Color, Width: cfg.Grid.Width},
		ZoomLevelRange: &domain.ZoomRange{Min: cfg.Grid.MinZoom, Max: cfg.Grid.MaxZoom},
		Observers:      []ports.GridObserver{metrics.GridObserver{}},
		Logger:         slog.Default(),
	}
	maps := headless.NewFactory(headless.Config{ProjectionEvents: cfg.Grid.ProjectionEvents})

	deps.Grid = usecases.NewGridService(nil, nil, cache)
	deps.Sessions = usecases.NewSessionService(maps, store, publisher, gridOpts, domain.Size{
		Width:  cfg.Session.Width,
		Height: cfg.Session.Height,
	})

	if subscriber != nil {
		if err := deps.Sessions.ListenForCommands(ctx, subscriber); err != nil {
			slog.Warn("session commands disabled", "error", err)
		}
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024,
		AppName:      "geogrid API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	for _, s := range deps.Sessions.ListSessions(shutdownCtx) {
		if err := deps.Sessions.CloseSession(shutdownCtx, s.ID); err != nil {
			slog.Debug("close session", "session", s.ID, "error", err)
		}
	}

	slog.Info("server stopped")
}
