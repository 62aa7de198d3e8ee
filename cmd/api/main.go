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
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/trackmap/internal/adapters/http"
	natsadapter "github.com/samirrijal/trackmap/internal/adapters/nats"
	"github.com/samirrijal/trackmap/internal/adapters/postgres"
	"github.com/samirrijal/trackmap/internal/adapters/valkey"
	"github.com/samirrijal/trackmap/internal/bootstrap"
	"github.com/samirrijal/trackmap/internal/core/ports"
	"github.com/samirrijal/trackmap/internal/core/usecases"
	"github.com/samirrijal/trackmap/internal/pkg/config"
	"github.com/samirrijal/trackmap/internal/pkg/logging"
	"github.com/samirrijal/trackmap/internal/pkg/metrics"
	"github.com/samirrijal/trackmap/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("trackmap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

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
	if vc, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.Prefix); err != nil {
		slog.Warn("valkey unavailable, caching disabled", "error", err)
	} else {
		defer vc.Close()
		cache = vc
		deps.Cache = vc
	}

	// NATS
	var publisher ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, events and batches disabled", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
		deps.Publisher = pub
	}

	// Raw NATS connection for WebSocket relay
	if nc, err := natsadapter.RawConn(cfg.NATS.URL); err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer nc.Close()
		deps.NATS = nc
	}

	// Database is optional: rendering works without it.
	if db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns); err != nil {
		slog.Warn("database unavailable, track storage disabled", "error", err)
	} else {
		defer db.Close()
		deps.DB = db
		deps.Tracks = usecases.NewTrackService(postgres.NewTrackRepo(db), cache)
		go reportPoolStats(ctx, db)
	}

	// Use cases
	deps.Render, err = bootstrap.RenderService(cfg, publisher, cache)
	if err != nil {
		log.Fatalf("render service: %v", err)
	}
	deps.Storms, err = bootstrap.StormService(cfg, cache)
	if err != nil {
		log.Fatalf("storm service: %v", err)
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit * 1024 * 1024,
		AppName:      "Trackmap API",
	})
	app.Use(recover.New())

	http.SetupRoutes(app, deps, http.RouteOptions{
		RateLimit:     cfg.Server.RateLimit,
		RenderTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		SpecPath:      http.DefaultSpecPath,
	})

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "basin", cfg.Render.Basin)
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

	slog.Info("server stopped")
}

func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		}
	}
}
