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
	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"

	"github.com/wandering-tales/wandering-tales/internal/adapters/blobstore"
	"github.com/wandering-tales/wandering-tales/internal/adapters/http"
	natsadapter "github.com/wandering-tales/wandering-tales/internal/adapters/nats"
	"github.com/wandering-tales/wandering-tales/internal/adapters/postgres"
	"github.com/wandering-tales/wandering-tales/internal/adapters/valkey"
	"github.com/wandering-tales/wandering-tales/internal/core/ports"
	"github.com/wandering-tales/wandering-tales/internal/core/usecases"
	"github.com/wandering-tales/wandering-tales/internal/pkg/config"
	"github.com/wandering-tales/wandering-tales/internal/pkg/fixtures"
	"github.com/wandering-tales/wandering-tales/internal/pkg/logging"
	"github.com/wandering-tales/wandering-tales/internal/pkg/metrics"
	"github.com/wandering-tales/wandering-tales/internal/pkg/telemetry"
	"github.com/wandering-tales/wandering-tales/internal/workflows"
)

func main() {
	cfg, err := config.Load("wander-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go reportPoolStats(ctx, db)

	// Cache
	var cache ports.CacheService
	var cachePing http.Pinger
	if c, err := valkey.New(valkey.Options{
		Addr:     cfg.Valkey.Addr,
		Password: cfg.Valkey.Password,
		DB:       cfg.Valkey.DB,
		Prefix:   cfg.Valkey.Prefix,
	}); err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer c.Close()
		cache, cachePing = c, c
	}

	// NATS: change events and the WebSocket relay
	var events ports.EventPublisher
	var feed http.ChangeFeed
	if nc, err := natsadapter.Connect(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer nc.Close()
		feed = natsadapter.NewFeed(nc)
		if pub, err := natsadapter.NewPublisher(nc); err != nil {
			slog.Warn("jetstream unavailable, change events disabled", "error", err)
		} else {
			events = pub
		}
	}

	// Blob storage
	blobs, err := blobstore.Open(cfg.Storage.Dir, cfg.Storage.MaxUploadBytes())
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}
	defer blobs.Close()
	signer, err := blobstore.NewSigner(cfg.Uploads.Secret, cfg.Uploads.Issuer)
	if err != nil {
		log.Fatalf("upload signer: %v", err)
	}

	// Blob purging: Temporal when enabled, inline otherwise
	var purge ports.PurgeScheduler = &workflows.DirectPurger{Blobs: blobs}
	if cfg.Temporal.Enabled {
		tc, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
			Logger:    tlog.NewStructuredLogger(slog.Default()),
		})
		if err != nil {
			slog.Warn("temporal unavailable, purging inline", "error", err)
		} else {
			defer tc.Close()
			w := workflows.NewWorker(tc, cfg.Temporal.TaskQueue, &workflows.PurgeActivities{Blobs: blobs})
			if err := w.Start(); err != nil {
				log.Fatalf("temporal worker: %v", err)
			}
			defer w.Stop()
			purge = workflows.NewTemporalScheduler(tc, cfg.Temporal.TaskQueue)
			slog.Info("media purge worker started", "task_queue", cfg.Temporal.TaskQueue)
		}
	}

	seed, err := fixtures.Default()
	if err != nil {
		log.Fatalf("fixtures: %v", err)
	}

	// Repos and use cases
	travelRepo := postgres.NewTravelRepo(db)
	mediaRepo := postgres.NewMediaRepo(db)

	deps := &http.Dependencies{
		Travels:    usecases.NewTravelService(travelRepo, mediaRepo, cache, events, purge),
		Media:      usecases.NewMediaService(mediaRepo, blobs, signer, cache, events, purge, cfg.Uploads.TTL),
		Fixtures:   seed,
		Feed:       feed,
		DB:         db,
		Cache:      cachePing,
		AdminToken: cfg.Server.AdminToken,
	}
	if cfg.Server.OpenAPIPath != "" {
		http.OpenAPIPath = cfg.Server.OpenAPIPath
	}
	if cfg.Server.AdminToken == "" {
		slog.Warn("admin routes are unprotected, set server.admin_token")
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    int(cfg.Storage.MaxUploadBytes()) + 1024,
		AppName:      "Wandering Tales API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "version", http.Version)
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
		metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
