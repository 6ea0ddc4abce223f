package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/wandering-tales/wandering-tales/internal/pkg/config"
	"github.com/wandering-tales/wandering-tales/internal/pkg/logging"
	"github.com/wandering-tales/wandering-tales/internal/viewer"
	"github.com/wandering-tales/wandering-tales/internal/viewer/screen"
)

func main() {
	cfg, err := config.Load("wander-viewer")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.Setup(cfg.Log.Level, "text")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := viewer.NewClient(cfg.Viewer.APIURL, cfg.Viewer.RequestTimeout, viewer.WithClientLogger(logger))
	var feed *viewer.Feed
	if cfg.Viewer.WSURL != "" {
		feed = viewer.NewFeed(cfg.Viewer.WSURL, logger)
	}

	app := viewer.NewApp(viewer.AppConfig{
		Width:  cfg.Viewer.Width,
		Height: cfg.Viewer.Height,
		API:    client,
		Feed:   feed,
		Logger: logger,
	})
	app.Start(ctx)
	defer app.Close()

	ebiten.SetWindowSize(cfg.Viewer.Width, cfg.Viewer.Height)
	ebiten.SetWindowTitle("Wandering Tales")
	slog.Info("viewer starting", "api", cfg.Viewer.APIURL)
	if err := ebiten.RunGame(screen.New(ctx, app, cfg.Viewer.Width, cfg.Viewer.Height)); err != nil {
		log.Fatalf("viewer: %v", err)
	}
}
