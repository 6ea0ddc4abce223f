package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/wandering-tales/wandering-tales/internal/adapters/blobstore"
	"github.com/wandering-tales/wandering-tales/internal/adapters/postgres"
	"github.com/wandering-tales/wandering-tales/internal/core/usecases"
	"github.com/wandering-tales/wandering-tales/internal/pkg/config"
	"github.com/wandering-tales/wandering-tales/internal/pkg/fixtures"
	"github.com/wandering-tales/wandering-tales/internal/pkg/logging"
	"github.com/wandering-tales/wandering-tales/internal/workflows"
)

func main() {
	file := flag.String("file", "", "YAML fixture file (default: built-in sample travels)")
	reset := flag.Bool("clear", false, "remove every travel before seeding")
	clearOnly := flag.Bool("clear-only", false, "remove every travel and exit")
	flag.Parse()

	cfg, err := config.Load("wander-seed")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, "text")

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN(), 4)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Uploaded files of cleared travels are purged from the local store.
	blobs, err := blobstore.Open(cfg.Storage.Dir, cfg.Storage.MaxUploadBytes())
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}
	defer blobs.Close()

	svc := usecases.NewTravelService(
		postgres.NewTravelRepo(db),
		postgres.NewMediaRepo(db),
		nil, nil,
		&workflows.DirectPurger{Blobs: blobs},
	)

	if *reset || *clearOnly {
		n, err := svc.ClearAll(ctx)
		if err != nil {
			log.Fatalf("clear: %v", err)
		}
		slog.Info("travels cleared", "count", n)
		if *clearOnly {
			return
		}
	}

	travels, err := fixtures.LoadFile(*file)
	if err != nil {
		log.Fatalf("fixtures: %v", err)
	}
	res, err := svc.Seed(ctx, travels)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	for _, t := range res.Travels {
		fmt.Printf("OK  %-28s %s (%d photos)\n", t.Title, t.ID, t.PhotoCount)
	}
	log.Printf("%d travels seeded", res.Count)
}
