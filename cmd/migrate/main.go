package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/wandering-tales/wandering-tales/internal/adapters/postgres"
	"github.com/wandering-tales/wandering-tales/internal/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down|status>")
	}

	cfg, err := config.Load("wander-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN(), 2)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		applied, err := db.MigrateUp(ctx)
		if err != nil {
			log.Fatalf("migrate up: %v", err)
		}
		for _, name := range applied {
			fmt.Printf("OK  %s\n", name)
		}
		log.Printf("%d migrations applied", len(applied))
	case "down":
		name, err := db.MigrateDown(ctx)
		if err != nil {
			log.Fatalf("migrate down: %v", err)
		}
		if name == "" {
			log.Println("nothing to roll back")
			return
		}
		fmt.Printf("DOWN  %s\n", name)
	case "status":
		migrations, err := postgres.Migrations()
		if err != nil {
			log.Fatalf("list migrations: %v", err)
		}
		done, err := db.Applied(ctx)
		if err != nil {
			log.Fatalf("read applied migrations: %v", err)
		}
		for _, m := range migrations {
			state := "pending"
			if done[m.Version] {
				state = "applied"
			}
			fmt.Printf("%-8s %s\n", state, m.Version)
		}
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}
