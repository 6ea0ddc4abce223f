package http

import (
	"context"

	"github.com/wandering-tales/wandering-tales/internal/core/usecases"
)

// Pinger is a backing service the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ChangeFeed delivers published change events to WebSocket clients.
type ChangeFeed interface {
	Subscribe(subject string, fn func(data []byte)) (func(), error)
	Connected() bool
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Travels  *usecases.TravelService
	Media    *usecases.MediaService
	Fixtures []usecases.SeedTravel
	Feed     ChangeFeed
	DB       Pinger
	Cache    Pinger

	// AdminToken protects /v1/admin when set.
	AdminToken string
}
