package http

import (
	"crypto/subtle"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/wandering-tales/wandering-tales/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// No timeout on probes
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	v1.Get("/travels", withTimeout(ListTravelsHandler(deps)))
	v1.Get("/travels/range", withTimeout(TravelsByDateRangeHandler(deps)))
	v1.Get("/travels/:id", withTimeout(GetTravelHandler(deps)))
	v1.Post("/travels", withTimeout(CreateTravelHandler(deps)))
	v1.Patch("/travels/:id", withTimeout(UpdateTravelHandler(deps)))
	v1.Delete("/travels/:id", withTimeout(DeleteTravelHandler(deps)))
	v1.Get("/travels/:id/media", withTimeout(TravelMediaHandler(deps)))

	v1.Post("/media", withTimeout(SaveMediaHandler(deps)))
	v1.Patch("/media/:id", withTimeout(UpdateMediaHandler(deps)))
	v1.Delete("/media/:id", withTimeout(DeleteMediaHandler(deps)))

	v1.Post("/uploads", withTimeout(UploadURLHandler(deps)))
	v1.Put("/uploads/:token", withTimeout(UploadHandler(deps)))
	v1.Get("/files/:storageId", withTimeout(FileHandler(deps)))

	admin := v1.Group("/admin")
	if deps.AdminToken != "" {
		admin.Use(adminAuth(deps.AdminToken))
	}
	admin.Post("/seed", withTimeout(SeedHandler(deps)))
	admin.Delete("/travels", withTimeout(ClearHandler(deps)))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.Feed)))
}

func withTimeout(h fiber.Handler) fiber.Handler {
	return timeout.NewWithContext(h, requestTimeout)
}

// adminAuth requires "Authorization: Bearer <token>".
func adminAuth(token string) fiber.Handler {
	return keyauth.New(keyauth.Config{
		Validator: func(c *fiber.Ctx, key string) (bool, error) {
			if subtle.ConstantTimeCompare([]byte(key), []byte(token)) == 1 {
				return true, nil
			}
			return false, keyauth.ErrMissingOrMalformedAPIKey
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return errUnauthorized(c, "missing or invalid admin token")
		},
	})
}
