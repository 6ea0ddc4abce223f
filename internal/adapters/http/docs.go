package http

import (
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
)

// OpenAPIPath is the OpenAPI document served at /docs/openapi.yaml,
// relative to the working directory.
var OpenAPIPath = "api/openapi.yaml"

const swaggerUIVersion = "5"

func swaggerPage(title, specURL string) string {
	cdn := "https://cdn.jsdelivr.net/npm/swagger-ui-dist@" + swaggerUIVersion
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>%s</title>
  <link rel="stylesheet" href="%s/swagger-ui.css">
</head>
<body style="margin:0">
  <div id="swagger-ui"></div>
  <script src="%s/swagger-ui-bundle.js"></script>
  <script>SwaggerUIBundle({url: %q, dom_id: '#swagger-ui', deepLinking: true});</script>
</body>
</html>`, title, cdn, cdn, specURL)
}

// SetupDocs serves Swagger UI for the journal API at /docs.
func SetupDocs(app *fiber.App) {
	page := swaggerPage("Wandering Tales API", "/docs/openapi.yaml")
	app.Get("/docs", func(c *fiber.Ctx) error {
		c.Type("html", "utf-8")
		return c.SendString(page)
	})

	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		if _, err := os.Stat(OpenAPIPath); err != nil {
			return errNotFound(c, "openapi document not found")
		}
		return c.SendFile(OpenAPIPath)
	})
}
