//go:build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wandering-tales/wandering-tales/internal/adapters/blobstore"
	handler "github.com/wandering-tales/wandering-tales/internal/adapters/http"
	"github.com/wandering-tales/wandering-tales/internal/adapters/postgres"
	"github.com/wandering-tales/wandering-tales/internal/core/domain"
	"github.com/wandering-tales/wandering-tales/internal/core/usecases"
	"github.com/wandering-tales/wandering-tales/internal/pkg/config"
	"github.com/wandering-tales/wandering-tales/internal/pkg/fixtures"
	"github.com/wandering-tales/wandering-tales/internal/workflows"
)

// setupIntegrationApp connects to the configured database, migrates it,
// clears it and wires real repositories with an in-memory blob store.
func setupIntegrationApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg, err := config.Load("wander-integration-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), 5)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)
	if _, err := db.MigrateUp(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	blobs, err := blobstore.Open("", 1<<20)
	if err != nil {
		t.Fatalf("open blob store: %v", err)
	}
	t.Cleanup(func() { _ = blobs.Close() })
	signer, err := blobstore.NewSigner("integration-secret", "wandering-tales")
	if err != nil {
		t.Fatal(err)
	}

	seed, err := fixtures.Default()
	if err != nil {
		t.Fatalf("fixtures: %v", err)
	}

	travelRepo := postgres.NewTravelRepo(db)
	mediaRepo := postgres.NewMediaRepo(db)
	purge := &workflows.DirectPurger{Blobs: blobs}
	travels := usecases.NewTravelService(travelRepo, mediaRepo, nil, nil, purge)
	if _, err := travels.ClearAll(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, &handler.Dependencies{
		Travels:  travels,
		Media:    usecases.NewMediaService(mediaRepo, blobs, signer, nil, nil, purge, time.Minute),
		Fixtures: seed,
		DB:       db,
	})
	return app
}

func decode(t *testing.T, app *fiber.App, method, target, contentType, body string, want int, out interface{}) {
	t.Helper()
	var req = httptest.NewRequest(method, target, nil)
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	if resp.StatusCode != want {
		t.Fatalf("%s %s: expected %d, got %d: %s", method, target, want, resp.StatusCode, readBody(t, resp.Body))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", target, err)
		}
	}
}

func TestJournalFlow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	app := setupIntegrationApp(t)

	var seeded struct {
		Count   int `json:"count"`
		Travels []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"travels"`
	}
	decode(t, app, "POST", "/v1/admin/seed", "", "", 201, &seeded)
	if seeded.Count != 7 {
		t.Fatalf("expected 7 seeded travels, got %d", seeded.Count)
	}

	var list struct {
		Data []domain.Travel `json:"data"`
	}
	decode(t, app, "GET", "/v1/travels", "", "", 200, &list)
	if len(list.Data) != 7 {
		t.Fatalf("expected 7 published travels, got %d", len(list.Data))
	}
	for i := 1; i < len(list.Data); i++ {
		if list.Data[i-1].VisitDate > list.Data[i].VisitDate {
			t.Errorf("travels not ordered by visit date: %s before %s", list.Data[i-1].VisitDate, list.Data[i].VisitDate)
		}
	}

	id := seeded.Travels[0].ID
	var detail domain.TravelDetail
	decode(t, app, "GET", "/v1/travels/"+id, "", "", 200, &detail)
	if !detail.HasMedia() || !strings.HasPrefix(detail.Media[0].URL, "https://") {
		t.Fatalf("seeded photos should be external urls: %+v", detail.Media)
	}

	var ticket usecases.UploadTicket
	decode(t, app, "POST", "/v1/uploads", "", "", 201, &ticket)
	var uploaded struct {
		StorageID string `json:"storage_id"`
	}
	decode(t, app, "PUT", ticket.URL, "image/jpeg", "jpeg-bytes", 201, &uploaded)

	body := `{"travel_id":"` + id + `","type":"photo","storage_id":"` + uploaded.StorageID + `","caption":"Extra","order_index":99}`
	decode(t, app, "POST", "/v1/media", "application/json", body, 201, nil)

	decode(t, app, "GET", "/v1/travels/"+id, "", "", 200, &detail)
	last := detail.Media[len(detail.Media)-1]
	if last.URL != "/v1/files/"+uploaded.StorageID || last.Caption != "Extra" {
		t.Errorf("uploaded photo not last or unresolved: %+v", last)
	}
	decode(t, app, "GET", last.URL, "", "", 200, nil)

	decode(t, app, "DELETE", "/v1/travels/"+id, "", "", 204, nil)
	decode(t, app, "GET", "/v1/travels/"+id, "", "", 404, nil)
	decode(t, app, "GET", "/v1/files/"+uploaded.StorageID, "", "", 404, nil)

	var cleared struct {
		Count int `json:"count"`
	}
	decode(t, app, "DELETE", "/v1/admin/travels", "", "", 200, &cleared)
	if cleared.Count != 6 {
		t.Errorf("expected 6 travels cleared, got %d", cleared.Count)
	}
}
