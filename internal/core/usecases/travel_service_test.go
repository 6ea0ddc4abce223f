package usecases_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/wandering-tales/wandering-tales/internal/core/domain"
	"github.com/wandering-tales/wandering-tales/internal/core/ports"
	"github.com/wandering-tales/wandering-tales/internal/core/usecases"
)

func tajMahal() *domain.Travel {
	return &domain.Travel{
		ID:          "taj",
		Title:       "Taj Mahal Visit",
		Location:    domain.Location{Lat: 27.1751, Lng: 78.0421, City: "Agra", Country: "India"},
		VisitDate:   "2024-03-15",
		IsPublished: true,
	}
}

func TestTravelService_ListPublished_Cached(t *testing.T) {
	calls := 0
	repo := &mockTravelRepo{
		listPublishedFn: func(ctx context.Context, from, to string) ([]domain.Travel, error) {
			calls++
			if from != "" || to != "" {
				t.Errorf("expected open bounds, got %q..%q", from, to)
			}
			return []domain.Travel{*tajMahal()}, nil
		},
	}
	svc := usecases.NewTravelService(repo, &mockMediaRepo{}, newMemCache(), nil, nil)

	for i := 0; i < 2; i++ {
		travels, err := svc.ListPublished(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(travels) != 1 || travels[0].Title != "Taj Mahal Visit" {
			t.Fatalf("unexpected travels %+v", travels)
		}
	}
	if calls != 1 {
		t.Errorf("expected the second call to hit the cache, repo called %d times", calls)
	}
}

func TestTravelService_ListByDateRange(t *testing.T) {
	var gotFrom, gotTo string
	repo := &mockTravelRepo{
		listPublishedFn: func(ctx context.Context, from, to string) ([]domain.Travel, error) {
			gotFrom, gotTo = from, to
			return nil, nil
		},
	}
	svc := usecases.NewTravelService(repo, &mockMediaRepo{}, nil, nil, nil)

	if _, err := svc.ListByDateRange(context.Background(), "2024-03-01", "2024-04-30"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotFrom != "2024-03-01" || gotTo != "2024-04-30" {
		t.Errorf("bounds not passed through: %q..%q", gotFrom, gotTo)
	}

	_, err := svc.ListByDateRange(context.Background(), "", "2024-04-30")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestTravelService_GetByID_SortsAndResolvesMedia(t *testing.T) {
	repo := &mockTravelRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Travel, error) { return tajMahal(), nil },
	}
	media := &mockMediaRepo{
		listByTravelFn: func(ctx context.Context, travelID string) ([]domain.Media, error) {
			return []domain.Media{
				{ID: "m2", StorageID: "blob-2", OrderIndex: 2, Type: domain.MediaPhoto},
				{ID: "m0", StorageID: "https://images.example.com/0.jpg", OrderIndex: 0, Type: domain.MediaPhoto, Caption: "Golden hour"},
				{ID: "m1", StorageID: "blob-1", ThumbnailStorageID: "thumb-1", OrderIndex: 1, Type: domain.MediaVideo},
			}, nil
		},
	}
	svc := usecases.NewTravelService(repo, media, nil, nil, nil)

	d, err := svc.GetByID(context.Background(), "taj")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var urls []string
	for _, m := range d.Media {
		urls = append(urls, m.URL)
	}
	want := []string{"https://images.example.com/0.jpg", "/v1/files/blob-1", "/v1/files/blob-2"}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("expected %v, got %v", want, urls)
	}
	if d.Media[1].ThumbnailURL != "/v1/files/thumb-1" {
		t.Errorf("unexpected thumbnail url %q", d.Media[1].ThumbnailURL)
	}
	if d.Media[0].Caption != "Golden hour" {
		t.Errorf("caption lost: %+v", d.Media[0])
	}
}

func TestTravelService_GetByID_NotFound(t *testing.T) {
	svc := usecases.NewTravelService(&mockTravelRepo{}, &mockMediaRepo{}, nil, nil, nil)

	_, err := svc.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTravelService_Create(t *testing.T) {
	var stored *domain.Travel
	repo := &mockTravelRepo{
		createFn: func(ctx context.Context, tr *domain.Travel) error {
			stored = tr
			return nil
		},
	}
	cache := newMemCache()
	pub := &recordingPublisher{}
	svc := usecases.NewTravelService(repo, &mockMediaRepo{}, cache, pub, nil)

	tr, err := svc.Create(context.Background(), usecases.CreateTravelInput{
		Title:     "Kerala Backwaters",
		Location:  domain.Location{Lat: 9.4981, Lng: 76.3389},
		VisitDate: "2024-07-12",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored == nil || stored.ID == "" || stored.ID != tr.ID {
		t.Fatalf("expected the travel to be stored with an id, got %+v", stored)
	}
	if tr.CreatedAt.IsZero() {
		t.Error("createdAt should be set")
	}
	if tr.Tags == nil {
		t.Error("tags should default to an empty list")
	}
	if len(pub.travel) != 1 || pub.travel[0].Op != domain.OpCreated || pub.travel[0].ID != tr.ID {
		t.Errorf("expected one created event, got %+v", pub.travel)
	}
}

func TestTravelService_Create_Invalid(t *testing.T) {
	called := false
	repo := &mockTravelRepo{createFn: func(ctx context.Context, tr *domain.Travel) error { called = true; return nil }}
	svc := usecases.NewTravelService(repo, &mockMediaRepo{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), usecases.CreateTravelInput{Description: "no title"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if called {
		t.Error("invalid input must not reach the repository")
	}
}

func TestTravelService_Update_InvalidatesCache(t *testing.T) {
	cache := newMemCache()
	_ = cache.Set(context.Background(), "travels:id:taj", []byte(`{}`), 300)
	_ = cache.Set(context.Background(), "travels:published", []byte(`[]`), 60)

	title := "Taj Mahal at Dawn"
	repo := &mockTravelRepo{
		updateFn: func(ctx context.Context, id string, patch ports.TravelPatch) (*domain.Travel, error) {
			if patch.Title == nil || *patch.Title != title || patch.Description != nil {
				t.Errorf("unexpected patch %+v", patch)
			}
			tr := tajMahal()
			tr.Title = *patch.Title
			return tr, nil
		},
	}
	svc := usecases.NewTravelService(repo, &mockMediaRepo{}, cache, nil, nil)

	tr, err := svc.Update(context.Background(), "taj", ports.TravelPatch{Title: &title})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Title != title {
		t.Errorf("expected updated title, got %q", tr.Title)
	}
	if _, err := cache.Get(context.Background(), "travels:id:taj"); err == nil {
		t.Error("travel cache entry should be invalidated")
	}
	if _, err := cache.Get(context.Background(), "travels:published"); err == nil {
		t.Error("published list should be invalidated")
	}
}

func TestTravelService_Delete_PurgesStoredBlobs(t *testing.T) {
	var deletedTravel string
	repo := &mockTravelRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Travel, error) { return tajMahal(), nil },
		deleteFn: func(ctx context.Context, id string) error {
			deletedTravel = id
			return nil
		},
	}
	media := &mockMediaRepo{
		deleteByTravelFn: func(ctx context.Context, travelID string) ([]domain.Media, error) {
			return []domain.Media{
				{ID: "m1", StorageID: "blob-1", ThumbnailStorageID: "thumb-1"},
				{ID: "m2", StorageID: "https://images.example.com/2.jpg"},
			}, nil
		},
	}
	purge := &recordingPurge{}
	pub := &recordingPublisher{}
	svc := usecases.NewTravelService(repo, media, nil, pub, purge)

	if err := svc.Delete(context.Background(), "taj"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deletedTravel != "taj" {
		t.Errorf("travel row not deleted")
	}
	if len(purge.ids) != 1 || !reflect.DeepEqual(purge.ids[0], []string{"blob-1", "thumb-1"}) {
		t.Errorf("expected purge of [blob-1 thumb-1], got %v", purge.ids)
	}
	if len(pub.travel) != 1 || pub.travel[0].Op != domain.OpDeleted {
		t.Errorf("expected one deleted event, got %+v", pub.travel)
	}
}

func TestTravelService_Delete_NotFound(t *testing.T) {
	svc := usecases.NewTravelService(&mockTravelRepo{}, &mockMediaRepo{}, nil, nil, nil)
	if err := svc.Delete(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTravelService_Seed(t *testing.T) {
	var travels []domain.Travel
	var media []domain.Media
	repo := &mockTravelRepo{createFn: func(ctx context.Context, tr *domain.Travel) error {
		travels = append(travels, *tr)
		return nil
	}}
	mediaRepo := &mockMediaRepo{createFn: func(ctx context.Context, m *domain.Media) error {
		media = append(media, *m)
		return nil
	}}
	svc := usecases.NewTravelService(repo, mediaRepo, nil, nil, nil)

	res, err := svc.Seed(context.Background(), []usecases.SeedTravel{
		{
			Title:       "Varanasi Ghats",
			Location:    domain.Location{Lat: 25.282, Lng: 82.9548},
			VisitDate:   "2024-04-18",
			IsPublished: true,
			Photos: []usecases.SeedPhoto{
				{URL: "https://images.example.com/a.jpg", Caption: "Aarti"},
				{URL: "https://images.example.com/b.jpg", Caption: "Morning"},
			},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Count != 1 || res.Travels[0].PhotoCount != 2 {
		t.Errorf("unexpected result %+v", res)
	}
	if len(media) != 2 {
		t.Fatalf("expected 2 media rows, got %d", len(media))
	}
	if media[1].OrderIndex != 1 || media[1].StorageID != "https://images.example.com/b.jpg" || media[1].TravelID != travels[0].ID {
		t.Errorf("unexpected media row %+v", media[1])
	}
	if media[0].Type != domain.MediaPhoto || media[0].Metadata == nil || media[0].Metadata.FileSize != 0 {
		t.Errorf("unexpected media metadata %+v", media[0])
	}
}

func TestTravelService_ClearAll(t *testing.T) {
	cache := newMemCache()
	_ = cache.Set(context.Background(), "travels:id:goa", []byte(`{}`), 300)
	repo := &mockTravelRepo{deleteAllFn: func(ctx context.Context) ([]string, []domain.Media, error) {
		return []string{"goa", "taj"}, []domain.Media{{ID: "m1", StorageID: "blob-9"}}, nil
	}}
	purge := &recordingPurge{}
	svc := usecases.NewTravelService(repo, &mockMediaRepo{}, cache, nil, purge)

	n, err := svc.ClearAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 travels cleared, got %d", n)
	}
	if _, err := cache.Get(context.Background(), "travels:id:goa"); err == nil {
		t.Error("cleared travel should be evicted from the cache")
	}
	if len(purge.ids) != 1 || purge.ids[0][0] != "blob-9" {
		t.Errorf("expected blob-9 purged, got %v", purge.ids)
	}
}
