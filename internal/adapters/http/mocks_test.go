package http_test

import (
	"context"
	"io"
	"time"

	"github.com/wandering-tales/wandering-tales/internal/core/domain"
	"github.com/wandering-tales/wandering-tales/internal/core/ports"
)

// ---- Mock repositories ----

type mockTravelRepo struct {
	createFn        func(ctx context.Context, t *domain.Travel) error
	getByIDFn       func(ctx context.Context, id string) (*domain.Travel, error)
	listPublishedFn func(ctx context.Context, from, to string) ([]domain.Travel, error)
	updateFn        func(ctx context.Context, id string, patch ports.TravelPatch) (*domain.Travel, error)
	deleteFn        func(ctx context.Context, id string) error
	deleteAllFn     func(ctx context.Context) ([]string, []domain.Media, error)
}

func (m *mockTravelRepo) Create(ctx context.Context, t *domain.Travel) error {
	if m.createFn != nil {
		return m.createFn(ctx, t)
	}
	return nil
}
func (m *mockTravelRepo) GetByID(ctx context.Context, id string) (*domain.Travel, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockTravelRepo) ListPublished(ctx context.Context, from, to string) ([]domain.Travel, error) {
	if m.listPublishedFn != nil {
		return m.listPublishedFn(ctx, from, to)
	}
	return nil, nil
}
func (m *mockTravelRepo) Update(ctx context.Context, id string, patch ports.TravelPatch) (*domain.Travel, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return nil, domain.ErrNotFound
}
func (m *mockTravelRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}
func (m *mockTravelRepo) DeleteAll(ctx context.Context) ([]string, []domain.Media, error) {
	if m.deleteAllFn != nil {
		return m.deleteAllFn(ctx)
	}
	return nil, nil, nil
}

type mockMediaRepo struct {
	createFn       func(ctx context.Context, m *domain.Media) error
	listByTravelFn func(ctx context.Context, travelID string) ([]domain.Media, error)
}

func (m *mockMediaRepo) Create(ctx context.Context, md *domain.Media) error {
	if m.createFn != nil {
		return m.createFn(ctx, md)
	}
	return nil
}
func (m *mockMediaRepo) GetByID(ctx context.Context, id string) (*domain.Media, error) {
	return nil, domain.ErrNotFound
}
func (m *mockMediaRepo) ListByTravel(ctx context.Context, travelID string) ([]domain.Media, error) {
	if m.listByTravelFn != nil {
		return m.listByTravelFn(ctx, travelID)
	}
	return nil, nil
}
func (m *mockMediaRepo) Update(ctx context.Context, id string, patch ports.MediaPatch) (*domain.Media, error) {
	return nil, domain.ErrNotFound
}
func (m *mockMediaRepo) Delete(ctx context.Context, id string) error { return nil }
func (m *mockMediaRepo) DeleteByTravel(ctx context.Context, travelID string) ([]domain.Media, error) {
	return nil, nil
}

// ---- Mock blob store and signer ----

type mockBlobStore struct {
	putFn func(ctx context.Context, contentType string, r io.Reader) (string, error)
	blobs map[string]*ports.Blob
}

func (m *mockBlobStore) Put(ctx context.Context, contentType string, r io.Reader) (string, error) {
	if m.putFn != nil {
		return m.putFn(ctx, contentType, r)
	}
	return "blob-1", nil
}
func (m *mockBlobStore) Get(ctx context.Context, id string) (*ports.Blob, error) {
	if b, ok := m.blobs[id]; ok {
		return b, nil
	}
	return nil, domain.ErrNotFound
}
func (m *mockBlobStore) Stat(ctx context.Context, id string) (*ports.Blob, error) {
	return m.Get(ctx, id)
}
func (m *mockBlobStore) Delete(ctx context.Context, id string) error { return nil }

type mockSigner struct {
	verifyFn func(token string) error
}

func (m *mockSigner) Sign(ttl time.Duration) (string, time.Time, error) {
	return "signed-token", time.Date(2024, 3, 15, 7, 0, 0, 0, time.UTC), nil
}
func (m *mockSigner) Verify(token string) error {
	if m.verifyFn != nil {
		return m.verifyFn(token)
	}
	return nil
}

// ---- Probes and feed ----

type mockPinger struct{ err error }

func (m mockPinger) Ping(ctx context.Context) error { return m.err }

type mockFeed struct{ connected bool }

func (m mockFeed) Subscribe(subject string, fn func([]byte)) (func(), error) {
	return func() {}, nil
}
func (m mockFeed) Connected() bool { return m.connected }
