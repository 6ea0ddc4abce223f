package usecases_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/wandering-tales/wandering-tales/internal/core/domain"
	"github.com/wandering-tales/wandering-tales/internal/core/ports"
)

// --- Mock TravelRepository ---

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
	return &domain.Travel{ID: id}, nil
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

// --- Mock MediaRepository ---

type mockMediaRepo struct {
	createFn         func(ctx context.Context, m *domain.Media) error
	getByIDFn        func(ctx context.Context, id string) (*domain.Media, error)
	listByTravelFn   func(ctx context.Context, travelID string) ([]domain.Media, error)
	updateFn         func(ctx context.Context, id string, patch ports.MediaPatch) (*domain.Media, error)
	deleteFn         func(ctx context.Context, id string) error
	deleteByTravelFn func(ctx context.Context, travelID string) ([]domain.Media, error)
}

func (m *mockMediaRepo) Create(ctx context.Context, md *domain.Media) error {
	if m.createFn != nil {
		return m.createFn(ctx, md)
	}
	return nil
}

func (m *mockMediaRepo) GetByID(ctx context.Context, id string) (*domain.Media, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockMediaRepo) ListByTravel(ctx context.Context, travelID string) ([]domain.Media, error) {
	if m.listByTravelFn != nil {
		return m.listByTravelFn(ctx, travelID)
	}
	return nil, nil
}

func (m *mockMediaRepo) Update(ctx context.Context, id string, patch ports.MediaPatch) (*domain.Media, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return &domain.Media{ID: id}, nil
}

func (m *mockMediaRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockMediaRepo) DeleteByTravel(ctx context.Context, travelID string) ([]domain.Media, error) {
	if m.deleteByTravelFn != nil {
		return m.deleteByTravelFn(ctx, travelID)
	}
	return nil, nil
}

// --- In-memory cache ---

type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	return nil
}

// --- Recording publisher and purge scheduler ---

type recordingPublisher struct {
	travel []domain.ChangeEvent
	media  []domain.ChangeEvent
}

func (p *recordingPublisher) PublishTravelChange(ctx context.Context, ev domain.ChangeEvent) error {
	p.travel = append(p.travel, ev)
	return nil
}

func (p *recordingPublisher) PublishMediaChange(ctx context.Context, ev domain.ChangeEvent) error {
	p.media = append(p.media, ev)
	return nil
}

type recordingPurge struct {
	ids [][]string
}

func (p *recordingPurge) SchedulePurge(ctx context.Context, ids []string) error {
	p.ids = append(p.ids, ids)
	return nil
}

// --- Mock BlobStore and UploadSigner ---

type mockBlobStore struct {
	putFn  func(ctx context.Context, contentType string, r io.Reader) (string, error)
	getFn  func(ctx context.Context, id string) (*ports.Blob, error)
	statFn func(ctx context.Context, id string) (*ports.Blob, error)
}

func (m *mockBlobStore) Put(ctx context.Context, contentType string, r io.Reader) (string, error) {
	if m.putFn != nil {
		return m.putFn(ctx, contentType, r)
	}
	return "blob-1", nil
}

func (m *mockBlobStore) Get(ctx context.Context, id string) (*ports.Blob, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockBlobStore) Stat(ctx context.Context, id string) (*ports.Blob, error) {
	if m.statFn != nil {
		return m.statFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockBlobStore) Delete(ctx context.Context, id string) error { return nil }

type mockSigner struct {
	signFn   func(ttl time.Duration) (string, time.Time, error)
	verifyFn func(token string) error
}

func (m *mockSigner) Sign(ttl time.Duration) (string, time.Time, error) {
	if m.signFn != nil {
		return m.signFn(ttl)
	}
	return "tok", time.Now().Add(ttl), nil
}

func (m *mockSigner) Verify(token string) error {
	if m.verifyFn != nil {
		return m.verifyFn(token)
	}
	return nil
}
