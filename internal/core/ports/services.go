package ports

import (
	"context"
	"io"
	"time"

	"github.com/wandering-tales/wandering-tales/internal/core/domain"
)

// EventPublisher publishes change events to a message broker.
type EventPublisher interface {
	PublishTravelChange(ctx context.Context, ev domain.ChangeEvent) error
	PublishMediaChange(ctx context.Context, ev domain.ChangeEvent) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// Blob is a stored file.
type Blob struct {
	StorageID   string
	ContentType string
	Size        int64
	Data        []byte
}

// BlobStore keeps uploaded media files. Missing blobs are reported as
// domain.ErrNotFound.
type BlobStore interface {
	Put(ctx context.Context, contentType string, r io.Reader) (storageID string, err error)
	Get(ctx context.Context, storageID string) (*Blob, error)
	// Stat is Get without the data.
	Stat(ctx context.Context, storageID string) (*Blob, error)
	Delete(ctx context.Context, storageID string) error
}

// UploadSigner issues and checks short-lived upload tokens.
type UploadSigner interface {
	Sign(ttl time.Duration) (token string, expiresAt time.Time, err error)
	Verify(token string) error
}

// PurgeScheduler removes blobs in the background once their metadata is gone.
type PurgeScheduler interface {
	SchedulePurge(ctx context.Context, storageIDs []string) error
}
