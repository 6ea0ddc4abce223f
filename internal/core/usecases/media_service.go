package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wandering-tales/wandering-tales/internal/core/domain"
	"github.com/wandering-tales/wandering-tales/internal/core/ports"
	"github.com/wandering-tales/wandering-tales/internal/pkg/metrics"
)

const keyMediaPrefix = "media:travel:"

// UploadPathPrefix is where signed upload URLs point.
const UploadPathPrefix = "/v1/uploads/"

// SaveMediaInput is the metadata of an uploaded file.
type SaveMediaInput struct {
	TravelID           string                `json:"travel_id" validate:"required"`
	Type               domain.MediaType      `json:"type" validate:"required,oneof=photo video audio"`
	StorageID          string                `json:"storage_id" validate:"required"`
	ThumbnailStorageID string                `json:"thumbnail_storage_id,omitempty"`
	Caption            string                `json:"caption,omitempty"`
	OrderIndex         int                   `json:"order_index" validate:"gte=0"`
	Metadata           *domain.MediaMetadata `json:"metadata,omitempty"`
}

// UploadTicket is a signed, expiring upload URL.
type UploadTicket struct {
	URL       string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MediaService handles media metadata and files.
type MediaService struct {
	media     ports.MediaRepository
	blobs     ports.BlobStore
	signer    ports.UploadSigner
	cache     ports.CacheService
	events    ports.EventPublisher
	purge     ports.PurgeScheduler
	uploadTTL time.Duration
	now       func() time.Time
}

// NewMediaService creates a new MediaService. cache, events and purge may be nil.
func NewMediaService(
	media ports.MediaRepository,
	blobs ports.BlobStore,
	signer ports.UploadSigner,
	cache ports.CacheService,
	events ports.EventPublisher,
	purge ports.PurgeScheduler,
	uploadTTL time.Duration,
) *MediaService {
	if uploadTTL <= 0 {
		uploadTTL = time.Hour
	}
	return &MediaService{
		media:     media,
		blobs:     blobs,
		signer:    signer,
		cache:     cache,
		events:    events,
		purge:     purge,
		uploadTTL: uploadTTL,
		now:       time.Now,
	}
}

// GenerateUploadURL returns a URL a client can PUT one file to.
func (s *MediaService) GenerateUploadURL(ctx context.Context) (*UploadTicket, error) {
	_, span := tracer.Start(ctx, "MediaService.GenerateUploadURL")
	defer span.End()

	token, exp, err := s.signer.Sign(s.uploadTTL)
	if err != nil {
		return nil, fail(span, fmt.Errorf("sign upload token: %w", err))
	}
	return &UploadTicket{URL: UploadPathPrefix + token, ExpiresAt: exp}, nil
}

// Upload stores the body sent to a signed upload URL and returns its
// storage id.
func (s *MediaService) Upload(ctx context.Context, token, contentType string, body io.Reader) (string, error) {
	ctx, span := tracer.Start(ctx, "MediaService.Upload")
	defer span.End()

	if err := s.signer.Verify(token); err != nil {
		return "", fmt.Errorf("%w: upload token: %v", domain.ErrInvalidInput, err)
	}
	id, err := s.blobs.Put(ctx, contentType, body)
	if err != nil {
		return "", fail(span, fmt.Errorf("store upload: %w", err))
	}
	span.SetAttributes(attribute.String("storage.id", id))
	return id, nil
}

// Save records the metadata of an uploaded file.
func (s *MediaService) Save(ctx context.Context, in SaveMediaInput) (*domain.Media, error) {
	ctx, span := tracer.Start(ctx, "MediaService.Save", trace.WithAttributes(attribute.String("travel.id", in.TravelID)))
	defer span.End()

	if err := validateInput(in); err != nil {
		return nil, err
	}
	m := &domain.Media{
		ID:                 uuid.NewString(),
		TravelID:           in.TravelID,
		Type:               in.Type,
		StorageID:          in.StorageID,
		ThumbnailStorageID: in.ThumbnailStorageID,
		Caption:            in.Caption,
		OrderIndex:         in.OrderIndex,
		Metadata:           in.Metadata,
		CreatedAt:          s.now().UTC(),
	}
	if err := s.media.Create(ctx, m); err != nil {
		return nil, fail(span, fmt.Errorf("save media: %w", err))
	}

	s.invalidate(ctx, m.TravelID)
	s.publish(ctx, domain.OpCreated, m)
	return m, nil
}

// URL resolves a storage id to a URL. Stored blobs must exist.
func (s *MediaService) URL(ctx context.Context, storageID string) (string, error) {
	url := domain.ResolveStorageURL(storageID)
	if url == "" {
		return "", fmt.Errorf("%w: storage id is required", domain.ErrInvalidInput)
	}
	if url == storageID {
		return url, nil
	}
	if _, err := s.blobs.Stat(ctx, storageID); err != nil {
		return "", fmt.Errorf("stat %s: %w", storageID, err)
	}
	return url, nil
}

// File returns a stored blob.
func (s *MediaService) File(ctx context.Context, storageID string) (*ports.Blob, error) {
	ctx, span := tracer.Start(ctx, "MediaService.File", trace.WithAttributes(attribute.String("storage.id", storageID)))
	defer span.End()

	b, err := s.blobs.Get(ctx, storageID)
	if err != nil {
		return nil, fail(span, fmt.Errorf("get blob %s: %w", storageID, err))
	}
	return b, nil
}

// ListByTravel returns the media of a travel ordered by OrderIndex.
func (s *MediaService) ListByTravel(ctx context.Context, travelID string) ([]domain.Media, error) {
	ctx, span := tracer.Start(ctx, "MediaService.ListByTravel", trace.WithAttributes(attribute.String("travel.id", travelID)))
	defer span.End()

	cacheKey := keyMediaPrefix + travelID
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var media []domain.Media
			if err := json.Unmarshal(data, &media); err == nil {
				metrics.CacheHits.WithLabelValues("travel_media").Inc()
				return media, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("travel_media").Inc()
	}

	media, err := s.media.ListByTravel(ctx, travelID)
	if err != nil {
		return nil, fail(span, fmt.Errorf("list media of %s: %w", travelID, err))
	}
	sort.SliceStable(media, func(i, j int) bool { return media[i].OrderIndex < media[j].OrderIndex })

	if s.cache != nil {
		if data, err := json.Marshal(media); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, ttlTravel)
		}
	}
	return media, nil
}

// Update changes the caption and/or order index of a media item.
func (s *MediaService) Update(ctx context.Context, id string, patch ports.MediaPatch) (*domain.Media, error) {
	ctx, span := tracer.Start(ctx, "MediaService.Update", trace.WithAttributes(attribute.String("media.id", id)))
	defer span.End()

	if err := validateInput(patch); err != nil {
		return nil, err
	}
	m, err := s.media.Update(ctx, id, patch)
	if err != nil {
		return nil, fail(span, fmt.Errorf("update media %s: %w", id, err))
	}

	s.invalidate(ctx, m.TravelID)
	s.publish(ctx, domain.OpUpdated, m)
	return m, nil
}

// Delete removes a media item and purges its files. Deleting a missing item
// is not an error.
func (s *MediaService) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "MediaService.Delete", trace.WithAttributes(attribute.String("media.id", id)))
	defer span.End()

	m, err := s.media.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && m == nil) {
		return nil
	}
	if err != nil {
		return fail(span, fmt.Errorf("get media %s: %w", id, err))
	}
	if err := s.media.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fail(span, fmt.Errorf("delete media %s: %w", id, err))
	}

	schedulePurge(ctx, s.purge, []domain.Media{*m})
	s.invalidate(ctx, m.TravelID)
	s.publish(ctx, domain.OpDeleted, m)
	return nil
}

// invalidate drops every cache entry that embeds the media of travelID.
func (s *MediaService) invalidate(ctx context.Context, travelID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, keyMediaPrefix+travelID)
	_ = s.cache.Delete(ctx, keyTravelPrefix+travelID)
}

func (s *MediaService) publish(ctx context.Context, op domain.ChangeOp, m *domain.Media) {
	metrics.MediaMutations.WithLabelValues(string(op)).Inc()
	if s.events == nil {
		return
	}
	ev := domain.ChangeEvent{Entity: domain.EntityMedia, Op: op, ID: m.ID, TravelID: m.TravelID, Timestamp: s.now().UTC()}
	if err := s.events.PublishMediaChange(ctx, ev); err != nil {
		slog.WarnContext(ctx, "publish media change failed", "op", op, "media_id", m.ID, "error", err)
	}
}
