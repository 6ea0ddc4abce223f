package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wandering-tales/wandering-tales/internal/core/domain"
	"github.com/wandering-tales/wandering-tales/internal/core/ports"
	"github.com/wandering-tales/wandering-tales/internal/pkg/metrics"
)

var tracer = otel.Tracer("github.com/wandering-tales/wandering-tales/internal/core/usecases")

// Cache keys and lifetimes.
const (
	keyPublished    = "travels:published"
	keyTravelPrefix = "travels:id:"

	ttlPublished = 60  // seconds
	ttlTravel    = 300 // seconds
)

// CreateTravelInput is the payload of a new travel.
type CreateTravelInput struct {
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	Location    domain.Location `json:"location"`
	VisitDate   string          `json:"visit_date" validate:"required"`
	Tags        []string        `json:"tags"`
	IsPublished bool            `json:"is_published"`
}

// TravelService handles travel-related business logic.
type TravelService struct {
	travels ports.TravelRepository
	media   ports.MediaRepository
	cache   ports.CacheService
	events  ports.EventPublisher
	purge   ports.PurgeScheduler
	now     func() time.Time
}

// NewTravelService creates a new TravelService. cache, events and purge may be nil.
func NewTravelService(
	travels ports.TravelRepository,
	media ports.MediaRepository,
	cache ports.CacheService,
	events ports.EventPublisher,
	purge ports.PurgeScheduler,
) *TravelService {
	return &TravelService{
		travels: travels,
		media:   media,
		cache:   cache,
		events:  events,
		purge:   purge,
		now:     time.Now,
	}
}

// ListPublished returns every published travel ordered by visit date.
func (s *TravelService) ListPublished(ctx context.Context) ([]domain.Travel, error) {
	ctx, span := tracer.Start(ctx, "TravelService.ListPublished")
	defer span.End()

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, keyPublished); err == nil {
			var travels []domain.Travel
			if err := json.Unmarshal(data, &travels); err == nil {
				span.SetAttributes(attribute.Bool("cache.hit", true))
				metrics.CacheHits.WithLabelValues("travels_published").Inc()
				return travels, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("travels_published").Inc()
	}

	travels, err := s.travels.ListPublished(ctx, "", "")
	if err != nil {
		return nil, fail(span, fmt.Errorf("list published travels: %w", err))
	}

	if s.cache != nil {
		if data, err := json.Marshal(travels); err == nil {
			_ = s.cache.Set(ctx, keyPublished, data, ttlPublished)
		}
	}
	return travels, nil
}

// ListByDateRange returns published travels visited between start and end,
// both inclusive. Dates compare as ISO strings.
func (s *TravelService) ListByDateRange(ctx context.Context, start, end string) ([]domain.Travel, error) {
	ctx, span := tracer.Start(ctx, "TravelService.ListByDateRange",
		trace.WithAttributes(attribute.String("range.start", start), attribute.String("range.end", end)))
	defer span.End()

	if start == "" || end == "" {
		return nil, fmt.Errorf("%w: start and end dates are required", domain.ErrInvalidInput)
	}
	travels, err := s.travels.ListPublished(ctx, start, end)
	if err != nil {
		return nil, fail(span, fmt.Errorf("list travels by date: %w", err))
	}
	return travels, nil
}

// GetByID returns a travel with its media ordered by OrderIndex.
func (s *TravelService) GetByID(ctx context.Context, id string) (*domain.TravelDetail, error) {
	ctx, span := tracer.Start(ctx, "TravelService.GetByID", trace.WithAttributes(attribute.String("travel.id", id)))
	defer span.End()

	cacheKey := keyTravelPrefix + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var detail domain.TravelDetail
			if err := json.Unmarshal(data, &detail); err == nil {
				span.SetAttributes(attribute.Bool("cache.hit", true))
				metrics.CacheHits.WithLabelValues("travel_detail").Inc()
				return &detail, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("travel_detail").Inc()
	}

	travel, err := s.travels.GetByID(ctx, id)
	if err != nil {
		return nil, fail(span, fmt.Errorf("get travel %s: %w", id, err))
	}
	if travel == nil {
		return nil, domain.ErrNotFound
	}

	media, err := s.media.ListByTravel(ctx, id)
	if err != nil {
		return nil, fail(span, fmt.Errorf("list media of %s: %w", id, err))
	}

	detail := &domain.TravelDetail{Travel: *travel, Media: toMediaItems(media)}

	if s.cache != nil {
		if data, err := json.Marshal(detail); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, ttlTravel)
		}
	}
	return detail, nil
}

// Create stores a new travel.
func (s *TravelService) Create(ctx context.Context, in CreateTravelInput) (*domain.Travel, error) {
	ctx, span := tracer.Start(ctx, "TravelService.Create")
	defer span.End()

	if err := validateInput(in); err != nil {
		return nil, err
	}

	t := &domain.Travel{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		VisitDate:   in.VisitDate,
		CreatedAt:   s.now().UTC(),
		Tags:        in.Tags,
		IsPublished: in.IsPublished,
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if err := s.travels.Create(ctx, t); err != nil {
		return nil, fail(span, fmt.Errorf("create travel: %w", err))
	}

	s.invalidate(ctx, t.ID)
	s.publish(ctx, domain.OpCreated, t.ID)
	return t, nil
}

// Update applies the provided fields of patch to a travel.
func (s *TravelService) Update(ctx context.Context, id string, patch ports.TravelPatch) (*domain.Travel, error) {
	ctx, span := tracer.Start(ctx, "TravelService.Update", trace.WithAttributes(attribute.String("travel.id", id)))
	defer span.End()

	if err := validateInput(patch); err != nil {
		return nil, err
	}
	t, err := s.travels.Update(ctx, id, patch)
	if err != nil {
		return nil, fail(span, fmt.Errorf("update travel %s: %w", id, err))
	}

	s.invalidate(ctx, id)
	s.publish(ctx, domain.OpUpdated, id)
	return t, nil
}

// Delete removes a travel with its media and schedules the purge of the
// media files.
func (s *TravelService) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "TravelService.Delete", trace.WithAttributes(attribute.String("travel.id", id)))
	defer span.End()

	t, err := s.travels.GetByID(ctx, id)
	if err != nil {
		return fail(span, fmt.Errorf("get travel %s: %w", id, err))
	}
	if t == nil {
		return domain.ErrNotFound
	}

	media, err := s.media.DeleteByTravel(ctx, id)
	if err != nil {
		return fail(span, fmt.Errorf("delete media of %s: %w", id, err))
	}
	if err := s.travels.Delete(ctx, id); err != nil {
		return fail(span, fmt.Errorf("delete travel %s: %w", id, err))
	}

	s.schedulePurge(ctx, media)
	s.invalidate(ctx, id)
	s.publish(ctx, domain.OpDeleted, id)
	return nil
}

// SeedResult summarises a Seed call.
type SeedResult struct {
	Count   int          `json:"count"`
	Travels []SeededItem `json:"travels"`
}

// SeededItem is one travel created by Seed.
type SeededItem struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	PhotoCount int    `json:"photo_count"`
}

// Seed inserts the given sample travels and their photos. Photo URLs are
// stored as storage ids and served verbatim.
func (s *TravelService) Seed(ctx context.Context, fixtures []SeedTravel) (*SeedResult, error) {
	ctx, span := tracer.Start(ctx, "TravelService.Seed", trace.WithAttributes(attribute.Int("seed.count", len(fixtures))))
	defer span.End()

	res := &SeedResult{Travels: make([]SeededItem, 0, len(fixtures))}
	for _, f := range fixtures {
		t := f.Travel()
		t.ID = uuid.NewString()
		t.CreatedAt = s.now().UTC()
		if err := s.travels.Create(ctx, &t); err != nil {
			return nil, fail(span, fmt.Errorf("seed travel %q: %w", t.Title, err))
		}
		for i, p := range f.Photos {
			m := &domain.Media{
				ID:         uuid.NewString(),
				TravelID:   t.ID,
				Type:       domain.MediaPhoto,
				StorageID:  p.URL,
				Caption:    p.Caption,
				OrderIndex: i,
				Metadata:   &domain.MediaMetadata{FileSize: 0},
				CreatedAt:  t.CreatedAt,
			}
			if err := s.media.Create(ctx, m); err != nil {
				return nil, fail(span, fmt.Errorf("seed media of %q: %w", t.Title, err))
			}
		}
		res.Travels = append(res.Travels, SeededItem{ID: t.ID, Title: t.Title, PhotoCount: len(f.Photos)})
	}
	res.Count = len(res.Travels)

	s.invalidate(ctx, "")
	s.publish(ctx, domain.OpSeeded, "")
	return res, nil
}

// ClearAll removes every travel and its media. It returns how many travels
// were removed.
func (s *TravelService) ClearAll(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "TravelService.ClearAll")
	defer span.End()

	ids, media, err := s.travels.DeleteAll(ctx)
	if err != nil {
		return 0, fail(span, fmt.Errorf("clear travels: %w", err))
	}

	s.schedulePurge(ctx, media)
	s.invalidate(ctx, "")
	for _, id := range ids {
		s.invalidate(ctx, id)
	}
	s.publish(ctx, domain.OpCleared, "")
	return len(ids), nil
}

func (s *TravelService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, keyPublished)
	if id != "" {
		_ = s.cache.Delete(ctx, keyTravelPrefix+id)
	}
}

func (s *TravelService) publish(ctx context.Context, op domain.ChangeOp, id string) {
	metrics.TravelMutations.WithLabelValues(string(op)).Inc()
	if s.events == nil {
		return
	}
	ev := domain.ChangeEvent{Entity: domain.EntityTravel, Op: op, ID: id, TravelID: id, Timestamp: s.now().UTC()}
	if err := s.events.PublishTravelChange(ctx, ev); err != nil {
		slog.WarnContext(ctx, "publish travel change failed", "op", op, "travel_id", id, "error", err)
	}
}

func (s *TravelService) schedulePurge(ctx context.Context, media []domain.Media) {
	schedulePurge(ctx, s.purge, media)
}

// schedulePurge hands the blob ids of media to the purge scheduler. External
// URLs are skipped, they are not stored here.
func schedulePurge(ctx context.Context, purge ports.PurgeScheduler, media []domain.Media) {
	if purge == nil {
		return
	}
	var ids []string
	for _, m := range media {
		for _, id := range m.StorageIDs() {
			if domain.ResolveStorageURL(id) != id {
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return
	}
	if err := purge.SchedulePurge(ctx, ids); err != nil {
		slog.WarnContext(ctx, "schedule blob purge failed", "storage_ids", len(ids), "error", err)
	}
}

func toMediaItems(media []domain.Media) []domain.MediaItem {
	sorted := append([]domain.Media(nil), media...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].OrderIndex < sorted[j].OrderIndex })

	items := make([]domain.MediaItem, 0, len(sorted))
	for _, m := range sorted {
		items = append(items, domain.MediaItem{
			ID:           m.ID,
			URL:          domain.ResolveStorageURL(m.StorageID),
			ThumbnailURL: domain.ResolveStorageURL(m.ThumbnailStorageID),
			Caption:      m.Caption,
			Type:         m.Type,
			OrderIndex:   m.OrderIndex,
		})
	}
	return items
}

func fail(span trace.Span, err error) error {
	if !errors.Is(err, domain.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
