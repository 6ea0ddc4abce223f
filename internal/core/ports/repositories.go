package ports

import (
	"context"

	"github.com/wandering-tales/wandering-tales/internal/core/domain"
)

// TravelPatch lists the fields of a partial travel update. Nil fields are
// left unchanged.
type TravelPatch struct {
	Title       *string          `json:"title,omitempty" validate:"omitempty,min=1"`
	Description *string          `json:"description,omitempty"`
	Location    *domain.Location `json:"location,omitempty"`
	VisitDate   *string          `json:"visit_date,omitempty" validate:"omitempty,min=1"`
	Tags        *[]string        `json:"tags,omitempty"`
	IsPublished *bool            `json:"is_published,omitempty"`
}

// MediaPatch lists the fields of a partial media update.
type MediaPatch struct {
	Caption    *string `json:"caption,omitempty"`
	OrderIndex *int    `json:"order_index,omitempty" validate:"omitempty,gte=0"`
}

// TravelRepository persists travels.
type TravelRepository interface {
	Create(ctx context.Context, t *domain.Travel) error
	GetByID(ctx context.Context, id string) (*domain.Travel, error)
	// ListPublished returns published travels ordered by visit date. Empty
	// bounds are open.
	ListPublished(ctx context.Context, from, to string) ([]domain.Travel, error)
	Update(ctx context.Context, id string, patch TravelPatch) (*domain.Travel, error)
	Delete(ctx context.Context, id string) error
	// DeleteAll removes every travel and media row. It returns the ids of
	// the removed travels and the removed media.
	DeleteAll(ctx context.Context) ([]string, []domain.Media, error)
}

// MediaRepository persists media metadata.
type MediaRepository interface {
	Create(ctx context.Context, m *domain.Media) error
	GetByID(ctx context.Context, id string) (*domain.Media, error)
	// ListByTravel returns the media of a travel ordered by OrderIndex.
	ListByTravel(ctx context.Context, travelID string) ([]domain.Media, error)
	Update(ctx context.Context, id string, patch MediaPatch) (*domain.Media, error)
	Delete(ctx context.Context, id string) error
	// DeleteByTravel removes the media of a travel and returns it.
	DeleteByTravel(ctx context.Context, travelID string) ([]domain.Media, error)
}
