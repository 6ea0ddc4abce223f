package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/wandering-tales/wandering-tales/internal/core/domain"
	"github.com/wandering-tales/wandering-tales/internal/core/ports"
)

// MediaRepo implements ports.MediaRepository with pgx.
type MediaRepo struct {
	db *DB
}

// NewMediaRepo creates a new MediaRepo.
func NewMediaRepo(db *DB) *MediaRepo {
	return &MediaRepo{db: db}
}

const mediaColumns = `id::text, travel_id::text, type, storage_id,
	COALESCE(thumbnail_storage_id, ''), COALESCE(caption, ''), order_index,
	width, height, duration, file_size, created_at`

func scanMedia(row pgx.Row) (*domain.Media, error) {
	var (
		m                       domain.Media
		typ                     string
		width, height, duration *float64
		fileSize                *int64
	)
	err := row.Scan(
		&m.ID, &m.TravelID, &typ, &m.StorageID,
		&m.ThumbnailStorageID, &m.Caption, &m.OrderIndex,
		&width, &height, &duration, &fileSize, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Type = domain.MediaType(typ)
	if fileSize != nil || width != nil || height != nil || duration != nil {
		m.Metadata = &domain.MediaMetadata{Width: width, Height: height, Duration: duration}
		if fileSize != nil {
			m.Metadata.FileSize = *fileSize
		}
	}
	return &m, nil
}

func collectMedia(rows pgx.Rows) ([]domain.Media, error) {
	defer rows.Close()
	media := []domain.Media{}
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		media = append(media, *m)
	}
	return media, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Create inserts a media row.
func (r *MediaRepo) Create(ctx context.Context, m *domain.Media) error {
	var width, height, duration *float64
	var fileSize *int64
	if md := m.Metadata; md != nil {
		width, height, duration = md.Width, md.Height, md.Duration
		fileSize = &md.FileSize
	}
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO media (id, travel_id, type, storage_id, thumbnail_storage_id, caption,
		                   order_index, width, height, duration, file_size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, m.ID, m.TravelID, string(m.Type), m.StorageID,
		nullIfEmpty(m.ThumbnailStorageID), nullIfEmpty(m.Caption),
		m.OrderIndex, width, height, duration, fileSize, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert media: %w", err)
	}
	return nil
}

// GetByID returns a media row by id.
func (r *MediaRepo) GetByID(ctx context.Context, id string) (*domain.Media, error) {
	m, err := scanMedia(r.db.Pool.QueryRow(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE id::text = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

// ListByTravel returns the media of a travel ordered by order index.
func (r *MediaRepo) ListByTravel(ctx context.Context, travelID string) ([]domain.Media, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE travel_id::text = $1 ORDER BY order_index, created_at`, travelID)
	if err != nil {
		return nil, err
	}
	return collectMedia(rows)
}

// Update sets caption and/or order index.
func (r *MediaRepo) Update(ctx context.Context, id string, patch ports.MediaPatch) (*domain.Media, error) {
	var sets []string
	var args []any
	if patch.Caption != nil {
		args = append(args, *patch.Caption)
		sets = append(sets, fmt.Sprintf("caption = $%d", len(args)))
	}
	if patch.OrderIndex != nil {
		args = append(args, *patch.OrderIndex)
		sets = append(sets, fmt.Sprintf("order_index = $%d", len(args)))
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE media SET %s WHERE id::text = $%d RETURNING `+mediaColumns,
		strings.Join(sets, ", "), len(args))
	m, err := scanMedia(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

// Delete removes a media row.
func (r *MediaRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM media WHERE id::text = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByTravel removes the media of a travel and returns the removed rows.
func (r *MediaRepo) DeleteByTravel(ctx context.Context, travelID string) ([]domain.Media, error) {
	rows, err := r.db.Pool.Query(ctx,
		`DELETE FROM media WHERE travel_id::text = $1 RETURNING `+mediaColumns, travelID)
	if err != nil {
		return nil, err
	}
	return collectMedia(rows)
}
