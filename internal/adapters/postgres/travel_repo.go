package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/wandering-tales/wandering-tales/internal/core/domain"
	"github.com/wandering-tales/wandering-tales/internal/core/ports"
)

// TravelRepo implements ports.TravelRepository with pgx.
type TravelRepo struct {
	db *DB
}

// NewTravelRepo creates a new TravelRepo.
func NewTravelRepo(db *DB) *TravelRepo {
	return &TravelRepo{db: db}
}

const travelColumns = `id::text, title, description, lat, lng, address, city, state, country,
	visit_date, tags, is_published, created_at`

func scanTravel(row pgx.Row) (*domain.Travel, error) {
	var t domain.Travel
	err := row.Scan(
		&t.ID, &t.Title, &t.Description,
		&t.Location.Lat, &t.Location.Lng, &t.Location.Address,
		&t.Location.City, &t.Location.State, &t.Location.Country,
		&t.VisitDate, &t.Tags, &t.IsPublished, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return &t, nil
}

// Create inserts a travel.
func (r *TravelRepo) Create(ctx context.Context, t *domain.Travel) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO travels (id, title, description, lat, lng, address, city, state, country,
		                     visit_date, tags, is_published, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, t.ID, t.Title, t.Description,
		t.Location.Lat, t.Location.Lng, t.Location.Address,
		t.Location.City, t.Location.State, t.Location.Country,
		t.VisitDate, t.Tags, t.IsPublished, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert travel: %w", err)
	}
	return nil
}

// GetByID returns a travel by id.
func (r *TravelRepo) GetByID(ctx context.Context, id string) (*domain.Travel, error) {
	t, err := scanTravel(r.db.Pool.QueryRow(ctx,
		`SELECT `+travelColumns+` FROM travels WHERE id::text = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// ListPublished returns published travels ordered by visit date, optionally
// bounded by from and to (inclusive).
func (r *TravelRepo) ListPublished(ctx context.Context, from, to string) ([]domain.Travel, error) {
	query := `SELECT ` + travelColumns + ` FROM travels WHERE is_published`
	var args []any
	if from != "" {
		args = append(args, from)
		query += fmt.Sprintf(" AND visit_date >= $%d", len(args))
	}
	if to != "" {
		args = append(args, to)
		query += fmt.Sprintf(" AND visit_date <= $%d", len(args))
	}
	query += " ORDER BY visit_date, created_at"

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	travels := []domain.Travel{}
	for rows.Next() {
		t, err := scanTravel(rows)
		if err != nil {
			return nil, err
		}
		travels = append(travels, *t)
	}
	return travels, rows.Err()
}

// Update applies the non-nil fields of patch and returns the updated travel.
func (r *TravelRepo) Update(ctx context.Context, id string, patch ports.TravelPatch) (*domain.Travel, error) {
	var sets []string
	var args []any
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if l := patch.Location; l != nil {
		set("lat", l.Lat)
		set("lng", l.Lng)
		set("address", l.Address)
		set("city", l.City)
		set("state", l.State)
		set("country", l.Country)
	}
	if patch.VisitDate != nil {
		set("visit_date", *patch.VisitDate)
	}
	if patch.Tags != nil {
		set("tags", *patch.Tags)
	}
	if patch.IsPublished != nil {
		set("is_published", *patch.IsPublished)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE travels SET %s WHERE id::text = $%d RETURNING `+travelColumns,
		strings.Join(sets, ", "), len(args))
	t, err := scanTravel(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// Delete removes a travel.
func (r *TravelRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM travels WHERE id::text = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteAll removes every travel and media row in one transaction.
func (r *TravelRepo) DeleteAll(ctx context.Context) ([]string, []domain.Media, error) {
	var ids []string
	var media []domain.Media
	err := r.db.withTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `DELETE FROM media RETURNING `+mediaColumns)
		if err != nil {
			return err
		}
		media, err = collectMedia(rows)
		if err != nil {
			return err
		}

		rows, err = tx.Query(ctx, `DELETE FROM travels RETURNING id::text`)
		if err != nil {
			return err
		}
		ids, err = pgx.CollectRows(rows, pgx.RowTo[string])
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("delete all travels: %w", err)
	}
	return ids, media, nil
}
