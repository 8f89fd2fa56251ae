package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/TomRob62/GSSDA-Web-App/internal/models"
)

// CallerRepository provides read access to the caller/cuer roster.
type CallerRepository struct {
	db *sqlx.DB
}

// NewCallerRepository creates a new caller repository.
func NewCallerRepository(db *sqlx.DB) *CallerRepository {
	return &CallerRepository{db: db}
}

// List returns the full roster ordered by last name.
func (r *CallerRepository) List(ctx context.Context) ([]models.CallerCuer, error) {
	const query = `SELECT id, first_name, last_name, suffix, mc, COALESCE(dance_types, '') AS dance_types, created_at, updated_at FROM caller_cuers ORDER BY last_name ASC, first_name ASC`
	var callers []models.CallerCuer
	if err := r.db.SelectContext(ctx, &callers, query); err != nil {
		return nil, fmt.Errorf("list caller cuers: %w", err)
	}
	return callers, nil
}

// FindByIDs loads the roster entries for the given ids, keyed by id.
func (r *CallerRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]models.CallerCuer, error) {
	result := make(map[int64]models.CallerCuer, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`SELECT id, first_name, last_name, suffix, mc, COALESCE(dance_types, '') AS dance_types, created_at, updated_at FROM caller_cuers WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build caller lookup: %w", err)
	}
	query = r.db.Rebind(query)

	var callers []models.CallerCuer
	if err := r.db.SelectContext(ctx, &callers, query, args...); err != nil {
		return nil, fmt.Errorf("find callers by ids: %w", err)
	}
	for _, c := range callers {
		result[c.ID] = c
	}
	return result, nil
}
