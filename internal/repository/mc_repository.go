package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/TomRob62/GSSDA-Web-App/internal/models"
)

// MCRepository provides read access to MC assignments.
type MCRepository struct {
	db *sqlx.DB
}

// NewMCRepository creates a new MC repository.
func NewMCRepository(db *sqlx.DB) *MCRepository {
	return &MCRepository{db: db}
}

// ListByRoom returns a room's MC assignments ordered by start ascending.
func (r *MCRepository) ListByRoom(ctx context.Context, roomID int64) ([]models.MCAssignment, error) {
	const query = `SELECT id, room_id, caller_cuer_id, start, "end", created_at, updated_at FROM mcs WHERE room_id = $1 ORDER BY start ASC`
	var mcs []models.MCAssignment
	if err := r.db.SelectContext(ctx, &mcs, query, roomID); err != nil {
		return nil, fmt.Errorf("list mcs by room: %w", err)
	}
	return mcs, nil
}
