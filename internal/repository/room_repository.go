package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/TomRob62/GSSDA-Web-App/internal/models"
	appErrors "github.com/TomRob62/GSSDA-Web-App/pkg/errors"
)

// RoomRepository provides read access to rooms and their descriptions.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository creates a new room repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// List returns all rooms ordered by room number.
func (r *RoomRepository) List(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, room_number, static, created_at, updated_at FROM rooms ORDER BY room_number ASC`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// FindByID loads a room by id.
func (r *RoomRepository) FindByID(ctx context.Context, id int64) (*models.Room, error) {
	const query = `SELECT id, room_number, static, created_at, updated_at FROM rooms WHERE id = $1`
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, http.StatusNotFound, "room not found")
		}
		return nil, fmt.Errorf("find room: %w", err)
	}
	return &room, nil
}

// ListDescriptions returns a room's descriptions, timeless entries first.
func (r *RoomRepository) ListDescriptions(ctx context.Context, roomID int64) ([]models.RoomDescription, error) {
	const query = `SELECT id, room_id, start_time, end_time, COALESCE(description, '') AS description FROM room_descriptions WHERE room_id = $1 ORDER BY start_time ASC NULLS FIRST`
	var descriptions []models.RoomDescription
	if err := r.db.SelectContext(ctx, &descriptions, query, roomID); err != nil {
		return nil, fmt.Errorf("list room descriptions: %w", err)
	}
	return descriptions, nil
}
