package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/TomRob62/GSSDA-Web-App/internal/models"
)

// EventRepository provides read access to scheduled events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// ListByRoom returns a room's events sorted by start ascending, with caller
// ids attached in junction-table position order.
func (r *EventRepository) ListByRoom(ctx context.Context, roomID int64) ([]models.Event, error) {
	const query = `SELECT id, room_id, start, "end", dance_types, created_at, updated_at FROM events WHERE room_id = $1 ORDER BY start ASC`
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, roomID); err != nil {
		return nil, fmt.Errorf("list events by room: %w", err)
	}
	if len(events) == 0 {
		return events, nil
	}

	const callersQuery = `SELECT ec.event_id, ec.caller_cuer_id FROM event_callers ec JOIN events e ON e.id = ec.event_id WHERE e.room_id = $1 ORDER BY ec.event_id, ec.position`
	rows, err := r.db.QueryxContext(ctx, callersQuery, roomID)
	if err != nil {
		return nil, fmt.Errorf("list event callers: %w", err)
	}
	defer rows.Close()

	byEvent := make(map[int64][]int64, len(events))
	for rows.Next() {
		var eventID, callerID int64
		if err := rows.Scan(&eventID, &callerID); err != nil {
			return nil, fmt.Errorf("scan event caller: %w", err)
		}
		byEvent[eventID] = append(byEvent[eventID], callerID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event callers: %w", err)
	}

	for i := range events {
		events[i].CallerIDs = models.NormalizeCallerIDs(byEvent[events[i].ID])
	}
	return events, nil
}

// FindByID loads a single event.
func (r *EventRepository) FindByID(ctx context.Context, id int64) (*models.Event, error) {
	const query = `SELECT id, room_id, start, "end", dance_types, created_at, updated_at FROM events WHERE id = $1`
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}

	const callersQuery = `SELECT caller_cuer_id FROM event_callers WHERE event_id = $1 ORDER BY position`
	var callerIDs []int64
	if err := r.db.SelectContext(ctx, &callerIDs, callersQuery, id); err != nil {
		return nil, fmt.Errorf("list callers for event: %w", err)
	}
	event.CallerIDs = models.NormalizeCallerIDs(callerIDs)
	return &event, nil
}
