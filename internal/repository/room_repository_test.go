package repository

import (
	"context"
	"database/sql"
	"net/http"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	appErrors "github.com/TomRob62/GSSDA-Web-App/pkg/errors"
)

func TestRoomRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRoomRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "room_number", "static", "created_at", "updated_at"}).
		AddRow(1, "Main Hall", false, now, now).
		AddRow(2, "Round Room", true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms ORDER BY room_number ASC")).
		WillReturnRows(rows)

	rooms, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	require.Equal(t, "Main Hall", rooms[0].RoomNumber)
	require.True(t, rooms[1].Static)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms WHERE id = $1")).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	room, err := repo.FindByID(context.Background(), 99)
	require.Nil(t, room)
	appErr := appErrors.FromError(err)
	require.Equal(t, http.StatusNotFound, appErr.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryListDescriptions(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRoomRepository(db)
	start := time.Date(2025, 3, 7, 9, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)

	rows := sqlmock.NewRows([]string{"id", "room_id", "start_time", "end_time", "description"}).
		AddRow(1, 5, nil, nil, "All levels welcome").
		AddRow(2, 5, start, end, "Advanced tip in progress")
	mock.ExpectQuery(regexp.QuoteMeta("FROM room_descriptions WHERE room_id = $1")).
		WithArgs(int64(5)).
		WillReturnRows(rows)

	descriptions, err := repo.ListDescriptions(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, descriptions, 2)
	require.Nil(t, descriptions[0].StartTime, "timeless description first")
	require.True(t, descriptions[0].ActiveAt(start.Add(-time.Hour)))
	require.False(t, descriptions[1].ActiveAt(start.Add(-time.Hour)))
	require.NoError(t, mock.ExpectationsWereMet())
}
