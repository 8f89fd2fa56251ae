package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestMCRepositoryListByRoom(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewMCRepository(db)
	start := time.Date(2025, 3, 7, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "room_id", "caller_cuer_id", "start", "end", "created_at", "updated_at"}).
		AddRow(1, 5, 101, start, start.Add(2*time.Hour), start, start).
		AddRow(2, 5, 102, start.Add(2*time.Hour), start.Add(4*time.Hour), start, start)
	mock.ExpectQuery(regexp.QuoteMeta("FROM mcs WHERE room_id = $1 ORDER BY start ASC")).
		WithArgs(int64(5)).
		WillReturnRows(rows)

	mcs, err := repo.ListByRoom(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, mcs, 2)
	require.Equal(t, int64(101), mcs[0].CallerCuerID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCallerRepositoryFindByIDsEmpty(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCallerRepository(db)
	result, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, result, "no query issued for an empty id list")
}

func TestCallerRepositoryFindByIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCallerRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "suffix", "mc", "dance_types", "created_at", "updated_at"}).
		AddRow(101, "Pat", "Carson", nil, true, "Plus", now, now).
		AddRow(102, "Lee", "Ames", "Jr.", false, "", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM caller_cuers WHERE id IN")).
		WithArgs(int64(101), int64(102)).
		WillReturnRows(rows)

	result, err := repo.FindByIDs(context.Background(), []int64{101, 102})
	require.NoError(t, err)
	require.Len(t, result, 2)
	require.Equal(t, "Pat Carson", result[101].DisplayName())
	require.Equal(t, "Lee Ames, Jr.", result[102].DisplayName())
	require.NoError(t, mock.ExpectationsWereMet())
}
