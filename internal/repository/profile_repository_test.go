package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestProfileRepositoryListCatalog(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewProfileRepository(db)
	now := time.Now()

	callerRows := sqlmock.NewRows([]string{"id", "caller_cuer_id", "advertisement", "content", "image_path", "created_at", "updated_at"}).
		AddRow(1, 101, false, "Calling since 1998", nil, now, now).
		AddRow(2, 102, false, "", "/img/102.jpg", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE advertisement = FALSE AND caller_cuer_id IS NOT NULL ORDER BY id ASC")).
		WillReturnRows(callerRows)

	adRows := sqlmock.NewRows([]string{"id", "caller_cuer_id", "advertisement", "content", "image_path", "created_at", "updated_at"}).
		AddRow(10, nil, true, "Visit the trail-in dance", nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE advertisement = TRUE ORDER BY id ASC")).
		WillReturnRows(adRows)

	catalog, err := repo.ListCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog.CallerProfiles, 2)
	require.Len(t, catalog.AdvertisementProfiles, 1)
	require.NotNil(t, catalog.CallerProfiles[0].CallerCuerID)
	require.Equal(t, int64(101), *catalog.CallerProfiles[0].CallerCuerID)
	require.True(t, catalog.AdvertisementProfiles[0].Advertisement)
	require.Nil(t, catalog.AdvertisementProfiles[0].CallerCuerID)
	require.False(t, catalog.LoadedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepositoryListCatalogEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewProfileRepository(db)
	columns := []string{"id", "caller_cuer_id", "advertisement", "content", "image_path", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta("WHERE advertisement = FALSE")).WillReturnRows(sqlmock.NewRows(columns))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE advertisement = TRUE")).WillReturnRows(sqlmock.NewRows(columns))

	catalog, err := repo.ListCatalog(context.Background())
	require.NoError(t, err)
	require.Empty(t, catalog.CallerProfiles)
	require.Empty(t, catalog.AdvertisementProfiles)
	require.NoError(t, mock.ExpectationsWereMet())
}
