package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/TomRob62/GSSDA-Web-App/internal/models"
)

// ProfileRepository provides read access to caller profiles and advertisements.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// ListCatalog returns all displayable profiles split into caller profiles and
// advertisements. Ordering is stable (by id) so the rotation queue is
// reproducible across refreshes.
func (r *ProfileRepository) ListCatalog(ctx context.Context) (*models.ProfileCatalog, error) {
	const callerQuery = `SELECT id, caller_cuer_id, advertisement, COALESCE(content, '') AS content, image_path, created_at, updated_at FROM profiles WHERE advertisement = FALSE AND caller_cuer_id IS NOT NULL ORDER BY id ASC`
	var callers []models.Profile
	if err := r.db.SelectContext(ctx, &callers, callerQuery); err != nil {
		return nil, fmt.Errorf("list caller profiles: %w", err)
	}

	const adQuery = `SELECT id, caller_cuer_id, advertisement, COALESCE(content, '') AS content, image_path, created_at, updated_at FROM profiles WHERE advertisement = TRUE ORDER BY id ASC`
	var ads []models.Profile
	if err := r.db.SelectContext(ctx, &ads, adQuery); err != nil {
		return nil, fmt.Errorf("list advertisement profiles: %w", err)
	}

	return &models.ProfileCatalog{
		CallerProfiles:        callers,
		AdvertisementProfiles: ads,
		LoadedAt:              time.Now().UTC(),
	}, nil
}
