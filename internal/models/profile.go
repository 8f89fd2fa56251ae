package models

import "time"

// Profile carries the narrative and imagery shown on the presentation board.
// A profile either belongs to a caller/cuer or is an advertisement, never both.
type Profile struct {
	ID            int64     `db:"id" json:"id"`
	CallerCuerID  *int64    `db:"caller_cuer_id" json:"caller_cuer_id,omitempty"`
	Advertisement bool      `db:"advertisement" json:"advertisement"`
	Content       string    `db:"content" json:"content"`
	ImagePath     *string   `db:"image_path" json:"image_path,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// ProfileCatalog is the full set of displayable profiles, split by class.
type ProfileCatalog struct {
	CallerProfiles        []Profile `json:"caller_profiles"`
	AdvertisementProfiles []Profile `json:"advertisement_profiles"`
	LoadedAt              time.Time `json:"loaded_at"`
}

// FindByID returns the profile with the given id from either class.
func (c ProfileCatalog) FindByID(id int64) *Profile {
	for i := range c.CallerProfiles {
		if c.CallerProfiles[i].ID == id {
			return &c.CallerProfiles[i]
		}
	}
	for i := range c.AdvertisementProfiles {
		if c.AdvertisementProfiles[i].ID == id {
			return &c.AdvertisementProfiles[i]
		}
	}
	return nil
}

// FindByCaller returns the caller profile for the given caller/cuer id.
func (c ProfileCatalog) FindByCaller(callerID int64) *Profile {
	for i := range c.CallerProfiles {
		p := &c.CallerProfiles[i]
		if p.CallerCuerID != nil && *p.CallerCuerID == callerID {
			return p
		}
	}
	return nil
}
