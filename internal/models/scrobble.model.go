package models

import (
	"time"

	"github.com/google/uuid"
)

// Scrobble is one play of one track by one user. The row is materialized by
// the external indexer from the ledger record; its entity foreign keys are
// attached by the indexer as those become resolvable. Published is the only
// field this engine writes, and only after the bus messages went out.
type Scrobble struct {
	BaseUUIDModel
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	User   *User     `gorm:"foreignKey:UserID"        json:"user,omitempty"`

	TrackID  *uuid.UUID `gorm:"type:uuid;index"      json:"trackId,omitempty"`
	Track    *Track     `gorm:"foreignKey:TrackID"   json:"track,omitempty"`
	AlbumID  *uuid.UUID `gorm:"type:uuid"            json:"albumId,omitempty"`
	Album    *Album     `gorm:"foreignKey:AlbumID"   json:"album,omitempty"`
	ArtistID *uuid.UUID `gorm:"type:uuid"            json:"artistId,omitempty"`
	Artist   *Artist    `gorm:"foreignKey:ArtistID"  json:"artist,omitempty"`

	Title      string `gorm:"type:text;not null" json:"title"`
	ArtistName string `gorm:"column:artist;type:text;not null" json:"artist"`
	AlbumName  string `gorm:"column:album;type:text;not null"  json:"album"`

	URI       *string   `gorm:"type:text;uniqueIndex"    json:"uri,omitempty"`
	Timestamp time.Time `gorm:"not null;index"           json:"timestamp"`
	Published bool      `gorm:"not null;default:false"   json:"published"`
}

// Resolved reports whether the indexer has attached all three entity keys.
func (s *Scrobble) Resolved() bool {
	return s.TrackID != nil && s.AlbumID != nil && s.ArtistID != nil &&
		s.Track != nil && s.Album != nil && s.Artist != nil
}
