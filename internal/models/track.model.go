package models

import (
	"time"

	"gorm.io/datatypes"
)

// Track is a projection row. The row itself is materialized by the external
// indexer tailing the ledger; this engine only ever sets the cross-reference
// fields AlbumURI and ArtistURI, which move from null to set exactly once and
// are never cleared.
type Track struct {
	BaseUUIDModel
	Title       string `gorm:"type:text;not null" json:"title"`
	Artist      string `gorm:"type:text;not null" json:"artist"`
	AlbumArtist string `gorm:"type:text;not null" json:"albumArtist"`
	Album       string `gorm:"type:text;not null" json:"album"`

	// Duration in milliseconds
	Duration    int  `gorm:"type:int" json:"duration"`
	TrackNumber *int `gorm:"type:int" json:"trackNumber,omitempty"`
	DiscNumber  *int `gorm:"type:int" json:"discNumber,omitempty"`

	Composer  *string    `gorm:"type:text" json:"composer,omitempty"`
	Lyrics    *string    `gorm:"type:text" json:"lyrics,omitempty"`
	Copyright *string    `gorm:"type:text" json:"copyright,omitempty"`
	Year      *int       `gorm:"type:int"  json:"year,omitempty"`
	ReleaseAt *time.Time `gorm:""          json:"releaseDate,omitempty"`

	AlbumArtURL *string        `gorm:"type:text" json:"albumArtUrl,omitempty"`
	Links       datatypes.JSON `gorm:"type:jsonb" json:"links,omitempty"`
	Tags        datatypes.JSON `gorm:"type:jsonb" json:"tags,omitempty"`

	SHA256    string  `gorm:"column:sha256;type:varchar(64);not null;uniqueIndex" json:"sha256"`
	URI       *string `gorm:"type:text;uniqueIndex" json:"uri,omitempty"`
	AlbumURI  *string `gorm:"column:album_uri;type:text"  json:"albumUri,omitempty"`
	ArtistURI *string `gorm:"column:artist_uri;type:text" json:"artistUri,omitempty"`
}

// Resolved reports whether both cross-references have settled.
func (t *Track) Resolved() bool {
	return t.AlbumURI != nil && t.ArtistURI != nil
}
