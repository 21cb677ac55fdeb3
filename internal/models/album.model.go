package models

import "time"

type Album struct {
	BaseUUIDModel
	Title  string `gorm:"type:text;not null" json:"title"`
	Artist string `gorm:"type:text;not null" json:"artist"`

	Year      *int       `gorm:"type:int" json:"year,omitempty"`
	ReleaseAt *time.Time `gorm:""         json:"releaseDate,omitempty"`

	AlbumArtURL *string `gorm:"type:text" json:"albumArtUrl,omitempty"`

	SHA256    string  `gorm:"column:sha256;type:varchar(64);not null;uniqueIndex" json:"sha256"`
	URI       *string `gorm:"type:text;uniqueIndex" json:"uri,omitempty"`
	ArtistURI *string `gorm:"column:artist_uri;type:text" json:"artistUri,omitempty"`
}
