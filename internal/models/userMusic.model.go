package models

import "github.com/google/uuid"

// Per-user aggregates associate a user with an entity and a running play
// count. This engine creates them with Scrobbles=1 on first occurrence; an
// external process owns the increments after that.

type UserTrack struct {
	BaseUUIDModel
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_tracks_pair" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TrackID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_tracks_pair;index" json:"trackId"`
	Track     *Track    `gorm:"foreignKey:TrackID" json:"track,omitempty"`
	URI       *string   `gorm:"type:text" json:"uri,omitempty"`
	Scrobbles int       `gorm:"not null;default:1" json:"scrobbles"`
}

type UserAlbum struct {
	BaseUUIDModel
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_albums_pair" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	AlbumID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_albums_pair;index" json:"albumId"`
	Album     *Album    `gorm:"foreignKey:AlbumID" json:"album,omitempty"`
	URI       *string   `gorm:"type:text" json:"uri,omitempty"`
	Scrobbles int       `gorm:"not null;default:1" json:"scrobbles"`
}

type UserArtist struct {
	BaseUUIDModel
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_artists_pair" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ArtistID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_artists_pair;index" json:"artistId"`
	Artist    *Artist   `gorm:"foreignKey:ArtistID" json:"artist,omitempty"`
	URI       *string   `gorm:"type:text" json:"uri,omitempty"`
	Scrobbles int       `gorm:"not null;default:1" json:"scrobbles"`
}
