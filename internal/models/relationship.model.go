package models

import "github.com/google/uuid"

// Join relations are pure associations with a uniqueness invariant on the
// pair. Creation is ensure-or-create; the unique index is the backstop for
// concurrent callers racing on the same pair.

type AlbumTrack struct {
	BaseUUIDModel
	AlbumID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_album_tracks_pair" json:"albumId"`
	Album   *Album    `gorm:"foreignKey:AlbumID" json:"album,omitempty"`
	TrackID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_album_tracks_pair;index" json:"trackId"`
	Track   *Track    `gorm:"foreignKey:TrackID" json:"track,omitempty"`
}

type ArtistTrack struct {
	BaseUUIDModel
	ArtistID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_artist_tracks_pair" json:"artistId"`
	Artist   *Artist   `gorm:"foreignKey:ArtistID" json:"artist,omitempty"`
	TrackID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_artist_tracks_pair;index" json:"trackId"`
	Track    *Track    `gorm:"foreignKey:TrackID" json:"track,omitempty"`
}

type ArtistAlbum struct {
	BaseUUIDModel
	ArtistID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_artist_albums_pair" json:"artistId"`
	Artist   *Artist   `gorm:"foreignKey:ArtistID" json:"artist,omitempty"`
	AlbumID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_artist_albums_pair;index" json:"albumId"`
	Album    *Album    `gorm:"foreignKey:AlbumID" json:"album,omitempty"`
}
