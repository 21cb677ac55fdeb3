package types

import (
	"strings"
	"time"
)

// PlayEvent is the ephemeral input to the scrobble pipeline. It is consumed
// once and never persisted directly; the canonical entities derived from it
// live in the ledger and the projection.
type PlayEvent struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	AlbumArtist string `json:"albumArtist"`
	Album       string `json:"album"`

	// Duration in milliseconds
	Duration    int  `json:"duration"`
	TrackNumber *int `json:"trackNumber,omitempty"`
	DiscNumber  *int `json:"discNumber,omitempty"`

	Composer  *string    `json:"composer,omitempty"`
	Lyrics    *string    `json:"lyrics,omitempty"`
	Copyright *string    `json:"copyright,omitempty"`
	Year      *int       `json:"year,omitempty"`
	ReleaseAt *time.Time `json:"releaseDate,omitempty"`

	SpotifyLink    *string `json:"spotifyLink,omitempty"`
	TidalLink      *string `json:"tidalLink,omitempty"`
	AppleMusicLink *string `json:"appleMusicLink,omitempty"`
	LastfmLink     *string `json:"lastfmLink,omitempty"`

	AlbumArtURL      *string  `json:"albumArtUrl,omitempty"`
	ArtistPictureURL *string  `json:"artistPictureUrl,omitempty"`
	Tags             []string `json:"tags,omitempty"`

	// Unix seconds of the play; zero means "now"
	Timestamp int64 `json:"timestamp,omitempty"`
}

// PlayedAt resolves the event timestamp, defaulting to now when absent.
func (e *PlayEvent) PlayedAt() time.Time {
	if e.Timestamp > 0 {
		return time.Unix(e.Timestamp, 0).UTC()
	}
	return time.Now().UTC()
}

// Artists splits the display artist string into individual artist names.
// Collaboration strings join names with ", " or " x ".
func (e *PlayEvent) Artists() []string {
	raw := strings.ReplaceAll(e.Artist, " x ", ", ")
	parts := strings.Split(raw, ", ")

	artists := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name != "" {
			artists = append(artists, name)
		}
	}
	return artists
}
