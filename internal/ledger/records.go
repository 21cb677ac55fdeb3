package ledger

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Ledger collections for catalog entities and plays.
const (
	CollectionArtist   = "app.soundtrace.artist"
	CollectionAlbum    = "app.soundtrace.album"
	CollectionSong     = "app.soundtrace.song"
	CollectionScrobble = "app.soundtrace.scrobble"
)

var validate = validator.New()

// BlobRef is the ledger's handle for uploaded binary content.
type BlobRef struct {
	Type     string  `json:"$type"`
	Ref      BlobCID `json:"ref"`
	MimeType string  `json:"mimeType"`
	Size     int64   `json:"size"`
}

type BlobCID struct {
	Link string `json:"$link"`
}

type ArtistRecord struct {
	Name       string   `json:"name"                 validate:"required"`
	CreatedAt  string   `json:"createdAt"            validate:"required"`
	Tags       []string `json:"tags,omitempty"`
	Picture    *BlobRef `json:"picture,omitempty"`
	PictureURL string   `json:"pictureUrl,omitempty"`
}

type AlbumRecord struct {
	Title       string   `json:"title"                validate:"required"`
	Artist      string   `json:"artist"               validate:"required"`
	Year        *int     `json:"year,omitempty"`
	ReleaseDate string   `json:"releaseDate,omitempty"`
	AlbumArt    *BlobRef `json:"albumArt,omitempty"`
	AlbumArtURL string   `json:"albumArtUrl,omitempty"`
	CreatedAt   string   `json:"createdAt"            validate:"required"`
}

type SongRecord struct {
	Title       string   `json:"title"                validate:"required"`
	Artist      string   `json:"artist"               validate:"required"`
	Album       string   `json:"album"                validate:"required"`
	AlbumArtist string   `json:"albumArtist"          validate:"required"`
	Duration    int      `json:"duration,omitempty"   validate:"gte=0"`
	TrackNumber int      `json:"trackNumber,omitempty" validate:"gte=0"`
	DiscNumber  int      `json:"discNumber,omitempty"  validate:"gte=0"`
	Composer    string   `json:"composer,omitempty"`
	Lyrics      string   `json:"lyrics,omitempty"`
	Copyright   string   `json:"copyrightMessage,omitempty"`
	Year        *int     `json:"year,omitempty"`
	ReleaseDate string   `json:"releaseDate,omitempty"`
	AlbumArt    *BlobRef `json:"albumArt,omitempty"`
	AlbumArtURL string   `json:"albumArtUrl,omitempty"`
	SpotifyLink string   `json:"spotifyLink,omitempty"`
	TidalLink   string   `json:"tidalLink,omitempty"`
	AppleLink   string   `json:"appleMusicLink,omitempty"`
	LastfmLink  string   `json:"lastfmLink,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	CreatedAt   string   `json:"createdAt"            validate:"required"`
}

type ScrobbleRecord struct {
	Title       string   `json:"title"                validate:"required"`
	Artist      string   `json:"artist"               validate:"required"`
	Album       string   `json:"album"                validate:"required"`
	AlbumArtist string   `json:"albumArtist"          validate:"required"`
	Duration    int      `json:"duration,omitempty"   validate:"gte=0"`
	TrackNumber int      `json:"trackNumber,omitempty" validate:"gte=0"`
	AlbumArt    *BlobRef `json:"albumArt,omitempty"`
	AlbumArtURL string   `json:"albumArtUrl,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	CreatedAt   string   `json:"createdAt"            validate:"required"`
}

// Timestamp renders a ledger record timestamp.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func (r *ArtistRecord) Validate() error   { return validate.Struct(r) }
func (r *AlbumRecord) Validate() error    { return validate.Struct(r) }
func (r *SongRecord) Validate() error     { return validate.Struct(r) }
func (r *ScrobbleRecord) Validate() error { return validate.Struct(r) }
