package services

import (
	"context"
	"net/http"
	"strings"

	"soundtrace/internal/ledger"
	"soundtrace/internal/types"

	logger "github.com/Bparsons0904/goLogger"
)

// RecordWriter turns play events into durable ledger records. Each Create
// validates the record, uploads any artwork, submits it under a fresh
// time-sortable key and returns the ledger URI.
type RecordWriter interface {
	CreateArtist(ctx context.Context, event *types.PlayEvent) (string, error)
	CreateNamedArtist(ctx context.Context, name string, event *types.PlayEvent) (string, error)
	CreateAlbum(ctx context.Context, event *types.PlayEvent) (string, error)
	CreateSong(ctx context.Context, event *types.PlayEvent) (string, error)
	CreateScrobble(ctx context.Context, event *types.PlayEvent) (string, error)
}

type RecordWriterService struct {
	ledger ledger.Client
	log    logger.Logger
}

func NewRecordWriterService(ledgerClient ledger.Client) *RecordWriterService {
	return &RecordWriterService{
		ledger: ledgerClient,
		log:    logger.New("recordWriterService"),
	}
}

// CreateArtist writes an artist record for the play's primary artist. A
// failed picture upload is logged and skipped; the artist record itself
// still goes out.
func (s *RecordWriterService) CreateArtist(ctx context.Context, event *types.PlayEvent) (string, error) {
	return s.CreateNamedArtist(ctx, primaryArtist(event), event)
}

// CreateNamedArtist writes an artist record for one named participant of a
// collaboration track.
func (s *RecordWriterService) CreateNamedArtist(ctx context.Context, name string, event *types.PlayEvent) (string, error) {
	log := s.log.Function("CreateNamedArtist")

	record := ledger.ArtistRecord{
		Name:      name,
		Tags:      event.Tags,
		CreatedAt: ledger.Timestamp(event.PlayedAt()),
	}

	// The picture URL describes the primary artist only.
	if event.ArtistPictureURL != nil && name == primaryArtist(event) {
		blob, err := s.uploadArtwork(ctx, *event.ArtistPictureURL)
		if err != nil {
			log.Er("failed to upload artist picture, continuing without it", err, "url", *event.ArtistPictureURL)
		} else {
			record.Picture = blob
			record.PictureURL = *event.ArtistPictureURL
		}
	}

	if err := record.Validate(); err != nil {
		return "", log.Err("artist record failed validation", err, "name", record.Name)
	}

	return s.ledger.CreateRecord(ctx, ledger.CollectionArtist, ledger.NextTID(), &record)
}

// CreateAlbum writes an album record. Artwork failures are fatal here: an
// album without its art would surface broken downstream.
func (s *RecordWriterService) CreateAlbum(ctx context.Context, event *types.PlayEvent) (string, error) {
	log := s.log.Function("CreateAlbum")

	record := ledger.AlbumRecord{
		Title:     event.Album,
		Artist:    primaryArtist(event),
		Year:      event.Year,
		CreatedAt: ledger.Timestamp(event.PlayedAt()),
	}
	if event.ReleaseAt != nil {
		record.ReleaseDate = ledger.Timestamp(*event.ReleaseAt)
	}

	if event.AlbumArtURL != nil {
		blob, err := s.uploadArtwork(ctx, *event.AlbumArtURL)
		if err != nil {
			return "", log.Err("failed to upload album artwork", err, "url", *event.AlbumArtURL)
		}
		record.AlbumArt = blob
		record.AlbumArtURL = *event.AlbumArtURL
	}

	if err := record.Validate(); err != nil {
		return "", log.Err("album record failed validation", err, "title", record.Title)
	}

	return s.ledger.CreateRecord(ctx, ledger.CollectionAlbum, ledger.NextTID(), &record)
}

func (s *RecordWriterService) CreateSong(ctx context.Context, event *types.PlayEvent) (string, error) {
	log := s.log.Function("CreateSong")

	record := ledger.SongRecord{
		Title:       event.Title,
		Artist:      event.Artist,
		Album:       event.Album,
		AlbumArtist: primaryArtist(event),
		Duration:    event.Duration,
		Composer:    deref(event.Composer),
		Lyrics:      deref(event.Lyrics),
		Copyright:   deref(event.Copyright),
		Year:        event.Year,
		SpotifyLink: deref(event.SpotifyLink),
		TidalLink:   deref(event.TidalLink),
		AppleLink:   deref(event.AppleMusicLink),
		LastfmLink:  deref(event.LastfmLink),
		Tags:        event.Tags,
		CreatedAt:   ledger.Timestamp(event.PlayedAt()),
	}
	if event.TrackNumber != nil {
		record.TrackNumber = *event.TrackNumber
	}
	if event.DiscNumber != nil {
		record.DiscNumber = *event.DiscNumber
	}
	if event.ReleaseAt != nil {
		record.ReleaseDate = ledger.Timestamp(*event.ReleaseAt)
	}

	if event.AlbumArtURL != nil {
		blob, err := s.uploadArtwork(ctx, *event.AlbumArtURL)
		if err != nil {
			return "", log.Err("failed to upload song artwork", err, "url", *event.AlbumArtURL)
		}
		record.AlbumArt = blob
		record.AlbumArtURL = *event.AlbumArtURL
	}

	if err := record.Validate(); err != nil {
		return "", log.Err("song record failed validation", err, "title", record.Title)
	}

	return s.ledger.CreateRecord(ctx, ledger.CollectionSong, ledger.NextTID(), &record)
}

func (s *RecordWriterService) CreateScrobble(ctx context.Context, event *types.PlayEvent) (string, error) {
	log := s.log.Function("CreateScrobble")

	record := ledger.ScrobbleRecord{
		Title:       event.Title,
		Artist:      event.Artist,
		Album:       event.Album,
		AlbumArtist: primaryArtist(event),
		Duration:    event.Duration,
		Tags:        event.Tags,
		CreatedAt:   ledger.Timestamp(event.PlayedAt()),
	}
	if event.TrackNumber != nil {
		record.TrackNumber = *event.TrackNumber
	}

	if event.AlbumArtURL != nil {
		blob, err := s.uploadArtwork(ctx, *event.AlbumArtURL)
		if err != nil {
			return "", log.Err("failed to upload scrobble artwork", err, "url", *event.AlbumArtURL)
		}
		record.AlbumArt = blob
		record.AlbumArtURL = *event.AlbumArtURL
	}

	if err := record.Validate(); err != nil {
		return "", log.Err("scrobble record failed validation", err, "title", record.Title)
	}

	return s.ledger.CreateRecord(ctx, ledger.CollectionScrobble, ledger.NextTID(), &record)
}

func (s *RecordWriterService) uploadArtwork(ctx context.Context, url string) (*ledger.BlobRef, error) {
	data, reportedType, err := s.ledger.FetchBlob(ctx, url)
	if err != nil {
		return nil, err
	}

	return s.ledger.UploadBlob(ctx, data, contentTypeFor(url, data, reportedType))
}

// contentTypeFor prefers the server-reported type, then the URL suffix, then
// content sniffing.
func contentTypeFor(url string, data []byte, reported string) string {
	if reported != "" && reported != "application/octet-stream" {
		return reported
	}

	lower := strings.ToLower(url)
	switch {
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	case strings.HasSuffix(lower, ".gif"):
		return "image/gif"
	}

	return http.DetectContentType(data)
}

// primaryArtist is the artist an album or artist record is filed under:
// the album artist when present, the track artist otherwise.
func primaryArtist(event *types.PlayEvent) string {
	if event.AlbumArtist != "" {
		return event.AlbumArtist
	}
	return event.Artist
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
