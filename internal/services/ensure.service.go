package services

import (
	"context"
	"strings"
	"sync"

	"soundtrace/internal/repositories"
	"soundtrace/internal/types"
	"soundtrace/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
)

// EnsureService guarantees that the catalog entities behind a play event
// exist in the ledger. An entity already resolved in the projection is reused
// by its URI; a missing one gets a fresh ledger record.
type EnsureService struct {
	repos  repositories.Repository
	writer RecordWriter
	log    logger.Logger
}

// EnsuredURIs carries the ledger URIs of the three entities behind one play.
// An empty URI means the ensure for that entity failed; the pipeline carries
// on with what it has.
type EnsuredURIs struct {
	Track  string
	Album  string
	Artist string
}

func NewEnsureService(repos repositories.Repository, writer RecordWriter) *EnsureService {
	return &EnsureService{
		repos:  repos,
		writer: writer,
		log:    logger.New("ensureService"),
	}
}

// EnsureAll resolves the track, album and artist in parallel. Individual
// failures are logged and yield an empty URI; the caller decides how much
// of the pipeline can still proceed.
func (s *EnsureService) EnsureAll(ctx context.Context, event *types.PlayEvent) EnsuredURIs {
	log := s.log.Function("EnsureAll")

	var uris EnsuredURIs
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		uri, err := s.EnsureTrack(ctx, event)
		if err != nil {
			log.Er("failed to ensure track", err, "title", event.Title)
			return
		}
		uris.Track = uri
	}()

	go func() {
		defer wg.Done()
		uri, err := s.EnsureAlbum(ctx, event)
		if err != nil {
			log.Er("failed to ensure album", err, "album", event.Album)
			return
		}
		uris.Album = uri
	}()

	go func() {
		defer wg.Done()
		uri, err := s.EnsureArtist(ctx, event)
		if err != nil {
			log.Er("failed to ensure artist", err, "artist", event.Artist)
			return
		}
		uris.Artist = uri
	}()

	wg.Wait()
	return uris
}

// EnsureTrack returns the track's ledger URI, writing a song record when the
// projection has no resolved row for its content hash.
func (s *EnsureService) EnsureTrack(ctx context.Context, event *types.PlayEvent) (string, error) {
	hash := utils.TrackKey(event.Title, event.Artist, event.Album)

	track, err := s.repos.Track.GetByHash(ctx, hash)
	if err != nil {
		return "", err
	}
	if track != nil && track.URI != nil {
		return *track.URI, nil
	}

	return s.writer.CreateSong(ctx, event)
}

func (s *EnsureService) EnsureAlbum(ctx context.Context, event *types.PlayEvent) (string, error) {
	hash := utils.AlbumKey(event.Album, event.AlbumArtist)

	album, err := s.repos.Album.GetByHash(ctx, hash)
	if err != nil {
		return "", err
	}
	if album != nil && album.URI != nil {
		return *album.URI, nil
	}

	return s.writer.CreateAlbum(ctx, event)
}

// EnsureSplitArtists writes artist records for the secondary participants of
// a collaboration track. The primary artist is handled by EnsureArtist; the
// rest only need to exist in the catalog, so failures are logged and skipped.
func (s *EnsureService) EnsureSplitArtists(ctx context.Context, event *types.PlayEvent) {
	log := s.log.Function("EnsureSplitArtists")

	primary := event.AlbumArtist
	if primary == "" {
		primary = event.Artist
	}

	for _, name := range event.Artists() {
		if strings.EqualFold(name, primary) {
			continue
		}

		artist, err := s.repos.Artist.GetByHashes(ctx, []string{utils.ArtistKey(name)})
		if err != nil {
			log.Er("failed to look up split artist", err, "name", name)
			continue
		}
		if artist != nil {
			continue
		}

		if _, err := s.writer.CreateNamedArtist(ctx, name, event); err != nil {
			log.Er("failed to create split artist", err, "name", name)
		}
	}
}

// EnsureArtist matches against both the album-artist and track-artist hashes;
// sources disagree on which one they fill in.
func (s *EnsureService) EnsureArtist(ctx context.Context, event *types.PlayEvent) (string, error) {
	hashes := utils.ArtistKeys(event.AlbumArtist, event.Artist)

	artist, err := s.repos.Artist.GetByHashes(ctx, hashes)
	if err != nil {
		return "", err
	}
	if artist != nil && artist.URI != nil {
		return *artist.URI, nil
	}

	return s.writer.CreateArtist(ctx, event)
}
