package services

import (
	"context"
	"errors"
	"testing"

	"soundtrace/internal/models"
	"soundtrace/internal/types"
	"soundtrace/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlayEvent() *types.PlayEvent {
	return &types.PlayEvent{
		Title:       "Song A",
		Artist:      "Artist X",
		AlbumArtist: "Artist X",
		Album:       "Album Y",
		Duration:    215000,
	}
}

func TestEnsureTrackReusesResolvedRow(t *testing.T) {
	repos := newFakeRepos()
	writer := &fakeWriter{}

	repos.track.getByHash = func(hash string) (*models.Track, error) {
		assert.Equal(t, utils.TrackKey("Song A", "Artist X", "Album Y"), hash)
		return &models.Track{URI: strPtr("at://ledger/song/existing")}, nil
	}

	svc := NewEnsureService(repos.repository(), writer)

	uri, err := svc.EnsureTrack(context.Background(), testPlayEvent())

	require.NoError(t, err)
	assert.Equal(t, "at://ledger/song/existing", uri)
	assert.Zero(t, writer.songCalls, "no ledger write for an already resolved track")
}

func TestEnsureTrackWritesWhenMissing(t *testing.T) {
	repos := newFakeRepos()
	writer := &fakeWriter{}

	svc := NewEnsureService(repos.repository(), writer)

	uri, err := svc.EnsureTrack(context.Background(), testPlayEvent())

	require.NoError(t, err)
	assert.Equal(t, "at://ledger/song/1", uri)
	assert.Equal(t, 1, writer.songCalls)
}

func TestEnsureTrackWritesWhenRowUnresolved(t *testing.T) {
	repos := newFakeRepos()
	writer := &fakeWriter{}

	// Row exists but carries no ledger URI, so it cannot be reused.
	repos.track.getByHash = func(hash string) (*models.Track, error) {
		return &models.Track{}, nil
	}

	svc := NewEnsureService(repos.repository(), writer)

	uri, err := svc.EnsureTrack(context.Background(), testPlayEvent())

	require.NoError(t, err)
	assert.Equal(t, "at://ledger/song/1", uri)
	assert.Equal(t, 1, writer.songCalls)
}

func TestEnsureArtistMatchesEitherHash(t *testing.T) {
	repos := newFakeRepos()
	writer := &fakeWriter{}

	var seenHashes []string
	repos.artist.getByHashes = func(hashes []string) (*models.Artist, error) {
		seenHashes = hashes
		return &models.Artist{URI: strPtr("at://ledger/artist/existing")}, nil
	}

	svc := NewEnsureService(repos.repository(), writer)

	event := testPlayEvent()
	event.AlbumArtist = "Artist X"
	event.Artist = "Artist X feat. Artist Z"

	uri, err := svc.EnsureArtist(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, "at://ledger/artist/existing", uri)
	assert.Equal(t, utils.ArtistKeys("Artist X", "Artist X feat. Artist Z"), seenHashes)
	assert.Zero(t, writer.artistCalls)
}

func TestEnsureSplitArtists(t *testing.T) {
	repos := newFakeRepos()
	writer := &fakeWriter{}

	repos.artist.getByHashes = func(hashes []string) (*models.Artist, error) {
		// "Artist Z" already exists in the catalog.
		if hashes[0] == utils.ArtistKey("Artist Z") {
			return &models.Artist{URI: strPtr("at://ledger/artist/z")}, nil
		}
		return nil, nil
	}

	svc := NewEnsureService(repos.repository(), writer)

	event := testPlayEvent()
	event.Artist = "Artist X, Artist Y x Artist Z"
	svc.EnsureSplitArtists(context.Background(), event)

	assert.Equal(t, []string{"Artist Y"}, writer.namedArtists,
		"only the missing secondary artist gets a record; the primary and the known artist are skipped")
}

func TestEnsureAllParallelFailureIsolated(t *testing.T) {
	repos := newFakeRepos()
	writer := &fakeWriter{
		createAlbum: func(event *types.PlayEvent) (string, error) {
			return "", errors.New("ledger unavailable")
		},
	}

	svc := NewEnsureService(repos.repository(), writer)

	uris := svc.EnsureAll(context.Background(), testPlayEvent())

	assert.Equal(t, "at://ledger/song/1", uris.Track)
	assert.Empty(t, uris.Album, "a failed ensure yields an empty URI, not a pipeline abort")
	assert.Equal(t, "at://ledger/artist/1", uris.Artist)
}

func TestEnsureAllIdempotentFastPath(t *testing.T) {
	repos := newFakeRepos()
	writer := &fakeWriter{}

	repos.track.getByHash = func(hash string) (*models.Track, error) {
		return &models.Track{URI: strPtr("at://ledger/song/existing")}, nil
	}
	repos.album.getByHash = func(hash string) (*models.Album, error) {
		return &models.Album{URI: strPtr("at://ledger/album/existing")}, nil
	}
	repos.artist.getByHashes = func(hashes []string) (*models.Artist, error) {
		return &models.Artist{URI: strPtr("at://ledger/artist/existing")}, nil
	}

	svc := NewEnsureService(repos.repository(), writer)

	uris := svc.EnsureAll(context.Background(), testPlayEvent())

	assert.Equal(t, "at://ledger/song/existing", uris.Track)
	assert.Equal(t, "at://ledger/album/existing", uris.Album)
	assert.Equal(t, "at://ledger/artist/existing", uris.Artist)
	assert.Zero(t, writer.songCalls+writer.albumCalls+writer.artistCalls,
		"replaying a known play writes nothing to the ledger")
}
