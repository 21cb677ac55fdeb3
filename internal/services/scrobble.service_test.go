package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"soundtrace/config"
	"soundtrace/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	user := &models.User{
		DID:    "did:plc:listener",
		Handle: "listener.example.com",
	}
	user.ID = uuid.New()
	return user
}

func resolvedScrobble(userID uuid.UUID) *models.Scrobble {
	trackID := uuid.New()
	albumID := uuid.New()
	artistID := uuid.New()

	scrobble := &models.Scrobble{
		UserID:     userID,
		TrackID:    &trackID,
		AlbumID:    &albumID,
		ArtistID:   &artistID,
		Title:      "Song A",
		ArtistName: "Artist X",
		AlbumName:  "Album Y",
		URI:        strPtr("at://ledger/scrobble/1"),
		Timestamp:  time.Now().UTC(),
		Track:      &models.Track{Title: "Song A", Artist: "Artist X", Album: "Album Y", URI: strPtr("at://ledger/song/1")},
		Album:      &models.Album{Title: "Album Y", URI: strPtr("at://ledger/album/1")},
		Artist:     &models.Artist{Name: "Artist X", URI: strPtr("at://ledger/artist/1")},
	}
	scrobble.ID = uuid.New()
	scrobble.Track.ID = trackID
	scrobble.Album.ID = albumID
	scrobble.Artist.ID = artistID
	return scrobble
}

func newTestScrobbleService(
	repos *fakeRepos,
	writer *fakeWriter,
	bus *fakeBus,
	policy string,
) *ScrobbleService {
	repository := repos.repository()
	converge, _ := newTestConvergeService(repos, 5)
	return NewScrobbleService(
		repository,
		NewEnsureService(repository, writer),
		writer,
		converge,
		NewRelationshipService(repository),
		&fakeTx{},
		bus,
		config.Config{ScrobbleRetryPolicy: policy},
	)
}

func TestProcessScrobbleHappyPath(t *testing.T) {
	repos := newFakeRepos()
	writer := &fakeWriter{}
	bus := &fakeBus{}

	user := testUser()
	row := resolvedScrobble(user.ID)

	repos.scrobble.getByURI = func(uri string) (*models.Scrobble, error) {
		assert.Equal(t, "at://ledger/scrobble/1", uri)
		return row, nil
	}
	repos.track.getByURI = func(uri string) (*models.Track, error) { return row.Track, nil }
	repos.album.getByURI = func(uri string) (*models.Album, error) { return row.Album, nil }
	repos.artist.getByURI = func(uri string) (*models.Artist, error) { return row.Artist, nil }

	svc := newTestScrobbleService(repos, writer, bus, config.RetryPolicyDrop)

	scrobble, err := svc.ProcessScrobble(context.Background(), user, testPlayEvent())

	require.NoError(t, err)
	require.Equal(t, row, scrobble)
	assert.True(t, scrobble.Published)

	require.Len(t, bus.scrobbles, 1)
	assert.Equal(t, "did:plc:listener", bus.scrobbles[0].Scrobble.UserDID)
	assert.Equal(t, "Song A", bus.scrobbles[0].Scrobble.Title)
	assert.Equal(t, "at://ledger/scrobble/1", bus.scrobbles[0].Scrobble.URI)

	require.Len(t, bus.tracks, 1)
	assert.Equal(t, "at://ledger/song/1", bus.tracks[0].URI)

	assert.Equal(t, []string{"did:plc:listener"}, bus.syncDIDs)
	assert.Equal(t, []uuid.UUID{row.ID}, repos.scrobble.published)

	assert.Len(t, repos.relationship.albumTracks, 1)
	assert.Len(t, repos.relationship.artistTracks, 1)
	assert.Len(t, repos.relationship.artistAlbums, 1)
	assert.Len(t, repos.userMusic.userTracks, 1)
	assert.Len(t, repos.userMusic.userAlbums, 1)
	assert.Len(t, repos.userMusic.userArtists, 1)
}

func TestScrobbleMessageCarriesFullAggregate(t *testing.T) {
	repos := newFakeRepos()
	writer := &fakeWriter{}
	bus := &fakeBus{}

	user := testUser()
	row := resolvedScrobble(user.ID)
	repos.scrobble.getByURI = func(uri string) (*models.Scrobble, error) { return row, nil }
	repos.track.getByURI = func(uri string) (*models.Track, error) { return row.Track, nil }
	repos.album.getByURI = func(uri string) (*models.Album, error) { return row.Album, nil }
	repos.artist.getByURI = func(uri string) (*models.Artist, error) { return row.Artist, nil }

	svc := newTestScrobbleService(repos, writer, bus, config.RetryPolicyDrop)

	_, err := svc.ProcessScrobble(context.Background(), user, testPlayEvent())
	require.NoError(t, err)

	require.Len(t, bus.scrobbles, 1)
	data, err := json.Marshal(bus.scrobbles[0])
	require.NoError(t, err)

	var wire map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &wire))
	for _, key := range []string{
		"scrobble", "user", "track", "album", "artist",
		"album_track", "artist_track", "artist_album",
		"user_track", "user_album", "user_artist",
	} {
		assert.Contains(t, wire, key)
	}

	msg := bus.scrobbles[0]
	assert.Equal(t, user.ID.String(), msg.User.ID)
	assert.Equal(t, row.Track.ID.String(), msg.Track.ID)
	assert.Equal(t, row.Album.ID.String(), msg.AlbumTrack.AlbumID)
	assert.Equal(t, row.Track.ID.String(), msg.AlbumTrack.TrackID)
	assert.Equal(t, row.Artist.ID.String(), msg.ArtistAlbum.ArtistID)
	assert.Equal(t, user.ID.String(), msg.UserTrack.UserID)
	assert.Equal(t, 1, msg.UserTrack.Scrobbles)

	require.Len(t, bus.tracks, 1)
	trackMsg := bus.tracks[0]
	require.NotNil(t, trackMsg.AlbumTrack)
	require.NotNil(t, trackMsg.ArtistTrack)
	require.NotNil(t, trackMsg.ArtistAlbum)
	assert.Equal(t, row.Track.ID.String(), trackMsg.AlbumTrack.TrackID)
}

func TestProcessScrobbleDuplicateSuppressed(t *testing.T) {
	repos := newFakeRepos()
	writer := &fakeWriter{}
	bus := &fakeBus{}

	user := testUser()
	existing := resolvedScrobble(user.ID)

	repos.scrobble.findRecent = func(
		userID uuid.UUID,
		title, artist string,
		around time.Time,
		window time.Duration,
	) (*models.Scrobble, error) {
		assert.Equal(t, user.ID, userID)
		assert.Equal(t, "Song A", title)
		assert.Equal(t, "Artist X", artist)
		assert.Equal(t, time.Minute, window)
		return existing, nil
	}

	svc := newTestScrobbleService(repos, writer, bus, config.RetryPolicyDrop)

	scrobble, err := svc.ProcessScrobble(context.Background(), user, testPlayEvent())

	require.NoError(t, err)
	assert.Equal(t, existing, scrobble)
	assert.Zero(t, writer.scrobbleCalls, "duplicates never reach the ledger")
	assert.Empty(t, bus.scrobbles)
	assert.Empty(t, repos.scrobble.published)
}

func TestProcessScrobbleRowNeverMaterializes(t *testing.T) {
	repos := newFakeRepos()
	writer := &fakeWriter{}
	bus := &fakeBus{}

	svc := newTestScrobbleService(repos, writer, bus, config.RetryPolicyRequeue)

	scrobble, err := svc.ProcessScrobble(context.Background(), testUser(), testPlayEvent())

	require.ErrorIs(t, err, ErrNotConverged)
	assert.Nil(t, scrobble)
	assert.Equal(t, 1, writer.scrobbleCalls, "the ledger write is still durable")
	assert.Empty(t, bus.scrobbles)
	assert.Empty(t, repos.scrobble.published)
}

func TestProcessScrobblePublishFailureLeavesUnpublished(t *testing.T) {
	repos := newFakeRepos()
	writer := &fakeWriter{}
	bus := &fakeBus{failWith: errors.New("bus down")}

	user := testUser()
	row := resolvedScrobble(user.ID)
	repos.scrobble.getByURI = func(uri string) (*models.Scrobble, error) { return row, nil }
	repos.track.getByURI = func(uri string) (*models.Track, error) { return row.Track, nil }
	repos.album.getByURI = func(uri string) (*models.Album, error) { return row.Album, nil }
	repos.artist.getByURI = func(uri string) (*models.Artist, error) { return row.Artist, nil }

	svc := newTestScrobbleService(repos, writer, bus, config.RetryPolicyRequeue)

	scrobble, err := svc.ProcessScrobble(context.Background(), user, testPlayEvent())

	require.Error(t, err)
	assert.Equal(t, row, scrobble)
	assert.False(t, row.Published)
	assert.Empty(t, repos.scrobble.published, "a play is marked published only after its messages go out")
}

func TestRepublishPending(t *testing.T) {
	repos := newFakeRepos()
	writer := &fakeWriter{}
	bus := &fakeBus{}

	user := testUser()
	ready := resolvedScrobble(user.ID)
	ready.User = user

	stuck := &models.Scrobble{UserID: user.ID, User: user, URI: strPtr("at://ledger/scrobble/2")}
	stuck.ID = uuid.New()

	repos.scrobble.getUnpublished = func(limit int) ([]*models.Scrobble, error) {
		return []*models.Scrobble{ready, stuck}, nil
	}

	svc := newTestScrobbleService(repos, writer, bus, config.RetryPolicyRequeue)

	published, err := svc.RepublishPending(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, published)
	assert.Equal(t, []uuid.UUID{ready.ID}, repos.scrobble.published)
	require.Len(t, bus.scrobbles, 1)
	assert.Equal(t, "at://ledger/scrobble/1", bus.scrobbles[0].Scrobble.URI)
	assert.Len(t, bus.tracks, 1, "the resolved row republishes its track message too")
}
