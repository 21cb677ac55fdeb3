package services

import (
	"context"
	"testing"

	"soundtrace/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func convergedEntities() *ConvergedEntities {
	track := &models.Track{URI: strPtr("at://ledger/song/1")}
	track.ID = uuid.New()
	album := &models.Album{URI: strPtr("at://ledger/album/1")}
	album.ID = uuid.New()
	artist := &models.Artist{URI: strPtr("at://ledger/artist/1")}
	artist.ID = uuid.New()

	return &ConvergedEntities{Track: track, Album: album, Artist: artist}
}

func TestEnsureRelationshipsAllPairs(t *testing.T) {
	repos := newFakeRepos()
	svc := NewRelationshipService(repos.repository())

	entities := convergedEntities()
	rows, err := svc.EnsureRelationships(context.Background(), entities)
	require.NoError(t, err)

	require.Len(t, repos.relationship.albumTracks, 1)
	assert.Equal(t, pair{entities.Album.ID, entities.Track.ID}, repos.relationship.albumTracks[0])

	require.Len(t, repos.relationship.artistTracks, 1)
	assert.Equal(t, pair{entities.Artist.ID, entities.Track.ID}, repos.relationship.artistTracks[0])

	require.Len(t, repos.relationship.artistAlbums, 1)
	assert.Equal(t, pair{entities.Artist.ID, entities.Album.ID}, repos.relationship.artistAlbums[0])

	require.NotNil(t, rows.AlbumTrack)
	require.NotNil(t, rows.ArtistTrack)
	require.NotNil(t, rows.ArtistAlbum)
	assert.Equal(t, entities.Album.ID, rows.AlbumTrack.AlbumID)
	assert.Equal(t, entities.Track.ID, rows.ArtistTrack.TrackID)
	assert.Equal(t, entities.Artist.ID, rows.ArtistAlbum.ArtistID)
}

func TestEnsureRelationshipsSkipsMissingEntities(t *testing.T) {
	repos := newFakeRepos()
	svc := NewRelationshipService(repos.repository())

	entities := convergedEntities()
	entities.Album = nil

	rows, err := svc.EnsureRelationships(context.Background(), entities)
	require.NoError(t, err)

	assert.Empty(t, repos.relationship.albumTracks)
	assert.Empty(t, repos.relationship.artistAlbums)
	assert.Len(t, repos.relationship.artistTracks, 1, "the artist track pair needs no album")

	assert.Nil(t, rows.AlbumTrack)
	assert.Nil(t, rows.ArtistAlbum)
	assert.NotNil(t, rows.ArtistTrack)
}

func TestEnsureUserAggregates(t *testing.T) {
	repos := newFakeRepos()
	svc := NewRelationshipService(repos.repository())

	userID := uuid.New()
	entities := convergedEntities()

	rows, err := svc.EnsureUserAggregates(context.Background(), userID, entities)
	require.NoError(t, err)

	require.Len(t, repos.userMusic.userTracks, 1)
	assert.Equal(t, pair{userID, entities.Track.ID}, repos.userMusic.userTracks[0])
	require.Len(t, repos.userMusic.userAlbums, 1)
	assert.Equal(t, pair{userID, entities.Album.ID}, repos.userMusic.userAlbums[0])
	require.Len(t, repos.userMusic.userArtists, 1)
	assert.Equal(t, pair{userID, entities.Artist.ID}, repos.userMusic.userArtists[0])

	require.NotNil(t, rows.UserTrack)
	require.NotNil(t, rows.UserAlbum)
	require.NotNil(t, rows.UserArtist)
	assert.Equal(t, userID, rows.UserTrack.UserID)
	assert.Equal(t, 1, rows.UserTrack.Scrobbles)
}

func TestEnsureUserAggregatesPartialEntities(t *testing.T) {
	repos := newFakeRepos()
	svc := NewRelationshipService(repos.repository())

	entities := convergedEntities()
	entities.Track = nil
	entities.Artist = nil

	rows, err := svc.EnsureUserAggregates(context.Background(), uuid.New(), entities)
	require.NoError(t, err)

	assert.Empty(t, repos.userMusic.userTracks)
	assert.Len(t, repos.userMusic.userAlbums, 1)
	assert.Empty(t, repos.userMusic.userArtists)

	assert.Nil(t, rows.UserTrack)
	assert.NotNil(t, rows.UserAlbum)
	assert.Nil(t, rows.UserArtist)
}
