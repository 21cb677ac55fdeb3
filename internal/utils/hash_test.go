package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackKey(t *testing.T) {
	t.Run("matches the historical recipe exactly", func(t *testing.T) {
		sum := sha256.Sum256([]byte("song a - artist x - album y"))
		expected := hex.EncodeToString(sum[:])

		assert.Equal(t, expected, TrackKey("Song A", "Artist X", "Album Y"))
	})

	t.Run("is case insensitive", func(t *testing.T) {
		a := TrackKey("Song A", "Artist X", "Album Y")
		b := TrackKey("SONG A", "artist x", "AlBuM y")

		assert.Equal(t, a, b)
	})

	t.Run("differs when any component differs", func(t *testing.T) {
		base := TrackKey("Song A", "Artist X", "Album Y")

		assert.NotEqual(t, base, TrackKey("Song B", "Artist X", "Album Y"))
		assert.NotEqual(t, base, TrackKey("Song A", "Artist Z", "Album Y"))
		assert.NotEqual(t, base, TrackKey("Song A", "Artist X", "Album Z"))
	})
}

func TestAlbumKey(t *testing.T) {
	sum := sha256.Sum256([]byte("album y - artist x"))
	expected := hex.EncodeToString(sum[:])

	assert.Equal(t, expected, AlbumKey("Album Y", "Artist X"))
	assert.Equal(t, AlbumKey("album y", "ARTIST X"), AlbumKey("Album Y", "Artist X"))
}

func TestArtistKey(t *testing.T) {
	sum := sha256.Sum256([]byte("artist x"))
	expected := hex.EncodeToString(sum[:])

	assert.Equal(t, expected, ArtistKey("Artist X"))
}

func TestArtistKeys(t *testing.T) {
	t.Run("returns both keys when artist diverges from album artist", func(t *testing.T) {
		keys := ArtistKeys("Artist X", "Artist X, Artist Y")

		assert.Len(t, keys, 2)
		assert.Equal(t, ArtistKey("Artist X"), keys[0])
		assert.Equal(t, ArtistKey("Artist X, Artist Y"), keys[1])
	})

	t.Run("collapses when artist equals album artist", func(t *testing.T) {
		keys := ArtistKeys("Artist X", "artist x")

		assert.Len(t, keys, 1)
	})

	t.Run("collapses when artist is empty", func(t *testing.T) {
		keys := ArtistKeys("Artist X", "")

		assert.Len(t, keys, 1)
	})
}

func TestValidateHash(t *testing.T) {
	assert.True(t, ValidateHash(TrackKey("a", "b", "c")))
	assert.False(t, ValidateHash("not-a-hash"))
	assert.False(t, ValidateHash(""))
	assert.False(t, ValidateHash("ABCDEF0123456789ABCDEF0123456789ABCDEF0123456789ABCDEF0123456789"))
}
