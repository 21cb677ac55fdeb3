package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Identity keys are the dedup keys for projection rows. They are derived from
// normalized metadata, not from ledger record ids, so the same logical entity
// always maps to the same key no matter which process created it. The exact
// recipes are load-bearing: historical rows were keyed with them, and any
// change makes that data unreachable.

// TrackKey returns the content hash for a track.
func TrackKey(title, artist, album string) string {
	return hashLower(fmt.Sprintf("%s - %s - %s", title, artist, album))
}

// AlbumKey returns the content hash for an album.
func AlbumKey(album, albumArtist string) string {
	return hashLower(fmt.Sprintf("%s - %s", album, albumArtist))
}

// ArtistKey returns the content hash for an artist.
func ArtistKey(albumArtist string) string {
	return hashLower(albumArtist)
}

// ArtistKeys returns the candidate hashes for an artist lookup. Compilations
// and collaborations can diverge between the album artist and the track
// artist, so lookups match on either key. Writes always use the album-artist
// key (the first element).
func ArtistKeys(albumArtist, artist string) []string {
	keys := []string{ArtistKey(albumArtist)}
	if artist != "" && !strings.EqualFold(artist, albumArtist) {
		keys = append(keys, hashLower(artist))
	}
	return keys
}

func hashLower(value string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(value)))
	return hex.EncodeToString(sum[:])
}

// ValidateHash checks if a hash string is a 64 character lowercase hex string.
func ValidateHash(hash string) bool {
	if len(hash) != 64 {
		return false
	}

	for _, char := range hash {
		if !((char >= '0' && char <= '9') || (char >= 'a' && char <= 'f')) {
			return false
		}
	}

	return true
}
