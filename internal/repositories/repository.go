package repositories

import (
	"errors"
	"strings"

	"soundtrace/internal/database"

	"gorm.io/gorm"
)

type Repository struct {
	User         UserRepository
	Track        TrackRepository
	Album        AlbumRepository
	Artist       ArtistRepository
	Scrobble     ScrobbleRepository
	Relationship RelationshipRepository
	UserMusic    UserMusicRepository
}

func New(db database.DB) Repository {
	return Repository{
		User:         NewUserRepository(db),
		Track:        NewTrackRepository(db), // Track repo needs cache for resolved-row caching
		Album:        NewAlbumRepository(db),
		Artist:       NewArtistRepository(db),
		Scrobble:     NewScrobbleRepository(db),
		Relationship: NewRelationshipRepository(db),
		UserMusic:    NewUserMusicRepository(db),
	}
}

// isDuplicateKey reports whether an insert lost a race on a unique index.
// Callers treat that as "the row exists" and re-read instead of failing.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "SQLSTATE 23505") ||
		strings.Contains(err.Error(), "duplicate key value")
}
