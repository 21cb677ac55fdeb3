package repositories

import (
	"context"
	"errors"

	contextutil "soundtrace/internal/context"
	"soundtrace/internal/database"
	. "soundtrace/internal/models"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserMusicRepository seeds the per-user aggregate rows and returns them. A
// row is created with Scrobbles=1 the first time a user plays an entity; an
// external process owns the increments after that, so an existing row is
// returned untouched.
type UserMusicRepository interface {
	EnsureUserTrack(ctx context.Context, userID, trackID uuid.UUID, uri *string) (*UserTrack, error)
	EnsureUserAlbum(ctx context.Context, userID, albumID uuid.UUID, uri *string) (*UserAlbum, error)
	EnsureUserArtist(ctx context.Context, userID, artistID uuid.UUID, uri *string) (*UserArtist, error)
}

type userMusicRepository struct {
	db  database.DB
	log logger.Logger
}

func NewUserMusicRepository(db database.DB) UserMusicRepository {
	return &userMusicRepository{
		db:  db,
		log: logger.New("userMusicRepository"),
	}
}

func (r *userMusicRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextutil.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *userMusicRepository) EnsureUserTrack(ctx context.Context, userID, trackID uuid.UUID, uri *string) (*UserTrack, error) {
	log := r.log.Function("EnsureUserTrack")

	var existing UserTrack
	err := r.getDB(ctx).
		First(&existing, "user_id = ? AND track_id = ?", userID, trackID).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, log.Err("failed to check user track", err, "userID", userID, "trackID", trackID)
	}

	row := UserTrack{UserID: userID, TrackID: trackID, URI: uri, Scrobbles: 1}
	if err := r.getDB(ctx).Create(&row).Error; err != nil {
		if isDuplicateKey(err) {
			return r.EnsureUserTrack(ctx, userID, trackID, uri)
		}
		return nil, log.Err("failed to create user track", err, "userID", userID, "trackID", trackID)
	}

	return &row, nil
}

func (r *userMusicRepository) EnsureUserAlbum(ctx context.Context, userID, albumID uuid.UUID, uri *string) (*UserAlbum, error) {
	log := r.log.Function("EnsureUserAlbum")

	var existing UserAlbum
	err := r.getDB(ctx).
		First(&existing, "user_id = ? AND album_id = ?", userID, albumID).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, log.Err("failed to check user album", err, "userID", userID, "albumID", albumID)
	}

	row := UserAlbum{UserID: userID, AlbumID: albumID, URI: uri, Scrobbles: 1}
	if err := r.getDB(ctx).Create(&row).Error; err != nil {
		if isDuplicateKey(err) {
			return r.EnsureUserAlbum(ctx, userID, albumID, uri)
		}
		return nil, log.Err("failed to create user album", err, "userID", userID, "albumID", albumID)
	}

	return &row, nil
}

func (r *userMusicRepository) EnsureUserArtist(ctx context.Context, userID, artistID uuid.UUID, uri *string) (*UserArtist, error) {
	log := r.log.Function("EnsureUserArtist")

	var existing UserArtist
	err := r.getDB(ctx).
		First(&existing, "user_id = ? AND artist_id = ?", userID, artistID).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, log.Err("failed to check user artist", err, "userID", userID, "artistID", artistID)
	}

	row := UserArtist{UserID: userID, ArtistID: artistID, URI: uri, Scrobbles: 1}
	if err := r.getDB(ctx).Create(&row).Error; err != nil {
		if isDuplicateKey(err) {
			return r.EnsureUserArtist(ctx, userID, artistID, uri)
		}
		return nil, log.Err("failed to create user artist", err, "userID", userID, "artistID", artistID)
	}

	return &row, nil
}
