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

// RelationshipRepository ensures join rows between catalog entities. Every
// Ensure is idempotent and returns the row either way: an existing pair is
// returned untouched, a lost insert race is re-read as existing.
type RelationshipRepository interface {
	EnsureAlbumTrack(ctx context.Context, albumID, trackID uuid.UUID) (*AlbumTrack, error)
	EnsureArtistTrack(ctx context.Context, artistID, trackID uuid.UUID) (*ArtistTrack, error)
	EnsureArtistAlbum(ctx context.Context, artistID, albumID uuid.UUID) (*ArtistAlbum, error)
}

type relationshipRepository struct {
	db  database.DB
	log logger.Logger
}

func NewRelationshipRepository(db database.DB) RelationshipRepository {
	return &relationshipRepository{
		db:  db,
		log: logger.New("relationshipRepository"),
	}
}

func (r *relationshipRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextutil.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *relationshipRepository) EnsureAlbumTrack(ctx context.Context, albumID, trackID uuid.UUID) (*AlbumTrack, error) {
	log := r.log.Function("EnsureAlbumTrack")

	var existing AlbumTrack
	err := r.getDB(ctx).
		First(&existing, "album_id = ? AND track_id = ?", albumID, trackID).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, log.Err("failed to check album track pair", err, "albumID", albumID, "trackID", trackID)
	}

	row := AlbumTrack{AlbumID: albumID, TrackID: trackID}
	if err := r.getDB(ctx).Create(&row).Error; err != nil {
		if isDuplicateKey(err) {
			return r.EnsureAlbumTrack(ctx, albumID, trackID)
		}
		return nil, log.Err("failed to create album track pair", err, "albumID", albumID, "trackID", trackID)
	}

	return &row, nil
}

func (r *relationshipRepository) EnsureArtistTrack(ctx context.Context, artistID, trackID uuid.UUID) (*ArtistTrack, error) {
	log := r.log.Function("EnsureArtistTrack")

	var existing ArtistTrack
	err := r.getDB(ctx).
		First(&existing, "artist_id = ? AND track_id = ?", artistID, trackID).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, log.Err("failed to check artist track pair", err, "artistID", artistID, "trackID", trackID)
	}

	row := ArtistTrack{ArtistID: artistID, TrackID: trackID}
	if err := r.getDB(ctx).Create(&row).Error; err != nil {
		if isDuplicateKey(err) {
			return r.EnsureArtistTrack(ctx, artistID, trackID)
		}
		return nil, log.Err("failed to create artist track pair", err, "artistID", artistID, "trackID", trackID)
	}

	return &row, nil
}

func (r *relationshipRepository) EnsureArtistAlbum(ctx context.Context, artistID, albumID uuid.UUID) (*ArtistAlbum, error) {
	log := r.log.Function("EnsureArtistAlbum")

	var existing ArtistAlbum
	err := r.getDB(ctx).
		First(&existing, "artist_id = ? AND album_id = ?", artistID, albumID).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, log.Err("failed to check artist album pair", err, "artistID", artistID, "albumID", albumID)
	}

	row := ArtistAlbum{ArtistID: artistID, AlbumID: albumID}
	if err := r.getDB(ctx).Create(&row).Error; err != nil {
		if isDuplicateKey(err) {
			return r.EnsureArtistAlbum(ctx, artistID, albumID)
		}
		return nil, log.Err("failed to create artist album pair", err, "artistID", artistID, "albumID", albumID)
	}

	return &row, nil
}
