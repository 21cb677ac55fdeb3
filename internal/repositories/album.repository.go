package repositories

import (
	"context"
	"errors"

	contextutil "soundtrace/internal/context"
	"soundtrace/internal/database"
	. "soundtrace/internal/models"

	logger "github.com/Bparsons0904/goLogger"

	"gorm.io/gorm"
)

type AlbumRepository interface {
	GetByHash(ctx context.Context, hash string) (*Album, error)
	GetByURI(ctx context.Context, uri string) (*Album, error)
	SetArtistURI(ctx context.Context, album *Album, artistURI string) error
}

type albumRepository struct {
	db  database.DB
	log logger.Logger
}

func NewAlbumRepository(db database.DB) AlbumRepository {
	return &albumRepository{
		db:  db,
		log: logger.New("albumRepository"),
	}
}

func (r *albumRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextutil.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *albumRepository) GetByHash(ctx context.Context, hash string) (*Album, error) {
	log := r.log.Function("GetByHash")

	var album Album
	if err := r.getDB(ctx).First(&album, "sha256 = ?", hash).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get album by hash", err, "hash", hash)
	}

	return &album, nil
}

func (r *albumRepository) GetByURI(ctx context.Context, uri string) (*Album, error) {
	log := r.log.Function("GetByURI")

	var album Album
	if err := r.getDB(ctx).First(&album, "uri = ?", uri).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get album by URI", err, "uri", uri)
	}

	return &album, nil
}

// SetArtistURI backfills the album's artist cross-reference. Monotonic: the
// first writer wins, later calls are no-ops.
func (r *albumRepository) SetArtistURI(ctx context.Context, album *Album, artistURI string) error {
	log := r.log.Function("SetArtistURI")

	result := r.getDB(ctx).Model(&Album{}).
		Where("id = ? AND artist_uri IS NULL", album.ID).
		Update("artist_uri", artistURI)
	if result.Error != nil {
		return log.Err("failed to set album artist URI", result.Error, "albumID", album.ID)
	}

	if result.RowsAffected > 0 {
		album.ArtistURI = &artistURI
	}

	return nil
}
