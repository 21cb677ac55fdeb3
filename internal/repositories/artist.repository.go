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

type ArtistRepository interface {
	GetByHashes(ctx context.Context, hashes []string) (*Artist, error)
	GetByURI(ctx context.Context, uri string) (*Artist, error)
}

type artistRepository struct {
	db  database.DB
	log logger.Logger
}

func NewArtistRepository(db database.DB) ArtistRepository {
	return &artistRepository{
		db:  db,
		log: logger.New("artistRepository"),
	}
}

func (r *artistRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextutil.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

// GetByHashes matches an artist against any of the candidate hashes. Callers
// pass the album-artist hash first so it wins when both candidates exist.
func (r *artistRepository) GetByHashes(ctx context.Context, hashes []string) (*Artist, error) {
	log := r.log.Function("GetByHashes")

	if len(hashes) == 0 {
		return nil, nil
	}

	var artists []Artist
	if err := r.getDB(ctx).Where("sha256 IN ?", hashes).Find(&artists).Error; err != nil {
		return nil, log.Err("failed to get artist by hashes", err, "hashes", hashes)
	}

	for _, hash := range hashes {
		for i := range artists {
			if artists[i].SHA256 == hash {
				return &artists[i], nil
			}
		}
	}

	return nil, nil
}

func (r *artistRepository) GetByURI(ctx context.Context, uri string) (*Artist, error) {
	log := r.log.Function("GetByURI")

	var artist Artist
	if err := r.getDB(ctx).First(&artist, "uri = ?", uri).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get artist by URI", err, "uri", uri)
	}

	return &artist, nil
}
