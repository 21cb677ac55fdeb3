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

const trackHashPattern = "track:%s"

type TrackRepository interface {
	GetByHash(ctx context.Context, hash string) (*Track, error)
	GetByURI(ctx context.Context, uri string) (*Track, error)
	SetAlbumURI(ctx context.Context, track *Track, albumURI string) error
	SetArtistURI(ctx context.Context, track *Track, artistURI string) error
}

type trackRepository struct {
	db  database.DB
	log logger.Logger
}

func NewTrackRepository(db database.DB) TrackRepository {
	return &trackRepository{
		db:  db,
		log: logger.New("trackRepository"),
	}
}

func (r *trackRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextutil.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

// GetByHash looks a track up by its content hash. Resolved rows are served
// from the entity cache; unresolved rows always hit the database because the
// indexer may attach their ledger URI at any moment.
func (r *trackRepository) GetByHash(ctx context.Context, hash string) (*Track, error) {
	log := r.log.Function("GetByHash")

	var cached Track
	found, err := database.NewCacheBuilder(r.db.Cache.Entities, hash).
		WithHashPattern(trackHashPattern).
		WithContext(ctx).
		Get(&cached)
	if err != nil {
		log.Er("failed to read track from cache", err, "hash", hash)
	}
	if found {
		return &cached, nil
	}

	var track Track
	if err := r.getDB(ctx).First(&track, "sha256 = ?", hash).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get track by hash", err, "hash", hash)
	}

	if track.URI != nil {
		r.cacheTrack(ctx, &track)
	}

	return &track, nil
}

func (r *trackRepository) GetByURI(ctx context.Context, uri string) (*Track, error) {
	log := r.log.Function("GetByURI")

	var track Track
	if err := r.getDB(ctx).First(&track, "uri = ?", uri).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get track by URI", err, "uri", uri)
	}

	return &track, nil
}

// SetAlbumURI backfills the album cross-reference. The guard keeps the write
// monotonic: once set, the reference never changes.
func (r *trackRepository) SetAlbumURI(ctx context.Context, track *Track, albumURI string) error {
	log := r.log.Function("SetAlbumURI")

	result := r.getDB(ctx).Model(&Track{}).
		Where("id = ? AND album_uri IS NULL", track.ID).
		Update("album_uri", albumURI)
	if result.Error != nil {
		return log.Err("failed to set track album URI", result.Error, "trackID", track.ID)
	}

	if result.RowsAffected > 0 {
		track.AlbumURI = &albumURI
		r.dropCachedTrack(ctx, track.SHA256)
	}

	return nil
}

// SetArtistURI backfills the artist cross-reference, monotonic as above.
func (r *trackRepository) SetArtistURI(ctx context.Context, track *Track, artistURI string) error {
	log := r.log.Function("SetArtistURI")

	result := r.getDB(ctx).Model(&Track{}).
		Where("id = ? AND artist_uri IS NULL", track.ID).
		Update("artist_uri", artistURI)
	if result.Error != nil {
		return log.Err("failed to set track artist URI", result.Error, "trackID", track.ID)
	}

	if result.RowsAffected > 0 {
		track.ArtistURI = &artistURI
		r.dropCachedTrack(ctx, track.SHA256)
	}

	return nil
}

func (r *trackRepository) cacheTrack(ctx context.Context, track *Track) {
	log := r.log.Function("cacheTrack")

	cacheErr := database.NewCacheBuilder(r.db.Cache.Entities, track.SHA256).
		WithHashPattern(trackHashPattern).
		WithStruct(track).
		WithContext(ctx).
		Set()
	if cacheErr != nil {
		log.Er("failed to cache track", cacheErr, "hash", track.SHA256)
	}
}

func (r *trackRepository) dropCachedTrack(ctx context.Context, hash string) {
	log := r.log.Function("dropCachedTrack")

	cacheErr := database.NewCacheBuilder(r.db.Cache.Entities, hash).
		WithHashPattern(trackHashPattern).
		WithContext(ctx).
		Delete()
	if cacheErr != nil {
		log.Er("failed to drop cached track", cacheErr, "hash", hash)
	}
}
