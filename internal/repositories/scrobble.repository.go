package repositories

import (
	"context"
	"errors"
	"time"

	contextutil "soundtrace/internal/context"
	"soundtrace/internal/database"
	. "soundtrace/internal/models"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScrobbleRepository interface {
	GetByURI(ctx context.Context, uri string) (*Scrobble, error)
	FindRecent(ctx context.Context, userID uuid.UUID, title, artist string, around time.Time, window time.Duration) (*Scrobble, error)
	GetRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Scrobble, error)
	GetUnpublished(ctx context.Context, limit int) ([]*Scrobble, error)
	MarkPublished(ctx context.Context, id uuid.UUID) error
}

type scrobbleRepository struct {
	db  database.DB
	log logger.Logger
}

func NewScrobbleRepository(db database.DB) ScrobbleRepository {
	return &scrobbleRepository{
		db:  db,
		log: logger.New("scrobbleRepository"),
	}
}

func (r *scrobbleRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextutil.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *scrobbleRepository) GetByURI(ctx context.Context, uri string) (*Scrobble, error) {
	log := r.log.Function("GetByURI")

	var scrobble Scrobble
	err := r.getDB(ctx).
		Preload("User").
		Preload("Track").
		Preload("Album").
		Preload("Artist").
		First(&scrobble, "uri = ?", uri).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get scrobble by URI", err, "uri", uri)
	}

	return &scrobble, nil
}

// FindRecent probes for an earlier play of the same title and artist by the
// same user within the window around the given timestamp. Used to suppress
// duplicate submissions from overlapping sources.
func (r *scrobbleRepository) FindRecent(
	ctx context.Context,
	userID uuid.UUID,
	title, artist string,
	around time.Time,
	window time.Duration,
) (*Scrobble, error) {
	log := r.log.Function("FindRecent")

	var scrobble Scrobble
	err := r.getDB(ctx).
		Where("user_id = ? AND title = ? AND artist = ?", userID, title, artist).
		Where("timestamp BETWEEN ? AND ?", around.Add(-window), around.Add(window)).
		Order("timestamp DESC").
		First(&scrobble).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to find recent scrobble", err, "userID", userID, "title", title)
	}

	return &scrobble, nil
}

// GetRecentByUser returns the user's latest plays, newest first.
func (r *scrobbleRepository) GetRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Scrobble, error) {
	log := r.log.Function("GetRecentByUser")

	var scrobbles []*Scrobble
	err := r.getDB(ctx).
		Preload("Track").
		Preload("Album").
		Preload("Artist").
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&scrobbles).Error
	if err != nil {
		return nil, log.Err("failed to get recent scrobbles", err, "userID", userID)
	}

	return scrobbles, nil
}

// GetUnpublished returns scrobbles whose bus messages never went out, oldest
// first, for the requeue sweep.
func (r *scrobbleRepository) GetUnpublished(ctx context.Context, limit int) ([]*Scrobble, error) {
	log := r.log.Function("GetUnpublished")

	var scrobbles []*Scrobble
	err := r.getDB(ctx).
		Preload("User").
		Preload("Track").
		Preload("Album").
		Preload("Artist").
		Where("published = false AND uri IS NOT NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&scrobbles).Error
	if err != nil {
		return nil, log.Err("failed to get unpublished scrobbles", err)
	}

	return scrobbles, nil
}

func (r *scrobbleRepository) MarkPublished(ctx context.Context, id uuid.UUID) error {
	log := r.log.Function("MarkPublished")

	result := r.getDB(ctx).Model(&Scrobble{}).
		Where("id = ?", id).
		Update("published", true)
	if result.Error != nil {
		return log.Err("failed to mark scrobble published", result.Error, "scrobbleID", id)
	}

	return nil
}
