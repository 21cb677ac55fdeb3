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

// UserRepository resolves callers to user rows. Users are provisioned out of
// band; this engine only reads them.
type UserRepository interface {
	GetByDID(ctx context.Context, did string) (*User, error)
}

type userRepository struct {
	db  database.DB
	log logger.Logger
}

func NewUserRepository(db database.DB) UserRepository {
	return &userRepository{
		db:  db,
		log: logger.New("userRepository"),
	}
}

func (r *userRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextutil.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *userRepository) GetByDID(ctx context.Context, did string) (*User, error) {
	log := r.log.Function("GetByDID")

	var user User
	if err := r.getDB(ctx).First(&user, "did = ?", did).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get user by DID", err, "did", did)
	}

	return &user, nil
}
