package scrobbleController

import (
	"context"
	"errors"
	"time"

	"soundtrace/config"
	"soundtrace/internal/database"
	. "soundtrace/internal/models"
	"soundtrace/internal/repositories"
	"soundtrace/internal/services"
	"soundtrace/internal/types"

	logger "github.com/Bparsons0904/goLogger"
)

const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100

	// Worst case the pipeline waits out two full convergence budgets, so the
	// detached processing context gets generous headroom.
	processingTimeout = 5 * time.Minute
)

var (
	ErrValidation = errors.New("validation error")
)

type ScrobbleControllerInterface interface {
	SubmitScrobble(ctx context.Context, user *User, event *types.PlayEvent) error
	GetRecentScrobbles(ctx context.Context, user *User, limit int) ([]*Scrobble, error)
}

type ScrobbleController struct {
	scrobbleRepo    repositories.ScrobbleRepository
	scrobbleService *services.ScrobbleService
	db              database.DB
	Config          config.Config
	log             logger.Logger
}

func New(
	repos repositories.Repository,
	service services.Service,
	config config.Config,
	db database.DB,
) *ScrobbleController {
	return &ScrobbleController{
		scrobbleRepo:    repos.Scrobble,
		scrobbleService: service.Scrobble,
		db:              db,
		Config:          config,
		log:             logger.New("scrobbleController"),
	}
}

// SubmitScrobble validates the play event and hands it to the pipeline on a
// detached context: convergence polling outlives the HTTP request, so the
// caller gets an accepted response while processing continues.
func (sc *ScrobbleController) SubmitScrobble(ctx context.Context, user *User, event *types.PlayEvent) error {
	log := sc.log.Function("SubmitScrobble")

	if event.Title == "" {
		return errors.Join(ErrValidation, errors.New("title is required"))
	}
	if event.Artist == "" {
		return errors.Join(ErrValidation, errors.New("artist is required"))
	}
	if event.Album == "" {
		return errors.Join(ErrValidation, errors.New("album is required"))
	}

	go func() {
		processCtx, cancel := context.WithTimeout(context.Background(), processingTimeout)
		defer cancel()

		scrobble, err := sc.scrobbleService.ProcessScrobble(processCtx, user, event)
		if err != nil {
			log.Er("scrobble processing failed", err,
				"userID", user.ID,
				"title", event.Title,
				"artist", event.Artist,
			)
			return
		}

		log.Info("Scrobble processed",
			"userID", user.ID,
			"scrobbleID", scrobble.ID,
			"published", scrobble.Published,
		)
	}()

	return nil
}

func (sc *ScrobbleController) GetRecentScrobbles(ctx context.Context, user *User, limit int) ([]*Scrobble, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	return sc.scrobbleRepo.GetRecentByUser(ctx, user.ID, limit)
}
