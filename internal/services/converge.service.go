package services

import (
	"context"
	"errors"
	"time"

	"soundtrace/config"
	"soundtrace/internal/models"
	"soundtrace/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
)

// ErrNotConverged is returned when the projection did not materialize the
// expected rows within the polling budget. Callers still receive whatever
// partial state was observed.
var ErrNotConverged = errors.New("projection did not converge")

const maxBackoffInterval = 8 * time.Second

// ConvergeService bridges the gap between a durable ledger write and its
// visibility in the local projection: the external indexer materializes rows
// on its own schedule, so we poll with a bounded budget.
type ConvergeService struct {
	repos       repositories.Repository
	interval    time.Duration
	maxAttempts int
	backoff     bool
	sleep       func(time.Duration)
	log         logger.Logger
}

// ConvergedEntities holds the projection rows observed for one play. Fields
// stay nil for entities that never materialized or had no URI to wait on.
type ConvergedEntities struct {
	Track  *models.Track
	Album  *models.Album
	Artist *models.Artist
}

func NewConvergeService(repos repositories.Repository, config config.Config) *ConvergeService {
	return &ConvergeService{
		repos:       repos,
		interval:    time.Duration(config.ConvergeIntervalMS) * time.Millisecond,
		maxAttempts: config.ConvergeMaxAttempts,
		backoff:     config.ConvergeBackoff,
		sleep:       time.Sleep,
		log:         logger.New("convergeService"),
	}
}

// ConvergeEntities polls until every entity with a known URI has a projection
// row AND the cross-references between them have settled. Backfill runs
// inside the loop, so a failed backfill is retried within the budget instead
// of being reported as converged. On timeout the partial result is returned
// alongside ErrNotConverged.
func (s *ConvergeService) ConvergeEntities(ctx context.Context, uris EnsuredURIs) (*ConvergedEntities, error) {
	log := s.log.Function("ConvergeEntities")

	entities := &ConvergedEntities{}
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return entities, err
		}

		if err := s.observe(ctx, uris, entities); err != nil {
			return entities, err
		}

		s.backfill(ctx, uris, entities)

		if s.converged(uris, entities) {
			log.Info("Entities converged", "attempts", attempt+1)
			return entities, nil
		}

		s.sleep(s.wait(attempt))
	}

	log.Warn("Entities did not converge within budget",
		"maxAttempts", s.maxAttempts,
		"trackSeen", entities.Track != nil,
		"albumSeen", entities.Album != nil,
		"artistSeen", entities.Artist != nil,
	)
	return entities, ErrNotConverged
}

// ConvergeScrobble polls until the indexer materializes the scrobble row and
// attaches all three entity references.
func (s *ConvergeService) ConvergeScrobble(ctx context.Context, uri string) (*models.Scrobble, error) {
	log := s.log.Function("ConvergeScrobble")

	var scrobble *models.Scrobble
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return scrobble, err
		}

		row, err := s.repos.Scrobble.GetByURI(ctx, uri)
		if err != nil {
			return scrobble, err
		}
		if row != nil {
			scrobble = row
			if row.Resolved() {
				log.Info("Scrobble converged", "uri", uri, "attempts", attempt+1)
				return row, nil
			}
		}

		s.sleep(s.wait(attempt))
	}

	log.Warn("Scrobble did not converge within budget",
		"uri", uri,
		"maxAttempts", s.maxAttempts,
		"rowSeen", scrobble != nil,
	)
	return scrobble, ErrNotConverged
}

func (s *ConvergeService) observe(ctx context.Context, uris EnsuredURIs, entities *ConvergedEntities) error {
	if uris.Track != "" && entities.Track == nil {
		track, err := s.repos.Track.GetByURI(ctx, uris.Track)
		if err != nil {
			return err
		}
		entities.Track = track
	}

	if uris.Album != "" && entities.Album == nil {
		album, err := s.repos.Album.GetByURI(ctx, uris.Album)
		if err != nil {
			return err
		}
		entities.Album = album
	}

	if uris.Artist != "" && entities.Artist == nil {
		artist, err := s.repos.Artist.GetByURI(ctx, uris.Artist)
		if err != nil {
			return err
		}
		entities.Artist = artist
	}

	return nil
}

// converged requires the rows to exist and their cross-references to be set.
// References whose target URI is unknown are not waited on.
func (s *ConvergeService) converged(uris EnsuredURIs, entities *ConvergedEntities) bool {
	if uris.Track != "" && entities.Track == nil {
		return false
	}
	if uris.Album != "" && entities.Album == nil {
		return false
	}
	if uris.Artist != "" && entities.Artist == nil {
		return false
	}

	if entities.Track != nil {
		if uris.Album != "" && entities.Track.AlbumURI == nil {
			return false
		}
		if uris.Artist != "" && entities.Track.ArtistURI == nil {
			return false
		}
	}
	if entities.Album != nil && uris.Artist != "" && entities.Album.ArtistURI == nil {
		return false
	}

	return true
}

// backfill attaches the cross-references between materialized rows. The
// repository setters are monotonic, so replays are harmless.
func (s *ConvergeService) backfill(ctx context.Context, uris EnsuredURIs, entities *ConvergedEntities) {
	log := s.log.Function("backfill")

	if entities.Track != nil {
		if uris.Album != "" && entities.Track.AlbumURI == nil {
			if err := s.repos.Track.SetAlbumURI(ctx, entities.Track, uris.Album); err != nil {
				log.Er("failed to backfill track album URI", err, "trackID", entities.Track.ID)
			}
		}
		if uris.Artist != "" && entities.Track.ArtistURI == nil {
			if err := s.repos.Track.SetArtistURI(ctx, entities.Track, uris.Artist); err != nil {
				log.Er("failed to backfill track artist URI", err, "trackID", entities.Track.ID)
			}
		}
	}

	if entities.Album != nil && uris.Artist != "" && entities.Album.ArtistURI == nil {
		if err := s.repos.Album.SetArtistURI(ctx, entities.Album, uris.Artist); err != nil {
			log.Er("failed to backfill album artist URI", err, "albumID", entities.Album.ID)
		}
	}
}

func (s *ConvergeService) wait(attempt int) time.Duration {
	if !s.backoff {
		return s.interval
	}

	wait := s.interval << attempt
	if wait > maxBackoffInterval || wait <= 0 {
		return maxBackoffInterval
	}
	return wait
}
