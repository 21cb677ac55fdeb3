package services

import (
	"context"

	"soundtrace/internal/models"
	"soundtrace/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/google/uuid"
)

// RelationshipService wires converged entities together: the catalog join
// pairs and the per-user aggregate rows. Everything here is idempotent, so a
// replayed play changes nothing. The ensured rows are returned so the
// coordinator can embed them in the published aggregate.
type RelationshipService struct {
	repos repositories.Repository
	log   logger.Logger
}

// SeededRelationships holds the catalog join rows for one play. Fields stay
// nil when either side of the pair never materialized.
type SeededRelationships struct {
	AlbumTrack  *models.AlbumTrack
	ArtistTrack *models.ArtistTrack
	ArtistAlbum *models.ArtistAlbum
}

// SeededAggregates holds the user's aggregate rows for one play.
type SeededAggregates struct {
	UserTrack  *models.UserTrack
	UserAlbum  *models.UserAlbum
	UserArtist *models.UserArtist
}

func NewRelationshipService(repos repositories.Repository) *RelationshipService {
	return &RelationshipService{
		repos: repos,
		log:   logger.New("relationshipService"),
	}
}

// EnsureRelationships creates the join pairs between whichever entities
// materialized. A missing entity just skips its pairs.
func (s *RelationshipService) EnsureRelationships(ctx context.Context, entities *ConvergedEntities) (*SeededRelationships, error) {
	log := s.log.Function("EnsureRelationships")

	rows := &SeededRelationships{}

	if entities.Album != nil && entities.Track != nil {
		row, err := s.repos.Relationship.EnsureAlbumTrack(ctx, entities.Album.ID, entities.Track.ID)
		if err != nil {
			return rows, log.Err("failed to ensure album track pair", err)
		}
		rows.AlbumTrack = row
	}

	if entities.Artist != nil && entities.Track != nil {
		row, err := s.repos.Relationship.EnsureArtistTrack(ctx, entities.Artist.ID, entities.Track.ID)
		if err != nil {
			return rows, log.Err("failed to ensure artist track pair", err)
		}
		rows.ArtistTrack = row
	}

	if entities.Artist != nil && entities.Album != nil {
		row, err := s.repos.Relationship.EnsureArtistAlbum(ctx, entities.Artist.ID, entities.Album.ID)
		if err != nil {
			return rows, log.Err("failed to ensure artist album pair", err)
		}
		rows.ArtistAlbum = row
	}

	return rows, nil
}

// EnsureUserAggregates seeds the user's aggregate rows for the entities of
// this play. First play creates the row with a count of one; later plays are
// counted elsewhere.
func (s *RelationshipService) EnsureUserAggregates(ctx context.Context, userID uuid.UUID, entities *ConvergedEntities) (*SeededAggregates, error) {
	log := s.log.Function("EnsureUserAggregates")

	rows := &SeededAggregates{}

	if entities.Track != nil {
		row, err := s.repos.UserMusic.EnsureUserTrack(ctx, userID, entities.Track.ID, entities.Track.URI)
		if err != nil {
			return rows, log.Err("failed to ensure user track", err, "userID", userID)
		}
		rows.UserTrack = row
	}

	if entities.Album != nil {
		row, err := s.repos.UserMusic.EnsureUserAlbum(ctx, userID, entities.Album.ID, entities.Album.URI)
		if err != nil {
			return rows, log.Err("failed to ensure user album", err, "userID", userID)
		}
		rows.UserAlbum = row
	}

	if entities.Artist != nil {
		row, err := s.repos.UserMusic.EnsureUserArtist(ctx, userID, entities.Artist.ID, entities.Artist.URI)
		if err != nil {
			return rows, log.Err("failed to ensure user artist", err, "userID", userID)
		}
		rows.UserArtist = row
	}

	return rows, nil
}
