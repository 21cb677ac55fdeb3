package services

import (
	"context"
	"errors"
	"time"

	"soundtrace/config"
	"soundtrace/internal/events"
	"soundtrace/internal/models"
	"soundtrace/internal/repositories"
	"soundtrace/internal/types"

	logger "github.com/Bparsons0904/goLogger"

	"gorm.io/gorm"
)

// Plays of the same title and artist by the same user within this window are
// treated as duplicate submissions from overlapping sources.
const duplicateWindow = time.Minute

const republishBatchSize = 100

// ScrobbleService drives a play event through the whole pipeline: duplicate
// suppression, entity ensure, ledger write, projection convergence,
// relationship seeding and finally the bus messages. A scrobble is marked
// published only after its messages went out, so downstream sees each play
// at most once.
type ScrobbleService struct {
	repos        repositories.Repository
	ensure       *EnsureService
	writer       RecordWriter
	converge     *ConvergeService
	relationship *RelationshipService
	transaction  TxExecutor
	bus          events.Publisher
	retryPolicy  string
	log          logger.Logger
}

func NewScrobbleService(
	repos repositories.Repository,
	ensure *EnsureService,
	writer RecordWriter,
	converge *ConvergeService,
	relationship *RelationshipService,
	transaction TxExecutor,
	bus events.Publisher,
	config config.Config,
) *ScrobbleService {
	return &ScrobbleService{
		repos:        repos,
		ensure:       ensure,
		writer:       writer,
		converge:     converge,
		relationship: relationship,
		transaction:  transaction,
		bus:          bus,
		retryPolicy:  config.ScrobbleRetryPolicy,
		log:          logger.New("scrobbleService"),
	}
}

// ProcessScrobble runs one play event end to end. The returned scrobble is
// the projection row, which may be an earlier row when the play was a
// duplicate.
func (s *ScrobbleService) ProcessScrobble(
	ctx context.Context,
	user *models.User,
	event *types.PlayEvent,
) (*models.Scrobble, error) {
	log := s.log.Function("ProcessScrobble")

	existing, err := s.repos.Scrobble.FindRecent(
		ctx, user.ID, event.Title, event.Artist, event.PlayedAt(), duplicateWindow,
	)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		log.Info("Duplicate play suppressed",
			"userID", user.ID,
			"title", event.Title,
			"existingScrobbleID", existing.ID,
		)
		return existing, nil
	}

	uris := s.ensure.EnsureAll(ctx, event)
	s.ensure.EnsureSplitArtists(ctx, event)

	scrobbleURI, err := s.writer.CreateScrobble(ctx, event)
	if err != nil {
		return nil, log.Err("failed to write scrobble record", err, "title", event.Title)
	}

	entities, err := s.converge.ConvergeEntities(ctx, uris)
	if err != nil && !errors.Is(err, ErrNotConverged) {
		return nil, err
	}

	scrobble, err := s.converge.ConvergeScrobble(ctx, scrobbleURI)
	if err != nil && !errors.Is(err, ErrNotConverged) {
		return nil, err
	}
	if scrobble == nil {
		// The ledger write is durable; once the indexer materializes the row
		// the requeue sweep can finish the job. Under the drop policy nobody
		// will, and the play stays unpublished.
		log.Warn("Scrobble row never materialized",
			"uri", scrobbleURI,
			"retryPolicy", s.retryPolicy,
		)
		return nil, ErrNotConverged
	}

	relationships, aggregates := s.seedRelationships(ctx, user, entities)

	if err := s.publish(ctx, user, scrobble, entities, relationships, aggregates); err != nil {
		return scrobble, err
	}

	return scrobble, nil
}

// RepublishPending is the requeue sweep: it finds scrobbles whose messages
// never went out, finishes their relationship seeding and publishes them.
// Returns how many scrobbles were published.
func (s *ScrobbleService) RepublishPending(ctx context.Context) (int, error) {
	log := s.log.Function("RepublishPending")

	pending, err := s.repos.Scrobble.GetUnpublished(ctx, republishBatchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, scrobble := range pending {
		if !scrobble.Resolved() || scrobble.User == nil {
			continue
		}

		entities := &ConvergedEntities{
			Track:  scrobble.Track,
			Album:  scrobble.Album,
			Artist: scrobble.Artist,
		}

		relationships, aggregates := s.seedRelationships(ctx, scrobble.User, entities)

		if err := s.publish(ctx, scrobble.User, scrobble, entities, relationships, aggregates); err != nil {
			log.Er("failed to republish scrobble, will retry next sweep", err, "scrobbleID", scrobble.ID)
			continue
		}
		published++
	}

	if published > 0 {
		log.Info("Republished pending scrobbles", "count", published, "pending", len(pending))
	}
	return published, nil
}

// seedRelationships ensures join pairs and user aggregates in one
// transaction and returns the rows for payload composition. Failures are
// logged, not fatal: every ensure is idempotent and a later play of the same
// track repairs anything missed here.
func (s *ScrobbleService) seedRelationships(
	ctx context.Context,
	user *models.User,
	entities *ConvergedEntities,
) (*SeededRelationships, *SeededAggregates) {
	log := s.log.Function("seedRelationships")

	relationships := &SeededRelationships{}
	aggregates := &SeededAggregates{}

	err := s.transaction.Execute(ctx, func(txCtx context.Context, _ *gorm.DB) error {
		rows, err := s.relationship.EnsureRelationships(txCtx, entities)
		if err != nil {
			return err
		}
		relationships = rows

		userRows, err := s.relationship.EnsureUserAggregates(txCtx, user.ID, entities)
		if err != nil {
			return err
		}
		aggregates = userRows
		return nil
	})
	if err != nil {
		log.Er("failed to seed relationships", err, "userID", user.ID)
	}

	return relationships, aggregates
}

// publish sends the scrobble aggregate and track messages, marks the row
// published, and nudges a profile sync. MarkPublished only runs after both
// messages went out.
func (s *ScrobbleService) publish(
	ctx context.Context,
	user *models.User,
	scrobble *models.Scrobble,
	entities *ConvergedEntities,
	relationships *SeededRelationships,
	aggregates *SeededAggregates,
) error {
	log := s.log.Function("publish")

	msg := scrobbleMessage(user, scrobble, entities, relationships, aggregates)
	if err := s.bus.PublishScrobble(msg); err != nil {
		return log.Err("failed to publish scrobble message", err, "scrobbleID", scrobble.ID)
	}

	if entities.Track != nil {
		if err := s.bus.PublishTrack(trackMessage(entities.Track, relationships)); err != nil {
			return log.Err("failed to publish track message", err, "scrobbleID", scrobble.ID)
		}
	}

	if err := s.repos.Scrobble.MarkPublished(ctx, scrobble.ID); err != nil {
		return err
	}
	scrobble.Published = true

	if err := s.bus.PublishUserSync(user.DID); err != nil {
		log.Er("failed to publish user sync nudge", err, "did", user.DID)
	}

	return nil
}

// scrobbleMessage composes the full denormalized aggregate: the scrobble
// row, the entity rows it resolved to, the catalog join pairs and the user's
// aggregate rows. Relation fields stay nil for rows that never materialized.
func scrobbleMessage(
	user *models.User,
	scrobble *models.Scrobble,
	entities *ConvergedEntities,
	relationships *SeededRelationships,
	aggregates *SeededAggregates,
) events.ScrobbleMessage {
	msg := events.ScrobbleMessage{
		Scrobble: events.ScrobblePayload{
			ID:         scrobble.ID.String(),
			URI:        deref(scrobble.URI),
			UserDID:    user.DID,
			UserHandle: user.Handle,
			Title:      scrobble.Title,
			Artist:     scrobble.ArtistName,
			Album:      scrobble.AlbumName,
			Timestamp:  scrobble.Timestamp.Unix(),
		},
		User: &events.UserPayload{
			ID:     user.ID.String(),
			DID:    user.DID,
			Handle: user.Handle,
		},
	}

	if entities.Track != nil {
		msg.Track = trackPayload(entities.Track)
	}
	if entities.Album != nil {
		album := entities.Album
		msg.Album = &events.AlbumPayload{
			ID:          album.ID.String(),
			Title:       album.Title,
			Artist:      album.Artist,
			SHA256:      album.SHA256,
			URI:         deref(album.URI),
			ArtistURI:   deref(album.ArtistURI),
			AlbumArtURL: deref(album.AlbumArtURL),
		}
		if album.Year != nil {
			msg.Album.Year = *album.Year
		}
	}
	if entities.Artist != nil {
		artist := entities.Artist
		msg.Artist = &events.ArtistPayload{
			ID:         artist.ID.String(),
			Name:       artist.Name,
			SHA256:     artist.SHA256,
			URI:        deref(artist.URI),
			PictureURL: deref(artist.PictureURL),
		}
	}

	msg.AlbumTrack, msg.ArtistTrack, msg.ArtistAlbum = relationshipPayloads(relationships)

	if aggregates.UserTrack != nil {
		row := aggregates.UserTrack
		msg.UserTrack = &events.UserTrackPayload{
			ID:        row.ID.String(),
			UserID:    row.UserID.String(),
			TrackID:   row.TrackID.String(),
			URI:       deref(row.URI),
			Scrobbles: row.Scrobbles,
		}
	}
	if aggregates.UserAlbum != nil {
		row := aggregates.UserAlbum
		msg.UserAlbum = &events.UserAlbumPayload{
			ID:        row.ID.String(),
			UserID:    row.UserID.String(),
			AlbumID:   row.AlbumID.String(),
			URI:       deref(row.URI),
			Scrobbles: row.Scrobbles,
		}
	}
	if aggregates.UserArtist != nil {
		row := aggregates.UserArtist
		msg.UserArtist = &events.UserArtistPayload{
			ID:        row.ID.String(),
			UserID:    row.UserID.String(),
			ArtistID:  row.ArtistID.String(),
			URI:       deref(row.URI),
			Scrobbles: row.Scrobbles,
		}
	}

	return msg
}

func trackMessage(track *models.Track, relationships *SeededRelationships) events.TrackMessage {
	msg := events.TrackMessage{
		ID:          track.ID.String(),
		Title:       track.Title,
		Artist:      track.Artist,
		Album:       track.Album,
		AlbumArtist: track.AlbumArtist,
		SHA256:      track.SHA256,
		URI:         deref(track.URI),
		AlbumURI:    deref(track.AlbumURI),
		ArtistURI:   deref(track.ArtistURI),
		Duration:    track.Duration,
		AlbumArtURL: deref(track.AlbumArtURL),
	}
	msg.AlbumTrack, msg.ArtistTrack, msg.ArtistAlbum = relationshipPayloads(relationships)
	return msg
}

func trackPayload(track *models.Track) *events.TrackPayload {
	return &events.TrackPayload{
		ID:          track.ID.String(),
		Title:       track.Title,
		Artist:      track.Artist,
		Album:       track.Album,
		AlbumArtist: track.AlbumArtist,
		SHA256:      track.SHA256,
		URI:         deref(track.URI),
		AlbumURI:    deref(track.AlbumURI),
		ArtistURI:   deref(track.ArtistURI),
		Duration:    track.Duration,
		AlbumArtURL: deref(track.AlbumArtURL),
	}
}

func relationshipPayloads(relationships *SeededRelationships) (
	*events.AlbumTrackPayload,
	*events.ArtistTrackPayload,
	*events.ArtistAlbumPayload,
) {
	var albumTrack *events.AlbumTrackPayload
	var artistTrack *events.ArtistTrackPayload
	var artistAlbum *events.ArtistAlbumPayload

	if relationships.AlbumTrack != nil {
		albumTrack = &events.AlbumTrackPayload{
			ID:      relationships.AlbumTrack.ID.String(),
			AlbumID: relationships.AlbumTrack.AlbumID.String(),
			TrackID: relationships.AlbumTrack.TrackID.String(),
		}
	}
	if relationships.ArtistTrack != nil {
		artistTrack = &events.ArtistTrackPayload{
			ID:       relationships.ArtistTrack.ID.String(),
			ArtistID: relationships.ArtistTrack.ArtistID.String(),
			TrackID:  relationships.ArtistTrack.TrackID.String(),
		}
	}
	if relationships.ArtistAlbum != nil {
		artistAlbum = &events.ArtistAlbumPayload{
			ID:       relationships.ArtistAlbum.ID.String(),
			ArtistID: relationships.ArtistAlbum.ArtistID.String(),
			AlbumID:  relationships.ArtistAlbum.AlbumID.String(),
		}
	}

	return albumTrack, artistTrack, artistAlbum
}
