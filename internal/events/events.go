package events

import (
	"encoding/json"
	"fmt"
	"time"

	"soundtrace/config"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/nats-io/nats.go"
)

// Publisher is the downstream notification surface. One scrobble produces a
// scrobble message and a track message; profile refreshes ride on user sync.
type Publisher interface {
	PublishScrobble(msg ScrobbleMessage) error
	PublishTrack(msg TrackMessage) error
	PublishUserSync(did string) error
	Close()
}

// ScrobbleMessage is the full denormalized aggregate of one published play:
// the scrobble row plus the entity rows it resolved to, the catalog join
// pairs and the per-user aggregate rows. Consumers get everything they need
// without a projection read. Relation fields stay nil when the corresponding
// row never materialized.
type ScrobbleMessage struct {
	Scrobble    ScrobblePayload     `json:"scrobble"`
	User        *UserPayload        `json:"user,omitempty"`
	Track       *TrackPayload       `json:"track,omitempty"`
	Album       *AlbumPayload       `json:"album,omitempty"`
	Artist      *ArtistPayload      `json:"artist,omitempty"`
	AlbumTrack  *AlbumTrackPayload  `json:"album_track,omitempty"`
	ArtistTrack *ArtistTrackPayload `json:"artist_track,omitempty"`
	ArtistAlbum *ArtistAlbumPayload `json:"artist_album,omitempty"`
	UserTrack   *UserTrackPayload   `json:"user_track,omitempty"`
	UserAlbum   *UserAlbumPayload   `json:"user_album,omitempty"`
	UserArtist  *UserArtistPayload  `json:"user_artist,omitempty"`
}

// TrackMessage announces the resolved track behind a published play, with
// its catalog join pairs.
type TrackMessage struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Artist      string              `json:"artist"`
	Album       string              `json:"album"`
	AlbumArtist string              `json:"album_artist"`
	SHA256      string              `json:"sha256"`
	URI         string              `json:"uri"`
	AlbumURI    string              `json:"album_uri,omitempty"`
	ArtistURI   string              `json:"artist_uri,omitempty"`
	Duration    int                 `json:"duration,omitempty"`
	AlbumArtURL string              `json:"album_art_url,omitempty"`
	AlbumTrack  *AlbumTrackPayload  `json:"album_track,omitempty"`
	ArtistTrack *ArtistTrackPayload `json:"artist_track,omitempty"`
	ArtistAlbum *ArtistAlbumPayload `json:"artist_album,omitempty"`
}

type ScrobblePayload struct {
	ID         string `json:"id"`
	URI        string `json:"uri,omitempty"`
	UserDID    string `json:"user_did"`
	UserHandle string `json:"user_handle"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	Timestamp  int64  `json:"timestamp"`
}

type UserPayload struct {
	ID     string `json:"id"`
	DID    string `json:"did"`
	Handle string `json:"handle"`
}

type TrackPayload struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	AlbumArtist string `json:"album_artist"`
	SHA256      string `json:"sha256"`
	URI         string `json:"uri,omitempty"`
	AlbumURI    string `json:"album_uri,omitempty"`
	ArtistURI   string `json:"artist_uri,omitempty"`
	Duration    int    `json:"duration,omitempty"`
	AlbumArtURL string `json:"album_art_url,omitempty"`
}

type AlbumPayload struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	SHA256      string `json:"sha256"`
	URI         string `json:"uri,omitempty"`
	ArtistURI   string `json:"artist_uri,omitempty"`
	Year        int    `json:"year,omitempty"`
	AlbumArtURL string `json:"album_art_url,omitempty"`
}

type ArtistPayload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SHA256     string `json:"sha256"`
	URI        string `json:"uri,omitempty"`
	PictureURL string `json:"picture_url,omitempty"`
}

type AlbumTrackPayload struct {
	ID      string `json:"id"`
	AlbumID string `json:"album_id"`
	TrackID string `json:"track_id"`
}

type ArtistTrackPayload struct {
	ID       string `json:"id"`
	ArtistID string `json:"artist_id"`
	TrackID  string `json:"track_id"`
}

type ArtistAlbumPayload struct {
	ID       string `json:"id"`
	ArtistID string `json:"artist_id"`
	AlbumID  string `json:"album_id"`
}

type UserTrackPayload struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	TrackID   string `json:"track_id"`
	URI       string `json:"uri,omitempty"`
	Scrobbles int    `json:"scrobbles"`
}

type UserAlbumPayload struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	AlbumID   string `json:"album_id"`
	URI       string `json:"uri,omitempty"`
	Scrobbles int    `json:"scrobbles"`
}

type UserArtistPayload struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	ArtistID  string `json:"artist_id"`
	URI       string `json:"uri,omitempty"`
	Scrobbles int    `json:"scrobbles"`
}

type userSyncMessage struct {
	DID string `json:"did"`
}

type EventBus struct {
	conn      *nats.Conn
	namespace string
	log       logger.Logger
}

func New(config config.Config) (*EventBus, error) {
	log := logger.New("events").Function("New")

	conn, err := nats.Connect(
		config.NatsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, log.Err("failed to connect to NATS", err, "url", config.NatsURL)
	}

	log.Info("Connected to NATS", "url", config.NatsURL, "namespace", config.EventNamespace)
	return &EventBus{
		conn:      conn,
		namespace: config.EventNamespace,
		log:       logger.New("events"),
	}, nil
}

func (b *EventBus) PublishScrobble(msg ScrobbleMessage) error {
	return b.publish("scrobble", msg)
}

func (b *EventBus) PublishTrack(msg TrackMessage) error {
	return b.publish("track", msg)
}

func (b *EventBus) PublishUserSync(did string) error {
	return b.publish("user.sync", userSyncMessage{DID: did})
}

func (b *EventBus) publish(topic string, payload any) error {
	log := b.log.Function("publish")

	subject := fmt.Sprintf("%s.%s", b.namespace, topic)
	data, err := json.Marshal(payload)
	if err != nil {
		return log.Err("failed to marshal event payload", err, "subject", subject)
	}

	if err := b.conn.Publish(subject, data); err != nil {
		return log.Err("failed to publish event", err, "subject", subject)
	}

	log.Debug("Published event", "subject", subject, "bytes", len(data))
	return nil
}

func (b *EventBus) Close() {
	if b.conn != nil {
		b.conn.Close()
	}
}
