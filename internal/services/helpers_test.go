package services

import (
	"context"
	"sync"
	"time"

	"soundtrace/internal/events"
	"soundtrace/internal/models"
	"soundtrace/internal/repositories"
	"soundtrace/internal/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Function-field fakes: tests set only the behaviors they care about, every
// unset field is a safe no-op.

type fakeUserRepo struct {
	getByDID func(did string) (*models.User, error)
}

func (f *fakeUserRepo) GetByDID(_ context.Context, did string) (*models.User, error) {
	if f.getByDID == nil {
		return nil, nil
	}
	return f.getByDID(did)
}

type fakeTrackRepo struct {
	mu           sync.Mutex
	getByHash    func(hash string) (*models.Track, error)
	getByURI     func(uri string) (*models.Track, error)
	setAlbumURI  func(track *models.Track, albumURI string) error
	setArtistURI func(track *models.Track, artistURI string) error
	albumURISets []string
	artistURISet []string
}

func (f *fakeTrackRepo) GetByHash(_ context.Context, hash string) (*models.Track, error) {
	if f.getByHash == nil {
		return nil, nil
	}
	return f.getByHash(hash)
}

func (f *fakeTrackRepo) GetByURI(_ context.Context, uri string) (*models.Track, error) {
	if f.getByURI == nil {
		return nil, nil
	}
	return f.getByURI(uri)
}

func (f *fakeTrackRepo) SetAlbumURI(_ context.Context, track *models.Track, albumURI string) error {
	if f.setAlbumURI != nil {
		return f.setAlbumURI(track, albumURI)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.albumURISets = append(f.albumURISets, albumURI)
	track.AlbumURI = &albumURI
	return nil
}

func (f *fakeTrackRepo) SetArtistURI(_ context.Context, track *models.Track, artistURI string) error {
	if f.setArtistURI != nil {
		return f.setArtistURI(track, artistURI)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.artistURISet = append(f.artistURISet, artistURI)
	track.ArtistURI = &artistURI
	return nil
}

type fakeAlbumRepo struct {
	mu           sync.Mutex
	getByHash    func(hash string) (*models.Album, error)
	getByURI     func(uri string) (*models.Album, error)
	artistURISet []string
}

func (f *fakeAlbumRepo) GetByHash(_ context.Context, hash string) (*models.Album, error) {
	if f.getByHash == nil {
		return nil, nil
	}
	return f.getByHash(hash)
}

func (f *fakeAlbumRepo) GetByURI(_ context.Context, uri string) (*models.Album, error) {
	if f.getByURI == nil {
		return nil, nil
	}
	return f.getByURI(uri)
}

func (f *fakeAlbumRepo) SetArtistURI(_ context.Context, album *models.Album, artistURI string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.artistURISet = append(f.artistURISet, artistURI)
	album.ArtistURI = &artistURI
	return nil
}

type fakeArtistRepo struct {
	getByHashes func(hashes []string) (*models.Artist, error)
	getByURI    func(uri string) (*models.Artist, error)
}

func (f *fakeArtistRepo) GetByHashes(_ context.Context, hashes []string) (*models.Artist, error) {
	if f.getByHashes == nil {
		return nil, nil
	}
	return f.getByHashes(hashes)
}

func (f *fakeArtistRepo) GetByURI(_ context.Context, uri string) (*models.Artist, error) {
	if f.getByURI == nil {
		return nil, nil
	}
	return f.getByURI(uri)
}

type fakeScrobbleRepo struct {
	mu             sync.Mutex
	getByURI       func(uri string) (*models.Scrobble, error)
	findRecent     func(userID uuid.UUID, title, artist string, around time.Time, window time.Duration) (*models.Scrobble, error)
	getRecent      func(userID uuid.UUID, limit int) ([]*models.Scrobble, error)
	getUnpublished func(limit int) ([]*models.Scrobble, error)
	published      []uuid.UUID
}

func (f *fakeScrobbleRepo) GetByURI(_ context.Context, uri string) (*models.Scrobble, error) {
	if f.getByURI == nil {
		return nil, nil
	}
	return f.getByURI(uri)
}

func (f *fakeScrobbleRepo) FindRecent(
	_ context.Context,
	userID uuid.UUID,
	title, artist string,
	around time.Time,
	window time.Duration,
) (*models.Scrobble, error) {
	if f.findRecent == nil {
		return nil, nil
	}
	return f.findRecent(userID, title, artist, around, window)
}

func (f *fakeScrobbleRepo) GetRecentByUser(_ context.Context, userID uuid.UUID, limit int) ([]*models.Scrobble, error) {
	if f.getRecent == nil {
		return nil, nil
	}
	return f.getRecent(userID, limit)
}

func (f *fakeScrobbleRepo) GetUnpublished(_ context.Context, limit int) ([]*models.Scrobble, error) {
	if f.getUnpublished == nil {
		return nil, nil
	}
	return f.getUnpublished(limit)
}

func (f *fakeScrobbleRepo) MarkPublished(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, id)
	return nil
}

type pair struct {
	left  uuid.UUID
	right uuid.UUID
}

type fakeRelationshipRepo struct {
	mu           sync.Mutex
	albumTracks  []pair
	artistTracks []pair
	artistAlbums []pair
}

func (f *fakeRelationshipRepo) EnsureAlbumTrack(_ context.Context, albumID, trackID uuid.UUID) (*models.AlbumTrack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.albumTracks = append(f.albumTracks, pair{albumID, trackID})
	row := &models.AlbumTrack{AlbumID: albumID, TrackID: trackID}
	row.ID = uuid.New()
	return row, nil
}

func (f *fakeRelationshipRepo) EnsureArtistTrack(_ context.Context, artistID, trackID uuid.UUID) (*models.ArtistTrack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.artistTracks = append(f.artistTracks, pair{artistID, trackID})
	row := &models.ArtistTrack{ArtistID: artistID, TrackID: trackID}
	row.ID = uuid.New()
	return row, nil
}

func (f *fakeRelationshipRepo) EnsureArtistAlbum(_ context.Context, artistID, albumID uuid.UUID) (*models.ArtistAlbum, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.artistAlbums = append(f.artistAlbums, pair{artistID, albumID})
	row := &models.ArtistAlbum{ArtistID: artistID, AlbumID: albumID}
	row.ID = uuid.New()
	return row, nil
}

type fakeUserMusicRepo struct {
	mu          sync.Mutex
	userTracks  []pair
	userAlbums  []pair
	userArtists []pair
}

func (f *fakeUserMusicRepo) EnsureUserTrack(_ context.Context, userID, trackID uuid.UUID, uri *string) (*models.UserTrack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userTracks = append(f.userTracks, pair{userID, trackID})
	row := &models.UserTrack{UserID: userID, TrackID: trackID, URI: uri, Scrobbles: 1}
	row.ID = uuid.New()
	return row, nil
}

func (f *fakeUserMusicRepo) EnsureUserAlbum(_ context.Context, userID, albumID uuid.UUID, uri *string) (*models.UserAlbum, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userAlbums = append(f.userAlbums, pair{userID, albumID})
	row := &models.UserAlbum{UserID: userID, AlbumID: albumID, URI: uri, Scrobbles: 1}
	row.ID = uuid.New()
	return row, nil
}

func (f *fakeUserMusicRepo) EnsureUserArtist(_ context.Context, userID, artistID uuid.UUID, uri *string) (*models.UserArtist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userArtists = append(f.userArtists, pair{userID, artistID})
	row := &models.UserArtist{UserID: userID, ArtistID: artistID, URI: uri, Scrobbles: 1}
	row.ID = uuid.New()
	return row, nil
}

type fakeRepos struct {
	user         *fakeUserRepo
	track        *fakeTrackRepo
	album        *fakeAlbumRepo
	artist       *fakeArtistRepo
	scrobble     *fakeScrobbleRepo
	relationship *fakeRelationshipRepo
	userMusic    *fakeUserMusicRepo
}

func newFakeRepos() *fakeRepos {
	return &fakeRepos{
		user:         &fakeUserRepo{},
		track:        &fakeTrackRepo{},
		album:        &fakeAlbumRepo{},
		artist:       &fakeArtistRepo{},
		scrobble:     &fakeScrobbleRepo{},
		relationship: &fakeRelationshipRepo{},
		userMusic:    &fakeUserMusicRepo{},
	}
}

func (f *fakeRepos) repository() repositories.Repository {
	return repositories.Repository{
		User:         f.user,
		Track:        f.track,
		Album:        f.album,
		Artist:       f.artist,
		Scrobble:     f.scrobble,
		Relationship: f.relationship,
		UserMusic:    f.userMusic,
	}
}

type fakeWriter struct {
	mu             sync.Mutex
	artistCalls    int
	albumCalls     int
	songCalls      int
	scrobbleCalls  int
	namedArtists   []string
	createArtist   func(event *types.PlayEvent) (string, error)
	createAlbum    func(event *types.PlayEvent) (string, error)
	createSong     func(event *types.PlayEvent) (string, error)
	createScrobble func(event *types.PlayEvent) (string, error)
}

func (f *fakeWriter) CreateArtist(_ context.Context, event *types.PlayEvent) (string, error) {
	f.mu.Lock()
	f.artistCalls++
	f.mu.Unlock()
	if f.createArtist == nil {
		return "at://ledger/artist/1", nil
	}
	return f.createArtist(event)
}

func (f *fakeWriter) CreateNamedArtist(_ context.Context, name string, _ *types.PlayEvent) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.namedArtists = append(f.namedArtists, name)
	return "at://ledger/artist/" + name, nil
}

func (f *fakeWriter) CreateAlbum(_ context.Context, event *types.PlayEvent) (string, error) {
	f.mu.Lock()
	f.albumCalls++
	f.mu.Unlock()
	if f.createAlbum == nil {
		return "at://ledger/album/1", nil
	}
	return f.createAlbum(event)
}

func (f *fakeWriter) CreateSong(_ context.Context, event *types.PlayEvent) (string, error) {
	f.mu.Lock()
	f.songCalls++
	f.mu.Unlock()
	if f.createSong == nil {
		return "at://ledger/song/1", nil
	}
	return f.createSong(event)
}

func (f *fakeWriter) CreateScrobble(_ context.Context, event *types.PlayEvent) (string, error) {
	f.mu.Lock()
	f.scrobbleCalls++
	f.mu.Unlock()
	if f.createScrobble == nil {
		return "at://ledger/scrobble/1", nil
	}
	return f.createScrobble(event)
}

type fakeBus struct {
	mu        sync.Mutex
	scrobbles []events.ScrobbleMessage
	tracks    []events.TrackMessage
	syncDIDs  []string
	failWith  error
}

func (f *fakeBus) PublishScrobble(msg events.ScrobbleMessage) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scrobbles = append(f.scrobbles, msg)
	return nil
}

func (f *fakeBus) PublishTrack(msg events.TrackMessage) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tracks = append(f.tracks, msg)
	return nil
}

func (f *fakeBus) PublishUserSync(did string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncDIDs = append(f.syncDIDs, did)
	return nil
}

func (f *fakeBus) Close() {}

type fakeTx struct{}

func (f *fakeTx) Execute(ctx context.Context, fn func(context.Context, *gorm.DB) error) error {
	return fn(ctx, nil)
}

func strPtr(s string) *string { return &s }
