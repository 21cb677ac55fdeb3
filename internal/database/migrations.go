package database

import (
	"soundtrace/internal/models"

	logger "github.com/Bparsons0904/goLogger"
)

// MigrateModels runs GORM AutoMigrate for all models
func (db *DB) MigrateModels() error {
	log := logger.New("database").Function("MigrateModels")
	log.Info("Starting database migration")

	modelsToMigrate := []interface{}{
		&models.User{},
		&models.Artist{},
		&models.Album{},
		&models.Track{},
		&models.Scrobble{},
		&models.AlbumTrack{},
		&models.ArtistTrack{},
		&models.ArtistAlbum{},
		&models.UserTrack{},
		&models.UserAlbum{},
		&models.UserArtist{},
	}

	for _, model := range modelsToMigrate {
		if err := db.SQL.AutoMigrate(model); err != nil {
			log.Er("Failed to migrate model", err, "model", model)
			return err
		}
	}

	log.Info("Database migration completed successfully")
	return nil
}

// CreateIndexes creates additional indexes that GORM doesn't create automatically
func (db *DB) CreateIndexes() error {
	log := logger.New("database").Function("CreateIndexes")
	log.Info("Creating additional database indexes")

	indexes := []string{
		// Duplicate-window probe: recent scrobbles for a user around a timestamp
		"CREATE INDEX IF NOT EXISTS idx_scrobbles_user_timestamp ON scrobbles(user_id, timestamp DESC)",
		// Requeue sweep: unpublished scrobbles in arrival order
		"CREATE INDEX IF NOT EXISTS idx_scrobbles_unpublished ON scrobbles(created_at) WHERE published = false",
		// Cross-reference backfill probes by ledger URI
		"CREATE INDEX IF NOT EXISTS idx_tracks_album_uri ON tracks(album_uri)",
		"CREATE INDEX IF NOT EXISTS idx_tracks_artist_uri ON tracks(artist_uri)",
		"CREATE INDEX IF NOT EXISTS idx_albums_artist_uri ON albums(artist_uri)",
	}

	for _, indexSQL := range indexes {
		if err := db.SQL.Exec(indexSQL).Error; err != nil {
			log.Warn("Failed to create index", "sql", indexSQL, "error", err)
			// Continue with other indexes even if one fails
		}
	}

	log.Info("Additional database indexes created")
	return nil
}
