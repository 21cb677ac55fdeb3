package database

import (
	"fmt"

	"soundtrace/config"

	"github.com/valkey-io/valkey-go"
)

// ENTITIES_CACHE_INDEX (DB 0) - Resolved entity projections
// Hash-to-row lookups for tracks, albums and artists. Only rows whose
// ledger URI is already set are cached; unresolved rows churn too fast.
const ENTITIES_CACHE_INDEX = 0

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")
	log.Info("initializing cache database")

	address := config.DatabaseCacheAddress
	port := config.DatabaseCachePort
	if address == "" || port == 0 {
		return log.Error("failed to initialize cache database", "reason", "address or port is empty")
	}

	var cacheDB Cache

	var err error
	cacheDB.Entities, err = valkey.NewClient(
		valkey.ClientOption{
			InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
			SelectDB:    ENTITIES_CACHE_INDEX,
		},
	)
	if err != nil {
		return log.Err("failed to create entities valkey client", err)
	}

	s.Cache = cacheDB

	return nil
}
