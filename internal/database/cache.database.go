package database

import (
	"fmt"
	"vitalsky/config"

	"github.com/valkey-io/valkey-go"
)

// Valkey database index organization. Each index gives logical separation for
// a cache category without running multiple servers.
const (
	// GENERAL_CACHE_INDEX (DB 0) - general purpose caching
	GENERAL_CACHE_INDEX = iota

	// USER_CACHE_INDEX (DB 1) - per-user weather record reads
	USER_CACHE_INDEX

	// EVENTS_CACHE_INDEX (DB 2) - pub/sub run summaries
	EVENTS_CACHE_INDEX
)

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")
	log.Info("initializing cache database")

	address := config.DatabaseCacheAddress
	port := config.DatabaseCachePort
	if address == "" || port == 0 {
		return log.Errorf("failed to initialize cache database", "address or port is empty")
	}

	var cacheDB Cache

	var err error
	cacheDB.General, err = valkey.NewClient(
		valkey.ClientOption{
			InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
			SelectDB:    GENERAL_CACHE_INDEX,
		},
	)
	if err != nil {
		return log.Err("failed to create general valkey client", err)
	}

	cacheDB.User, err = valkey.NewClient(
		valkey.ClientOption{
			InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
			SelectDB:    USER_CACHE_INDEX,
		},
	)
	if err != nil {
		return log.Err("failed to create user valkey client", err)
	}

	cacheDB.Events, err = valkey.NewClient(
		valkey.ClientOption{
			InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
			SelectDB:    EVENTS_CACHE_INDEX,
		},
	)
	if err != nil {
		return log.Err("failed to create events valkey client", err)
	}

	s.Cache = cacheDB
	log.Info("cache database initialized")

	return nil
}
