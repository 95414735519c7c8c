package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/fareroute/backend-go/internal/config"
	"github.com/fareroute/backend-go/internal/models"
)

// Backend is an opened station store plus the resources behind it.
type Backend struct {
	Store models.StationStore
	// DB is set for SQL backends so the fare table can be read from the same
	// database.
	DB *sql.DB
}

func (b *Backend) Close() error {
	if b.DB != nil {
		return b.DB.Close()
	}
	return nil
}

// New opens the configured backend. Remote backends get the LRU lookup cache
// when it is enabled.
func New(ctx context.Context, cfg *config.StoreConfig) (*Backend, error) {
	if cfg == nil {
		cfg = config.DefaultStoreConfig()
	}

	var backend *Backend
	switch cfg.Backend {
	case config.BackendMemory, "":
		backend = &Backend{Store: NewMemoryStore()}

	case config.BackendMySQL, config.BackendPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("DATABASE_DSN is required for the %s backend", cfg.Backend)
		}
		dialect, err := DialectFor(cfg.Backend)
		if err != nil {
			return nil, err
		}
		db, err := OpenSQL(ctx, dialect, cfg.DSN)
		if err != nil {
			return nil, err
		}
		sqlStore := NewSQLStore(db, dialect)
		if err := sqlStore.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		backend = &Backend{Store: sqlStore, DB: db}

	case config.BackendDynamoDB:
		client, err := NewDynamoClient(ctx, cfg.DynamoEndpoint)
		if err != nil {
			return nil, fmt.Errorf("creating DynamoDB client: %w", err)
		}
		backend = &Backend{Store: NewDynamoStore(client, cfg.DynamoTable, cfg.BatchSize, cfg.MaxBatchRetries)}

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	if cfg.Remote() && cfg.EnableLRU {
		cached, err := NewCachedStore(backend.Store, cfg.LRUSize, cfg.GetLRUTTL())
		if err != nil {
			_ = backend.Close()
			return nil, err
		}
		backend.Store = cached
		log.Warn().
			Dur("ttl", cfg.GetLRUTTL()).
			Msg("Station lookup cache enabled; writes from other instances are seen only after the TTL")
	}

	log.Info().
		Str("backend", cfg.Backend).
		Bool("lru", cfg.Remote() && cfg.EnableLRU).
		Msg("Station store ready")

	return backend, nil
}
