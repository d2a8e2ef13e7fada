package main

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront/api/controllers"
	"github.com/angelmondragon/storefront/internal/storage"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/db"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/migrate"
	"github.com/angelmondragon/storefront/pkg/redis"
)

// backends holds the stores chosen for each lifetime plus the clients the
// readiness probe pings. The stores share the clients and never close them.
type backends struct {
	durable storage.Store
	session storage.Store
	db      *db.Client
	redis   *redis.Client
}

func openBackends(ctx context.Context, cfg *config.Config, logg *logger.Logger, sessionID string) (*backends, error) {
	b := &backends{}

	if cfg.Storage.UsesSQL() {
		client, err := db.New(ctx, cfg.Storage, cfg.DB, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap database: %w", err)
		}
		if err := migrate.MaybeRun(ctx, cfg, logg, client); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		b.db = client
		b.durable = storage.NewSQLStore(client.DB(), cfg.Storage.Namespace)
	} else {
		b.durable = storage.NewMemoryStore(cfg.Storage.MemoryMaxBytes)
	}

	if cfg.Redis.Enabled() {
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			if b.db != nil {
				_ = b.db.Close()
			}
			return nil, fmt.Errorf("bootstrap redis: %w", err)
		}
		b.redis = client
		b.session = storage.NewRedisStore(client, sessionID, cfg.Session.TTL)
	} else {
		b.session = storage.NewMemoryStore(cfg.Storage.MemoryMaxBytes)
	}

	return b, nil
}

func (b *backends) pingers() map[string]controllers.Pinger {
	pingers := map[string]controllers.Pinger{}
	if b.db != nil {
		pingers["database"] = b.db
	}
	if b.redis != nil {
		pingers["redis"] = b.redis
	}
	return pingers
}

func (b *backends) close() error {
	var err error
	if b.db != nil {
		err = multierr.Append(err, b.db.Close())
	}
	if b.redis != nil {
		err = multierr.Append(err, b.redis.Close())
	}
	return err
}
