package cli

import (
	"context"
	"fmt"

	"github.com/yeremiapane/pastelaria-api/cache"
	"github.com/yeremiapane/pastelaria-api/config"
	"github.com/yeremiapane/pastelaria-api/database"
	"github.com/yeremiapane/pastelaria-api/utils"
	"gorm.io/gorm"
)

// openDB connects and migrates.
func openDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// openStore picks the cache backend from CACHE_DRIVER. The returned func
// releases it.
func openStore(ctx context.Context, cfg *config.Config, db *gorm.DB) (cache.Store, func(), error) {
	switch cfg.CacheDriver {
	case "redis":
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		utils.InfoLogger.WithField("addr", cfg.RedisAddr).Info("using redis cache")
		return cache.NewRedisStore(client), func() { client.Close() }, nil
	case "database", "":
		return cache.NewDBStore(db), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported CACHE_DRIVER %q", cfg.CacheDriver)
	}
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
