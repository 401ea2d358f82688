package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hpungsan/fittrack/internal/config"
	"github.com/hpungsan/fittrack/internal/db"
	"github.com/hpungsan/fittrack/internal/logger"
)

// Open creates the backend selected by cfg.Backend and wraps it in an Adapter.
func Open(ctx context.Context, cfg *config.Config, baseDir string, log logger.Logger) (*Adapter, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		log = logger.Nop()
	}

	backend, err := openBackend(ctx, cfg, baseDir)
	if err != nil {
		return nil, err
	}
	log.Debug("storage opened", logger.String("backend", cfg.Backend))
	return NewAdapter(backend, log), nil
}

func openBackend(ctx context.Context, cfg *config.Config, baseDir string) (Backend, error) {
	switch cfg.Backend {
	case config.BackendSQLite, "":
		database, err := db.Init(baseDir)
		if err != nil {
			return nil, err
		}
		db.ConfigurePool(database, cfg)
		return db.NewKV(database), nil

	case config.BackendFile:
		if err := db.EnsureDirs(baseDir); err != nil {
			return nil, err
		}
		return NewFileBackend(filepath.Join(baseDir, "data"))

	case config.BackendRedis:
		return NewRedisBackend(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

	case config.BackendMemory:
		return NewMemoryBackend(), nil

	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}
