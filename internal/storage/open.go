package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/hpungsan/quire/internal/config"
	"github.com/hpungsan/quire/internal/db"
)

// Open builds the Backend selected by cfg. The returned closer releases
// the underlying database or connection pool.
func Open(ctx context.Context, cfg *config.Config, baseDir string) (Backend, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendSQLite, "":
		database, err := db.Init(baseDir)
		if err != nil {
			return nil, nil, err
		}
		db.ConfigurePool(database, cfg)
		return NewSQLite(database), database, nil
	case config.BackendRedis:
		r, err := NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	case config.BackendMemory:
		return NewMemory(), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
