package storage

import (
	"context"
	"database/sql"

	"github.com/hpungsan/quire/internal/db"
	"github.com/hpungsan/quire/internal/errors"
)

// SQLite is a Backend over the kv table created by db.Init.
type SQLite struct {
	db *sql.DB
}

// NewSQLite wraps an initialized database.
func NewSQLite(database *sql.DB) *SQLite {
	return &SQLite{db: database}
}

// Get implements Backend.
func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := db.GetValue(ctx, s.db, key)
	if err != nil {
		return "", false, errors.NewStorage("get", key, err)
	}
	return v, ok, nil
}

// Set implements Backend.
func (s *SQLite) Set(ctx context.Context, key, value string) error {
	if err := db.PutValue(ctx, s.db, key, value); err != nil {
		return errors.NewStorage("set", key, err)
	}
	return nil
}

// Remove implements Backend.
func (s *SQLite) Remove(ctx context.Context, key string) error {
	if err := db.DeleteValue(ctx, s.db, key); err != nil {
		return errors.NewStorage("remove", key, err)
	}
	return nil
}
