package main

import (
	"context"
	"fmt"

	"github.com/example/campus-portal/internal/config"
	"github.com/example/campus-portal/internal/session"
	"github.com/example/campus-portal/internal/storage"
	"github.com/example/campus-portal/internal/storage/bolt"
	"github.com/example/campus-portal/internal/storage/sqlite"
)

type closableStore interface {
	session.Store
	Close() error
}

type memoryStore struct {
	*storage.Memory
}

func (memoryStore) Close() error { return nil }

func openStore(ctx context.Context, cfg config.Config) (closableStore, error) {
	switch cfg.SessionStore {
	case config.StoreMemory:
		return memoryStore{storage.NewMemory()}, nil
	case config.StoreSQLite:
		return sqlite.Open(ctx, sqlite.DefaultConfig(cfg.SQLiteDSN))
	case config.StoreBolt:
		return bolt.Open(cfg.BoltPath, "")
	}
	return nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
}
