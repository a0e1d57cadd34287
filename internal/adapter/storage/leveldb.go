package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/niksmo/shopcore/internal/core/port"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	lvlstorage "github.com/syndtr/goleveldb/leveldb/storage"
)

var _ port.KeyValueStorage = (*LevelDBStorage)(nil)

// A LevelDBStorage is the on-device durable storage.
type LevelDBStorage struct {
	db *leveldb.DB
}

// NewLevelDBStorage opens or creates the database in the directory path.
func NewLevelDBStorage(path string) (LevelDBStorage, error) {
	const op = "NewLevelDBStorage"

	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return LevelDBStorage{}, fmt.Errorf("%s: %w", op, err)
	}
	slog.Info("leveldb is opened", "op", op, "path", path)
	return LevelDBStorage{db}, nil
}

// NewLevelDBMemStorage opens a database without files.
func NewLevelDBMemStorage() (LevelDBStorage, error) {
	const op = "NewLevelDBMemStorage"

	db, err := leveldb.Open(lvlstorage.NewMemStorage(), nil)
	if err != nil {
		return LevelDBStorage{}, fmt.Errorf("%s: %w", op, err)
	}
	return LevelDBStorage{db}, nil
}

func (s LevelDBStorage) Get(ctx context.Context, key string) (string, error) {
	const op = "LevelDBStorage.Get"

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	v, err := s.db.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, port.ErrKeyNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(v), nil
}

// Set writes with fsync so a committed collection survives a crash.
func (s LevelDBStorage) Set(ctx context.Context, key, value string) error {
	const op = "LevelDBStorage.Set"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err := s.db.Put([]byte(key), []byte(value), &opt.WriteOptions{Sync: true})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s LevelDBStorage) Close() {
	const op = "LevelDBStorage.Close"
	log := slog.With("op", op)

	log.Info("closing leveldb...")
	if err := s.db.Close(); err != nil {
		log.Error("failed to close", "err", err)
		return
	}
	log.Info("leveldb is closed")
}
