package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/niksmo/shopcore/internal/core/port"
)

var _ port.KeyValueStorage = (*SQLStorage)(nil)

const kvTable = "kv_store"

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type sqldb interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PingContext(ctx context.Context) error
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Close() error
}

// A SQLStorage keeps values in the kv_store table of a Postgres database.
//
// The table is created by cmd/migrator.
type SQLStorage struct {
	sqldb sqldb
}

func NewSQLStorage(ctx context.Context, dsn string) (SQLStorage, error) {
	const op = "NewSQLStorage"

	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return SQLStorage{}, fmt.Errorf("%s: %w", op, err)
	}
	connStr := stdlib.RegisterConnConfig(connConfig)
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return SQLStorage{}, fmt.Errorf("%s: %w", op, err)
	}

	s := SQLStorage{db}
	if err := s.ping(ctx); err != nil {
		_ = db.Close()
		return SQLStorage{}, err
	}
	return s, nil
}

func (s SQLStorage) ping(ctx context.Context) error {
	const op = "SQLStorage.ping"
	if err := s.sqldb.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: database unavailable: %w", op, err)
	}
	slog.Info("database is available", "op", op)
	return nil
}

func (s SQLStorage) Get(ctx context.Context, key string) (string, error) {
	const op = "SQLStorage.Get"

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := selectValueQuery(key)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var v string
	err = s.sqldb.QueryRowContext(ctx, query, args...).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, port.ErrKeyNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

func (s SQLStorage) Set(ctx context.Context, key, value string) error {
	const op = "SQLStorage.Set"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := upsertValueQuery(key, value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.sqldb.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: failed to exec: %w", op, err)
	}
	return nil
}

func selectValueQuery(key string) (string, []any, error) {
	return psql.Select("value").
		From(kvTable).
		Where(squirrel.Eq{"key": key}).
		ToSql()
}

func upsertValueQuery(key, value string) (string, []any, error) {
	return psql.Insert(kvTable).
		Columns("key", "value", "updated_at").
		Values(key, value, squirrel.Expr("now()")).
		Suffix("ON CONFLICT (key) DO UPDATE SET " +
			"value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		ToSql()
}

func (s SQLStorage) Close() {
	const op = "SQLStorage.Close"
	log := slog.With("op", op)

	log.Info("closing sql database...")

	if err := s.sqldb.Close(); err != nil {
		log.Error("failed to close", "err", err)
		return
	}
	log.Info("sql database is closed")
}
