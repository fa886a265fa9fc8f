package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	createBlobTableSQL = `CREATE TABLE IF NOT EXISTS kv_blobs (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	getBlobSQL    = `SELECT value FROM kv_blobs WHERE key = $1`
	upsertBlobSQL = `INSERT INTO kv_blobs (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	deleteBlobSQL = `DELETE FROM kv_blobs WHERE key = $1`
)

// DBTX is the subset of pgx shared by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres stores blobs as rows of the kv_blobs table.
type Postgres struct {
	db    DBTX
	close func()
}

// OpenPostgres connects a pool and makes sure the blob table exists.
func OpenPostgres(ctx context.Context, url string, timeout time.Duration) (*Postgres, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, createBlobTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create kv_blobs: %w", err)
	}
	return &Postgres{db: pool, close: pool.Close}, nil
}

// NewPostgres wraps an existing connection; the caller owns its lifetime.
func NewPostgres(db DBTX) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.db.QueryRow(ctx, getBlobSQL, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("postgres get %s: %w", key, err)
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	if _, err := p.db.Exec(ctx, upsertBlobSQL, key, value); err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) Remove(ctx context.Context, key string) error {
	if _, err := p.db.Exec(ctx, deleteBlobSQL, key); err != nil {
		return fmt.Errorf("postgres remove %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) Close() error {
	if p.close != nil {
		p.close()
	}
	return nil
}
