package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS careline_datasets (
	name       TEXT PRIMARY KEY,
	content    BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// NewPool opens a pgx connection pool and verifies connectivity.
func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	if minConns > 0 {
		cfg.MinConns = minConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Postgres keeps every dataset as one row of careline_datasets.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres ensures the datasets table exists on pool.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("create careline_datasets: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Driver() Driver { return DriverPostgres }

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) Get(ctx context.Context, name string) ([]byte, error) {
	var content []byte
	err := p.pool.QueryRow(ctx, `SELECT content FROM careline_datasets WHERE name = $1`, name).Scan(&content)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, ioErr("get", name, err)
	}
	return content, nil
}

func (p *Postgres) Put(ctx context.Context, name string, data []byte) error {
	if _, err := sanitizeName(name); err != nil {
		return err
	}
	if data == nil {
		data = []byte{}
	}
	_, err := p.pool.Exec(ctx, `INSERT INTO careline_datasets (name, content, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET content = EXCLUDED.content, updated_at = now()`, name, data)
	if err != nil {
		return ioErr("put", name, err)
	}
	return nil
}

// Append concatenates in place so the server never ships the whole dataset.
func (p *Postgres) Append(ctx context.Context, name string, data []byte) error {
	tag, err := p.pool.Exec(ctx, `UPDATE careline_datasets SET content = content || $2, updated_at = now()
		WHERE name = $1`, name, data)
	if err != nil {
		return ioErr("append", name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotExist
	}
	return nil
}

func (p *Postgres) Stat(ctx context.Context, name string) (Info, error) {
	info := Info{Name: name}
	err := p.pool.QueryRow(ctx, `SELECT octet_length(content), updated_at FROM careline_datasets WHERE name = $1`, name).
		Scan(&info.Size, &info.ModTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return Info{}, ErrNotExist
	}
	if err != nil {
		return Info{}, ioErr("stat", name, err)
	}
	return info, nil
}

func (p *Postgres) List(ctx context.Context) ([]Info, error) {
	rows, err := p.pool.Query(ctx, `SELECT name, octet_length(content), updated_at FROM careline_datasets ORDER BY name`)
	if err != nil {
		return nil, ioErr("list", "careline_datasets", err)
	}
	defer rows.Close()
	var out []Info
	for rows.Next() {
		var info Info
		if err := rows.Scan(&info.Name, &info.Size, &info.ModTime); err != nil {
			return nil, ioErr("list", "careline_datasets", err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, ioErr("list", "careline_datasets", err)
	}
	return out, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return ioErr("ping", "postgres", err)
	}
	return nil
}
