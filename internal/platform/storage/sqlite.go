package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLite keeps every dataset as one row of a single table, keyed by name.
type SQLite struct {
	db   *sql.DB
	path string
}

// NewSQLite opens (or creates) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = "careline.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; sqlite serializes writes anyway.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS datasets (
		name       TEXT PRIMARY KEY,
		content    BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create datasets table: %w", err)
	}
	return &SQLite{db: db, path: path}, nil
}

func (s *SQLite) Driver() Driver { return DriverSQLite }

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) Get(ctx context.Context, name string) ([]byte, error) {
	var content []byte
	err := s.db.QueryRowContext(ctx, `SELECT content FROM datasets WHERE name = ?`, name).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, ioErr("get", name, err)
	}
	return content, nil
}

func (s *SQLite) Put(ctx context.Context, name string, data []byte) error {
	if _, err := sanitizeName(name); err != nil {
		return err
	}
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO datasets (name, content, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		name, data, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return ioErr("put", name, err)
	}
	return nil
}

func (s *SQLite) Stat(ctx context.Context, name string) (Info, error) {
	var size int64
	var updated string
	err := s.db.QueryRowContext(ctx, `SELECT length(content), updated_at FROM datasets WHERE name = ?`, name).
		Scan(&size, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Info{}, ErrNotExist
	}
	if err != nil {
		return Info{}, ioErr("stat", name, err)
	}
	mod, _ := time.Parse(time.RFC3339Nano, updated)
	return Info{Name: name, Size: size, ModTime: mod}, nil
}

func (s *SQLite) List(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, length(content), updated_at FROM datasets ORDER BY name`)
	if err != nil {
		return nil, ioErr("list", s.path, err)
	}
	defer func() { _ = rows.Close() }()
	var out []Info
	for rows.Next() {
		var info Info
		var updated string
		if err := rows.Scan(&info.Name, &info.Size, &updated); err != nil {
			return nil, ioErr("list", s.path, err)
		}
		info.ModTime, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, ioErr("list", s.path, err)
	}
	return out, nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return ioErr("ping", s.path, err)
	}
	return nil
}
