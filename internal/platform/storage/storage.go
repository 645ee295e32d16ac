// Package storage persists whole dataset files by name. A dataset file is an
// opaque byte payload (CSV text in practice); the tabular package gives it
// structure. Backends are selected by driver: local filesystem (default),
// in-memory, S3-compatible object storage, SQLite, or PostgreSQL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Driver identifies a concrete backend implementation.
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverMemory     Driver = "memory"
	DriverS3         Driver = "s3"
	DriverSQLite     Driver = "sqlite"
	DriverPostgres   Driver = "postgres"
)

// Drivers lists every supported driver.
var Drivers = []Driver{DriverFilesystem, DriverMemory, DriverS3, DriverSQLite, DriverPostgres}

// ErrNotExist is returned when a dataset has never been written.
var ErrNotExist = errors.New("dataset does not exist")

// IOError reports a failed storage operation. It is fatal for the operation
// that triggered it; callers surface it and do not retry.
type IOError struct {
	Op   string
	Name string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Name, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func ioErr(op, name string, err error) error {
	return &IOError{Op: op, Name: name, Err: err}
}

// Info describes a stored dataset file.
type Info struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size_bytes"`
	ModTime time.Time `json:"modified_at"`
}

// Backend stores dataset files.
type Backend interface {
	// Get returns the full content of name, or ErrNotExist.
	Get(ctx context.Context, name string) ([]byte, error)
	// Put replaces the full content of name, creating it if needed.
	Put(ctx context.Context, name string, data []byte) error
	// Stat returns metadata for name, or ErrNotExist.
	Stat(ctx context.Context, name string) (Info, error)
	// List returns all stored datasets ordered by name.
	List(ctx context.Context) ([]Info, error)
	Driver() Driver
}

// Appender is implemented by backends that can append to an existing
// dataset without rewriting it. Append returns ErrNotExist when name is
// missing.
type Appender interface {
	Append(ctx context.Context, name string, data []byte) error
}

// Pinger is implemented by backends that can check connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Exists reports whether name has been written.
func Exists(ctx context.Context, b Backend, name string) (bool, error) {
	_, err := b.Stat(ctx, name)
	if errors.Is(err, ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Close releases backend resources when the backend holds any.
func Close(b Backend) error {
	if c, ok := b.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
