package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Options selects and configures a backend.
type Options struct {
	Driver      Driver
	Dir         string // fs
	SQLitePath  string // sqlite
	DatabaseURL string // postgres
	MaxConns    int32
	MinConns    int32
	S3          S3Config
}

// Open constructs the backend named by opts.Driver (default fs).
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Driver {
	case "", DriverFilesystem:
		return NewFilesystem(opts.Dir)
	case DriverMemory:
		return NewMemory(), nil
	case DriverS3:
		return NewS3(ctx, opts.S3)
	case DriverSQLite:
		return NewSQLite(opts.SQLitePath)
	case DriverPostgres:
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		pool, err := NewPool(ctx, opts.DatabaseURL, opts.MaxConns, opts.MinConns)
		if err != nil {
			return nil, err
		}
		pg, err := NewPostgres(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown dataset driver %q", opts.Driver)
	}
}

// HealthHandler reports whether the backend is reachable.
func HealthHandler(b Backend) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		var err error
		if p, ok := b.(Pinger); ok {
			err = p.Ping(ctx)
		} else {
			_, err = b.List(ctx)
		}
		if err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status": "unhealthy",
				"driver": b.Driver(),
				"error":  err.Error(),
			})
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"driver": b.Driver(),
		})
	}
}
