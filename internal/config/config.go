package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/careline"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/auth"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/middleware"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/storage"
)

// Auth modes.
const (
	AuthModeDevelopment = "development"
	AuthModeJWT         = "jwt"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	AuthMode string `mapstructure:"AUTH_MODE"`

	AuthJWTSecret string `mapstructure:"AUTH_JWT_SECRET"`
	AuthIssuer    string `mapstructure:"AUTH_ISSUER"`
	AuthAudience  string `mapstructure:"AUTH_AUDIENCE"`

	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	BodyLimit      string        `mapstructure:"BODY_LIMIT"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	DatasetDriver string `mapstructure:"DATASET_DRIVER"`
	DatasetDir    string `mapstructure:"DATASET_DIR"`
	SQLitePath    string `mapstructure:"SQLITE_PATH"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	DBMaxConns    int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns    int32  `mapstructure:"DB_MIN_CONNS"`

	S3Bucket    string `mapstructure:"S3_BUCKET"`
	S3Region    string `mapstructure:"S3_REGION"`
	S3Endpoint  string `mapstructure:"S3_ENDPOINT"`
	S3PathStyle bool   `mapstructure:"S3_PATH_STYLE"`
	S3Prefix    string `mapstructure:"S3_PREFIX"`

	SessionTTL time.Duration `mapstructure:"SESSION_TTL"`
	Hospitals  []string      `mapstructure:"HOSPITALS"`
	CareLines  []string      `mapstructure:"CARE_LINES"`
}

var keys = []string{
	"PORT", "ENV", "AUTH_MODE",
	"AUTH_JWT_SECRET", "AUTH_ISSUER", "AUTH_AUDIENCE",
	"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "BODY_LIMIT", "REQUEST_TIMEOUT",
	"DATASET_DRIVER", "DATASET_DIR", "SQLITE_PATH", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"S3_BUCKET", "S3_REGION", "S3_ENDPOINT", "S3_PATH_STYLE", "S3_PREFIX",
	"SESSION_TTL", "HOSPITALS", "CARE_LINES",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("AUTH_MODE", "") // inferred from ENV
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("DATASET_DRIVER", string(storage.DriverFilesystem))
	v.SetDefault("DATASET_DIR", "./data")
	v.SetDefault("SQLITE_PATH", "./data/careline.db")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("SESSION_TTL", "8h")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(cfg.CORSOrigins, v.GetString("CORS_ORIGINS"))
	cfg.Hospitals = splitList(cfg.Hospitals, v.GetString("HOSPITALS"))
	cfg.CareLines = splitList(cfg.CareLines, v.GetString("CARE_LINES"))

	return cfg, nil
}

// splitList trims a comma separated setting, falling back to raw when the
// decoder produced nothing.
func splitList(decoded []string, raw string) []string {
	if len(decoded) == 0 && raw != "" {
		decoded = strings.Split(raw, ",")
	}
	var out []string
	for _, s := range decoded {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// ResolvedAuthMode returns AUTH_MODE when set. Otherwise development runs
// without auth and every other environment requires JWTs.
func (c *Config) ResolvedAuthMode() string {
	if c.AuthMode != "" {
		return c.AuthMode
	}
	if c.IsDev() {
		return AuthModeDevelopment
	}
	return AuthModeJWT
}

// Validate checks that the configuration is consistent enough to start.
func (c *Config) Validate() error {
	switch mode := c.ResolvedAuthMode(); mode {
	case AuthModeDevelopment:
		if c.Env == "production" {
			return fmt.Errorf("AUTH_MODE=development is not allowed with ENV=production")
		}
	case AuthModeJWT:
		if c.AuthJWTSecret == "" {
			return fmt.Errorf("AUTH_JWT_SECRET must be set when AUTH_MODE is %q (current ENV=%q)", mode, c.Env)
		}
	default:
		return fmt.Errorf("AUTH_MODE must be \"development\" or \"jwt\", got %q", mode)
	}

	switch storage.Driver(c.DatasetDriver) {
	case storage.DriverFilesystem, storage.DriverMemory:
	case storage.DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when DATASET_DRIVER is sqlite")
		}
	case storage.DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATASET_DRIVER is postgres")
		}
	case storage.DriverS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when DATASET_DRIVER is s3")
		}
	default:
		return fmt.Errorf("DATASET_DRIVER must be one of fs, memory, sqlite, postgres, s3, got %q", c.DatasetDriver)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}

// StorageOptions maps the dataset settings onto storage.Open.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Driver:      storage.Driver(c.DatasetDriver),
		Dir:         c.DatasetDir,
		SQLitePath:  c.SQLitePath,
		DatabaseURL: c.DatabaseURL,
		MaxConns:    c.DBMaxConns,
		MinConns:    c.DBMinConns,
		S3: storage.S3Config{
			Bucket:    c.S3Bucket,
			Region:    c.S3Region,
			Endpoint:  c.S3Endpoint,
			Prefix:    c.S3Prefix,
			PathStyle: c.S3PathStyle,
		},
	}
}

// Catalog is the register intake choice lists, defaulted when unset.
func (c *Config) Catalog() careline.Catalog {
	return careline.NewCatalog(c.Hospitals, c.CareLines)
}

func (c *Config) JWT() auth.JWTConfig {
	return auth.JWTConfig{
		Issuer:     c.AuthIssuer,
		Audience:   c.AuthAudience,
		SigningKey: []byte(c.AuthJWTSecret),
		Skipper:    auth.AuthSkipper,
	}
}

func (c *Config) RateLimit() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{RequestsPerSecond: c.RateLimitRPS, BurstSize: c.RateLimitBurst}
}
