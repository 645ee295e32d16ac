package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/i-monteiro/linhas-de-cuidado/internal/config"
	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/admission"
	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/catalog"
	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/intake"
	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/postdischarge"
	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/selector"
	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/session"
	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/stay"
	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/surveys"
	"github.com/i-monteiro/linhas-de-cuidado/internal/domain/treatment"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/auth"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/metrics"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/middleware"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/storage"
	"github.com/i-monteiro/linhas-de-cuidado/internal/platform/tabular"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:          "careline-server",
		Short:        "Care line case tracking API server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(datasetCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the care line API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func runServer() error {
	// Config
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.ResolvedAuthMode() == config.AuthModeDevelopment {
		logger.Warn().Str("env", cfg.Env).Msg("running with development auth; every request is granted the admin role")
	}

	// Datasets
	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open dataset storage")
	}
	defer storage.Close(backend)
	logger.Info().Str("driver", string(backend.Driver())).Msg("dataset storage ready")

	e := newServer(cfg, backend, logger)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newServer assembles the echo server over an open dataset backend.
func newServer(cfg *config.Config, backend storage.Backend, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	collector := metrics.NewCollector()

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(collector.Middleware())

	// Auth middleware
	if cfg.ResolvedAuthMode() == config.AuthModeDevelopment {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(cfg.JWT()))
	}

	// Audit middleware
	e.Use(middleware.Audit(logger))

	// Health and metrics
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/storage", storage.HealthHandler(backend))
	e.GET("/metrics", collector.Handler())

	apiV1 := e.Group("/api/v1")
	rateLimitCfg := cfg.RateLimit()
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	store := tabular.NewStore(backend)
	sessions := session.NewRegistry(cfg.SessionTTL)
	collector.TrackSessions(sessions.Len)
	sel := selector.NewService(store)

	intakeSvc := intake.NewService(store, cfg.Catalog())
	admissionSvc := admission.NewService(store)
	treatmentSvc := treatment.NewService(store)
	staySvc := stay.NewService(store)
	postDischargeSvc := postdischarge.NewService(store)
	surveysSvc := surveys.NewService(store)

	intakeSvc.SetRecorder(collector)
	admissionSvc.SetRecorder(collector)
	treatmentSvc.SetRecorder(collector)
	staySvc.SetRecorder(collector)
	postDischargeSvc.SetRecorder(collector)
	surveysSvc.SetRecorder(collector)

	catalog.NewHandler(cfg.Catalog()).RegisterRoutes(apiV1)
	session.NewHandler(sessions).RegisterRoutes(apiV1)
	selector.NewHandler(sel).RegisterRoutes(apiV1)
	intake.NewHandler(intakeSvc, sessions, sel).RegisterRoutes(apiV1)
	admission.NewHandler(admissionSvc, sessions, sel).RegisterRoutes(apiV1)
	treatment.NewHandler(treatmentSvc, sessions, sel).RegisterRoutes(apiV1)
	stay.NewHandler(staySvc, sessions, sel).RegisterRoutes(apiV1)
	postdischarge.NewHandler(postDischargeSvc, sessions, sel).RegisterRoutes(apiV1)
	surveys.NewHandler(surveysSvc, sessions, sel).RegisterRoutes(apiV1)

	return e
}
