package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/yigit/lecturetable/internal/bootstrap"
	"github.com/yigit/lecturetable/internal/config"
	"github.com/yigit/lecturetable/internal/db"
	"github.com/yigit/lecturetable/internal/pkg/helpers"
)

// Server holds the state for the HTTP server.
type Server struct {
	config  *config.Config
	handler http.Handler
	deps    *bootstrap.Dependencies
	db      *db.PostgresDB
	logger  zerolog.Logger
	http    *http.Server

	stopRefresh context.CancelFunc
	refreshDone sync.WaitGroup
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer() (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	database, err := bootstrap.SetupDatabase(context.Background(), cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	var dbPool *pgxpool.Pool
	if database != nil {
		dbPool = database.Pool
	}

	deps, err := bootstrap.BuildDependencies(cfg, dbPool, lgr)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	router := bootstrap.SetupRouter(cfg, deps, lgr)

	return &Server{
		config:  cfg,
		handler: bootstrap.WrapCORS(cfg, router),
		deps:    deps,
		db:      database,
		logger:  lgr,
	}, nil
}

// startCatalog loads the catalog in the background and then keeps it
// fresh. Requests answer 503 until the first load lands.
func (s *Server) startCatalog() {
	ctx, cancel := context.WithCancel(context.Background())
	s.stopRefresh = cancel

	interval, scheduled := helpers.DisabledOrDuration(s.config.Catalog.RefreshInterval)

	s.refreshDone.Add(1)
	go func() {
		defer s.refreshDone.Done()
		bootstrap.LoadCatalog(ctx, s.deps, s.logger)
		if !scheduled {
			s.logger.Info().Msg("Scheduled catalog refresh disabled")
			return
		}
		s.logger.Info().Dur("interval", interval).Msg("Scheduled catalog refresh started")
		s.deps.CatalogService.Run(ctx, interval)
	}()
}

// Run starts the HTTP server and handles graceful shutdown.
func (s *Server) Run() error {
	s.logger.Info().Str("port", s.config.Server.Port).Msg("Starting server...")

	s.startCatalog()

	s.http = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel to listen for errors starting the server
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive either a server error or an OS signal
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			_ = s.Shutdown(context.Background())
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully stops the server and closes resources.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	shutdownError := false

	if s.stopRefresh != nil {
		s.stopRefresh()
		s.refreshDone.Wait()
		s.logger.Info().Msg("Catalog refresh stopped.")
	}

	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			shutdownError = true
		} else {
			s.logger.Info().Msg("HTTP server gracefully stopped.")
		}
	}

	if s.db != nil {
		s.logger.Info().Msg("Closing database connection pool...")
		s.db.Close()
		s.logger.Info().Msg("Database connection pool closed.")
	}

	s.logger.Info().Msg("Server shutdown process complete.")
	if shutdownError {
		return errors.New("server shutdown completed with errors")
	}
	return nil
}
