package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/lecturetable/internal/app/controllers"
	appMigrations "github.com/yigit/lecturetable/internal/app/migrations"
	appRepos "github.com/yigit/lecturetable/internal/app/repositories"
	appRoutes "github.com/yigit/lecturetable/internal/app/routes"
	appServices "github.com/yigit/lecturetable/internal/app/services"
	"github.com/yigit/lecturetable/internal/config"
	"github.com/yigit/lecturetable/internal/db"
	appMiddleware "github.com/yigit/lecturetable/internal/middleware"
	"github.com/yigit/lecturetable/internal/pkg/filestorage"
	"github.com/yigit/lecturetable/internal/pkg/helpers"
	"github.com/yigit/lecturetable/internal/pkg/lectureapi"
	"github.com/yigit/lecturetable/internal/pkg/logger"
	"github.com/yigit/lecturetable/internal/pkg/render"
)

// ConfigPathEnv overrides the default configs/config.yaml location.
const ConfigPathEnv = "CONFIG_PATH"

// Dependencies holds all the application dependencies
type Dependencies struct {
	CatalogService      *appServices.CatalogService
	TimetableService    *appServices.TimetableService
	CourseController    *appControllers.CourseController
	TimetableController *appControllers.TimetableController
	Repos               *appRepos.Repositories
	FileStorage         *filestorage.LocalStorage
	Logger              zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := os.Getenv(ConfigPathEnv)
	if configPath == "" {
		configPath = filepath.Join("configs", "config.yaml")
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Str("config", configPath).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
// It returns nil when the database is disabled.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	if !cfg.Database.Enabled {
		lgr.Info().Msg("Database disabled, using in-memory storage")
		return nil, nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool, lgr)

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")
	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	if dbPool != nil {
		deps.Repos = appRepos.NewRepositories(dbPool)
	} else {
		deps.Repos = appRepos.NewMemoryRepositories()
	}

	var err error
	exportsURL := strings.TrimRight(cfg.Server.PublicURL, "/") + "/exports" // Must match the static route
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.ExportPath, exportsURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize export storage")
		return nil, fmt.Errorf("failed to initialize export storage: %w", err)
	}

	renderer, err := render.NewRenderer(cfg.Render.FontPath, cfg.Render.PixelRatio)
	if err != nil {
		lgr.Error().Err(err).Str("font", cfg.Render.FontPath).Msg("Failed to load render font")
		return nil, fmt.Errorf("failed to initialize renderer: %w", err)
	}
	if cfg.Render.FontPath == "" {
		lgr.Debug().Msg("No render font configured, using built-in fonts")
	}

	client := lectureapi.NewClient(
		cfg.LectureAPI.BaseURL,
		helpers.ParseDuration(cfg.LectureAPI.Timeout, 10*time.Second),
		logger.Component("lectureapi"),
	)

	deps.CatalogService = appServices.NewCatalogService(
		client,
		deps.Repos.CatalogSnapshotRepository,
		cfg.Catalog.BatchSize,
		logger.Component("catalog"),
	)
	deps.CatalogService.SetRefreshTimeout(helpers.ParseDuration(cfg.Catalog.RefreshTimeout, appServices.DefaultRefreshTimeout))

	deps.TimetableService = appServices.NewTimetableService(
		deps.CatalogService,
		deps.Repos.SavedTimetableRepository,
		deps.FileStorage,
		renderer,
		cfg.Share.BaseURL,
		logger.Component("timetable"),
	)

	deps.CourseController = appControllers.NewCourseController(deps.CatalogService)
	deps.TimetableController = appControllers.NewTimetableController(deps.TimetableService, appControllers.CookieConfig{
		Name:   cfg.Share.CookieName,
		MaxAge: cfg.Share.CookieMaxAge,
		Secure: strings.HasPrefix(cfg.Server.PublicURL, "https://"),
	})

	return deps, nil
}

// LoadCatalog performs the initial catalog fetch. A failure is logged and
// left to the refresh loop; requests answer 503 until a catalog arrives.
func LoadCatalog(ctx context.Context, deps *Dependencies, lgr zerolog.Logger) {
	if _, err := deps.CatalogService.Refresh(ctx); err != nil {
		lgr.Warn().Err(err).Msg("Initial catalog load failed, will retry on schedule")
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(appMiddleware.Recovery(lgr), appMiddleware.RequestLogger(logger.Component("http")))

	appRoutes.SetupRouter(router,
		deps.CourseController,
		deps.TimetableController,
	)
	appRoutes.SetupSwagger(router)

	// Test endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}

// WrapCORS puts the configured CORS policy in front of the router. The
// selection cookie has to cross origins, so credentials are allowed.
func WrapCORS(cfg *config.Config, handler http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", appMiddleware.RequestIDHeader},
		ExposedHeaders:   []string{"Content-Disposition", appMiddleware.RequestIDHeader},
		AllowCredentials: true,
	})
	return c.Handler(handler)
}
