package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port       string `yaml:"port" env:"SERVER_PORT"`
		Mode       string `yaml:"mode" env:"SERVER_MODE"`
		ExportPath string `yaml:"export_path" env:"SERVER_EXPORT_PATH"`
		PublicURL  string `yaml:"public_url" env:"SERVER_PUBLIC_URL"`
	} `yaml:"server"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS"`
	} `yaml:"cors"`

	LectureAPI struct {
		BaseURL string `yaml:"base_url" env:"LECTURE_API_BASE_URL"`
		Timeout string `yaml:"timeout" env:"LECTURE_API_TIMEOUT"`
	} `yaml:"lecture_api"`

	Catalog struct {
		BatchSize       int    `yaml:"batch_size" env:"CATALOG_BATCH_SIZE"`
		RefreshInterval string `yaml:"refresh_interval" env:"CATALOG_REFRESH_INTERVAL"`
		RefreshTimeout  string `yaml:"refresh_timeout" env:"CATALOG_REFRESH_TIMEOUT"`
	} `yaml:"catalog"`

	Share struct {
		BaseURL      string `yaml:"base_url" env:"SHARE_BASE_URL"`
		CookieName   string `yaml:"cookie_name" env:"SHARE_COOKIE_NAME"`
		CookieMaxAge int    `yaml:"cookie_max_age" env:"SHARE_COOKIE_MAX_AGE"`
	} `yaml:"share"`

	Render struct {
		FontPath   string `yaml:"font_path" env:"RENDER_FONT_PATH"`
		PixelRatio int    `yaml:"pixel_ratio" env:"RENDER_PIXEL_RATIO"`
	} `yaml:"render"`

	Database struct {
		Enabled         bool   `yaml:"enabled" env:"DB_ENABLED"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables.
// A missing file is not an error; defaults and the environment still apply.
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Default returns a Config populated with defaults.
func Default() *Config {
	config := &Config{}

	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.ExportPath = "exports"
	config.Server.PublicURL = "http://localhost:8080"

	config.CORS.AllowedOrigins = []string{"https://lecture.syu.kr", "http://localhost:5500", "null"}

	config.LectureAPI.BaseURL = "https://api.syu.kr"
	config.LectureAPI.Timeout = "10s"

	config.Catalog.BatchSize = 200
	config.Catalog.RefreshInterval = "30m"
	config.Catalog.RefreshTimeout = "30s"

	config.Share.BaseURL = "https://lecture.syu.kr/timetable"
	config.Share.CookieName = "data"
	config.Share.CookieMaxAge = 60 * 60 * 24 * 365

	config.Render.PixelRatio = 2

	config.Database.Enabled = false
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "lecturetable"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	return config
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if strings.TrimSpace(config.LectureAPI.BaseURL) == "" {
		return fmt.Errorf("lecture api base url is required")
	}

	if _, err := time.ParseDuration(config.LectureAPI.Timeout); err != nil {
		return fmt.Errorf("invalid lecture api timeout: %w", err)
	}

	if _, err := time.ParseDuration(config.Catalog.RefreshInterval); err != nil {
		return fmt.Errorf("invalid catalog refresh interval: %w", err)
	}

	if d, err := time.ParseDuration(config.Catalog.RefreshTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid catalog refresh timeout %q", config.Catalog.RefreshTimeout)
	}

	if config.Catalog.BatchSize <= 0 {
		return fmt.Errorf("catalog batch size must be positive")
	}

	if config.Share.CookieName == "" {
		return fmt.Errorf("share cookie name is required")
	}

	if config.Render.PixelRatio < 1 {
		return fmt.Errorf("render pixel ratio must be at least 1")
	}

	if config.Database.Enabled {
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("invalid database connection lifetime: %w", err)
		}
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
