package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/shelflife/internal/database"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Shelflife"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Driver   string `envconfig:"DB_DRIVER" default:"sqlite3"`
		Path     string `envconfig:"DB_PATH" default:"shelflife.db"`
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"shelflife"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Products struct {
		BaseURL   string        `envconfig:"OFF_BASE_URL" default:"https://world.openfoodfacts.org"`
		UserAgent string        `envconfig:"OFF_USER_AGENT" default:"Shelflife/1.0"`
		Timeout   time.Duration `envconfig:"OFF_TIMEOUT" default:"10s"`
	}

	OCR struct {
		BaseURL string        `envconfig:"OCR_BASE_URL" default:"http://localhost:8000/api"`
		Timeout time.Duration `envconfig:"OCR_TIMEOUT" default:"30s"`
	}

	Auth struct {
		// Secret signs HS256 bearer tokens. Empty disables authentication.
		Secret string `envconfig:"AUTH_SECRET"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"text"`
	}

	// Username attributes items saved from the TUI and CLI.
	Username string `envconfig:"SHELF_USER"`
}

// ConnectionString returns the DSN for the configured driver.
func (c *Config) ConnectionString() string {
	if c.DB.Driver == database.DriverPostgres {
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
	}

	return c.DB.Path
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	cfg.DB.Driver = strings.ToLower(cfg.DB.Driver)

	switch cfg.DB.Driver {
	case "postgres", "postgresql":
		cfg.DB.Driver = database.DriverPostgres
	case "sqlite":
		cfg.DB.Driver = database.DriverSQLite
	}

	return &cfg, nil
}
