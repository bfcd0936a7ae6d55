// Package config loads all application configuration from environment
// variables, with an optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env if it exists (silent fail if not).
	_ = godotenv.Load()
}

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	Auth   AuthConfig
	Shop   ShopConfig
	Cache  CacheConfig
	GitHub GitHubConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	DBPath          string        `envconfig:"DB_PATH" default:"data/itemshop.db"`
	TemplateDir     string        `envconfig:"TEMPLATE_DIR" default:"web/templates"`
	StaticDir       string        `envconfig:"STATIC_DIR" default:"web/static"`
	Debug           bool          `envconfig:"DEBUG" default:"false"`
}

// AuthConfig holds session settings.
//
// SessionSecret signs the session JWTs; generate with `openssl rand -hex 32`.
type AuthConfig struct {
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"168h"`
}

// ShopConfig holds upstream shop API settings.
type ShopConfig struct {
	URL          string        `envconfig:"SHOP_URL" default:"https://fortnite-api.com/v2/shop"`
	APIKey       string        `envconfig:"SHOP_API_KEY" required:"true"`
	FetchTimeout time.Duration `envconfig:"SHOP_FETCH_TIMEOUT" default:"25s"`
}

// CacheConfig selects the parsed-catalog cache backend.
type CacheConfig struct {
	Type string        `envconfig:"CACHE_TYPE" default:"memory"`
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"10m"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// GitHubConfig holds optional OAuth sign-in credentials. GitHub login routes
// are only registered when ClientID is non-empty.
type GitHubConfig struct {
	ClientID     string `envconfig:"GITHUB_CLIENT_ID" default:""`
	ClientSecret string `envconfig:"GITHUB_CLIENT_SECRET" default:""`
	CallbackURL  string `envconfig:"GITHUB_CALLBACK_URL" default:""`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.GitHub.ClientID != "" && cfg.GitHub.CallbackURL == "" {
		cfg.GitHub.CallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Server.Port)
	}
	return &cfg, nil
}
