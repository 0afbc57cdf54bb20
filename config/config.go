// ABOUTME: Runtime configuration loaded from .env files and the environment
// ABOUTME: Resolves data, database and session paths under the XDG directories
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

// AppName names the XDG subdirectories.
const AppName = "medcrm"

const (
	DefaultHTTPAddr = "127.0.0.1:8080"
	DefaultTokenTTL = 12 * time.Hour
)

type Config struct {
	DataDir       string
	DBPath        string
	Backend       string
	SessionPath   string
	LogLevel      string
	LogFormat     string
	HTTPAddr      string
	JWTSecret     string
	TokenTTL      time.Duration
	AdminPassword string
}

// Load reads .env files (missing files are fine) and builds the config
// from CRM_* variables. Variables already set in the environment win over
// .env values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	dataDir := getEnv("CRM_DATA_DIR", filepath.Join(xdg.DataHome, AppName))
	cfg := &Config{
		DataDir:       dataDir,
		DBPath:        getEnv("CRM_DB_PATH", ""),
		Backend:       getEnv("CRM_BACKEND", "sqlite"),
		SessionPath:   getEnv("CRM_SESSION_PATH", defaultSessionPath()),
		LogLevel:      getEnv("CRM_LOG_LEVEL", "warn"),
		LogFormat:     getEnv("CRM_LOG_FORMAT", "console"),
		HTTPAddr:      getEnv("CRM_HTTP_ADDR", DefaultHTTPAddr),
		JWTSecret:     getEnv("CRM_JWT_SECRET", ""),
		AdminPassword: getEnv("CRM_ADMIN_PASSWORD", ""),
		TokenTTL:      DefaultTokenTTL,
	}

	if raw := getEnv("CRM_TOKEN_TTL", ""); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid CRM_TOKEN_TTL %q: %w", raw, err)
		}
		cfg.TokenTTL = ttl
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case "sqlite", "badger":
	default:
		return fmt.Errorf("unknown backend %q (want sqlite or badger)", c.Backend)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive, got %s", c.TokenTTL)
	}
	return nil
}

// DatabasePath returns the store location for the configured backend.
// Badger stores are directories.
func (c *Config) DatabasePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	if c.Backend == "badger" {
		return filepath.Join(c.DataDir, "badger")
	}
	return filepath.Join(c.DataDir, "crm.db")
}

func defaultSessionPath() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, AppName, "session.json")
	}
	return filepath.Join(xdg.StateHome, AppName, "session.json")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
