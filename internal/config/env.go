package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the process reads from the environment.
type Config struct {
	OpenAIKey   string
	BotnoiToken string

	DefaultProvider string

	UploadDir string

	// DBDriver selects the ledger backend: "sqlite3" or "postgres".
	DBDriver    string
	SQLitePath  string
	PostgresDSN string

	ListenAddr string
	LimitsPath string

	ActivityDebounce time.Duration
}

// LoadEnv loads environment variables from a .env file when one exists.
// Variables already set in the environment win.
func LoadEnv() error {
	envPaths := []string{
		".env",
		".env.local",
		"../.env",
		"../../.env",
	}
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			break
		}
	}
	return nil
}

// Load reads the process configuration. Provider keys are validated for
// shape but neither is required: a deployment may run with a single backend.
func Load() (*Config, error) {
	if err := LoadEnv(); err != nil {
		return nil, err
	}

	cfg := &Config{
		OpenAIKey:        strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		BotnoiToken:      strings.TrimSpace(os.Getenv("BOTNOI_API_TOKEN")),
		DefaultProvider:  envOr("SUBTITLER_PROVIDER", "openai"),
		UploadDir:        envOr("SUBTITLER_UPLOAD_DIR", "data/uploads"),
		DBDriver:         envOr("SUBTITLER_DB_DRIVER", "sqlite3"),
		SQLitePath:       envOr("SUBTITLER_SQLITE_PATH", "data/ledger.db"),
		PostgresDSN:      os.Getenv("SUBTITLER_POSTGRES_DSN"),
		ListenAddr:       envOr("SUBTITLER_LISTEN_ADDR", ":8080"),
		LimitsPath:       envOr("SUBTITLER_LIMITS_PATH", "config/limits.yaml"),
		ActivityDebounce: 5 * time.Second,
	}

	if raw := os.Getenv("SUBTITLER_ACTIVITY_DEBOUNCE_SECONDS"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs < 0 {
			return nil, fmt.Errorf("invalid SUBTITLER_ACTIVITY_DEBOUNCE_SECONDS: %q", raw)
		}
		cfg.ActivityDebounce = time.Duration(secs) * time.Second
	}

	if cfg.OpenAIKey != "" {
		if !strings.HasPrefix(cfg.OpenAIKey, "sk-") {
			return nil, fmt.Errorf("invalid OPENAI_API_KEY format: must start with 'sk-'")
		}
		if len(cfg.OpenAIKey) < 20 {
			return nil, fmt.Errorf("invalid OPENAI_API_KEY format: too short")
		}
	}

	switch cfg.DBDriver {
	case "sqlite3":
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("SUBTITLER_POSTGRES_DSN is required with the postgres driver")
		}
	default:
		return nil, fmt.Errorf("unsupported SUBTITLER_DB_DRIVER: %q", cfg.DBDriver)
	}

	return cfg, nil
}

// ConfiguredProviders names the backends usable with the loaded keys.
func (c *Config) ConfiguredProviders() []string {
	var names []string
	if c.OpenAIKey != "" {
		names = append(names, "openai")
	}
	if c.BotnoiToken != "" {
		names = append(names, "botnoi")
	}
	return names
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
