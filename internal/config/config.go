package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Addr            string        `env:"STYLUS_ADDR" envDefault:":8080"`
	APIPrefix       string        `env:"STYLUS_API_PREFIX" envDefault:"/api"`
	Store           string        `env:"STYLUS_STORE" envDefault:"memory"`
	SQLitePath      string        `env:"STYLUS_SQLITE_PATH" envDefault:"data/stylus.db"`
	MigrationsDir   string        `env:"STYLUS_MIGRATIONS_DIR"`
	StaticDir       string        `env:"STYLUS_STATIC_DIR"`
	DevFrontendURL  string        `env:"STYLUS_DEV_FRONTEND_URL"`
	Commit          string        `env:"STYLUS_COMMIT" envDefault:"dev"`
	BuildTime       string        `env:"STYLUS_BUILD_TIME"`
	LogLevel        string        `env:"STYLUS_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"STYLUS_LOG_FORMAT" envDefault:"json"`
	MaxBodyBytes    int64         `env:"STYLUS_MAX_BODY_BYTES" envDefault:"1048576"`
	ShutdownTimeout time.Duration `env:"STYLUS_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	OpenAI OpenAI
}

// OpenAI configures the chat-completion upstream. An empty APIKey leaves the
// AI routes answering with a generic failure.
type OpenAI struct {
	APIKey  string        `env:"OPENAI_API_KEY"`
	BaseURL string        `env:"OPENAI_BASE_URL"`
	Model   string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	Timeout time.Duration `env:"OPENAI_TIMEOUT" envDefault:"60s"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return parse(env.Options{})
}

// LoadFrom parses vars instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	if vars == nil {
		vars = map[string]string{}
	}
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parsing env config: %w", err)
	}
	cfg.APIPrefix = normalizePrefix(cfg.APIPrefix)
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite:
	default:
		return fmt.Errorf("STYLUS_STORE must be %q or %q, got %q", StoreMemory, StoreSQLite, c.Store)
	}
	if c.Store == StoreSQLite && strings.TrimSpace(c.SQLitePath) == "" {
		return errors.New("STYLUS_SQLITE_PATH is required for the sqlite store")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("STYLUS_MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	}
	if c.StaticDir != "" && c.DevFrontendURL != "" {
		return errors.New("set at most one of STYLUS_STATIC_DIR and STYLUS_DEV_FRONTEND_URL")
	}
	return nil
}

// normalizePrefix yields "" or "/segment" without a trailing slash.
func normalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
