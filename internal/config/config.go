package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv        string        `env:"APP_ENV" envDefault:"dev"`
	Port          string        `env:"PORT" envDefault:"8080"`
	DBPath        string        `env:"DB_PATH" envDefault:"./dev.db"`
	DBOpenTimeout time.Duration `env:"DB_OPEN_TIMEOUT" envDefault:"30s"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	TemplatesDir  string        `env:"TEMPLATES_DIR" envDefault:"web/templates"`
	SeedSamples   bool          `env:"SEED_SAMPLES" envDefault:"false"`
}

// IsDev reports whether the server runs in local development mode.
func (c Config) IsDev() bool {
	return c.AppEnv == "dev"
}

// Load reads an optional dotenv file and then the process environment.
// Variables already set in the environment win over the dotenv file.
func Load(dotenvPath string) (Config, error) {
	if err := loadDotEnv(dotenvPath); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT must not be empty")
	}
	return cfg, nil
}

// loadDotEnv is best-effort: a missing file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
