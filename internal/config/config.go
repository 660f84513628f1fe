// Package config loads process configuration from the environment.
//
// A `.env` file in the working directory is loaded first (if present) so
// local development does not need exported variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every environment-driven setting. Game rules are constants in
// the game package and are not configurable.
type Config struct {
	Port            string `env:"PORT" envDefault:"5175"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	ClientOrigin    string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	SessionSecret   string `env:"SESSION_SECRET" envDefault:"dev_secret_change_me"`
	SessionTTLHours int    `env:"SESSION_TTL_HOURS" envDefault:"24"`
	DailySalt       string `env:"DAILY_SALT" envDefault:"local_dev_salt"`
	WordsFile       string `env:"WORDS_FILE"`
	OTelEnabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	LogFile         string `env:"SCRAMBLE_LOG_FILE"`
}

// Load reads .env (missing is fine) and then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the environment only.
func Parse() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("parse env: %w", err)
	}
	if c.SessionTTLHours <= 0 {
		return c, fmt.Errorf("parse env: SESSION_TTL_HOURS must be positive, got %d", c.SessionTTLHours)
	}
	return c, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + c.Port }

// SessionTTL is how long an idle game session is kept.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}
