// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Postgres holds the connection settings for the match database.
type Postgres struct {
	User     string `env:"POSTGRES_USER" envDefault:"postgres"`
	Password string `env:"POSTGRES_PASSWORD"`
	Host     string `env:"PG_HOST" envDefault:"localhost"`
	Port     string `env:"PG_PORT" envDefault:"5432"`
	Database string `env:"PG_DATABASE" envDefault:"spellclash"`
}

// URL builds the pgx connection string.
func (p Postgres) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", p.User, p.Password, p.Host, p.Port, p.Database)
}

// Redis holds the action queue settings.
type Redis struct {
	Addr  string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	DB    int    `env:"REDIS_DB" envDefault:"0"`
	Queue string `env:"HISTORIAN_QUEUE_NAME" envDefault:"spellclash_actions"`
}

// Server is the configuration of cmd/server.
type Server struct {
	Port       string        `env:"PORT" envDefault:"8080"`
	LogLevel   string        `env:"LOG_LEVEL" envDefault:"info"`
	SeedSecret string        `env:"MATCH_SEED_SECRET"`
	SeatTTL    time.Duration `env:"SEAT_TOKEN_TTL" envDefault:"6h"`
	Postgres   Postgres
	Redis      Redis
}

// Addr is the listen address.
func (s Server) Addr() string { return ":" + s.Port }

// Historian is the configuration of cmd/historian.
type Historian struct {
	BatchSize  int           `env:"HISTORIAN_BATCH_SIZE" envDefault:"20"`
	FlushDelay time.Duration `env:"HISTORIAN_FLUSH_DELAY" envDefault:"500ms"`
	Inactivity time.Duration `env:"MATCH_INACTIVITY_TIMEOUT" envDefault:"10m"`
	LogLevel   string        `env:"LOG_LEVEL" envDefault:"info"`
	Postgres   Postgres
	Redis      Redis
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadServer parses the server configuration.
func LoadServer() (Server, error) {
	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		return Server{}, err
	}
	if cfg.SeatTTL <= 0 {
		return Server{}, fmt.Errorf("SEAT_TOKEN_TTL must be positive, got %s", cfg.SeatTTL)
	}
	return cfg, nil
}

// LoadHistorian parses the historian configuration.
func LoadHistorian() (Historian, error) {
	var cfg Historian
	if err := ParseEnv(&cfg); err != nil {
		return Historian{}, err
	}
	if cfg.BatchSize < 1 {
		return Historian{}, fmt.Errorf("HISTORIAN_BATCH_SIZE must be at least 1, got %d", cfg.BatchSize)
	}
	return cfg, nil
}
