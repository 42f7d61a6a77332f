// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/ramonabrendel1204-sketch/Devilsdice/internal/game"
)

// Config is the full server configuration.
type Config struct {
	Port           string   `env:"PORT" envDefault:"3000"`
	AllowedOrigins []string `env:"DEVILSDICE_ALLOWED_ORIGINS" envSeparator:","`

	LogLevel  string `env:"DEVILSDICE_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"DEVILSDICE_LOG_FORMAT" envDefault:"console"`

	HoldBroadcast string `env:"DEVILSDICE_HOLD_BROADCAST" envDefault:"others"`
	AllowRecommit bool   `env:"DEVILSDICE_ALLOW_RECOMMIT" envDefault:"false"`
	EnforceTurn   bool   `env:"DEVILSDICE_ENFORCE_TURN" envDefault:"false"`

	MsgsPerSecond float64 `env:"DEVILSDICE_MSGS_PER_SECOND" envDefault:"20"`
	MsgBurst      int     `env:"DEVILSDICE_MSG_BURST" envDefault:"40"`
	SendBuffer    int     `env:"DEVILSDICE_SEND_BUFFER" envDefault:"64"`

	OTelEndpoint    string        `env:"DEVILSDICE_OTEL_ENDPOINT"`
	ShutdownTimeout time.Duration `env:"DEVILSDICE_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates Config.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.MsgsPerSecond <= 0 {
		return fmt.Errorf("DEVILSDICE_MSGS_PER_SECOND must be positive, got %v", c.MsgsPerSecond)
	}
	if c.MsgBurst < 1 {
		return fmt.Errorf("DEVILSDICE_MSG_BURST must be at least 1, got %d", c.MsgBurst)
	}
	if c.SendBuffer < 1 {
		return fmt.Errorf("DEVILSDICE_SEND_BUFFER must be at least 1, got %d", c.SendBuffer)
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	return nil
}

// Policy returns the room rules selected by the configuration.
func (c Config) Policy() (game.Policy, error) {
	mode, err := game.ParseHoldBroadcast(c.HoldBroadcast)
	if err != nil {
		return game.Policy{}, fmt.Errorf("DEVILSDICE_HOLD_BROADCAST: %w", err)
	}
	return game.Policy{
		HoldBroadcast: mode,
		AllowRecommit: c.AllowRecommit,
		EnforceTurn:   c.EnforceTurn,
	}, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}
