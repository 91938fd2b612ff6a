package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Port      string `env:"PORT" default:"3000"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"json"`

	UploadDir      string        `env:"UPLOAD_DIR" default:"uploads"`
	StaticDir      string        `env:"STATIC_DIR"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" default:"157286400"`
	Retention      time.Duration `env:"RETENTION" default:"24h"`
	SweepInterval  time.Duration `env:"SWEEP_INTERVAL" default:"1h"`

	StationName      string `env:"STATION_NAME" default:"RADIO PS"`
	StationFrequency string `env:"STATION_FREQUENCY" default:"99.9 FM"`

	// Comma separated name:password pairs. Empty means the built-in table.
	Moderators string `env:"MODERATORS"`
	Listeners  string `env:"LISTENERS"`

	LoginRate  float64 `env:"LOGIN_RATE" default:"1"`
	LoginBurst int     `env:"LOGIN_BURST" default:"5"`
}

// Load reads the given .env files (".env" when none are given) and then
// fills a Config from the process environment. A missing .env file is not an
// error; system env and defaults are used instead.
func Load(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	_ = godotenv.Load(paths...)

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.UploadDir == "" {
		return errors.New("UPLOAD_DIR must not be empty")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.Retention <= 0 {
		return fmt.Errorf("RETENTION must be positive, got %s", c.Retention)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	if c.LoginRate <= 0 || c.LoginBurst <= 0 {
		return errors.New("LOGIN_RATE and LOGIN_BURST must be positive")
	}
	return nil
}
