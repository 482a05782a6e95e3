// Package config loads planner settings.
//
// Sources, later ones winning: built-in defaults, an optional TOML file, an
// optional .env file (which only fills variables not already set), and
// PLANNER_* environment variables. Command-line flags in cmd/server are
// applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "PLANNER_"

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

type Config struct {
	Server  ServerConfig  `toml:"server" envPrefix:"SERVER_"`
	Storage StorageConfig `toml:"storage" envPrefix:"STORAGE_"`
	Logging LoggingConfig `toml:"logging" envPrefix:"LOG_"`
	Plans   PlansConfig   `toml:"plans" envPrefix:"PLAN_"`
}

type ServerConfig struct {
	Host            string   `toml:"host" env:"HOST"`
	Port            int      `toml:"port" env:"PORT"`
	ReadTimeout     Duration `toml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    Duration `toml:"write_timeout" env:"WRITE_TIMEOUT"`
	IdleTimeout     Duration `toml:"idle_timeout" env:"IDLE_TIMEOUT"`
	ShutdownTimeout Duration `toml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	CORSOrigins     []string `toml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
}

type StorageConfig struct {
	Driver string `toml:"driver" env:"DRIVER"` // sqlite | memory
	Path   string `toml:"path" env:"PATH"`
}

type LoggingConfig struct {
	Level  string `toml:"level" env:"LEVEL"`
	Format string `toml:"format" env:"FORMAT"` // console | json
}

type PlansConfig struct {
	// DefaultID is the plan created on first start when the store is empty.
	DefaultID string `toml:"default_id" env:"DEFAULT_ID"`

	// SeedScenario, when set, loads that demo scenario into DefaultID.
	SeedScenario string `toml:"seed_scenario" env:"SEED_SCENARIO"`
}

// Duration is a time.Duration written as "15s", "1m30s", ... in TOML and
// the environment.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "",
			Port:            8080,
			ReadTimeout:     Duration{15 * time.Second},
			WriteTimeout:    Duration{15 * time.Second},
			IdleTimeout:     Duration{60 * time.Second},
			ShutdownTimeout: Duration{30 * time.Second},
			CORSOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Storage: StorageConfig{
			Driver: DriverSQLite,
			Path:   "./data/planner.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Plans: PlansConfig{
			DefaultID: "default",
		},
	}
}

// Load builds the configuration. Missing files are skipped; an empty path
// means "no file".
func Load(tomlPath, dotenvPath string) (*Config, error) {
	cfg := Default()

	if tomlPath != "" {
		data, err := os.ReadFile(tomlPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %s: %w", tomlPath, err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", tomlPath, err)
			}
		}
	}

	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", dotenvPath, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Server.Port))
	}
	for name, d := range map[string]Duration{
		"read_timeout":     c.Server.ReadTimeout,
		"write_timeout":    c.Server.WriteTimeout,
		"idle_timeout":     c.Server.IdleTimeout,
		"shutdown_timeout": c.Server.ShutdownTimeout,
	} {
		if d.Duration <= 0 {
			problems = append(problems, fmt.Sprintf("invalid %s %s: must be positive", name, d.Duration))
		}
	}

	for _, origin := range c.Server.CORSOrigins {
		if strings.Contains(origin, "*") || strings.TrimSpace(origin) == "" {
			problems = append(problems, fmt.Sprintf("invalid cors origin '%s': list each allowed origin explicitly", origin))
		}
	}

	validDrivers := []string{DriverSQLite, DriverMemory}
	if !slices.Contains(validDrivers, c.Storage.Driver) {
		problems = append(problems, fmt.Sprintf("invalid storage driver '%s': must be one of %v", c.Storage.Driver, validDrivers))
	}
	if c.Storage.Driver == DriverSQLite && c.Storage.Path == "" {
		problems = append(problems, "SQLite database path cannot be empty when using sqlite driver")
	}

	validLevels := []string{"trace", "debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, c.Logging.Level) {
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be one of %v", c.Logging.Level, validLevels))
	}
	validFormats := []string{"console", "json"}
	if !slices.Contains(validFormats, c.Logging.Format) {
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be one of %v", c.Logging.Format, validFormats))
	}

	if c.Plans.DefaultID == "" {
		problems = append(problems, "default plan id cannot be empty")
	}

	if len(problems) > 0 {
		slices.Sort(problems)
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}
