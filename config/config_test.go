package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Moserpilot/Finance-Planner-2/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout.Duration)
	assert.Equal(t, config.DriverSQLite, cfg.Storage.Driver)
}

func TestLoad_MissingFilesAreSkipped(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"), filepath.Join(t.TempDir(), "nope.env"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_TOMLThenEnvironment(t *testing.T) {
	// GIVEN: A TOML file and an environment override for the same key
	// WHEN: Loading
	// THEN: TOML replaces defaults, the environment replaces TOML

	tomlPath := writeFile(t, "planner.toml", `
[server]
port = 9090
read_timeout = "5s"
cors_origins = ["https://plans.example"]

[storage]
driver = "memory"

[logging]
level = "debug"
format = "json"
`)
	t.Setenv("PLANNER_SERVER_PORT", "9191")
	t.Setenv("PLANNER_PLAN_SEED_SCENARIO", "hybrid-anchor")

	cfg, err := config.Load(tomlPath, "")
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout.Duration)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout.Duration, "untouched keys keep defaults")
	assert.Equal(t, []string{"https://plans.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, config.DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "hybrid-anchor", cfg.Plans.SeedScenario)
	require.NoError(t, cfg.Validate())
}

func TestLoad_DotenvFillsUnsetVariables(t *testing.T) {
	envPath := writeFile(t, ".env", "PLANNER_LOG_LEVEL=warn\nPLANNER_STORAGE_PATH=/tmp/from-dotenv.db\n")
	t.Setenv("PLANNER_STORAGE_PATH", "/tmp/from-env.db")
	// Registered so t restores the variable godotenv sets
	t.Setenv("PLANNER_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("PLANNER_LOG_LEVEL"))

	cfg, err := config.Load("", envPath)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "/tmp/from-env.db", cfg.Storage.Path, "real environment wins over .env")
}

func TestLoad_BadInput(t *testing.T) {
	_, err := config.Load(writeFile(t, "bad.toml", "[server\nport = "), "")
	assert.Error(t, err)

	t.Setenv("PLANNER_SERVER_IDLE_TIMEOUT", "forever")
	_, err = config.Load("", "")
	assert.ErrorContains(t, err, "parse env")
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Storage.Driver = "postgres"
	cfg.Logging.Level = "loud"
	cfg.Plans.DefaultID = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
	assert.Contains(t, err.Error(), "invalid port 0")
	assert.Contains(t, err.Error(), "invalid storage driver 'postgres'")
	assert.Contains(t, err.Error(), "invalid log level 'loud'")
	assert.Contains(t, err.Error(), "default plan id cannot be empty")
}

func TestValidate_RejectsWildcardOrigins(t *testing.T) {
	// GIVEN: CORS origins containing a wildcard or a blank entry
	// WHEN: Validating
	// THEN: Each offending origin is reported

	cfg := config.Default()
	cfg.Server.CORSOrigins = []string{"http://localhost:5173", "*", "https://*.example.com", " "}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cors origin '*'")
	assert.Contains(t, err.Error(), "invalid cors origin 'https://*.example.com'")
	assert.Contains(t, err.Error(), "invalid cors origin ' '")
	assert.NotContains(t, err.Error(), "localhost:5173")

	cfg.Server.CORSOrigins = []string{"https://planner.example.com"}
	assert.NoError(t, cfg.Validate())
}
