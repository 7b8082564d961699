package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port    int           `env:"TEST_CFG_PORT" envDefault:"8080"`
	Backend string        `env:"TEST_CFG_BACKEND" envDefault:"memory"`
	IdleTTL time.Duration `env:"TEST_CFG_IDLE_TTL" envDefault:"30m"`
	Brokers []string      `env:"TEST_CFG_BROKERS" envSeparator:","`
	KafkaOn bool          `env:"TEST_CFG_KAFKA" envDefault:"false"`
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "memory", cfg.Backend)
	assert.Equal(t, 30*time.Minute, cfg.IdleTTL)
	assert.Empty(t, cfg.Brokers)
	assert.False(t, cfg.KafkaOn)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "9090")
	t.Setenv("TEST_CFG_BACKEND", "redis")
	t.Setenv("TEST_CFG_IDLE_TTL", "5m")
	t.Setenv("TEST_CFG_BROKERS", "k1:9092,k2:9092")
	t.Setenv("TEST_CFG_KAFKA", "true")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "redis", cfg.Backend)
	assert.Equal(t, 5*time.Minute, cfg.IdleTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers)
	assert.True(t, cfg.KafkaOn)
}

func TestLoad_EnvFile(t *testing.T) {
	// Register cleanup for the variable the file sets.
	t.Setenv("TEST_CFG_BACKEND", "")
	require.NoError(t, os.Unsetenv("TEST_CFG_BACKEND"))

	path := writeEnvFile(t, "TEST_CFG_BACKEND=postgres\n")

	var cfg testConfig
	require.NoError(t, Load(&cfg, path))
	assert.Equal(t, "postgres", cfg.Backend)
}

func TestLoad_ProcessEnvBeatsEnvFile(t *testing.T) {
	t.Setenv("TEST_CFG_BACKEND", "file")
	path := writeEnvFile(t, "TEST_CFG_BACKEND=postgres\n")

	var cfg testConfig
	require.NoError(t, Load(&cfg, path))
	assert.Equal(t, "file", cfg.Backend)
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	var cfg testConfig
	err := Load(&cfg, filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
}

type requiredConfig struct {
	DSN string `env:"TEST_CFG_DSN,required"`
}

func TestLoad_RequiredFieldMissing(t *testing.T) {
	var cfg requiredConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
