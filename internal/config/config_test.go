package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigContent = `
[development]
host = "localhost"
port = 8080
log_level = "trace"
postgres_db_name = "traintrack_dev"
auth_rate_limit_allowed_per_min = 15

[production]
host = ""
port = 9000
log_level = "debug"
postgres_db_name = "traintrack"
auth_rate_limit_allowed_per_min = 10
`

func TestLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(testConfigContent), 0o600))

	devCfg, err := Load("development", configPath)
	require.NoError(t, err)
	assert.Equal(t, "development", devCfg.Environment)
	assert.Equal(t, "localhost", devCfg.Host)
	assert.Equal(t, 8080, devCfg.Port)
	assert.Equal(t, "traintrack_dev", devCfg.PostgresDBName)
	assert.Equal(t, 15, devCfg.AuthRateLimitAllowedPerMin)

	prodCfg, err := Load("prod", configPath)
	require.NoError(t, err)
	assert.Equal(t, 9000, prodCfg.Port)
	assert.Equal(t, "debug", prodCfg.LogLevel)
}

func TestLoad_UnknownEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(testConfigContent), 0o600))

	_, err := Load("staging", configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown env")
}
