package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "", cfg.DataDir)
	assert.Equal(t, "", cfg.DBURL)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "pretty", cfg.LogFormat)
	assert.Equal(t, "explode_times", cfg.FunctionName)
	assert.Equal(t, 30.0, cfg.QueryTimeout)
	assert.Equal(t, "", cfg.CORSAllowedOrigins)
	assert.Equal(t, "", cfg.APIKeys)
}

func TestEnvDefaults_MatchConfigDefaults(t *testing.T) {
	// Struct tag defaults must be literals; keep them in sync with the constants.
	clearEnvVars(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultFunctionName, cfg.FunctionName)
	assert.Equal(t, DefaultQueryTimeout.Seconds(), cfg.QueryTimeout)
}

func TestLoadFromEnv_OverrideValues(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "9000")
	t.Setenv("DATA_DIR", "/custom/data")
	t.Setenv("DB_URL", "sqlite:////custom/db.sqlite")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("FUNCTION_NAME", "series")
	t.Setenv("QUERY_TIMEOUT", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("API_KEYS", "key1,key2")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "/custom/data", cfg.DataDir)
	assert.Equal(t, "sqlite:////custom/db.sqlite", cfg.DBURL)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "series", cfg.FunctionName)
	assert.Equal(t, 2.5, cfg.QueryTimeout)
	assert.Equal(t, "https://a.example,https://b.example", cfg.CORSAllowedOrigins)
	assert.Equal(t, "key1,key2", cfg.APIKeys)
}

func TestLoadFromEnv_InvalidPort(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("PORT", "not-a-number")

	_, err := LoadFromEnv()
	assert.Error(t, err)
}

func TestLoadFromEnvWithPrefix(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("EXPLODE_PORT", "7000")

	cfg, err := LoadFromEnvWithPrefix("EXPLODE")
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
}

func TestEnvConfig_ToAppConfig(t *testing.T) {
	env := EnvConfig{
		Host:               "localhost",
		Port:               3000,
		DataDir:            "/data",
		LogLevel:           "WARN",
		LogFormat:          "JSON",
		FunctionName:       " series ",
		QueryTimeout:       1.5,
		CORSAllowedOrigins: "https://a.example",
		APIKeys:            "k1, k2",
	}

	cfg := env.ToAppConfig()

	assert.Equal(t, "localhost:3000", cfg.Addr())
	assert.Equal(t, "/data", cfg.DataDir())
	assert.Equal(t, "sqlite:///"+filepath.Join("/data", DefaultDBFile), cfg.DBURL())
	assert.Equal(t, "WARN", cfg.LogLevel())
	assert.Equal(t, LogFormatJSON, cfg.LogFormat())
	assert.Equal(t, "series", cfg.FunctionName())
	assert.Equal(t, 1500*time.Millisecond, cfg.QueryTimeout())
	assert.Equal(t, []string{"https://a.example"}, cfg.CORSAllowedOrigins())
	assert.Equal(t, []string{"k1", "k2"}, cfg.APIKeys())
}

func TestEnvConfig_ToAppConfig_ExplicitDBURLWins(t *testing.T) {
	env := EnvConfig{DataDir: "/data", DBURL: "sqlite:///:memory:"}

	cfg := env.ToAppConfig()
	assert.Equal(t, "sqlite:///:memory:", cfg.DBURL())
}

func TestParseLogFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected LogFormat
	}{
		{"json", LogFormatJSON},
		{"JSON", LogFormatJSON},
		{"pretty", LogFormatPretty},
		{"", LogFormatPretty},
		{"unknown", LogFormatPretty},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogFormat(tt.input))
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("FUNCTION_NAME=from_dotenv\nLOG_LEVEL=DEBUG\n"), 0o644))

	clearEnvVars(t)

	require.NoError(t, LoadDotEnv(envFile))
	assert.Equal(t, "from_dotenv", os.Getenv("FUNCTION_NAME"))
	assert.Equal(t, "DEBUG", os.Getenv("LOG_LEVEL"))
}

func TestLoadDotEnv_NonExistent(t *testing.T) {
	clearEnvVars(t)
	assert.NoError(t, LoadDotEnv("/nonexistent/.env"))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "DATA_DIR=" + dir + "\nLOG_LEVEL=WARN\nQUERY_TIMEOUT=10\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	clearEnvVars(t)
	t.Setenv("LOG_LEVEL", "ERROR")

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir())
	assert.Equal(t, "ERROR", cfg.LogLevel(), "existing environment wins over .env")
	assert.Equal(t, 10*time.Second, cfg.QueryTimeout())
}

// clearEnvVars unsets all config-related environment variables and restores
// them when the test ends.
func clearEnvVars(t *testing.T) {
	t.Helper()

	vars := []string{
		"HOST",
		"PORT",
		"DATA_DIR",
		"DB_URL",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"FUNCTION_NAME",
		"QUERY_TIMEOUT",
		"CORS_ALLOWED_ORIGINS",
		"API_KEYS",
		"EXPLODE_PORT",
	}

	for _, v := range vars {
		t.Setenv(v, "")
		_ = os.Unsetenv(v)
	}
}
