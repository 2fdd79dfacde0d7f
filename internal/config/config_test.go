package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfig_Defaults(t *testing.T) {
	cfg := NewAppConfig()

	assert.Equal(t, DefaultHost, cfg.Host())
	assert.Equal(t, DefaultPort, cfg.Port())
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "", cfg.DataDir())
	assert.Equal(t, DefaultDBURL, cfg.DBURL())
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel())
	assert.Equal(t, LogFormatPretty, cfg.LogFormat())
	assert.Equal(t, "explode_times", cfg.FunctionName())
	assert.Equal(t, 30*time.Second, cfg.QueryTimeout())
	assert.Empty(t, cfg.CORSAllowedOrigins())
	assert.Empty(t, cfg.APIKeys())
}

func TestAppConfig_WithOptions(t *testing.T) {
	cfg := NewAppConfigWithOptions(
		WithHost("127.0.0.1"),
		WithPort(9000),
		WithDBURL("sqlite:////tmp/x.db"),
		WithLogLevel("DEBUG"),
		WithLogFormat(LogFormatJSON),
		WithFunctionName("series"),
		WithQueryTimeout(5*time.Second),
		WithCORSAllowedOrigins([]string{"https://a.example"}),
		WithAPIKeys([]string{"k1"}),
	)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.Equal(t, "sqlite:////tmp/x.db", cfg.DBURL())
	assert.Equal(t, "DEBUG", cfg.LogLevel())
	assert.Equal(t, LogFormatJSON, cfg.LogFormat())
	assert.Equal(t, "series", cfg.FunctionName())
	assert.Equal(t, 5*time.Second, cfg.QueryTimeout())
	assert.Equal(t, []string{"https://a.example"}, cfg.CORSAllowedOrigins())
	assert.Equal(t, []string{"k1"}, cfg.APIKeys())
}

func TestAppConfig_IgnoresEmptyOverrides(t *testing.T) {
	cfg := NewAppConfigWithOptions(WithFunctionName(""), WithQueryTimeout(0))

	assert.Equal(t, DefaultFunctionName, cfg.FunctionName())
	assert.Equal(t, DefaultQueryTimeout, cfg.QueryTimeout())
}

func TestAppConfig_DataDirUpdatesDBURL(t *testing.T) {
	cfg := NewAppConfigWithOptions(WithDataDir("/data"))
	assert.Equal(t, "sqlite:///"+filepath.Join("/data", DefaultDBFile), cfg.DBURL())

	explicit := NewAppConfigWithOptions(WithDBURL("sqlite:////other.db"), WithDataDir("/data"))
	assert.Equal(t, "sqlite:////other.db", explicit.DBURL())
}

func TestAppConfig_SlicesAreCopied(t *testing.T) {
	keys := []string{"a"}
	cfg := NewAppConfigWithOptions(WithAPIKeys(keys))
	keys[0] = "mutated"

	got := cfg.APIKeys()
	assert.Equal(t, []string{"a"}, got)
	got[0] = "mutated"
	assert.Equal(t, []string{"a"}, cfg.APIKeys())
}

func TestAppConfig_Apply(t *testing.T) {
	base := NewAppConfig()
	next := base.Apply(WithPort(1234))

	assert.Equal(t, DefaultPort, base.Port())
	assert.Equal(t, 1234, next.Port())
}

func TestAppConfig_EnsureDataDir(t *testing.T) {
	require.NoError(t, NewAppConfig().EnsureDataDir())

	dir := filepath.Join(t.TempDir(), "nested", "data")
	cfg := NewAppConfigWithOptions(WithDataDir(dir))
	require.NoError(t, cfg.EnsureDataDir())
	assert.DirExists(t, dir)
}

func TestAppConfig_LogAttrs(t *testing.T) {
	cfg := NewAppConfigWithOptions(WithAPIKeys([]string{"secret"}))

	keys := map[string]string{}
	for _, attr := range cfg.LogAttrs() {
		keys[attr.Key] = attr.Value.String()
	}
	assert.Equal(t, "1", keys["api_keys_count"])
	assert.Equal(t, "explode_times", keys["function_name"])
	for _, v := range keys {
		assert.NotContains(t, v, "secret")
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"a", []string{"a"}},
		{"a, b ,c", []string{"a", "b", "c"}},
		{" , a,,", []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseList(tt.in))
		})
	}
}
