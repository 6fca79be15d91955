package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"PORT", "CONTEMBER_CONTENT_URL", "CONTEMBER_ADMIN_TOKEN",
		"CACHE_TTL_SECONDS", "UPSTREAM_TIMEOUT_SECONDS", "CORS_ORIGINS",
		"LOG_LEVEL", "CONFIG_FILE",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONTEMBER_CONTENT_URL", "https://content.example.com/graphql")
	t.Setenv("CONTEMBER_ADMIN_TOKEN", "token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, 60*time.Second, cfg.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONTEMBER_CONTENT_URL", "https://content.example.com/graphql")
	t.Setenv("CONTEMBER_ADMIN_TOKEN", "token")
	t.Setenv("PORT", "9000")
	t.Setenv("CACHE_TTL_SECONDS", "120")
	t.Setenv("UPSTREAM_TIMEOUT_SECONDS", "5")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_RequiredKeys(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "missing content url",
			env:  map[string]string{"CONTEMBER_ADMIN_TOKEN": "token"},
			want: "CONTEMBER_CONTENT_URL",
		},
		{
			name: "missing admin token",
			env:  map[string]string{"CONTEMBER_CONTENT_URL": "https://content.example.com"},
			want: "CONTEMBER_ADMIN_TOKEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9100"
content_url: https://file.example.com/graphql
cache_ttl_seconds: 30
upstream_timeout_seconds: 10
cors_origins:
  - https://portal.example.com
log_level: warn
`), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("CONTEMBER_ADMIN_TOKEN", "token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "https://file.example.com/graphql", cfg.ContentURL)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, []string{"https://portal.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"9100\"\ncontent_url: https://file.example.com\n"), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9200")
	t.Setenv("CONTEMBER_CONTENT_URL", "https://env.example.com")
	t.Setenv("CONTEMBER_ADMIN_TOKEN", "token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9200", cfg.Port)
	assert.Equal(t, "https://env.example.com", cfg.ContentURL)
}

func TestLoad_BadConfigFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [not, a, string"), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("CONTEMBER_CONTENT_URL", "https://env.example.com")
	t.Setenv("CONTEMBER_ADMIN_TOKEN", "token")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	assert.Error(t, err)
}
