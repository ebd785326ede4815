package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadEnvironmentVariables_Defaults(t *testing.T) {
	t.Setenv("FIREBASE_API_KEY", "key")
	t.Setenv("SESSION_SECRET", testSecret)

	for _, key := range []string{"ENVIRONMENT", "PORT", "BACKEND_URL", "BACKEND_TIMEOUT", "VISITOR_TTL", "ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadEnvironmentVariables(Flags{EnvFile: "does-not-exist.env"})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "http://localhost:5000", cfg.BackendURL)
	assert.Equal(t, time.Duration(0), cfg.BackendTimeout, "no timeout unless configured")
	assert.Equal(t, 24*time.Hour, cfg.VisitorTTL)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoadEnvironmentVariables_MissingRequired(t *testing.T) {
	t.Setenv("FIREBASE_API_KEY", "")
	t.Setenv("SESSION_SECRET", testSecret)

	_, err := LoadEnvironmentVariables(Flags{EnvFile: "does-not-exist.env"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIREBASE_API_KEY")

	t.Setenv("FIREBASE_API_KEY", "key")
	t.Setenv("SESSION_SECRET", "short")

	_, err = LoadEnvironmentVariables(Flags{EnvFile: "does-not-exist.env"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestLoadEnvironmentVariables_Overrides(t *testing.T) {
	t.Setenv("FIREBASE_API_KEY", "key")
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("BACKEND_URL", "http://backend:9000/")
	t.Setenv("BACKEND_TIMEOUT", "5s")
	t.Setenv("BACKEND_RATE_LIMIT", "2.5")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("PORT", "8080")

	cfg, err := LoadEnvironmentVariables(Flags{EnvFile: "does-not-exist.env", Port: "9999"})
	require.NoError(t, err)

	assert.Equal(t, "http://backend:9000", cfg.BackendURL)
	assert.Equal(t, 5*time.Second, cfg.BackendTimeout)
	assert.InDelta(t, 2.5, cfg.BackendRateLimit, 0.0001)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "9999", cfg.Port, "flag wins over env")
}

func TestLoadEnvironmentVariables_BadDuration(t *testing.T) {
	t.Setenv("FIREBASE_API_KEY", "key")
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("VISITOR_TTL", "forever")

	_, err := LoadEnvironmentVariables(Flags{EnvFile: "does-not-exist.env"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VISITOR_TTL")
}

func TestParseServerFlags(t *testing.T) {
	flags := ParseServerFlags([]string{"-env-file", "local.env", "-port", "4000"})
	assert.Equal(t, "local.env", flags.EnvFile)
	assert.Equal(t, "4000", flags.Port)

	assert.Equal(t, ".env", DefaultServerFlags().EnvFile)
}
