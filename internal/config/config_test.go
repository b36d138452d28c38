package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/campusconnect")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/campusconnect")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Cloudinary.Enabled())
}

func TestLoadCORS(t *testing.T) {
	tests := []struct {
		name        string
		origins     string
		environment string
		want        CORSConfig
	}{
		{
			name:        "development without whitelist allows all",
			origins:     "",
			environment: "development",
			want:        CORSConfig{AllowAllOrigins: true},
		},
		{
			name:        "production without whitelist allows none",
			origins:     "",
			environment: "production",
			want:        CORSConfig{},
		},
		{
			name:        "whitelist parsed and trimmed",
			origins:     " https://campus.example.com , https://admin.example.com ",
			environment: "production",
			want:        CORSConfig{AllowedOrigins: []string{"https://campus.example.com", "https://admin.example.com"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := loadCORS(tt.origins, tt.environment)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCloudinaryEnabled(t *testing.T) {
	assert.False(t, CloudinaryConfig{CloudName: "demo"}.Enabled())
	assert.True(t, CloudinaryConfig{CloudName: "demo", APIKey: "key", APISecret: "secret"}.Enabled())
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	assert.Equal(t, 42, getEnvInt("TEST_INT", 7))

	t.Setenv("TEST_INT", "not-a-number")
	assert.Equal(t, 7, getEnvInt("TEST_INT", 7))

	assert.Equal(t, 7, getEnvInt("TEST_INT_UNSET", 7))
}
