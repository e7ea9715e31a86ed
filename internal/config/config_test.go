package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VTC_DB_DSN", "postgres://localhost/vtc")
	t.Setenv("VTC_JWT_SECRET", "dev-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "vtc.booking.events", cfg.AMQP.Exchange)
	assert.Equal(t, 2*time.Hour, cfg.Dispatch.OverlapWindow)
	assert.Equal(t, 5*time.Second, cfg.Dispatch.LockTTL)
	assert.Equal(t, "Europe/Paris", cfg.Booking.Location.String())
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.FirebaseEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("VTC_DB_DSN", "postgres://localhost/vtc")
	t.Setenv("VTC_FIREBASE_PROJECT_ID", "vtc-prod")
	t.Setenv("VTC_CORS_ORIGINS", "https://app.example.com, https://admin.example.com,")
	t.Setenv("VTC_DISPATCH_OVERLAP_WINDOW", "90m")
	t.Setenv("VTC_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.FirebaseEnabled())
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, 90*time.Minute, cfg.Dispatch.OverlapWindow)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadRequiresDSNAndIdentity(t *testing.T) {
	t.Setenv("VTC_DB_DSN", "")
	t.Setenv("VTC_JWT_SECRET", "x")
	_, err := Load()
	assert.ErrorContains(t, err, "VTC_DB_DSN")

	t.Setenv("VTC_DB_DSN", "postgres://localhost/vtc")
	t.Setenv("VTC_JWT_SECRET", "")
	t.Setenv("VTC_FIREBASE_PROJECT_ID", "")
	_, err = Load()
	assert.Error(t, err)
}
