package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-with-at-least-32-chars"

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", testSecret)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "8091", cfg.ServerPort)
		assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenTTL)
		assert.Equal(t, testSecret, cfg.Session.Secret)
		assert.Equal(t, 32, cfg.Relay.SendBuffer)
		assert.Equal(t, 30*time.Second, cfg.VoteWatchInterval)
		assert.Equal(t, 5*time.Minute, cfg.DestinationsTTL)
		assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.AllowedOrigins)
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", testSecret)
		t.Setenv("SERVER_PORT", "9000")
		t.Setenv("VOTE_WATCH_INTERVAL", "5s")
		t.Setenv("RELAY_SEND_BUFFER", "4")
		t.Setenv("SESSION_SECRET", "another-secret")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, ,https://admin.example.com")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.ServerPort)
		assert.Equal(t, 5*time.Second, cfg.VoteWatchInterval)
		assert.Equal(t, 4, cfg.Relay.SendBuffer)
		assert.Equal(t, "another-secret", cfg.Session.Secret)
		assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.AllowedOrigins)
	})

	t.Run("MissingSecret", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", "")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("ShortSecret", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", "short")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("InvalidDuration", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", testSecret)
		t.Setenv("VOTE_WATCH_INTERVAL", "soon")

		_, err := Load()
		assert.ErrorContains(t, err, "VOTE_WATCH_INTERVAL")
	})

	t.Run("InvalidBuffer", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", testSecret)
		t.Setenv("RELAY_SEND_BUFFER", "0")

		_, err := Load()
		assert.Error(t, err)
	})
}
