package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/swipetrip/internal/pkg/config"
	"github.com/FACorreiaa/swipetrip/internal/routes"
)

func testConfig() *config.Config {
	return &config.Config{
		ServerPort:     "0",
		AllowedOrigins: []string{"http://localhost:5173"},
		JWT: config.JWTConfig{
			SecretKey:      "0123456789abcdef0123456789abcdef",
			AccessTokenTTL: time.Hour,
			Issuer:         "swipetrip-test",
		},
		Session: config.SessionConfig{
			Name:   "test_session",
			Secret: "0123456789abcdef0123456789abcdef",
			MaxAge: 3600,
		},
		Observability:     config.ObservabilityConfig{ServiceName: "swipetrip-test"},
		Relay:             config.RelayConfig{SendBuffer: 4, WriteTimeout: time.Second, MaxMessages: 10, MessagesWindow: time.Second},
		DestinationsTTL:   time.Minute,
		VoteWatchInterval: time.Minute,
		ShutdownTimeout:   time.Second,
	}
}

func TestSetupRouter(t *testing.T) {
	cfg := testConfig()
	app, err := routes.NewApp(cfg, zap.NewNop())
	require.NoError(t, err)
	defer app.Close()

	r := SetupRouter(cfg, app, zap.NewNop())

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	})

	t.Run("request id is echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/destinations", nil)
		req.Header.Set("X-Request-Id", "req-42")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "req-42", w.Header().Get("X-Request-Id"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/swipes", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight from unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/swipes", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("protected route needs auth", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testConfig()
	s := New(cfg, zap.NewNop())
	s.SetRouter(http.NotFoundHandler())
	srv := s.HTTPServer()
	srv.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, srv) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
