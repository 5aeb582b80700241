package relay

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/swipetrip/internal/pkg/config"
)

type staticTokens map[string]int64

func (v staticTokens) UserFromToken(token string) (int64, error) {
	if id, ok := v[token]; ok {
		return id, nil
	}
	return 0, errors.New("unknown token")
}

func (v staticTokens) UserFromSession(int64, string) (int64, error) {
	return 0, errors.New("no sessions")
}

func newTestServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(8, zap.NewNop())
	handler := NewHandler(hub, staticTokens{"token-1": 1, "token-7": 7}, config.RelayConfig{
		WriteTimeout:   time.Second,
		MaxMessages:    5,
		MessagesWindow: time.Minute,
	}, zap.NewNop())

	router := gin.New()
	router.GET("/ws", handler.HandleWebSocket)
	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		hub.Close()
	})
	return hub, server
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[4:]+"/ws"+query, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func authenticate(t *testing.T, conn *websocket.Conn, userID int64) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "auth", "userId": userID}))
	msg := readMessage(t, conn)
	require.Equal(t, "auth_ok", msg["type"])
	require.Equal(t, float64(userID), msg["userId"])
}

func TestWebSocketDeliversPublishedEvents(t *testing.T) {
	hub, server := newTestServer(t)
	conn := dial(t, server, "?token=token-7")
	authenticate(t, conn, 7)

	assert.True(t, hub.Online(7))
	require.True(t, hub.Publish(7, Event{Type: KindNewMatch, Payload: NewMatchPayload{MatchedUserID: 8, DestinationID: 3}}))

	msg := readMessage(t, conn)
	assert.Equal(t, "new_match", msg["type"])
	assert.Equal(t, float64(8), msg["matchedUserId"])
	assert.Equal(t, float64(3), msg["destinationId"])
}

func TestWebSocketPing(t *testing.T) {
	_, server := newTestServer(t)
	conn := dial(t, server, "?token=token-7")
	authenticate(t, conn, 7)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ping"}))
	assert.Equal(t, "pong", readMessage(t, conn)["type"])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "dance"}))
	assert.Equal(t, "error", readMessage(t, conn)["type"])
}

func TestWebSocketTokenMustMatchUser(t *testing.T) {
	hub, server := newTestServer(t)
	conn := dial(t, server, "?token=token-1")

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "auth", "userId": 2}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)
	assert.False(t, hub.Online(2))

	ok := dial(t, server, "?token=token-1")
	authenticate(t, ok, 1)
}

func TestWebSocketRejectsInvalidToken(t *testing.T) {
	_, server := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+server.URL[4:]+"/ws?token=forged", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketRequiresCredentials(t *testing.T) {
	hub, server := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+server.URL[4:]+"/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, hub.Online(1))
}

func TestWebSocketFirstMessageMustBeAuth(t *testing.T) {
	_, server := newTestServer(t)
	conn := dial(t, server, "?token=token-7")

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ping"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)
}

func TestWebSocketNewConnectionReplacesOld(t *testing.T) {
	hub, server := newTestServer(t)
	first := dial(t, server, "?token=token-7")
	authenticate(t, first, 7)
	second := dial(t, server, "?token=token-7")
	authenticate(t, second, 7)

	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := first.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)

	require.True(t, hub.Publish(7, Event{Type: KindVoteClosed, Payload: VoteClosedPayload{GroupID: 1}}))
	assert.Equal(t, "vote_closed", readMessage(t, second)["type"])
}
