package relay

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/FACorreiaa/swipetrip/internal/app/middleware"
	"github.com/FACorreiaa/swipetrip/internal/pkg/config"
)

const authTimeout = 10 * time.Second

type Handler struct {
	hub      *Hub
	auth     middleware.Authenticator
	cfg      config.RelayConfig
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, auth middleware.Authenticator, cfg config.RelayConfig, logger *zap.Logger) *Handler {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	return &Handler{
		hub:      hub,
		auth:     auth,
		cfg:      cfg,
		logger:   logger.Named("websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWebSocket registers the connection of one user with the hub. The
// upgrade request must carry a session or token, and the first client message
// must be {"type":"auth","userId":N} naming that same user.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	identity, err := middleware.ResolveUser(c, h.auth)
	if err != nil {
		h.logger.Info("Rejected WebSocket upgrade", zap.Error(err))
		message := "invalid or expired credentials"
		if errors.Is(err, middleware.ErrNoCredentials) {
			message = "authentication required"
		}
		c.JSON(http.StatusUnauthorized, gin.H{"message": message})
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade to WebSocket", zap.Error(err))
		return
	}
	defer ws.Close()

	userID, err := h.authenticate(ws, identity)
	if err != nil {
		h.logger.Info("WebSocket authentication failed", zap.Error(err))
		h.closeWith(ws, websocket.ClosePolicyViolation, err.Error())
		return
	}

	sub := h.hub.Subscribe(userID)
	defer h.hub.Unsubscribe(sub)

	if err := h.write(ws, Event{Type: KindAuthOK, Payload: authPayload{UserID: userID}}); err != nil {
		h.logger.Warn("Failed to acknowledge auth", zap.Int64("user_id", userID), zap.Error(err))
		return
	}
	h.logger.Info("WebSocket connection established", zap.Int64("user_id", userID))

	replies := make(chan Event, 4)
	writerDone := make(chan struct{})
	go h.writeLoop(ws, sub, replies, writerDone)

	limiter := newMessageLimiter(h.cfg.MaxMessages, h.cfg.MessagesWindow)
	for {
		var msg clientMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Warn("WebSocket read error", zap.Int64("user_id", userID), zap.Error(err))
			}
			break
		}

		if !limiter.allow(time.Now()) {
			h.logger.Warn("Message rate limit exceeded", zap.Int64("user_id", userID))
			reply(replies, errorEvent("Too many messages. Please slow down."))
			continue
		}

		switch msg.Type {
		case KindPing:
			reply(replies, Event{Type: KindPong})
		case KindAuth:
			if msg.UserID != userID {
				reply(replies, errorEvent(fmt.Sprintf("connection already authenticated as user %d", userID)))
				continue
			}
			reply(replies, Event{Type: KindAuthOK, Payload: authPayload{UserID: userID}})
		default:
			reply(replies, errorEvent(fmt.Sprintf("unknown message type %q", msg.Type)))
		}
	}

	h.hub.Unsubscribe(sub)
	<-writerDone
	h.logger.Info("WebSocket connection closed", zap.Int64("user_id", userID))
}

func (h *Handler) authenticate(ws *websocket.Conn, identity int64) (int64, error) {
	if err := ws.SetReadDeadline(time.Now().Add(authTimeout)); err != nil {
		return 0, err
	}
	var msg clientMessage
	if err := ws.ReadJSON(&msg); err != nil {
		return 0, fmt.Errorf("failed to read auth message: %w", err)
	}
	if err := ws.SetReadDeadline(time.Time{}); err != nil {
		return 0, err
	}

	switch {
	case msg.Type != KindAuth:
		return 0, fmt.Errorf("expected auth message, got %q", msg.Type)
	case msg.UserID <= 0:
		return 0, errors.New("auth message needs a positive userId")
	case msg.UserID != identity:
		return 0, fmt.Errorf("userId %d does not match the authenticated user", msg.UserID)
	}
	return msg.UserID, nil
}

func (h *Handler) writeLoop(ws *websocket.Conn, sub *Subscription, replies <-chan Event, done chan<- struct{}) {
	defer close(done)
	for {
		var ev Event
		select {
		case <-sub.Done():
			h.closeWith(ws, websocket.CloseNormalClosure, "subscription closed")
			return
		case ev = <-replies:
		case ev = <-sub.Events():
		}
		if err := h.write(ws, ev); err != nil {
			h.logger.Debug("Failed to write event", zap.Int64("user_id", sub.UserID), zap.String("kind", ev.Type), zap.Error(err))
			_ = ws.Close()
			return
		}
	}
}

func (h *Handler) write(ws *websocket.Conn, ev Event) error {
	if err := ws.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout)); err != nil {
		return err
	}
	return ws.WriteJSON(ev)
}

func (h *Handler) closeWith(ws *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(h.cfg.WriteTimeout))
	_ = ws.Close()
}

func reply(replies chan<- Event, ev Event) {
	select {
	case replies <- ev:
	default:
	}
}

func errorEvent(message string) Event {
	return Event{Type: KindError, Payload: errorPayload{Message: message}}
}

// messageLimiter is a sliding window over the timestamps of accepted messages.
type messageLimiter struct {
	mu          sync.Mutex
	maxMessages int
	window      time.Duration
	accepted    []time.Time
}

func newMessageLimiter(maxMessages int, window time.Duration) *messageLimiter {
	return &messageLimiter{
		maxMessages: maxMessages,
		window:      window,
		accepted:    make([]time.Time, 0, maxMessages),
	}
}

func (l *messageLimiter) allow(now time.Time) bool {
	if l.maxMessages <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)
	valid := l.accepted[:0]
	for _, t := range l.accepted {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	l.accepted = valid

	if len(l.accepted) >= l.maxMessages {
		return false
	}
	l.accepted = append(l.accepted, now)
	return true
}
