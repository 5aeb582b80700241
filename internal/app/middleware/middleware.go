package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/swipetrip/internal/app/observability/metrics"
)

const (
	// SessionUserKey is the session field holding the logged in user id.
	SessionUserKey = "user_id"
	// SessionInstanceKey holds the boot id of the instance that opened the
	// session.
	SessionInstanceKey = "instance_id"

	RequestIDHeader = "X-Request-Id"

	userIDKey = "user_id"
)

// ErrNoCredentials is returned by ResolveUser when the request carries
// neither a session nor a token.
var ErrNoCredentials = errors.New("no credentials")

// Authenticator resolves the credentials a request carries to a user id.
type Authenticator interface {
	UserFromToken(token string) (int64, error)
	UserFromSession(userID int64, instance string) (int64, error)
}

// CORSMiddleware handles CORS headers for the configured origins. Requests
// from any other origin get no CORS headers.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		_, ok := allowed[origin]
		if origin != "" {
			c.Writer.Header().Add("Vary", "Origin")
		}
		if ok {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-Id")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		}

		if c.Request.Method == http.MethodOptions && origin != "" {
			if !ok {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// SecurityMiddleware adds security headers
func SecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		c.Writer.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Writer.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Next()
	}
}

// RequestIDMiddleware echoes the caller's X-Request-Id or assigns a new one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// OTELGinMiddleware returns the OpenTelemetry middleware for Gin
func OTELGinMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// MetricsMiddleware records request counts and latency per route.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		ctx := c.Request.Context()
		m := metrics.Get()

		m.HTTPRequestsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("path", route),
			attribute.String("status", status),
		))
		m.HTTPRequestDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("path", route),
		))
		if strings.HasPrefix(route, "/api/auth/") {
			m.AuthRequestsTotal.Add(ctx, 1, metric.WithAttributes(
				attribute.String("endpoint", route),
				attribute.String("status", status),
			))
		}
	}
}

// AuthMiddleware requires an authenticated user. It looks, in order, at the
// cookie session, the Authorization bearer token and the token query
// parameter.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := ResolveUser(c, auth)
		if err != nil {
			message := "invalid or expired credentials"
			if errors.Is(err, ErrNoCredentials) {
				message = "authentication required"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": message})
			return
		}

		SetUserID(c, id)
		c.Next()
	}
}

// OptionalAuthMiddleware sets the user when the request carries valid
// credentials and lets anonymous requests through.
func OptionalAuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := ResolveUser(c, auth); err == nil {
			SetUserID(c, id)
		}
		c.Next()
	}
}

// ResolveUser returns the user behind the request's session or token. A
// stale session does not hide a valid token.
func ResolveUser(c *gin.Context, auth Authenticator) (int64, error) {
	var sessionErr error
	if id, instance, ok := sessionUser(c); ok {
		uid, err := auth.UserFromSession(id, instance)
		if err == nil {
			return uid, nil
		}
		sessionErr = err
	}

	token := bearerToken(c)
	if token == "" {
		token = c.Query("token")
	}
	if token == "" {
		if sessionErr != nil {
			return 0, sessionErr
		}
		return 0, ErrNoCredentials
	}
	return auth.UserFromToken(token)
}

func sessionUser(c *gin.Context) (id int64, instance string, ok bool) {
	// The sessions middleware is not mounted in every router.
	if _, exists := c.Get(sessions.DefaultKey); !exists {
		return 0, "", false
	}
	session := sessions.Default(c)
	id, ok = session.Get(SessionUserKey).(int64)
	instance, _ = session.Get(SessionInstanceKey).(string)
	return id, instance, ok
}

func bearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// UserIDFromContext returns the user set by AuthMiddleware.
func UserIDFromContext(c *gin.Context) (int64, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// SetUserID marks the request as authenticated as id.
func SetUserID(c *gin.Context, id int64) {
	c.Set(userIDKey, id)
}
