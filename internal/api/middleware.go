package api

import (
	"net/http"
	"ride-fare-service/internal/api/handlers"
	"ride-fare-service/internal/platform/obs"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDHeader   = "X-Request-ID"
	SessionCookieName = "fare_session"
)

// requestID honours an incoming X-Request-ID or generates one, and stores it
// on the request context for obs.Time and handler logs.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}

		c.Request = c.Request.WithContext(obs.WithRequestID(c.Request.Context(), id))
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// accessLog logs end-to-end request duration and response size.
func accessLog(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.Info("request",
			zap.String("req_id", obs.RequestID(c.Request.Context())),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.RequestURI()),
			zap.Int("status", c.Writer.Status()),
			zap.Int("bytes", c.Writer.Size()),
			zap.Int64("dur_ms", time.Since(start).Milliseconds()),
		)
	}
}

func recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		log.Error("panic recovered",
			zap.String("req_id", obs.RequestID(c.Request.Context())),
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", rec),
		)
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}

// session assigns every browser a random session id cookie. Missing or
// malformed values are replaced with a fresh id. Handlers rotate the id
// through handlers.SessionRotateKey when a provider token is stored.
func session(ttl time.Duration, secure bool) gin.HandlerFunc {
	maxAge := int(ttl / time.Second)

	return func(c *gin.Context) {
		issue := func(id string) {
			// Only one session cookie per response.
			c.Writer.Header().Del("Set-Cookie")
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookieName, id, maxAge, "/", "", secure, true)
			c.Set(handlers.SessionIDKey, id)
		}

		id, err := c.Cookie(SessionCookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}

		// Re-issued on every request so the cookie expiry tracks the store TTL.
		issue(id)
		c.Set(handlers.SessionRotateKey, func() string {
			fresh := uuid.NewString()
			issue(fresh)
			return fresh
		})

		c.Next()
	}
}
