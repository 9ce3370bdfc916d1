package handlers

import (
	"context"
	"net/http"
	"ride-fare-service/internal/platform/obs"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func sessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}

// rotateSession replaces the caller's session id and returns the new one.
func rotateSession(c *gin.Context) string {
	if v, ok := c.Get(SessionRotateKey); ok {
		if rotate, ok := v.(func() string); ok {
			return rotate()
		}
	}
	return sessionID(c)
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// flash queues a message for the next page render. Store failures are logged only.
func (h *Handler) flash(c *gin.Context, msg string) {
	ctx := c.Request.Context()
	if err := h.sessions.AddFlash(ctx, sessionID(c), msg); err != nil {
		h.log.Warn("add flash failed",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.Error(err),
		)
	}
}

func (h *Handler) flashes(ctx context.Context, sid string) []string {
	msgs, err := h.sessions.Flashes(ctx, sid)
	if err != nil {
		h.log.Warn("read flashes failed",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.Error(err),
		)
		return nil
	}
	return msgs
}

func (h *Handler) redirectHome(c *gin.Context, msg string) {
	if msg != "" {
		h.flash(c, msg)
	}
	status := http.StatusFound
	if c.Request.Method == http.MethodPost {
		status = http.StatusSeeOther
	}
	c.Redirect(status, "/")
}
