package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"ride-fare-service/internal/domain"
	"ride-fare-service/internal/platform/obs"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const loginUnavailableMsg = "Login is unavailable."

// Login stores a fresh OAuth state and redirects to the provider consent page.
func (h *Handler) Login(c *gin.Context) {
	if !h.AuthEnabled() {
		h.redirectHome(c, loginUnavailableMsg)
		return
	}
	ctx := c.Request.Context()
	state := uuid.NewString()

	if err := h.sessions.SetState(ctx, sessionID(c), state); err != nil {
		h.log.Error("store oauth state failed",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.Error(err),
		)
		h.redirectHome(c, h.loginFailed())
		return
	}

	c.Redirect(http.StatusFound, h.auth.AuthURL(state))
}

// Callback exchanges the authorization code for a token and stores it in the session.
// The session id is rotated before the token is stored.
func (h *Handler) Callback(c *gin.Context) {
	if !h.AuthEnabled() {
		h.redirectHome(c, loginUnavailableMsg)
		return
	}
	ctx := c.Request.Context()
	sid := sessionID(c)
	code := c.Query("code")

	// State is single use, consume it even when the code is missing.
	want, ok, err := h.sessions.TakeState(ctx, sid)
	if err != nil {
		h.log.Error("load oauth state failed",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.Error(err),
		)
		h.redirectHome(c, h.loginFailed())
		return
	}

	if code == "" {
		h.log.Info("oauth callback rejected",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.Error(domain.ErrMissingCode),
		)
		h.redirectHome(c, h.loginFailed())
		return
	}

	if !ok || want != c.Query("state") {
		h.log.Warn("oauth callback rejected",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.Error(domain.ErrStateMismatch),
		)
		h.redirectHome(c, h.loginFailed())
		return
	}

	token, err := h.auth.Exchange(ctx, code)
	if err != nil {
		h.log.Warn("token exchange failed",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.String("provider", h.authProvider),
			zap.Error(err),
		)
		if errors.Is(err, domain.ErrMissingCode) {
			h.redirectHome(c, h.loginFailed())
			return
		}
		h.redirectHome(c, fmt.Sprintf("Failed to get %s token.", h.authProvider))
		return
	}

	fresh := rotateSession(c)
	if fresh != sid {
		if err := h.sessions.DeleteToken(ctx, sid, h.authProvider); err != nil {
			h.log.Warn("delete token failed",
				zap.String("req_id", obs.RequestID(ctx)),
				zap.Error(err),
			)
		}
	}

	if err := h.sessions.SetToken(ctx, fresh, h.authProvider, token); err != nil {
		h.log.Error("store token failed",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.Error(err),
		)
		h.redirectHome(c, fmt.Sprintf("Failed to get %s token.", h.authProvider))
		return
	}

	h.redirectHome(c, fmt.Sprintf("Connected to %s.", h.authProvider))
}

// Logout clears the stored provider token.
func (h *Handler) Logout(c *gin.Context) {
	if !h.AuthEnabled() {
		h.redirectHome(c, loginUnavailableMsg)
		return
	}
	ctx := c.Request.Context()

	if err := h.sessions.DeleteToken(ctx, sessionID(c), h.authProvider); err != nil {
		h.log.Warn("delete token failed",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.Error(err),
		)
	}

	h.redirectHome(c, fmt.Sprintf("Logged out of %s.", h.authProvider))
}

func (h *Handler) loginFailed() string {
	return fmt.Sprintf("%s login failed.", h.authProvider)
}
