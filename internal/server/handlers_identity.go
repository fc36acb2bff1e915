package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bloomery/backend/internal/store"
)

// maxWebhookBodyBytes caps the webhook body; larger deliveries get a 413.
const maxWebhookBodyBytes = 1 << 20

func (a *App) clerkWebhookStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Webhook endpoint is working!",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"path":      c.FullPath(),
	})
}

func (a *App) clerkWebhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		a.metrics.IdentityEvents.WithLabelValues("unknown", "rejected").Inc()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.logger.Warn("clerk webhook body too large", zap.Int64("limit", tooLarge.Limit))
			writeError(c, http.StatusRequestEntityTooLarge, "Payload too large")
			return
		}
		writeError(c, http.StatusBadRequest, "Invalid payload")
		return
	}

	out := a.webhooks.Process(c.Request.Context(), c.Request.Header, body)
	eventType := out.EventType
	if eventType == "" {
		eventType = "unknown"
	}
	outcome := "ok"
	switch {
	case out.Status >= http.StatusInternalServerError:
		outcome = "failed"
	case !out.OK():
		outcome = "rejected"
	}
	a.metrics.IdentityEvents.WithLabelValues(eventType, outcome).Inc()

	if !out.OK() {
		writeError(c, out.Status, out.Message)
		return
	}
	c.JSON(out.Status, gin.H{"message": out.Message})
}

func (a *App) getMe(c *gin.Context) {
	userID, ok := authUserIDFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Token subject missing")
		return
	}
	if a.users == nil {
		writeError(c, http.StatusServiceUnavailable, "Database not configured")
		return
	}

	user, err := a.users.GetUser(c.Request.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		a.logger.Error("load user failed", zap.String("user_id", userID), zap.Error(err))
		writeError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, user)
}
