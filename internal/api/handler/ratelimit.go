package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RateLimitStatus handles GET /ratelimit/status?action=comment. Read-only;
// calling it never consumes an attempt.
func (h *Handler) RateLimitStatus(c *gin.Context) {
	action := c.Query("action")
	if action == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action is required"})
		return
	}

	status, err := h.Limiter.Status(currentUserID(c), action)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// RateLimitUsage handles GET /ratelimit/usage. Callers see their own
// usage; admins may pass user_id to inspect someone else's.
func (h *Handler) RateLimitUsage(c *gin.Context) {
	userID := currentUserID(c)

	if requested := c.Query("user_id"); requested != "" && requested != userID {
		isAdmin, err := h.Moderation.IsAdmin(userID)
		if err != nil {
			respondError(c, err)
			return
		}
		if !isAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
			return
		}
		userID = requested
	}

	usage, err := h.Limiter.Usage(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rate_limits": usage})
}
