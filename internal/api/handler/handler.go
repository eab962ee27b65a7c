// Package handler exposes the moderation core over HTTP.
package handler

import (
	"errors"
	"net/http"
	"time"

	"anglerlog/backend/internal/comments"
	"anglerlog/backend/internal/moderation"
	"anglerlog/backend/internal/modlog"
	"anglerlog/backend/internal/notify"
	"anglerlog/backend/internal/ratelimit"
	"anglerlog/backend/internal/report"
	"anglerlog/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// Handler holds the services the HTTP surface dispatches into.
type Handler struct {
	Storage    storage.Storage
	Limiter    *ratelimit.Service
	Comments   *comments.Service
	Reports    *report.Service
	Moderation *moderation.Service
	Modlog     *modlog.Service
	Hub        *notify.Hub
}

// NewHandler creates a new handler.
func NewHandler(s storage.Storage, limiter *ratelimit.Service, cm *comments.Service, rp *report.Service, mod *moderation.Service, ml *modlog.Service, hub *notify.Hub) *Handler {
	return &Handler{
		Storage:    s,
		Limiter:    limiter,
		Comments:   cm,
		Reports:    rp,
		Moderation: mod,
		Modlog:     ml,
		Hub:        hub,
	}
}

// respondRateLimited emits a 429, carrying reset_at whenever the window
// could be computed.
func respondRateLimited(c *gin.Context, resetAt *time.Time) {
	body := gin.H{"error": "rate limit exceeded"}
	if resetAt != nil {
		body["reset_at"] = resetAt
	}
	c.JSON(http.StatusTooManyRequests, body)
}

// respondError maps domain errors onto HTTP responses. Privacy-sensitive
// denials stay generic; actionable denials carry their timestamps.
func respondError(c *gin.Context, err error) {
	var commentLimited *comments.RateLimitedError
	if errors.As(err, &commentLimited) {
		respondRateLimited(c, commentLimited.ResetAt)
		return
	}

	var reportLimited *report.RateLimitedError
	if errors.As(err, &reportLimited) {
		respondRateLimited(c, reportLimited.ResetAt)
		return
	}

	var suspended *moderation.SuspendedError
	if errors.As(err, &suspended) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "account suspended",
			"until": suspended.Until,
		})
		return
	}

	switch {
	case errors.Is(err, moderation.ErrBanned):
		c.JSON(http.StatusForbidden, gin.H{"error": "account permanently banned"})
	case errors.Is(err, moderation.ErrAccountDeleted):
		c.JSON(http.StatusGone, gin.H{"error": "account deleted"})
	case errors.Is(err, moderation.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
	case errors.Is(err, comments.ErrNotAccessible):
		// Generic on purpose: whether the catch is private, deleted or a
		// block exists must not be distinguishable.
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, comments.ErrInvalidParent):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unable to reply"})
	case errors.Is(err, comments.ErrEmptyBody),
		errors.Is(err, report.ErrInvalidTarget),
		errors.Is(err, report.ErrEmptyReason),
		errors.Is(err, report.ErrInvalidStatus),
		errors.Is(err, moderation.ErrInvalidSeverity),
		errors.Is(err, moderation.ErrInvalidDuration),
		errors.Is(err, ratelimit.ErrUnknownAction):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, comments.ErrCommentNotFound),
		errors.Is(err, report.ErrReportNotFound),
		errors.Is(err, moderation.ErrCatchNotFound),
		errors.Is(err, moderation.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
