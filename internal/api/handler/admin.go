package handler

import (
	"net/http"
	"strconv"
	"time"

	"anglerlog/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// Authorization for everything in this file is the service layer's single
// admin capability check; handlers only parse and translate.

func parseTimeParam(c *gin.Context, name string) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}

func parsePagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ListReports handles GET /admin/reports.
func (h *Handler) ListReports(c *gin.Context) {
	filters := storage.ReportFilters{
		Status:         c.Query("status"),
		TargetType:     c.Query("type"),
		ReportedUserID: c.Query("reported_user_id"),
		From:           parseTimeParam(c, "from"),
		To:             parseTimeParam(c, "to"),
		SortAsc:        c.Query("sort") == "asc",
	}
	limit, offset := parsePagination(c)

	views, err := h.Reports.List(currentUserID(c), filters, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": views})
}

// UpdateReportStatus handles PUT /admin/reports/:id/status.
func (h *Handler) UpdateReportStatus(c *gin.Context) {
	var req struct {
		Status          string `json:"status" binding:"required"`
		ResolutionNotes string `json:"resolution_notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	if err := h.Reports.UpdateStatus(c.Param("id"), currentUserID(c), req.Status, req.ResolutionNotes); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReportContext handles GET /admin/reports/:id/context.
func (h *Handler) ReportContext(c *gin.Context) {
	ctx, err := h.Reports.ModerationContext(c.Param("id"), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctx)
}

type reasonRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// AdminDeleteComment handles DELETE /admin/comments/:id.
func (h *Handler) AdminDeleteComment(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reason is required"})
		return
	}
	if err := h.Comments.AdminDelete(c.Param("id"), currentUserID(c), req.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AdminRestoreComment handles POST /admin/comments/:id/restore.
func (h *Handler) AdminRestoreComment(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reason is required"})
		return
	}
	if err := h.Comments.AdminRestore(c.Param("id"), currentUserID(c), req.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AdminDeleteCatch handles DELETE /admin/catches/:id.
func (h *Handler) AdminDeleteCatch(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reason is required"})
		return
	}
	if err := h.Moderation.AdminDeleteCatch(c.Param("id"), currentUserID(c), req.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AdminRestoreCatch handles POST /admin/catches/:id/restore.
func (h *Handler) AdminRestoreCatch(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reason is required"})
		return
	}
	if err := h.Moderation.AdminRestoreCatch(c.Param("id"), currentUserID(c), req.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// WarnUser handles POST /admin/users/:id/warn.
func (h *Handler) WarnUser(c *gin.Context) {
	var req struct {
		Reason        string `json:"reason" binding:"required"`
		Severity      string `json:"severity" binding:"required"`
		DurationHours *int   `json:"duration_hours"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reason and severity are required"})
		return
	}

	warningID, err := h.Moderation.WarnUser(currentUserID(c), c.Param("id"), req.Reason, req.Severity, req.DurationHours)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"warning_id": warningID})
}

// ClearModeration handles POST /admin/users/:id/clear-moderation.
func (h *Handler) ClearModeration(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reason is required"})
		return
	}
	if err := h.Moderation.ClearStatus(currentUserID(c), c.Param("id"), req.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListModerationLog handles GET /admin/moderation-log.
func (h *Handler) ListModerationLog(c *gin.Context) {
	isAdmin, err := h.Moderation.IsAdmin(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if !isAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
		return
	}

	filters := storage.LogFilters{
		Action:  c.Query("action"),
		UserID:  c.Query("user_id"),
		Search:  c.Query("search"),
		From:    parseTimeParam(c, "from"),
		To:      parseTimeParam(c, "to"),
		SortAsc: c.Query("sort") == "asc",
	}
	limit, offset := parsePagination(c)

	entries, err := h.Modlog.List(filters, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// CleanupRateLimits handles POST /admin/ratelimit/cleanup.
func (h *Handler) CleanupRateLimits(c *gin.Context) {
	isAdmin, err := h.Moderation.IsAdmin(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if !isAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
		return
	}

	deleted, err := h.Limiter.Cleanup()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
