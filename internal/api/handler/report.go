package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateReport handles POST /reports.
func (h *Handler) CreateReport(c *gin.Context) {
	var req struct {
		TargetType string `json:"target_type" binding:"required"`
		TargetID   string `json:"target_id" binding:"required"`
		Reason     string `json:"reason" binding:"required"`
		Details    string `json:"details"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_type, target_id and reason are required"})
		return
	}

	created, err := h.Reports.Create(currentUserID(c), req.TargetType, req.TargetID, req.Reason, req.Details)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}
