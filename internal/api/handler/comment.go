package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateComment handles POST /catches/:id/comments.
func (h *Handler) CreateComment(c *gin.Context) {
	var req struct {
		Body            string  `json:"body" binding:"required"`
		ParentCommentID *string `json:"parent_comment_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body is required"})
		return
	}

	commentID, err := h.Comments.Create(c.Param("id"), currentUserID(c), req.Body, req.ParentCommentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment_id": commentID})
}

// GetThread handles GET /catches/:id/comments.
func (h *Handler) GetThread(c *gin.Context) {
	thread, err := h.Comments.Thread(c.Param("id"), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": thread})
}

// DeleteComment handles DELETE /comments/:id (author soft delete; admins
// may also use it, but moderation deletes should go through the admin
// route so they are logged with a reason).
func (h *Handler) DeleteComment(c *gin.Context) {
	if err := h.Comments.SoftDelete(c.Param("id"), currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
