package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/pyra/backend/internal/content"
	"github.com/emilythestrangee/pyra/backend/internal/models"
	"github.com/emilythestrangee/pyra/backend/internal/ranking"
)

type CommentHandler struct {
	content *content.Repository
	scorer  *ranking.Scorer
}

func NewCommentHandler(repo *content.Repository, scorer *ranking.Scorer) *CommentHandler {
	return &CommentHandler{content: repo, scorer: scorer}
}

// CreateComment adds a comment to an article (PROTECTED - requires authentication)
func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		c.Error(err)
		return
	}

	var input models.CreateCommentRequest
	if err := bindJSON(c, &input); err != nil {
		c.Error(err)
		return
	}

	comment, err := h.content.CreateComment(c.Request.Context(), userID, input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, commentView(ranking.ScoredComment{
		Comment: *comment,
		Hotness: h.scorer.Hotness(0, comment.CreatedAt),
	}))
}

// DeleteComment removes a comment and its votes (author only)
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		c.Error(err)
		return
	}
	id, err := paramID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.content.DeleteComment(c.Request.Context(), id, userID); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
