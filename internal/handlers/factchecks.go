package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/pyra/backend/internal/content"
	"github.com/emilythestrangee/pyra/backend/internal/models"
	"github.com/emilythestrangee/pyra/backend/internal/ranking"
)

type FactCheckHandler struct {
	content *content.Repository
	scorer  *ranking.Scorer
}

func NewFactCheckHandler(repo *content.Repository, scorer *ranking.Scorer) *FactCheckHandler {
	return &FactCheckHandler{content: repo, scorer: scorer}
}

func (h *FactCheckHandler) CreateFactCheck(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		c.Error(err)
		return
	}

	var input models.CreateFactCheckRequest
	if err := bindJSON(c, &input); err != nil {
		c.Error(err)
		return
	}

	fc, err := h.content.CreateFactCheck(c.Request.Context(), userID, input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, factCheckView(ranking.ScoredFactCheck{
		FactCheck: *fc,
		Label:     ranking.LevelLabel(fc.FactCheckLevel),
		Hotness:   h.scorer.Hotness(0, fc.CreatedAt),
	}))
}

func (h *FactCheckHandler) DeleteFactCheck(c *gin.Context) {
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

	if err := h.content.DeleteFactCheck(c.Request.Context(), id, userID); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
