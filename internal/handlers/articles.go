package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/pyra/backend/internal/content"
	"github.com/emilythestrangee/pyra/backend/internal/metrics"
	"github.com/emilythestrangee/pyra/backend/internal/models"
	"github.com/emilythestrangee/pyra/backend/internal/ranking"
	"github.com/emilythestrangee/pyra/backend/internal/voting"
)

type ArticleHandler struct {
	content *content.Repository
	votes   *voting.Engine
	scorer  *ranking.Scorer
}

func NewArticleHandler(repo *content.Repository, votes *voting.Engine, scorer *ranking.Scorer) *ArticleHandler {
	return &ArticleHandler{content: repo, votes: votes, scorer: scorer}
}

// GetArticles lists one category ordered by hot or new.
// Query: filter=news|uplifting, sort=hot|new, offset, limit (0 means all).
func (h *ArticleHandler) GetArticles(c *gin.Context) {
	filter, err := ranking.ParseFilter(c.Query("filter"))
	if err != nil {
		c.Error(err)
		return
	}
	order, err := ranking.ParseOrder(c.Query("sort"))
	if err != nil {
		c.Error(err)
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		c.Error(err)
		return
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		c.Error(err)
		return
	}

	start := time.Now()
	ctx := c.Request.Context()

	articles, err := h.content.Articles(ctx, string(filter))
	if err != nil {
		c.Error(err)
		return
	}
	counts, err := countsFor(ctx, h.votes, ranking.Refs(articles))
	if err != nil {
		c.Error(err)
		return
	}

	listing := ranking.NewListing(h.scorer.ScoreAll(articles, counts), order)
	views := []ArticleView{}
	for a := range listing.Page(offset, limit) {
		views = append(views, articleView(a))
	}
	metrics.ListingDuration.WithLabelValues(string(order)).Observe(time.Since(start).Seconds())

	c.Header("X-Total-Count", strconv.Itoa(listing.Len()))
	c.JSON(http.StatusOK, views)
}

// GetArticle returns a single article with fact-checks, comments and their counts.
func (h *ArticleHandler) GetArticle(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	view, err := h.load(c, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CreateArticle creates a new article (PROTECTED - requires authentication)
func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		c.Error(err)
		return
	}

	var input models.CreateArticleRequest
	if err := bindJSON(c, &input); err != nil {
		c.Error(err)
		return
	}

	article, err := h.content.CreateArticle(c.Request.Context(), userID, input)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, articleView(h.scorer.Score(*article, nil)))
}

// UpdateArticle edits title, url, image or category. Only the submitter may edit.
func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
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

	var input models.UpdateArticleRequest
	if err := bindJSON(c, &input); err != nil {
		c.Error(err)
		return
	}

	if _, err := h.content.UpdateArticle(c.Request.Context(), id, userID, input); err != nil {
		c.Error(err)
		return
	}
	view, err := h.load(c, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DeleteArticle removes the article with its fact-checks, comments and votes.
func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
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

	if err := h.content.DeleteArticle(c.Request.Context(), id, userID); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ArticleHandler) load(c *gin.Context, id int) (ArticleView, error) {
	ctx := c.Request.Context()
	article, err := h.content.Article(ctx, id)
	if err != nil {
		return ArticleView{}, err
	}
	counts, err := countsFor(ctx, h.votes, ranking.Refs([]models.Article{*article}))
	if err != nil {
		return ArticleView{}, err
	}
	return articleView(h.scorer.Score(*article, counts)), nil
}
