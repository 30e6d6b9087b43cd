// Package handlers implements the HTTP endpoints on top of gin.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/emilythestrangee/pyra/backend/internal/apperrors"
	"github.com/emilythestrangee/pyra/backend/internal/auth"
	"github.com/emilythestrangee/pyra/backend/internal/content"
	"github.com/emilythestrangee/pyra/backend/internal/models"
	"github.com/emilythestrangee/pyra/backend/internal/ranking"
	"github.com/emilythestrangee/pyra/backend/internal/voting"
)

// Deps are the services every handler draws from.
type Deps struct {
	Content *content.Repository
	Votes   *voting.Engine
	Scorer  *ranking.Scorer
	Tokens  *auth.Issuer
}

// Handler combines all handler types
type Handler struct {
	Auth      *AuthHandler
	User      *UserHandler
	Article   *ArticleHandler
	FactCheck *FactCheckHandler
	Comment   *CommentHandler
	Vote      *VoteHandler
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(d.Content, d.Tokens),
		User:      NewUserHandler(d.Content),
		Article:   NewArticleHandler(d.Content, d.Votes, d.Scorer),
		FactCheck: NewFactCheckHandler(d.Content, d.Scorer),
		Comment:   NewCommentHandler(d.Content, d.Scorer),
		Vote:      NewVoteHandler(d.Votes),
	}
}

// callerID returns the authenticated user or an Unauthorized error.
func callerID(c *gin.Context) (int, error) {
	id, ok := auth.UserID(c)
	if !ok {
		return 0, apperrors.Unauthorized("user not authenticated")
	}
	return id, nil
}

func paramID(c *gin.Context, name string) (int, error) {
	raw := c.Param(name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidArgument(fmt.Sprintf("%s must be a positive integer", name)).WithField(name, raw)
	}
	return id, nil
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperrors.InvalidArgument(fmt.Sprintf("%s must be a non-negative integer", name)).WithField(name, raw)
	}
	return n, nil
}

// bindJSON decodes the body into v and turns validation failures into InvalidArgument.
func bindJSON(c *gin.Context, v any) error {
	err := c.ShouldBindJSON(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return apperrors.InvalidArgument("invalid request body").WithField("errors", fields)
	}
	return apperrors.InvalidArgument("malformed request body").WithField("cause", err.Error())
}

// countsFor aggregates votes for refs, splitting them into batches the engine accepts.
func countsFor(ctx context.Context, votes *voting.Engine, refs []models.Ref) (map[models.Ref]voting.Counts, error) {
	out := make(map[models.Ref]voting.Counts, len(refs))
	for chunk := range slices.Chunk(refs, voting.MaxBatch) {
		m, err := votes.CountsBatch(ctx, chunk)
		if err != nil {
			return nil, err
		}
		maps.Copy(out, m)
	}
	return out, nil
}
