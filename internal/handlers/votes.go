package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/pyra/backend/internal/apperrors"
	"github.com/emilythestrangee/pyra/backend/internal/auth"
	"github.com/emilythestrangee/pyra/backend/internal/models"
	"github.com/emilythestrangee/pyra/backend/internal/voting"
)

type VoteHandler struct {
	votes *voting.Engine
}

func NewVoteHandler(votes *voting.Engine) *VoteHandler {
	return &VoteHandler{votes: votes}
}

// VoteResponse carries the aggregate after a read or write. Value is the
// caller's own vote and is omitted for anonymous reads.
type VoteResponse struct {
	Likes    int  `json:"likes"`
	Dislikes int  `json:"dislikes"`
	Value    *int `json:"value,omitempty"`
}

// CastVoteRequest takes either an already resolved value or a direction to toggle.
type CastVoteRequest struct {
	UserID    *int   `json:"user_id"`
	Value     *int   `json:"value"`
	Direction string `json:"direction"`
}

type BatchCountsRequest struct {
	Votables []models.Ref `json:"votables" binding:"required"`
}

type RefCounts struct {
	Type     models.VotableType `json:"type"`
	ID       int                `json:"id"`
	Likes    int                `json:"likes"`
	Dislikes int                `json:"dislikes"`
}

func votableRef(c *gin.Context) (models.Ref, error) {
	t, err := models.ParseVotableType(c.Param("type"))
	if err != nil {
		return models.Ref{}, apperrors.InvalidArgument("unknown votable type").WithField("votable_type", c.Param("type"))
	}
	id, err := paramID(c, "id")
	if err != nil {
		return models.Ref{}, err
	}
	return models.Ref{Type: t, ID: id}, nil
}

// GetVotes returns counts for one votable, plus the caller's value when signed in.
func (h *VoteHandler) GetVotes(c *gin.Context) {
	ref, err := votableRef(c)
	if err != nil {
		c.Error(err)
		return
	}

	ctx := c.Request.Context()
	counts, err := h.votes.Counts(ctx, ref)
	if err != nil {
		c.Error(err)
		return
	}

	resp := VoteResponse{Likes: counts.Likes, Dislikes: counts.Dislikes}
	if userID, ok := auth.UserID(c); ok {
		value, err := h.votes.Vote(ctx, userID, ref)
		if err != nil {
			c.Error(err)
			return
		}
		resp.Value = &value
	}
	c.JSON(http.StatusOK, resp)
}

// CastVote applies the caller's vote and returns the new counts.
func (h *VoteHandler) CastVote(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		c.Error(err)
		return
	}
	ref, err := votableRef(c)
	if err != nil {
		c.Error(err)
		return
	}

	var input CastVoteRequest
	if err := bindJSON(c, &input); err != nil {
		c.Error(err)
		return
	}
	if input.UserID != nil && *input.UserID != userID {
		c.Error(apperrors.Unauthorized("cannot vote on behalf of another user").
			WithField("user_id", *input.UserID))
		return
	}

	ctx := c.Request.Context()
	var (
		counts voting.Counts
		value  int
	)
	switch {
	case input.Value != nil && input.Direction != "":
		err = apperrors.InvalidArgument("send either value or direction, not both")
	case input.Value != nil:
		value = *input.Value
		counts, err = h.votes.Set(ctx, userID, ref, value)
	case input.Direction != "":
		var d voting.Direction
		d, err = voting.ParseDirection(input.Direction)
		if err == nil {
			counts, value, err = h.votes.Cast(ctx, userID, ref, d)
		}
	default:
		err = apperrors.InvalidArgument("value or direction is required")
	}
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, VoteResponse{Likes: counts.Likes, Dislikes: counts.Dislikes, Value: &value})
}

// BatchCounts returns counts for many votables in request order.
func (h *VoteHandler) BatchCounts(c *gin.Context) {
	var input BatchCountsRequest
	if err := bindJSON(c, &input); err != nil {
		c.Error(err)
		return
	}

	counts, err := h.votes.CountsBatch(c.Request.Context(), input.Votables)
	if err != nil {
		c.Error(err)
		return
	}

	out := make([]RefCounts, 0, len(input.Votables))
	for _, ref := range input.Votables {
		ct := counts[ref]
		out = append(out, RefCounts{Type: ref.Type, ID: ref.ID, Likes: ct.Likes, Dislikes: ct.Dislikes})
	}
	c.JSON(http.StatusOK, out)
}
