package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/pyra/backend/internal/apperrors"
	"github.com/emilythestrangee/pyra/backend/internal/auth"
	"github.com/emilythestrangee/pyra/backend/internal/content"
	"github.com/emilythestrangee/pyra/backend/internal/models"
)

// maxUserLookup caps GET /users?ids=.
const maxUserLookup = 100

type UserHandler struct {
	content *content.Repository
}

func NewUserHandler(repo *content.Repository) *UserHandler {
	return &UserHandler{content: repo}
}

// GetUser returns a public profile by id.
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	user, err := h.content.UserByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUsers resolves a comma separated id list in one query. Unknown ids are skipped.
func (h *UserHandler) GetUsers(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("ids"))
	if raw == "" {
		c.Error(apperrors.InvalidArgument("ids is required"))
		return
	}

	parts := strings.Split(raw, ",")
	if len(parts) > maxUserLookup {
		c.Error(apperrors.InvalidArgument("too many ids").WithField("max", maxUserLookup))
		return
	}

	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || id <= 0 {
			c.Error(apperrors.InvalidArgument("ids must be positive integers").WithField("id", p))
			return
		}
		ids = append(ids, id)
	}

	users, err := h.content.UsersByIDs(c.Request.Context(), ids)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// UpdateUser lets a user change their own username, email or password.
// A new password must be repeated in password_confirmation.
func (h *UserHandler) UpdateUser(c *gin.Context) {
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
	if id != userID {
		c.Error(apperrors.Forbidden("you can only update your own profile"))
		return
	}

	var input models.UpdateUserRequest
	if err := bindJSON(c, &input); err != nil {
		c.Error(err)
		return
	}

	var hash string
	if input.Password != "" {
		if input.Password != input.PasswordConfirmation {
			c.Error(apperrors.InvalidArgument("password confirmation does not match").
				WithField("field", "password_confirmation"))
			return
		}
		if err := auth.ValidatePassword(input.Password); err != nil {
			c.Error(err)
			return
		}
		if hash, err = auth.HashPassword(input.Password); err != nil {
			c.Error(apperrors.Internal("failed to hash password", err))
			return
		}
	}

	user, err := h.content.UpdateUser(c.Request.Context(), id, input, hash)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}
