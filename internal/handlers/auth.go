package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/pyra/backend/internal/apperrors"
	"github.com/emilythestrangee/pyra/backend/internal/auth"
	"github.com/emilythestrangee/pyra/backend/internal/content"
	"github.com/emilythestrangee/pyra/backend/internal/models"
)

type AuthHandler struct {
	content *content.Repository
	tokens  *auth.Issuer
}

func NewAuthHandler(repo *content.Repository, tokens *auth.Issuer) *AuthHandler {
	return &AuthHandler{content: repo, tokens: tokens}
}

// Signup handles user registration
func (h *AuthHandler) Signup(c *gin.Context) {
	var input models.SignupRequest
	if err := bindJSON(c, &input); err != nil {
		c.Error(err)
		return
	}
	if err := auth.ValidatePassword(input.Password); err != nil {
		c.Error(err)
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		c.Error(apperrors.Internal("failed to hash password", err))
		return
	}

	user := models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
	}
	if err := h.content.CreateUser(c.Request.Context(), &user); err != nil {
		c.Error(err)
		return
	}

	h.respondWithToken(c, http.StatusCreated, &user)
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginRequest
	if err := bindJSON(c, &input); err != nil {
		c.Error(err)
		return
	}

	user, err := h.content.UserByUsername(c.Request.Context(), input.Username)
	if apperrors.Is(err, apperrors.KindNotFound) {
		c.Error(apperrors.Unauthorized("invalid credentials"))
		return
	}
	if err != nil {
		c.Error(err)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, input.Password); err != nil {
		c.Error(err)
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

// CheckSession returns the signed in user.
func (h *AuthHandler) CheckSession(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		c.Error(err)
		return
	}

	user, err := h.content.UserByID(c.Request.Context(), userID)
	if apperrors.Is(err, apperrors.KindNotFound) {
		c.Error(apperrors.Unauthorized("session user no longer exists"))
		return
	}
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout is a no-op for stateless tokens; clients drop the token.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, user *models.User) {
	token, err := h.tokens.Issue(user)
	if err != nil {
		c.Error(apperrors.Internal("failed to generate token", err))
		return
	}
	c.JSON(status, models.AuthResponse{Token: token, User: *user})
}
