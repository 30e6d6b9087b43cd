package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/pyra/backend/internal/apperrors"
)

const (
	userIDKey   = "user_id"
	usernameKey = "username"
)

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(issuer *Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Error(apperrors.Unauthorized("authorization header required"))
			c.Abort()
			return
		}

		claims, err := issuer.Parse(token)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}

		setCaller(c, claims)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(issuer *Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := issuer.Parse(token); err == nil {
				setCaller(c, claims)
			}
		}
		c.Next()
	}
}

// UserID returns the authenticated caller's id.
func UserID(c *gin.Context) (int, bool) {
	id, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	userID, ok := id.(int)
	return userID, ok && userID > 0
}

func setCaller(c *gin.Context, claims *Claims) {
	c.Set(userIDKey, claims.UserID)
	c.Set(usernameKey, claims.Username)
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
