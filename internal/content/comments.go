package content

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/emilythestrangee/pyra/backend/internal/apperrors"
	"github.com/emilythestrangee/pyra/backend/internal/database"
	"github.com/emilythestrangee/pyra/backend/internal/models"
)

func (r *Repository) CreateComment(ctx context.Context, userID int, req models.CreateCommentRequest) (*models.Comment, error) {
	text := strings.TrimSpace(req.Content)
	if text == "" {
		return nil, apperrors.InvalidArgument("comment cannot be empty")
	}
	if err := r.requireArticle(ctx, r.db, req.ArticleID); err != nil {
		return nil, err
	}

	c := &models.Comment{
		ArticleID: req.ArticleID,
		UserID:    &userID,
		Content:   text,
		CreatedAt: r.now(),
	}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	if err := r.db.WithContext(ctx).Preload("User").First(c, c.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload comment: %w", err)
	}
	return c, nil
}

// DeleteComment removes a comment and its votes. Only its author may delete it.
func (r *Repository) DeleteComment(ctx context.Context, id, userID int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Comment
		err := tx.Scopes(database.ForUpdate).First(&c, id).Error
		if database.IsNotFound(err) {
			return apperrors.NotFound("comment not found").WithField("comment_id", id)
		}
		if err != nil {
			return fmt.Errorf("failed to load comment: %w", err)
		}
		if !ownedBy(c.UserID, userID) {
			return apperrors.Forbidden("only the author can delete this comment")
		}

		if err := r.votes.Purge(ctx, tx, []models.Ref{c.Ref()}); err != nil {
			return err
		}
		if err := tx.Delete(&models.Comment{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete comment: %w", err)
		}
		return nil
	})
}
