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

func (r *Repository) CreateFactCheck(ctx context.Context, userID int, req models.CreateFactCheckRequest) (*models.FactCheck, error) {
	if req.FactCheckLevel == nil {
		return nil, apperrors.InvalidArgument("fact_check_level is required")
	}
	level := *req.FactCheckLevel
	if level < models.MinFactCheckLevel || level > models.MaxFactCheckLevel {
		return nil, apperrors.InvalidArgument("fact_check_level must be between 0 and 4").
			WithField("fact_check_level", level)
	}
	if err := r.requireArticle(ctx, r.db, req.ArticleID); err != nil {
		return nil, err
	}

	fc := &models.FactCheck{
		ArticleID:      req.ArticleID,
		UserID:         &userID,
		Content:        strings.TrimSpace(req.Content),
		Source:         strings.TrimSpace(req.Source),
		FactCheckURL:   strings.TrimSpace(req.FactCheckURL),
		FactCheckLevel: level,
		CreatedAt:      r.now(),
	}
	if err := r.db.WithContext(ctx).Create(fc).Error; err != nil {
		return nil, fmt.Errorf("failed to create fact-check: %w", err)
	}
	return fc, nil
}

// DeleteFactCheck removes a fact-check and its votes. Only its author may delete it.
func (r *Repository) DeleteFactCheck(ctx context.Context, id, userID int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var fc models.FactCheck
		err := tx.Scopes(database.ForUpdate).First(&fc, id).Error
		if database.IsNotFound(err) {
			return apperrors.NotFound("fact-check not found").WithField("fact_check_id", id)
		}
		if err != nil {
			return fmt.Errorf("failed to load fact-check: %w", err)
		}
		if !ownedBy(fc.UserID, userID) {
			return apperrors.Forbidden("only the author can delete this fact-check")
		}

		if err := r.votes.Purge(ctx, tx, []models.Ref{fc.Ref()}); err != nil {
			return err
		}
		if err := tx.Delete(&models.FactCheck{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete fact-check: %w", err)
		}
		return nil
	})
}

func (r *Repository) requireArticle(ctx context.Context, db *gorm.DB, id int) error {
	var n int64
	if err := db.WithContext(ctx).Model(&models.Article{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to look up article: %w", err)
	}
	if n == 0 {
		return apperrors.NotFound("article not found").WithField("article_id", id)
	}
	return nil
}
