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

// withChildren preloads everything an article page shows.
func withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("SubmittedBy").
		Preload("FactChecks", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Comments.User")
}

func (r *Repository) CreateArticle(ctx context.Context, submitterID int, req models.CreateArticleRequest) (*models.Article, error) {
	category := req.Category
	if category == "" {
		category = models.CategoryNews
	}

	a := &models.Article{
		Title:         strings.TrimSpace(req.Title),
		URL:           strings.TrimSpace(req.URL),
		ImageURL:      strings.TrimSpace(req.ImageURL),
		Category:      category,
		SubmittedByID: &submitterID,
		CreatedAt:     r.now(),
	}
	if a.Title == "" {
		return nil, apperrors.InvalidArgument("title is required")
	}
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, fmt.Errorf("failed to create article: %w", err)
	}
	return r.Article(ctx, a.ID)
}

// Article loads one article with its submitter, fact-checks and comments.
func (r *Repository) Article(ctx context.Context, id int) (*models.Article, error) {
	var a models.Article
	err := withChildren(r.db.WithContext(ctx)).First(&a, id).Error
	if database.IsNotFound(err) {
		return nil, apperrors.NotFound("article not found").WithField("article_id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load article: %w", err)
	}
	return &a, nil
}

// Articles loads every article in a category with children. Ordering is left to ranking.
func (r *Repository) Articles(ctx context.Context, category string) ([]models.Article, error) {
	var articles []models.Article
	err := withChildren(r.db.WithContext(ctx)).
		Where("category = ?", category).
		Find(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return articles, nil
}

// UpdateArticle applies non-empty fields. Only the submitter may edit.
func (r *Repository) UpdateArticle(ctx context.Context, id, userID int, req models.UpdateArticleRequest) (*models.Article, error) {
	a, err := r.Article(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ownedBy(a.SubmittedByID, userID) {
		return nil, apperrors.Forbidden("only the submitter can edit this article")
	}

	updates := map[string]any{}
	if v := strings.TrimSpace(req.Title); v != "" {
		updates["title"] = v
	}
	if v := strings.TrimSpace(req.URL); v != "" {
		updates["url"] = v
	}
	if v := strings.TrimSpace(req.ImageURL); v != "" {
		updates["image_url"] = v
	}
	if req.Category != "" {
		updates["category"] = req.Category
	}
	if len(updates) == 0 {
		return a, nil
	}

	if err := r.db.WithContext(ctx).Model(&models.Article{ID: id}).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update article: %w", err)
	}
	return r.Article(ctx, id)
}

// DeleteArticle removes the article, its fact-checks and comments, and every
// vote on any of them, in one transaction.
func (r *Repository) DeleteArticle(ctx context.Context, id, userID int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.Article
		err := tx.Scopes(database.ForUpdate).First(&a, id).Error
		if database.IsNotFound(err) {
			return apperrors.NotFound("article not found").WithField("article_id", id)
		}
		if err != nil {
			return fmt.Errorf("failed to load article: %w", err)
		}
		if !ownedBy(a.SubmittedByID, userID) {
			return apperrors.Forbidden("only the submitter can delete this article")
		}
		// Votes in flight hold share locks on these rows; waiting for them
		// here means the purge below sees their writes.
		if err := tx.Scopes(database.ForUpdate).Where("article_id = ?", id).Order("id").Find(&a.FactChecks).Error; err != nil {
			return fmt.Errorf("failed to load fact-checks: %w", err)
		}
		if err := tx.Scopes(database.ForUpdate).Where("article_id = ?", id).Order("id").Find(&a.Comments).Error; err != nil {
			return fmt.Errorf("failed to load comments: %w", err)
		}

		refs := []models.Ref{a.Ref()}
		for _, fc := range a.FactChecks {
			refs = append(refs, fc.Ref())
		}
		for _, c := range a.Comments {
			refs = append(refs, c.Ref())
		}
		if err := r.votes.Purge(ctx, tx, refs); err != nil {
			return err
		}

		if err := tx.Where("article_id = ?", id).Delete(&models.FactCheck{}).Error; err != nil {
			return fmt.Errorf("failed to delete fact-checks: %w", err)
		}
		if err := tx.Where("article_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}
		if err := tx.Delete(&models.Article{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete article: %w", err)
		}
		return nil
	})
}

func ownedBy(owner *int, userID int) bool {
	return owner != nil && *owner == userID
}
