// Package testutil opens throwaway databases and seeds rows for package tests.
package testutil

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/emilythestrangee/pyra/backend/internal/database"
	"github.com/emilythestrangee/pyra/backend/internal/models"
)

// OpenTestDB returns a migrated SQLite database in a temp dir, closed on cleanup.
func OpenTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	return OpenTestDatabase(t).DB
}

// OpenTestDatabase is OpenTestDB for callers that need the database wrapper.
func OpenTestDatabase(t testing.TB) *database.Database {
	t.Helper()

	db, err := database.Open(database.Options{
		Driver:   database.DriverSQLite,
		DSN:      filepath.Join(t.TempDir(), "test.db"),
		LogLevel: "error",
		Logger:   slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate())
	return db
}

// CreateUser inserts a user named name with a placeholder password hash.
func CreateUser(t testing.TB, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{
		Username:     name,
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateArticle inserts an article with the given category and creation time.
// A zero createdAt lets the database stamp it.
func CreateArticle(t testing.TB, db *gorm.DB, submitter *models.User, title, category string, createdAt time.Time) *models.Article {
	t.Helper()
	a := &models.Article{
		Title:     title,
		URL:       "https://example.com/" + title,
		Category:  category,
		CreatedAt: createdAt,
	}
	if submitter != nil {
		a.SubmittedByID = &submitter.ID
	}
	require.NoError(t, db.Create(a).Error)
	return a
}

func CreateFactCheck(t testing.TB, db *gorm.DB, article *models.Article, author *models.User, level int) *models.FactCheck {
	t.Helper()
	fc := &models.FactCheck{
		ArticleID:      article.ID,
		Content:        "checked",
		Source:         "source",
		FactCheckLevel: level,
	}
	if author != nil {
		fc.UserID = &author.ID
	}
	require.NoError(t, db.Create(fc).Error)
	return fc
}

func CreateComment(t testing.TB, db *gorm.DB, article *models.Article, author *models.User, content string) *models.Comment {
	t.Helper()
	c := &models.Comment{ArticleID: article.ID, Content: content}
	if author != nil {
		c.UserID = &author.ID
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

// Scan counts vote rows for ref directly, bypassing any aggregate query.
func Scan(t testing.TB, db *gorm.DB, ref models.Ref) (likes, dislikes int) {
	t.Helper()
	var votes []models.Vote
	require.NoError(t, db.Where("votable_type = ? AND votable_id = ?", ref.Type, ref.ID).Find(&votes).Error)
	for _, v := range votes {
		switch v.Value {
		case 1:
			likes++
		case -1:
			dislikes++
		}
	}
	return likes, dislikes
}
