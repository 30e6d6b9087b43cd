package handlers

import (
	"time"

	"github.com/emilythestrangee/pyra/backend/internal/models"
	"github.com/emilythestrangee/pyra/backend/internal/ranking"
)

const deletedUser = "deleted"

type FactCheckView struct {
	ID                  int       `json:"id"`
	ArticleID           int       `json:"article_id"`
	UserID              *int      `json:"user_id"`
	Content             string    `json:"content"`
	Source              string    `json:"source"`
	FactCheckURL        string    `json:"fact_check_url"`
	FactCheckLevel      int       `json:"fact_check_level"`
	FactCheckLevelLabel string    `json:"fact_check_level_label"`
	Likes               int       `json:"likes"`
	Dislikes            int       `json:"dislikes"`
	Hotness             float64   `json:"hotness"`
	CreatedAt           time.Time `json:"created_at"`
}

type CommentView struct {
	ID        int       `json:"id"`
	ArticleID int       `json:"article_id"`
	UserID    *int      `json:"user_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	Likes     int       `json:"likes"`
	Dislikes  int       `json:"dislikes"`
	Hotness   float64   `json:"hotness"`
	CreatedAt time.Time `json:"created_at"`
}

type ArticleView struct {
	ID             int             `json:"id"`
	Title          string          `json:"title"`
	URL            string          `json:"url"`
	ImageURL       string          `json:"image_url"`
	Category       string          `json:"category"`
	SubmittedByID  *int            `json:"submitted_by_id"`
	SubmittedBy    string          `json:"submitted_by"`
	Likes          int             `json:"likes"`
	Dislikes       int             `json:"dislikes"`
	Hotness        float64         `json:"hotness"`
	FactCheckLabel string          `json:"fact_check_label"`
	FactChecks     []FactCheckView `json:"fact_checks"`
	Comments       []CommentView   `json:"comments"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func factCheckView(fc ranking.ScoredFactCheck) FactCheckView {
	return FactCheckView{
		ID:                  fc.ID,
		ArticleID:           fc.ArticleID,
		UserID:              fc.UserID,
		Content:             fc.Content,
		Source:              fc.Source,
		FactCheckURL:        fc.FactCheckURL,
		FactCheckLevel:      fc.FactCheckLevel,
		FactCheckLevelLabel: fc.Label,
		Likes:               fc.Counts.Likes,
		Dislikes:            fc.Counts.Dislikes,
		Hotness:             fc.Hotness,
		CreatedAt:           fc.CreatedAt,
	}
}

func commentView(c ranking.ScoredComment) CommentView {
	return CommentView{
		ID:        c.ID,
		ArticleID: c.ArticleID,
		UserID:    c.UserID,
		Username:  c.DisplayName(),
		Content:   c.Content,
		Likes:     c.Counts.Likes,
		Dislikes:  c.Counts.Dislikes,
		Hotness:   c.Hotness,
		CreatedAt: c.CreatedAt,
	}
}

func articleView(a ranking.ScoredArticle) ArticleView {
	v := ArticleView{
		ID:             a.ID,
		Title:          a.Title,
		URL:            a.URL,
		ImageURL:       a.ImageURL,
		Category:       a.Category,
		SubmittedByID:  a.SubmittedByID,
		SubmittedBy:    submitterName(a.SubmittedBy),
		Likes:          a.Counts.Likes,
		Dislikes:       a.Counts.Dislikes,
		Hotness:        a.Hotness,
		FactCheckLabel: a.FactCheckLabel,
		FactChecks:     make([]FactCheckView, 0, len(a.FactChecks)),
		Comments:       make([]CommentView, 0, len(a.Comments)),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
	for _, fc := range a.FactChecks {
		v.FactChecks = append(v.FactChecks, factCheckView(fc))
	}
	for _, c := range a.Comments {
		v.Comments = append(v.Comments, commentView(c))
	}
	return v
}

func submitterName(u *models.User) string {
	if u == nil {
		return deletedUser
	}
	return u.Username
}
