package models

import "time"

const (
	CategoryNews      = "news"
	CategoryUplifting = "uplifting"
)

type Article struct {
	ID            int         `gorm:"primaryKey" json:"id"`
	Title         string      `gorm:"size:150;not null" json:"title"`
	URL           string      `gorm:"size:255;not null" json:"url"`
	ImageURL      string      `gorm:"size:255" json:"image_url"`
	Category      string      `gorm:"size:16;not null;default:news;index" json:"category"`
	SubmittedByID *int        `gorm:"index" json:"submitted_by_id"`
	SubmittedBy   *User       `gorm:"foreignKey:SubmittedByID" json:"submitted_by,omitempty"`
	FactChecks    []FactCheck `json:"fact_checks"`
	Comments      []Comment   `json:"comments"`
	CreatedAt     time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (a Article) Ref() Ref {
	return Ref{Type: VotableArticle, ID: a.ID}
}

type CreateArticleRequest struct {
	Title    string `json:"title" binding:"required,max=150"`
	URL      string `json:"url" binding:"required,url,max=255"`
	ImageURL string `json:"image_url" binding:"omitempty,url,max=255"`
	Category string `json:"category" binding:"omitempty,oneof=news uplifting"`
}

type UpdateArticleRequest struct {
	Title    string `json:"title" binding:"omitempty,max=150"`
	URL      string `json:"url" binding:"omitempty,url,max=255"`
	ImageURL string `json:"image_url" binding:"omitempty,url,max=255"`
	Category string `json:"category" binding:"omitempty,oneof=news uplifting"`
}
